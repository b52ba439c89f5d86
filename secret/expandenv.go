package secret

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"
)

var envNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ExpandEnvStrict expands $VAR and ${VAR} in s.
//
// Unlike os.ExpandEnv, an unset variable is an error naming every missing
// variable. "$$" yields a literal "$"; other shell specials such as "$1"
// are left untouched.
func ExpandEnvStrict(s string) (string, error) {
	return expandEnv(s, nil)
}

// expandEnv is ExpandEnvStrict that passes each substituted value to track.
func expandEnv(s string, track func(string)) (string, error) {
	var missing []string
	out := os.Expand(s, func(key string) string {
		if key == "$" {
			return "$"
		}
		if !envNamePattern.MatchString(key) {
			return "$" + key
		}
		v, ok := os.LookupEnv(key)
		if !ok && !slices.Contains(missing, key) {
			missing = append(missing, key)
		}
		if ok && track != nil {
			track(v)
		}
		return v
	})

	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("%w: %s", ErrMissingEnv, strings.Join(missing, ", "))
	}
	return out, nil
}
