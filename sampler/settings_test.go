package sampler

import (
	"errors"
	"testing"
	"time"
)

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{
			name:     "valid",
			settings: Settings{ShortTimeout: 200 * time.Millisecond, FailureTimeout: 5 * time.Second, HealthyResponseTimeLimit: 500 * time.Millisecond},
		},
		{
			name:     "equal timeouts",
			settings: Settings{ShortTimeout: time.Second, FailureTimeout: time.Second, HealthyResponseTimeLimit: time.Second},
		},
		{
			name:     "zero short",
			settings: Settings{ShortTimeout: 0, FailureTimeout: time.Second, HealthyResponseTimeLimit: time.Second},
			wantErr:  true,
		},
		{
			name:     "negative failure",
			settings: Settings{ShortTimeout: time.Second, FailureTimeout: -time.Second, HealthyResponseTimeLimit: time.Second},
			wantErr:  true,
		},
		{
			name:     "zero limit",
			settings: Settings{ShortTimeout: time.Second, FailureTimeout: time.Second, HealthyResponseTimeLimit: 0},
			wantErr:  true,
		},
		{
			name:     "short exceeds failure",
			settings: Settings{ShortTimeout: 2 * time.Second, FailureTimeout: time.Second, HealthyResponseTimeLimit: time.Second},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr != errors.Is(err, ErrInvalidSettings) {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(Settings{}, &recordingSink{}); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("New() error = %v, want ErrInvalidSettings", err)
	}
	valid := Settings{
		ShortTimeout:             time.Second,
		FailureTimeout:           time.Second,
		HealthyResponseTimeLimit: time.Second,
	}
	if _, err := New(valid, nil); !errors.Is(err, ErrNilSink) {
		t.Errorf("New() error = %v, want ErrNilSink", err)
	}
}
