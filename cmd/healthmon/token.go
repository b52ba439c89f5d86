package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/msusur/healthmonitoring/auth"
)

type tokenOptions struct {
	*rootOptions
	subject string
	roles   []string
	ttl     time.Duration
}

func newTokenCmd(root *rootOptions) *cobra.Command {
	opts := &tokenOptions{rootOptions: root}

	cmd := &cobra.Command{
		Use:   "token --subject <name> [--role operator] [--ttl 24h]",
		Short: "Issue a bearer token signed with server.auth.secret",
		RunE:  opts.run,
	}
	cmd.Flags().StringVar(&opts.subject, "subject", "", "Token subject (required)")
	cmd.Flags().StringSliceVar(&opts.roles, "role", []string{"operator"}, "Role to grant (repeatable)")
	cmd.Flags().DurationVar(&opts.ttl, "ttl", 24*time.Hour, "Token lifetime; 0 issues a token without expiry")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (o *tokenOptions) run(cmd *cobra.Command, _ []string) error {
	cfg, resolver, err := loadConfig(cmd.Context(), o.configPath)
	if err != nil {
		return err
	}
	defer func() { _ = resolver.Close() }()

	authn, err := auth.NewJWTAuthenticator(cfg.Server.Auth)
	if err != nil {
		return err
	}
	token, err := authn.Issue(o.subject, o.roles, o.ttl)
	if err != nil {
		return fmt.Errorf("sign token: %w", err)
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
