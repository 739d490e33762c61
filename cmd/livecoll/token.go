package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vango-dev/livecoll/internal/errors"
	"github.com/vango-dev/livecoll/pkg/stream"
)

func tokenCmd(configPath *string) *cobra.Command {
	var (
		subject     string
		ttl         time.Duration
		collections []string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an operation token",
		Long: `Issue an HS256 token signed with server.authSecret. The token is
accepted by POST /ops as a bearer token and by the WebSocket feed as
the token query parameter.

Examples:
  livecoll token --subject importer
  livecoll token --subject ui --ttl 1h --collection overrides`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cfg.Server.AuthSecret == "" {
				return errors.New("E140").
					WithDetail("server.authSecret is not set").
					WithSuggestion("Set server.authSecret in " + cfg.Path() + " to protect operations")
			}
			if subject == "" {
				return errors.New("E140").WithDetail("--subject is required")
			}

			token, err := stream.NewAuthenticator(cfg.Server.AuthSecret).Issue(subject, ttl, collections...)
			if err != nil {
				return errors.New("E140").Wrap(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "Token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime (0 never expires)")
	cmd.Flags().StringArrayVar(&collections, "collection", nil, "Restrict the token to this collection (repeatable)")

	return cmd
}
