package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/teamboard/internal/client"
	"github.com/nhle/teamboard/internal/credential"
	"github.com/nhle/teamboard/internal/identity"
)

func loginCmd(opts *globalOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a bearer credential in the system keyring",
		Long: `Store a bearer credential for the board. The token is read from
--token or, when omitted, from the first line of stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading token from stdin: %w", err)
				}
				token = strings.TrimSpace(line)
			}
			if token == "" {
				return errors.New("token is required")
			}

			session, err := client.NewSession(token)
			if err != nil {
				return err
			}
			if err := credential.NewStore(nil).SaveToken(token); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", session.Name, session.Subject)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer credential")
	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credential.NewStore(nil).DeleteToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func syncCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push the signed-in profile to the gateway once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, cfg.Log.Level)

			token, err := credential.NewStore(nil).LoadToken()
			if errors.Is(err, credential.ErrNotFound) {
				return errors.New("not signed in; run `teamboard login` first")
			}
			if err != nil {
				return err
			}

			session, err := syncOnce(cmd.Context(), cfg, token, logger)
			if err != nil {
				return fmt.Errorf("syncing %s: %w", session.Subject, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Synced %s (%s) to %s\n", session.Name, session.Subject, cfg.Gateway.URL)
			return nil
		},
	}
}

func tokenCmd(opts *globalOptions) *cobra.Command {
	var (
		subject string
		profile identity.Profile
		ttl     time.Duration
		save    bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an HS256 development credential",
		Long: `Mint a credential signed with the configured HS256 secret. Useful for
local development against "teamboard serve". Refused in production.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.AppEnv == "production" {
				return errors.New("refusing to mint credentials in production")
			}
			if subject == "" {
				return errors.New("--sub is required")
			}

			logger := newLogger(os.Stderr, cfg.Log.Level)
			secret, err := resolveAuthSecret(cfg.Auth.AppEnv, cfg.Auth.Secret, logger)
			if err != nil {
				return err
			}

			token, err := identity.Mint(secret, subject, profile, cfg.Auth.Issuer, time.Now(), ttl)
			if err != nil {
				return err
			}
			if save {
				if err := credential.NewStore(nil).SaveToken(token); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "sub", "", "Subject (user id)")
	cmd.Flags().StringVar(&profile.FullName, "name", "", "Full name claim")
	cmd.Flags().StringVar(&profile.Email, "email", "", "Email claim")
	cmd.Flags().StringVar(&profile.Avatar, "avatar", "", "Picture claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Lifetime")
	cmd.Flags().BoolVar(&save, "save", false, "Also store the credential in the keyring")
	return cmd
}
