package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"docmark/internal/auth"
)

func newTokenCmd() *cobra.Command {
	var (
		userID string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a bearer token for a user id",
		Long: `Mint an HS256 bearer token signed with AUTH_JWT_SECRET.

Example:
  docmark token --user alice --ttl 24h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(userID) == "" {
				return errors.New("--user must not be blank")
			}
			e := loadEnv(cmd)
			if e.cfg.Auth.JWTSecret == "" {
				return errors.New("AUTH_JWT_SECRET is not set")
			}
			token, err := auth.GenerateToken(userID, []byte(e.cfg.Auth.JWTSecret), ttl)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id to embed in the token (required)")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token validity")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
