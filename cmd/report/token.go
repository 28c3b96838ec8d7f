package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"report_gen/internal/auth"
	"report_gen/internal/models"

	"github.com/spf13/cobra"
)

// NewTokenCmd creates the token command.
func NewTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print a signed viewer token for the HTTP API",
		Long: `Token signs a bearer token naming a viewer. The secret defaults to
APP_AUTH_SECRET, the one the server reads.

Example:
  curl -H "Authorization: Bearer $(report token --user alice --role ADMIN)" ...`,
		Args: cobra.NoArgs,
		RunE: runTokenCmd,
	}

	cmd.Flags().StringP("user", "u", "", "Viewer name")
	cmd.Flags().StringP("role", "r", string(models.RoleUser), "Viewer role (ADMIN or USER)")
	cmd.Flags().String("secret", os.Getenv("APP_AUTH_SECRET"), "Signing secret")
	cmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")

	return cmd
}

func runTokenCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	name, _ := flags.GetString("user")
	role, _ := flags.GetString("role")
	secret, _ := flags.GetString("secret")
	ttl, _ := flags.GetDuration("ttl")

	if name == "" {
		return errors.New("--user is required")
	}
	if secret == "" {
		return errors.New("--secret or APP_AUTH_SECRET is required")
	}

	token, err := auth.NewJWTManager(secret, ttl).Generate(models.User{Name: name, Role: models.Role(role)})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
	return err
}
