/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/asltutor/apiserver/internal/server"
	"github.com/asltutor/apiserver/internal/services"
	"github.com/asltutor/apiserver/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const adminPasswordEnv = "ADMIN_PASSWORD"

var (
	adminUsername string
	adminEmail    string
)

// createAdminCmd represents the create-admin command
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Creates an admin account",
	Long: `Creates an admin account. The password is read from the
ADMIN_PASSWORD environment variable. Usage:

	ADMIN_PASSWORD=... asltutor create-admin --username root --email root@example.com
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv(adminPasswordEnv)
		if password == "" {
			return fmt.Errorf("%s is required", adminPasswordEnv)
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ctx := cmd.Context()

		repos, err := server.OpenRepositories(ctx, cfg)
		if err != nil {
			logger.Error(ctx, "failed to open database", zap.Error(err))
			return err
		}
		defer func() { _ = repos.Close(context.Background()) }()

		user, err := services.NewUserService(repos.Users).Register(ctx, types.User{
			Username:   adminUsername,
			Email:      adminEmail,
			Role:       types.RoleAdmin,
			IsVerified: true,
		}, password)
		if err != nil {
			if errors.Is(err, services.ErrUsernameTaken) {
				logger.Warn(ctx, "admin already exists", zap.String("username", adminUsername))
			}
			return err
		}

		logger.Info(ctx, "admin created", zap.String("id", user.ID.Hex()), zap.String("username", user.Username))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)
	createAdminCmd.Flags().StringVar(&adminUsername, "username", "admin", "admin username")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "admin email address")
}
