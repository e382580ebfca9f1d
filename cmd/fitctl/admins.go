package main

import (
	"context"
	"fmt"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/users"

	"github.com/spf13/cobra"
)

var adminsCmd = &cobra.Command{
	Use:   "admins",
	Short: "Manage the admin users",
}

var adminsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the admin usernames",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withUsersService(cmd.Context(), func(service *users.Service) error {
			admins, err := service.ListAdmins(cmd.Context())
			if err != nil {
				return fmt.Errorf("list admins: %w", err)
			}
			if len(admins) == 0 {
				fmt.Println("no admins")
				return nil
			}
			for _, username := range admins {
				marker := ""
				if service.IsBootstrapAdmin(username) {
					marker = " (bootstrap)"
				}
				fmt.Printf("%s%s\n", username, marker)
			}
			return nil
		})
	},
}

var adminsAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Grant admin rights to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsersService(cmd.Context(), func(service *users.Service) error {
			if err := service.AddAdmin(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("add admin [%s]: %w", args[0], err)
			}
			fmt.Printf("%s is now an admin\n", args[0])
			return nil
		})
	},
}

var adminsRemoveCmd = &cobra.Command{
	Use:   "remove <username>",
	Short: "Revoke admin rights of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withUsersService(cmd.Context(), func(service *users.Service) error {
			if err := service.RemoveAdmin(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("remove admin [%s]: %w", args[0], err)
			}
			fmt.Printf("%s is no longer an admin\n", args[0])
			return nil
		})
	},
}

func withUsersService(ctx context.Context, f func(service *users.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	secrets, err := config.LoadSecrets(ctx)
	if err != nil {
		return err
	}

	dbPool, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer dbPool.Close()

	return f(users.NewService(users.NewRepo(dbPool), secrets.BootstrapAdmins))
}

func init() {
	adminsCmd.AddCommand(adminsListCmd, adminsAddCmd, adminsRemoveCmd)
	rootCmd.AddCommand(adminsCmd)
}
