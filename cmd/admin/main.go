package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/example/haribookstore/internal/config"
	"github.com/example/haribookstore/internal/database"
	"github.com/example/haribookstore/internal/logging"
	"github.com/example/haribookstore/internal/models"
	"github.com/example/haribookstore/internal/services"
	"github.com/example/haribookstore/internal/utils"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "haribookstore-admin",
		Short:        "Maintenance tasks for the HariBookStore database",
		SilenceUsage: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "reset-user <email>",
			Short: "Delete an account so the address can sign up again",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *gorm.DB, args []string) error {
				removed, err := services.ResetUser(ctx, db, args[0])
				if err != nil {
					return err
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "no user with email %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted user %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "promote <email>",
			Short: "Grant the admin role to an existing account",
			Args:  cobra.ExactArgs(1),
			RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *gorm.DB, args []string) error {
				if err := services.SetUserRole(ctx, db, args[0], models.RoleAdmin); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an admin (takes effect on next login)\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "seed-books",
			Short: "Insert catalog books that are not yet in the database",
			Args:  cobra.NoArgs,
			RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *gorm.DB, args []string) error {
				inserted, err := database.SeedBooks(db.WithContext(ctx))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "inserted %d books\n", inserted)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "inspect-token <token>",
			Short: "Verify a session token and print its claims",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				claims, err := utils.ParseToken(cfg.JWTSecret, args[0])
				if err != nil {
					return fmt.Errorf("invalid token: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "user %s\nemail %s\nrole %s\nexpires %s\n",
					claims.UserID, claims.Email, claims.Role, claims.ExpiresAt.Time.UTC().Format(time.RFC3339))
				return nil
			},
		},
	)

	return root
}

type dbCommand func(ctx context.Context, cmd *cobra.Command, db *gorm.DB, args []string) error

func withDB(run dbCommand) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Setup(cfg.AppEnv)

		db, err := database.Connect(cfg)
		if err != nil {
			return err
		}
		defer database.Close(db)

		return run(cmd.Context(), cmd, db, args)
	}
}
