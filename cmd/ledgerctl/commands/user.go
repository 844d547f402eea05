package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerline/dashboard/internal/auth"
)

var (
	userName     string
	userEmail    string
	userPassword string
	hashCost     int
)

var createUserCmd = &cobra.Command{
	Use:     "create-user",
	Short:   "Create a dashboard login",
	Example: `  ledgerctl create-user --name User --email user@nextmail.com --password 123456`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		db, cfg, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		svc := auth.NewService(auth.NewRepository(db.Pool()), cfg.BcryptCost)
		u, err := svc.CreateUser(ctx, userName, userEmail, userPassword)
		if err != nil {
			if errors.Is(err, auth.ErrDuplicateEmail) {
				return fmt.Errorf("a user with email %s already exists", userEmail)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Email, u.ID)
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password PASSWORD",
	Short: "Print the bcrypt hash of a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auth.NewService(nil, hashCost)
		hash, err := svc.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	createUserCmd.Flags().StringVar(&userName, "name", "", "Display name")
	createUserCmd.Flags().StringVar(&userEmail, "email", "", "Login email")
	createUserCmd.Flags().StringVar(&userPassword, "password", "", "Login password")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")

	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 12, "bcrypt cost")

	rootCmd.AddCommand(createUserCmd, hashPasswordCmd)
}
