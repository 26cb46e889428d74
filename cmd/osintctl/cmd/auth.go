package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osintlab/osint-platform/pkg/client"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		username := loginUsername
		if username == "" {
			if username, err = promptLine("Username"); err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			if password, err = promptPassword("Password"); err != nil {
				return err
			}
		}

		token, err := c.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}
		c.StartSession(token)

		fmt.Printf("Logged in as %s\n", token.User.Username)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log in",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		username, err := promptLine("Username")
		if err != nil {
			return err
		}
		email, err := promptLine("Email")
		if err != nil {
			return err
		}
		fullName, err := promptLine("Full name (optional)")
		if err != nil {
			return err
		}
		password, err := promptPassword("Password")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Confirm password")
		if err != nil {
			return err
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}

		req := client.RegisterRequest{
			Username: username,
			Email:    email,
			Password: password,
		}
		if fullName != "" {
			req.FullName = &fullName
		}

		token, err := c.Register(cmd.Context(), req)
		if err != nil {
			return err
		}
		c.StartSession(token)

		fmt.Printf("Account created; logged in as %s\n", token.User.Username)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		// Best-effort server revocation; local state clears regardless
		c.Logout(cmd.Context())
		fmt.Println("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, user, err := requireSession(cmd)
		if err != nil {
			return err
		}

		fmt.Printf("Username: %s\n", user.Username)
		fmt.Printf("Email:    %s\n", user.Email)
		if user.FullName != nil && *user.FullName != "" {
			fmt.Printf("Name:     %s\n", *user.FullName)
		}
		fmt.Printf("Active:   %t\n", user.IsActive)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Username (prompted when omitted)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (prompted when omitted)")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}
