package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/motomarkt/motomarkt-go/api"
	"github.com/motomarkt/motomarkt-go/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for motoctl",
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the marketplace and persist the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if manager.Restore(ctx) == session.StateAuthenticated {
			current := manager.Current()
			fmt.Printf("Already logged in as %s.\n", current.DisplayName())
			fmt.Print("Do you want to re-login? (yes/no): ")
			reader := bufio.NewReader(os.Stdin)
			confirm, _ := reader.ReadString('\n')
			if strings.TrimSpace(strings.ToLower(confirm)) != "yes" {
				fmt.Println("Login cancelled.")
				return nil
			}
		}

		email, err := promptLine("Enter email: ")
		if err != nil {
			return err
		}
		password, err := promptPassword("Enter password: ")
		if err != nil {
			return err
		}

		sess, err := manager.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Login successful. Session saved for %s", sess.DisplayName())
		if sess.IsAdmin() {
			fmt.Print(" (admin)")
		}
		fmt.Println(".")
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the persisted session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		manager.Logout(cmd.Context())
		fmt.Println("Logged out. Local session cleared.")
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new marketplace account",
	Long:  `Registers a new account with the marketplace backend. Registration never logs you in; run 'motoctl auth login' afterwards.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		var req api.RegisterRequest
		var err error

		if req.FirstName, err = promptLine("First name: "); err != nil {
			return err
		}
		if req.LastName, err = promptLine("Last name: "); err != nil {
			return err
		}
		if req.Email, err = promptLine("Email: "); err != nil {
			return err
		}
		if req.Phone, err = promptLine("Phone (optional): "); err != nil {
			return err
		}
		if req.Password, err = promptPassword("Password: "); err != nil {
			return err
		}

		resp, err := manager.Register(cmd.Context(), req)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		if !resp.Success {
			return fmt.Errorf("registration rejected: %s", resp.Message)
		}

		if resp.Message != "" {
			fmt.Println(resp.Message)
		} else {
			fmt.Println("Account created. Log in with 'motoctl auth login'.")
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the currently authenticated account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if manager.Restore(ctx) != session.StateAuthenticated {
			fmt.Println("Not logged in.")
			return nil
		}

		user, err := manager.Profile(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}

		fmt.Printf("Name:  %s %s\n", user.FirstName, user.LastName)
		fmt.Printf("Email: %s\n", user.Email)
		fmt.Printf("Role:  %s\n", user.Role)
		if user.ProfileImage != "" {
			fmt.Printf("Image: %s/%s\n", strings.TrimRight(cfg.ImageBaseURL, "/"), user.ProfileImage)
		}
		return nil
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print the current access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if manager.Restore(cmd.Context()) != session.StateAuthenticated {
			return fmt.Errorf("not logged in")
		}
		fmt.Println(manager.Token())
		return nil
	},
}

func promptLine(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(label string) (string, error) {
	fmt.Print(label)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)
	authCmd.AddCommand(tokenCmd)
}
