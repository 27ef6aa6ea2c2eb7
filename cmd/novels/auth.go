package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ethan2004g/interactive-web-novels/pkg/api"
	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Sign in and store the session tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		username := ""
		if len(args) == 1 {
			username = args[0]
		}
		password, _ := cmd.Flags().GetString("password")

		var err error
		if username == "" {
			if username, err = prompt("Username: "); err != nil {
				return err
			}
		}
		if password == "" {
			if password, err = promptSecret("Password: "); err != nil {
				return err
			}
		}

		err = rt.session.Login(cmd.Context(), data.Credentials{Username: username, Password: password})
		if err != nil {
			return errors.New(rt.session.Err())
		}
		u := rt.session.User()
		fmt.Printf("✅ Signed in as %s (%s)\n", u.Username, u.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <username> <email>",
	Short: "Create an account and sign in",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		author, _ := cmd.Flags().GetBool("author")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			var err error
			if password, err = promptSecret("Password: "); err != nil {
				return err
			}
			confirm, err := promptSecret("Confirm password: ")
			if err != nil {
				return err
			}
			if confirm != password {
				return errors.New("passwords do not match")
			}
		}
		if len(password) < 8 {
			return errors.New("password must be at least 8 characters")
		}

		req := data.RegisterRequest{Username: args[0], Email: args[1], Password: password, Role: data.RoleReader}
		if author {
			req.Role = data.RoleAuthor
		}
		if err := rt.session.Register(cmd.Context(), req); err != nil {
			return errors.New(rt.session.Err())
		}
		u := rt.session.User()
		fmt.Printf("✅ Welcome, %s! Signed in as %s.\n", u.Username, u.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt.session.Logout()
		fmt.Println("👋 Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user and token expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := rt.requireUser(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s>\n", u.Username, u.Email)
		fmt.Printf("  role:   %s\n", u.Role)
		fmt.Printf("  id:     %s\n", u.ID)

		access := rt.services.Auth.AccessToken()
		if exp, ok := api.TokenExpiry(access); ok {
			left := time.Until(exp).Round(time.Second)
			if left > 0 {
				fmt.Printf("  token:  expires %s (in %s)\n", exp.Local().Format(time.RFC1123), left)
			} else {
				fmt.Printf("  token:  expired %s, run 'novels auth refresh'\n", exp.Local().Format(time.RFC1123))
			}
		}
		if sub := api.TokenSubject(access); sub != "" {
			fmt.Printf("  sub:    %s\n", sub)
		}
		return nil
	},
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Token maintenance",
}

var authRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		tokens, err := rt.services.Auth.Refresh(cmd.Context())
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
		if exp, ok := api.TokenExpiry(tokens.AccessToken); ok {
			fmt.Printf("🔑 Token refreshed, valid until %s\n", exp.Local().Format(time.RFC1123))
			return nil
		}
		fmt.Println("🔑 Token refreshed.")
		return nil
	},
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptSecret reads without echo when stdin is a terminal.
func promptSecret(label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return prompt(label)
	}
	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

func init() {
	loginCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().StringP("password", "p", "", "Password (prompted when omitted)")
	registerCmd.Flags().Bool("author", false, "Register as an author")
	authCmd.AddCommand(authRefreshCmd)
}
