package cmd

import (
	"fmt"

	"github.com/ethan2004g/interactive-web-novels/pkg/data"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := rt.requireUser(cmd.Context())
		if err != nil {
			return err
		}
		printProfile(u)
		return nil
	},
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Change your email, bio or picture",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := rt.requireUser(cmd.Context()); err != nil {
			return err
		}
		var up data.UserUpdate
		f := cmd.Flags()
		if f.Changed("email") {
			v, _ := f.GetString("email")
			up.Email = &v
		}
		if f.Changed("bio") {
			v, _ := f.GetString("bio")
			up.Bio = &v
		}
		if f.Changed("picture") {
			v, _ := f.GetString("picture")
			up.ProfilePictureURL = &v
		}
		if up == (data.UserUpdate{}) {
			return fmt.Errorf("nothing to update, pass --email, --bio or --picture")
		}

		u, err := rt.services.Users.UpdateProfile(cmd.Context(), up)
		if err != nil {
			return fmt.Errorf("update profile: %w", err)
		}
		rt.session.UpdateUser(u)
		fmt.Println("✅ Profile updated.")
		printProfile(u)
		return nil
	},
}

func printProfile(u *data.User) {
	fmt.Printf("%-9s %s\n", "username", u.Username)
	fmt.Printf("%-9s %s\n", "email", u.Email)
	fmt.Printf("%-9s %s\n", "role", u.Role)
	fmt.Printf("%-9s %s\n", "bio", orDash(u.Bio))
	fmt.Printf("%-9s %s\n", "picture", orDash(u.ProfilePictureURL))
	if t := data.ParseTime(u.CreatedAt); !t.IsZero() {
		fmt.Printf("%-9s %s\n", "joined", t.Format("January 2, 2006"))
	}
}

func init() {
	profileUpdateCmd.Flags().String("email", "", "New email")
	profileUpdateCmd.Flags().String("bio", "", "New bio")
	profileUpdateCmd.Flags().String("picture", "", "New profile picture URL")
	profileCmd.AddCommand(profileUpdateCmd)
}
