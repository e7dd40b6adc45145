package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var userEmail string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Users and their separate data",
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users, marking the current one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		current := a.Users.Current()
		for _, u := range a.Users.List() {
			mark := " "
			if u.ID == current.ID {
				mark = "*"
			}
			fmt.Printf("%s %-16s%s", mark, u.ID, u.Name)
			if u.Email != "" {
				fmt.Printf(" <%s>", u.Email)
			}
			fmt.Println()
		}
		return nil
	},
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a user and make it current",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		err := a.Do(func() error {
			u, err := a.Users.Add(args[0], userEmail)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s (%s).\n", u.Name, u.ID)
			return nil
		})
		if err != nil {
			exitUsage("%v", err)
		}
		return nil
	},
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a user; its data stays in storage",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		err := a.Do(func() error {
			current, err := a.Users.Remove(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Removed %s. Current user: %s.\n", args[0], current.ID)
			return nil
		})
		if err != nil {
			exitStorage(err)
		}
		return nil
	},
}

var userSwitchCmd = &cobra.Command{
	Use:   "switch <id>",
	Short: "Make another user current for every view",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := openApp(cmd.Context())
		defer a.Close()

		if err := a.SwitchUser(args[0]); err != nil {
			exitUsage("%v", err)
		}
		fmt.Printf("Current user: %s.\n", a.User().Name)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "E-mail address")
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userRemoveCmd)
	userCmd.AddCommand(userSwitchCmd)
}
