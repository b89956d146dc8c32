package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davehub/parc-manager/internal/controller"
	"github.com/davehub/parc-manager/internal/routeguard"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage application users (admin)",
	}
	cmd.AddCommand(usersListCmd())
	cmd.AddCommand(usersCreateCmd())
	cmd.AddCommand(usersUpdateCmd())
	cmd.AddCommand(usersDeleteCmd())
	return cmd
}

func usersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}

			users, err := current.repo.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("Aucun utilisateur enregistré.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUTILISATEUR\tEMAIL\tNOM\tRÔLE")
			for _, u := range users {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
					u.ID, u.Username, u.Email, u.FirstName, u.LastName, u.Role)
			}
			return w.Flush()
		},
	}
}

func userFlags(cmd *cobra.Command, form *controller.UserForm) {
	cmd.Flags().StringVar(&form.Username, "username", form.Username, "username")
	cmd.Flags().StringVar(&form.Email, "email", form.Email, "email address")
	cmd.Flags().StringVar(&form.FirstName, "first-name", form.FirstName, "first name")
	cmd.Flags().StringVar(&form.LastName, "last-name", form.LastName, "last name")
	cmd.Flags().StringVar(&form.Role, "role", form.Role, "role (admin or user)")
	cmd.Flags().StringVar(&form.Password, "password", form.Password, "password")
}

func usersCreateCmd() *cobra.Command {
	form := controller.NewUserForm(nil)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}

			input, err := form.Submit()
			if err != nil {
				return err
			}
			created, err := current.repo.CreateUser(cmd.Context(), *input)
			if err != nil {
				return err
			}
			color.Green("Utilisateur créé: %s (%s)", created.Username, created.ID)
			return nil
		},
	}

	userFlags(cmd, form)
	return cmd
}

func usersUpdateCmd() *cobra.Command {
	form := &controller.UserForm{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}

			users, err := current.repo.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			var base *controller.UserForm
			for i := range users {
				if users[i].ID == args[0] {
					base = controller.NewUserForm(&users[i])
					break
				}
			}
			if base == nil {
				return fmt.Errorf("user %s not found", args[0])
			}

			set := func(name string, dst *string, src string) {
				if cmd.Flags().Changed(name) {
					*dst = src
				}
			}
			set("username", &base.Username, form.Username)
			set("email", &base.Email, form.Email)
			set("first-name", &base.FirstName, form.FirstName)
			set("last-name", &base.LastName, form.LastName)
			set("role", &base.Role, form.Role)
			set("password", &base.Password, form.Password)

			input, err := base.Submit()
			if err != nil {
				return err
			}
			updated, err := current.repo.UpdateUser(cmd.Context(), args[0], *input)
			if err != nil {
				return err
			}
			color.Green("Utilisateur mis à jour: %s", updated.Username)
			return nil
		},
	}

	userFlags(cmd, form)
	return cmd
}

func usersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requireAccess(current, routeguard.AdminOnly); err != nil {
				return err
			}
			if err := current.repo.DeleteUser(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("Utilisateur supprimé.")
			return nil
		},
	}
}
