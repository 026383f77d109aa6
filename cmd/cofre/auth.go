package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/meucofre/cofre/internal/cli"
	"github.com/meucofre/cofre/internal/common"
	"github.com/spf13/cobra"
)

func registerCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			prompter := cli.NewPrompter(os.Stdin, os.Stdout)
			if name == "" {
				if name, err = prompter.Ask(ctx, "Name"); err != nil {
					return err
				}
			}
			if email == "" {
				if email, err = prompter.Ask(ctx, "Email"); err != nil {
					return err
				}
			}
			password, err := prompter.Ask(ctx, "Password")
			if err != nil {
				return err
			}

			account, err := app.sessions.Register(ctx, name, email, password)
			if errors.Is(err, common.ErrConfirmationRequired) {
				fmt.Println(cli.FormatInfo("Registration received. Run 'cofre confirm " + email + "', then 'cofre login'."))
				return nil
			}
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Account created for %s. Run 'cofre login' to start.", account.Email)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

func loginCmd() *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and cache a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			prompter := cli.NewPrompter(os.Stdin, os.Stdout)
			if email == "" {
				if email, err = prompter.Ask(ctx, "Email"); err != nil {
					return err
				}
			}
			password, err := prompter.Ask(ctx, "Password")
			if err != nil {
				return err
			}

			result, err := app.sessions.Login(ctx, email, password)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Welcome back, %s!", result.Account.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "email address")

	return cmd
}

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <email>",
		Short: "Confirm a pending registration",
		Long:  "Marks a registration created under auth.require_confirmation as confirmed so the account can log in. Runs against the local database; no email is sent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.sessions.Confirm(ctx, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s confirmed. They can log in now.", args[0])))
			return nil
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Terminate the cached session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			token := ""
			if cached, err := app.cache.LoadSession(); err == nil {
				token = cached.Token
			}

			if err := app.sessions.Logout(ctx, token); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Logged out."))
			return nil
		},
	}
}

func whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the active account and data context",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			app, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			sess, err := app.currentLogin(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("%s %s <%s>\n", cli.BoldStyle.Render("Account:"), sess.Active.Name, sess.Active.Email)
			fmt.Printf("%s %s\n", cli.BoldStyle.Render("Context:"), sess.Active.DataContextID)
			if sess.Active.IsMember() {
				fmt.Println(cli.SubtleStyle.Render("Member profile managed by " + sess.Caller.Name))
			}
			return nil
		},
	}
}
