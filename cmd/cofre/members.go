package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/meucofre/cofre/internal/cli"
	"github.com/spf13/cobra"
)

func membersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage household member profiles",
		Long:  `Create and list member profiles under your account. Members have no credentials of their own; switch into them with 'cofre switch'.`,
	}

	cmd.AddCommand(listMembersCmd())
	cmd.AddCommand(addMemberCmd())

	return cmd
}

func listMembersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List member profiles",
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

			if len(sess.Caller.Members) == 0 {
				fmt.Println(cli.InfoStyle.Render("No members yet. Use 'cofre members add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("ID"),
				cli.BoldStyle.Render("Data"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 20), strings.Repeat("-", 36), strings.Repeat("-", 8))

			for i := range sess.Caller.Members {
				member := &sess.Caller.Members[i]
				sharing := "isolated"
				if member.SharesDataWith(sess.Caller) {
					sharing = "shared"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", member.Name, member.ID, sharing)
			}
			return nil
		},
	}
}

func addMemberCmd() *cobra.Command {
	var email string
	var shareData bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a member profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			owner, err := app.sessions.AddMember(ctx, sess.Caller.ID, sess.Caller, args[0], email, shareData)
			if err != nil {
				return err
			}

			mode := "an isolated data context"
			if shareData {
				mode = "your shared data context"
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Member %q added with %s (%d members total).", args[0], mode, len(owner.Members))))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "optional contact email")
	cmd.Flags().BoolVar(&shareData, "share-data", false, "share your transactions and categories with this member")

	return cmd
}

func switchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <account-id>",
		Short: "Switch the active account",
		Long:  `Switch into a member profile you manage, or back into your own account, without re-authenticating.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			account, err := app.sessions.SwitchAccount(ctx, sess.Caller.ID, args[0])
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Now acting as %s.", account.Name)))
			return nil
		},
	}
}
