package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/meucofre/cofre/internal/cli"
	"github.com/meucofre/cofre/internal/model"
	"github.com/spf13/cobra"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage income and expense categories",
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())
	cmd.AddCommand(updateCategoryCmd())
	cmd.AddCommand(deleteCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories in the active data context",
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

			categories, _, err := app.books.LoadBooks(ctx, sess.Caller.ID, sess.Active.DataContextID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				cli.BoldStyle.Render("Name"),
				cli.BoldStyle.Render("Kind"),
				cli.BoldStyle.Render("Budget"),
				cli.BoldStyle.Render("ID"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 20), strings.Repeat("-", 8), strings.Repeat("-", 10), strings.Repeat("-", 36))

			for i := range categories {
				cat := &categories[i]
				budget := cli.SubtleStyle.Render("-")
				if cat.Budget > 0 {
					budget = cat.Budget.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.Name, cat.Kind, budget, cat.ID)
			}
			return nil
		},
	}
}

func addCategoryCmd() *cobra.Command {
	var kind, budget string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
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

			amount, err := parseBudget(budget)
			if err != nil {
				return err
			}

			category, err := app.books.AddCategory(ctx, sess.Caller.ID, sess.Active.DataContextID,
				args[0], model.CategoryKind(kind), amount)
			if err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Category %q created.", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "expense", "category kind (income, expense, both)")
	cmd.Flags().StringVar(&budget, "budget", "", "monthly budget, e.g. 450.00 (expense categories)")

	return cmd
}

func updateCategoryCmd() *cobra.Command {
	var name, kind, budget string

	cmd := &cobra.Command{
		Use:   "update <category-id>",
		Short: "Rename a category or adjust its budget",
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

			categories, _, err := app.books.LoadBooks(ctx, sess.Caller.ID, sess.Active.DataContextID)
			if err != nil {
				return err
			}

			var category *model.Category
			for i := range categories {
				if categories[i].ID == args[0] {
					category = &categories[i]
					break
				}
			}
			if category == nil {
				return fmt.Errorf("category %s not found", args[0])
			}

			if name != "" {
				category.Name = name
			}
			if kind != "" {
				category.Kind = model.CategoryKind(kind)
			}
			if budget != "" {
				amount, err := parseBudget(budget)
				if err != nil {
					return err
				}
				category.Budget = amount
			}

			if err := app.books.UpdateCategory(ctx, sess.Caller.ID, category); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Category %q updated.", category.Name)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&kind, "kind", "", "new kind (income, expense, both)")
	cmd.Flags().StringVar(&budget, "budget", "", "new monthly budget")

	return cmd
}

func deleteCategoryCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <category-id>",
		Short: "Delete an unused category",
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

			if !force {
				prompter := cli.NewPrompter(os.Stdin, os.Stdout)
				ok, err := prompter.Confirm(ctx, "Delete this category?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println(cli.SubtleStyle.Render("Aborted."))
					return nil
				}
			}

			if err := app.books.DeleteCategory(ctx, sess.Caller.ID, sess.Active.DataContextID, args[0]); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess("Category deleted."))
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation")

	return cmd
}

func parseBudget(s string) (model.Cents, error) {
	if s == "" {
		return 0, nil
	}
	amount, err := model.ParseCents(s)
	if err != nil {
		return 0, fmt.Errorf("invalid budget: %w", err)
	}
	return amount, nil
}
