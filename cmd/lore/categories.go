package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/lorekeeper/internal/cli"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/service"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage lore categories",
		Long:  `List and add the categories lore entities are filed under.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List lore categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCategoryStore(cmd.Context(), func(store service.CategoryStore) error {
				categories, err := store.LoadCategories(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to get categories: %w", err)
				}
				printCategories(cmd.OutOrStdout(), categories)
				return nil
			})
		},
	}
}

func addCategoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add a lore category",
		Long: `Add a lore category to the project. Names are normalized to lower case;
adding a category that already exists does nothing.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCategoryStore(cmd.Context(), func(store service.CategoryStore) error {
				added, err := addCategory(cmd.Context(), store, strings.Join(args, " "))
				if err != nil {
					return err
				}
				name := review.NormalizeCategory(strings.Join(args, " "))
				if !added {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("Category %q already exists", name)))
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added category %q", name)))
				return nil
			})
		},
	}
}

// addCategory appends raw, normalized, to the stored list. Existing
// entries are saved back untouched. It reports false when the category is
// already present in any spelling.
func addCategory(ctx context.Context, store service.CategoryStore, raw string) (bool, error) {
	name := review.NormalizeCategory(raw)
	if name == "" {
		return false, errors.New("category name cannot be empty")
	}

	categories, err := store.LoadCategories(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get categories: %w", err)
	}
	if slices.ContainsFunc(categories, func(c string) bool { return review.SameCategory(c, name) }) {
		return false, nil
	}
	if err := store.SaveCategories(ctx, append(categories, name)); err != nil {
		return false, err
	}
	return true, nil
}

func withCategoryStore(ctx context.Context, fn func(service.CategoryStore) error) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	p, err := openProject(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := p.Close(); closeErr != nil {
			slog.Error("Failed to close project", "error", closeErr)
		}
	}()
	return fn(p.categories)
}

func printCategories(w io.Writer, categories []string) {
	if len(categories) == 0 {
		fmt.Fprintln(w, cli.InfoStyle.Render("No categories found. Use 'lore categories add' to create one."))
		return
	}
	fmt.Fprintln(w, cli.FormatTitle(fmt.Sprintf("%s Lore categories", cli.ScrollIcon)))
	for i, c := range categories {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, c)
	}
}
