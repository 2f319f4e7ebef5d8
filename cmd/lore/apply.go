package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/lorekeeper/internal/cli"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
)

func applyCmd() *cobra.Command {
	var (
		dryRun bool
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "apply REVIEW.yaml",
		Short: "Create the entities from an edited review document",
		Long: `Load a review document written by 'lore analyze', apply the decisions
it records, and create the classified entities in one batch.

Entries left without a type, or typed "skip", are not created. Lore
categories named in the document are added to the project.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, stop := handler.HandleInterrupts(cmd.Context(), "Nothing was created.")
			defer stop()

			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}

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

			session, err := review.LoadDocument(doc, p.config.LoreCategories, p.sessionOptions(ctx)...)
			if err != nil {
				return err
			}
			engine := p.newEngine(session)
			defer engine.Close()

			for _, c := range doc.AllCategories() {
				var added bool
				if dryRun {
					_, added = session.AddCategory(c)
				} else {
					_, added = engine.AddCategory(c)
				}
				if added {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf("New category %q", c)))
				}
			}

			out := cmd.OutOrStdout()
			preview := session.CommitPreview()
			if len(preview) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Nothing to create."))
				if dryRun {
					return nil
				}
				return engine.Confirm(ctx)
			}

			printPreview(out, preview)
			if taken := existingNames(session); len(taken) > 0 {
				fmt.Fprintln(out, cli.FormatWarning("Already in the project: "+strings.Join(taken, ", ")))
			}
			if dryRun {
				fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d entities would be created.", len(preview))))
				return nil
			}

			if !yes {
				ok, err := cli.NewLineReader(cmd.InOrStdin()).Confirm(ctx, out, fmt.Sprintf("Create %d entities?", len(preview)))
				if err != nil {
					if handler.WasInterrupted() {
						return nil
					}
					return err
				}
				if !ok {
					session.Abandon()
					fmt.Fprintln(out, cli.FormatWarning("Nothing was created."))
					return nil
				}
			}

			if err := engine.Confirm(ctx); err != nil {
				return fmt.Errorf("failed to create entities: %w", err)
			}
			fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Created %d entities", len(session.Created()))))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be created without writing anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "create without asking for confirmation")

	return cmd
}

func printPreview(out io.Writer, entities []model.CommitEntity) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		headerStyle.Render("Name"),
		headerStyle.Render("Type"),
		headerStyle.Render("Category"),
		headerStyle.Render("Aliases"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 20),
		strings.Repeat("-", 9),
		strings.Repeat("-", 10),
		strings.Repeat("-", 20))

	for _, e := range entities {
		category := ""
		if e.LoreCategory != nil {
			category = *e.LoreCategory
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, e.Type.Label(), category, strings.Join(e.Aliases, ", "))
	}
}

// existingNames lists the names about to be created that the project
// already has.
func existingNames(s *review.Session) []string {
	var out []string
	for _, it := range s.Classified() {
		if it.Existing != model.EntityUnclassified {
			out = append(out, it.Name())
		}
	}
	return out
}
