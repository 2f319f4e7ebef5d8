package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Veraticus/lorekeeper/internal/cli"
	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/review"
)

func analyzeCmd() *cobra.Command {
	var (
		source sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a manuscript and write a review document",
		Long: `Run entity analysis without the interactive review and write the
candidates, with their suggested classifications, to a YAML document.

Edit the document by hand and create the entities with 'lore apply'.`,
		Example: `  lore analyze --chapters ./chapters -o review.yaml
  lore analyze --text-file draft.md > review.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if source.textFile == "" && source.chapters == "" {
				return fmt.Errorf("%w: one of --text-file or --chapters is required", common.ErrMissingConfig)
			}

			handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx, stop := handler.HandleInterrupts(cmd.Context(), "No review document was written.")
			defer stop()

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

			session, err := source.newSession(ctx, p, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			engine := p.newEngine(session)
			defer engine.Close()

			if err := engine.Analyze(ctx); err != nil {
				return fmt.Errorf("analysis failed: %w", err)
			}

			doc := session.Document()
			if err := writeDocument(cmd.OutOrStdout(), output, doc); err != nil {
				return err
			}

			counts := session.Counts()
			fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf(
				"Found %d entities (%d characters, %d locations, %d lore, %d undecided)",
				len(doc.Entities), counts.Character, counts.Location, counts.Lore, counts.Unclassified)))
			return nil
		},
	}

	source.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the review document here instead of stdout")

	return cmd
}

// writeDocument writes doc to path, or to stdout when path is empty.
func writeDocument(stdout io.Writer, path string, doc review.Document) error {
	if path == "" {
		return review.WriteDocument(stdout, doc)
	}

	f, err := os.Create(path) //nolint:gosec // user-chosen output path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := review.WriteDocument(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// readDocument loads a review document from path.
func readDocument(path string) (review.Document, error) {
	f, err := os.Open(path) //nolint:gosec // user-chosen input path
	if err != nil {
		return review.Document{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return review.ReadDocument(f)
}
