package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/lorekeeper/internal/cli"
	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/ingest"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
	"github.com/Veraticus/lorekeeper/internal/tui"
	"github.com/Veraticus/lorekeeper/internal/tui/themes"
)

type sourceFlags struct {
	textFile string
	chapters string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.textFile, "text-file", "", "manuscript file to analyze (.txt, .md, or anything the backend can split)")
	cmd.Flags().StringVar(&f.chapters, "chapters", "", "directory of chapter files to analyze as a whole")
	cmd.MarkFlagsMutuallyExclusive("text-file", "chapters")
}

// newSession builds the session for the selected source. Chapters start
// an auto session; a text file is submitted immediately; no source leaves
// the session waiting for input.
func (f *sourceFlags) newSession(ctx context.Context, p *project, progress io.Writer) (*review.Session, error) {
	categories := p.config.LoreCategories
	opts := p.sessionOptions(ctx)

	switch {
	case f.chapters != "":
		chapters, err := loadChapters(ctx, f.chapters, progress)
		if err != nil {
			return nil, err
		}
		return review.NewChapterSession(chapters, categories, p.language(), opts...), nil

	case f.textFile != "":
		text, sections, err := ingest.ReadManuscript(ctx, f.textFile, p.client)
		if err != nil {
			return nil, err
		}
		slog.Debug("Read manuscript", "path", f.textFile, "sections", sections)
		session := review.NewSession(categories, p.language(), opts...)
		if _, ok := session.Submit(text); !ok {
			return nil, common.ErrEmptyText
		}
		return session, nil

	default:
		return review.NewSession(categories, p.language(), opts...), nil
	}
}

func loadChapters(ctx context.Context, dir string, progress io.Writer) ([]model.ChapterText, error) {
	files, err := ingest.ChapterFiles(dir)
	if err != nil {
		return nil, err
	}

	var opts []ingest.Option
	if progress != nil && len(files) > 0 {
		bar := cli.NewProgressBar(progress, len(files), "Reading chapters...")
		opts = append(opts, ingest.WithProgress(func(_, _ int) { cli.StepProgress(bar) }))
	}
	return ingest.LoadChapters(ctx, dir, opts...)
}

func extractCmd() *cobra.Command {
	var (
		source    sourceFlags
		plain     bool
		noAltScrn bool
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Review detected entities interactively",
		Long: `Analyze manuscript text and review the detected names before they are
created in your project.

Without --text-file or --chapters the review opens on an input box where you
can paste text or press ctrl+o to pick a file.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if plain && source.textFile == "" && source.chapters == "" {
				return fmt.Errorf("%w: --plain needs --text-file or --chapters", common.ErrMissingConfig)
			}
			if plain {
				return runPlain(cmd, source)
			}
			return runTUI(cmd, source, !noAltScrn)
		},
	}

	source.register(cmd)
	cmd.Flags().BoolVar(&plain, "plain", false, "line-by-line prompts instead of the full-screen UI")
	cmd.Flags().BoolVar(&noAltScrn, "no-alt-screen", false, "draw the UI inline instead of on the alternate screen")

	return cmd
}

func runTUI(cmd *cobra.Command, source sourceFlags, altScreen bool) error {
	ctx := cmd.Context()
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

	// Logs would draw over the UI; send them to the log file instead.
	logFile, err := common.OpenLogFile(settings.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = logFile.Close() }()
	if err := setupLogging(logFile); err != nil {
		return err
	}
	defer func() { _ = setupLogging(os.Stderr) }()

	startDir := filepath.Dir(source.textFile)
	if source.textFile == "" {
		startDir = settings.ProjectPath
	}

	result, err := tui.Run(ctx, p.newEngine(session),
		tui.WithTheme(themes.GetTheme(settings.Theme)),
		tui.WithPreviewer(p.client),
		tui.WithStartDir(startDir),
		tui.WithAltScreen(altScreen),
	)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	printResult(cmd.OutOrStdout(), result)
	return nil
}

func runPlain(cmd *cobra.Command, source sourceFlags) error {
	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := handler.HandleInterrupts(cmd.Context(), "Nothing was created.")
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

	err = cli.NewReviewer(engine, cmd.InOrStdin(), cmd.OutOrStdout()).Run(ctx)
	if handler.WasInterrupted() {
		return nil
	}
	return err
}

func printResult(w io.Writer, result tui.Result) {
	var msg string
	switch {
	case result.Abandoned:
		msg = cli.FormatWarning("Review abandoned. Nothing was created.")
	case len(result.Created) == 0:
		msg = cli.FormatInfo("Nothing was created.")
	default:
		msg = cli.FormatSuccess(fmt.Sprintf("Created %d entities in %s", len(result.Created), result.Stats.Duration.Round(time.Second)))
	}
	if _, err := fmt.Fprintln(w, msg); err != nil {
		slog.Warn("Failed to write result", "error", err)
	}
}
