package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/review"
)

// Reviewer walks a review session line by line for terminals where the
// full-screen UI is unavailable.
type Reviewer struct {
	engine *review.Engine
	reader *LineReader
	writer io.Writer
	bar    *progressbar.ProgressBar
}

// NewReviewer creates a line-mode reviewer.
func NewReviewer(engine *review.Engine, in io.Reader, out io.Writer) *Reviewer {
	return &Reviewer{
		engine: engine,
		reader: NewLineReader(in),
		writer: out,
	}
}

// Run asks about each candidate once, in review order, then offers to
// create the classified entities. The session must be in the review phase.
// Quitting abandons the session and returns nil.
func (r *Reviewer) Run(ctx context.Context) error {
	s := r.engine.Session()
	if s.Phase() != review.PhaseReview {
		return common.ErrUnknownPhase
	}
	s.SetViewMode(review.ViewFocus)

	if s.Len() > 0 {
		r.bar = NewProgressBar(r.writer, s.Len(), "Reviewing entities...")
	}

	for i := 0; i < s.Len(); i++ {
		s.SetFocus(i)
		quit, err := r.reviewOne(ctx)
		if err != nil {
			return err
		}
		if quit {
			s.Abandon()
			r.printf("%s\n", FormatWarning("Review abandoned. Nothing was created."))
			return nil
		}
		StepProgress(r.bar)
	}

	return r.finish(ctx)
}

// reviewOne prompts for the focused candidate until it gets a decision.
func (r *Reviewer) reviewOne(ctx context.Context) (bool, error) {
	s := r.engine.Session()
	id, _ := s.FocusID()

	for {
		layout, _ := s.FocusView()
		r.printf("\n%s\n", RenderBox(fmt.Sprintf("Entity %d of %d", layout.Index+1, layout.Total), describe(layout.Item)))
		r.printf("  [1] Character  [2] Location  [3] Lore  [4/x] Skip  [e] Rename  [enter] Keep  [q] Quit\n")

		choice, err := r.reader.Ask(ctx, r.writer, "Choice")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(choice) {
		case "":
			if layout.Item.Edit.Type == model.EntityLore {
				if err := r.chooseCategory(ctx, id); err != nil {
					return false, err
				}
			}
			return false, r.chooseAliases(ctx, id)
		case "1":
			s.SetType(id, model.EntityCharacter)
			return false, r.chooseAliases(ctx, id)
		case "2":
			s.SetType(id, model.EntityLocation)
			return false, r.chooseAliases(ctx, id)
		case "3":
			s.SetType(id, model.EntityLore)
			if err := r.chooseCategory(ctx, id); err != nil {
				return false, err
			}
			return false, r.chooseAliases(ctx, id)
		case "4", "x":
			s.SetType(id, model.EntitySkip)
			return false, nil
		case "e":
			if err := r.rename(ctx, id); err != nil {
				return false, err
			}
		case "q":
			return true, nil
		default:
			r.printf("%s\n", FormatError("Invalid choice. Please try again."))
		}
	}
}

func (r *Reviewer) rename(ctx context.Context, id string) error {
	s := r.engine.Session()
	if !s.BeginNameEdit(id) {
		return nil
	}
	name, err := r.reader.Ask(ctx, r.writer, fmt.Sprintf("New name for %q", s.DisplayName(id)))
	if err != nil {
		s.CancelNameEdit()
		return err
	}
	s.EndNameEdit(name, true)
	return nil
}

// chooseCategory picks a lore category by number, or adds one by name.
func (r *Reviewer) chooseCategory(ctx context.Context, id string) error {
	s := r.engine.Session()
	categories := s.Categories()
	for i, c := range categories {
		r.printf("  [%d] %s\n", i+1, c)
	}

	answer, err := r.reader.Ask(ctx, r.writer, "Category (number or new name, enter keeps current)")
	if err != nil {
		return err
	}
	if answer == "" {
		return nil
	}
	if n, convErr := strconv.Atoi(answer); convErr == nil {
		if n >= 1 && n <= len(categories) {
			s.SetLoreCategory(id, categories[n-1])
			return nil
		}
		r.printf("%s\n", FormatWarning("No such category; keeping the current one."))
		return nil
	}

	name, added := r.engine.AddCategory(answer)
	if name == "" {
		return nil
	}
	if added {
		r.printf("%s\n", FormatSuccess(fmt.Sprintf("Added category %q", name)))
	}
	s.SetLoreCategory(id, name)
	return nil
}

// chooseAliases lets the author reject aliases by number.
func (r *Reviewer) chooseAliases(ctx context.Context, id string) error {
	s := r.engine.Session()
	c, ok := s.Candidate(id)
	edit, _ := s.Edit(id)
	if !ok || len(c.Aliases) == 0 || !edit.Type.IsClassified() {
		return nil
	}

	for i, alias := range c.Aliases {
		r.printf("  [%d] %s\n", i+1, alias)
	}
	answer, err := r.reader.Ask(ctx, r.writer, "Aliases to drop (e.g. 1,3; enter keeps all)")
	if err != nil {
		return err
	}

	for _, field := range strings.FieldsFunc(answer, func(ch rune) bool { return ch == ',' || ch == ' ' }) {
		n, convErr := strconv.Atoi(field)
		if convErr != nil || n < 1 || n > len(c.Aliases) {
			slog.Debug("ignoring alias selection", "value", field)
			continue
		}
		if edit.AliasesAccepted[n-1] {
			s.ToggleAlias(id, n-1)
			edit.AliasesAccepted[n-1] = false
		}
	}
	return nil
}

func (r *Reviewer) finish(ctx context.Context) error {
	s := r.engine.Session()
	preview := s.CommitPreview()
	counts := s.Counts()

	r.printf("\n%s\n", RenderBox("Review Summary", summarize(counts)))
	if len(preview) == 0 {
		r.printf("%s\n", FormatInfo("Nothing to create."))
		return r.engine.Confirm(ctx)
	}

	ok, err := r.reader.Confirm(ctx, r.writer, fmt.Sprintf("Create %d entities?", len(preview)))
	if err != nil {
		return err
	}
	if !ok {
		s.Abandon()
		r.printf("%s\n", FormatWarning("Nothing was created."))
		return nil
	}

	if err := r.engine.Confirm(ctx); err != nil {
		return err
	}
	r.printf("%s\n", FormatSuccess(fmt.Sprintf("Created %d entities", len(s.Created()))))
	return nil
}

func (r *Reviewer) printf(format string, args ...any) {
	if _, err := fmt.Fprintf(r.writer, format, args...); err != nil {
		slog.Warn("Failed to write to terminal", "error", err)
	}
}

func describe(it review.Item) string {
	lines := []string{BoldStyle.Render(it.Name())}
	if it.Edit.NameOverride != "" {
		lines = append(lines, SubtleStyle.Render("detected as "+it.Candidate.Name))
	}

	current := FormatType(it.Edit.Type)
	if it.Edit.Type == model.EntityLore {
		current += " (" + it.Edit.LoreCategory + ")"
	}
	lines = append(lines, "Current: "+current)

	if it.Candidate.Bucket == model.BucketLowConfidence {
		lines = append(lines, WarningStyle.Render("low confidence"))
	}
	if it.Existing != model.EntityUnclassified {
		lines = append(lines, WarningStyle.Render("already in project as "+strings.ToLower(it.Existing.Label())))
	}
	if it.Candidate.Snippet != "" {
		lines = append(lines, SubtleStyle.Render(`"`+it.Candidate.Snippet+`"`))
	}
	if len(it.Candidate.Aliases) > 0 {
		lines = append(lines, "Aliases: "+strings.Join(it.Candidate.Aliases, ", "))
	}
	if it.Candidate.Frequency > 0 {
		lines = append(lines, fmt.Sprintf("Mentions: %d in %d chapters", it.Candidate.Frequency, it.Candidate.ChapterCount))
	}
	return strings.Join(lines, "\n")
}

func summarize(c model.Counts) string {
	return fmt.Sprintf("Characters: %d\nLocations:  %d\nLore:       %d\nSkipped:    %d\nUndecided:  %d",
		c.Character, c.Location, c.Lore, c.Skip, c.Unclassified)
}
