package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
	"github.com/Veraticus/lorekeeper/internal/service"
)

// NormalizeText converts text to NFC with LF line endings and no trailing
// whitespace on lines, so the same name always reaches the analyzer as
// the same byte sequence.
func NormalizeText(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = norm.NFC.String(s)

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ReadTextFile reads a plain text or markdown manuscript.
func ReadTextFile(path string) (string, error) {
	if !hasExtension(path, Extensions) {
		return "", fmt.Errorf("unsupported file type %q: only %s can be read locally", path, strings.Join(Extensions, ", "))
	}
	data, err := os.ReadFile(path) //nolint:gosec // user-selected file
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := NormalizeText(string(data))
	if text == "" {
		return "", common.ErrEmptyText
	}
	return text, nil
}

// ReadManuscript reads a manuscript file of any supported format. Plain
// text and markdown are read locally; anything else goes through the
// backend's split preview when previewer is set. It also returns how many
// sections the text was assembled from.
func ReadManuscript(ctx context.Context, path string, previewer service.SplitPreviewer) (string, int, error) {
	text, err := ReadTextFile(path)
	if err == nil {
		return text, 1, nil
	}
	if previewer == nil {
		return "", 0, err
	}

	splits, err := previewer.SplitPreview(ctx, path)
	if err != nil {
		slog.Warn("split preview failed", "path", path, "error", err)
		return "", 0, err
	}
	text = NormalizeText(JoinSplits(splits))
	if text == "" {
		return "", 0, fmt.Errorf("%s: %w", path, common.ErrEmptyText)
	}
	return text, len(splits), nil
}

// JoinSplits concatenates split contents with a blank line between them.
func JoinSplits(splits []model.Split) string {
	parts := make([]string, 0, len(splits))
	for _, s := range splits {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n\n")
}
