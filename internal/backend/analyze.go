package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/Veraticus/lorekeeper/internal/common"
	"github.com/Veraticus/lorekeeper/internal/model"
)

type analyzeRequest struct {
	ProjectPath string              `json:"project_path"`
	Text        string              `json:"text,omitempty"`
	Language    string              `json:"language"`
	Texts       []model.ChapterText `json:"texts,omitempty"`
}

// Analyze runs NER over req and returns the bucketed candidates.
func (c *Client) Analyze(ctx context.Context, req model.AnalysisRequest) (model.AnalysisResult, error) {
	body := analyzeRequest{
		ProjectPath: c.projectPath,
		Language:    req.Language,
	}
	if req.IsChapters() {
		body.Texts = req.Texts
	} else {
		if strings.TrimSpace(req.Text) == "" {
			return model.AnalysisResult{}, common.ErrEmptyText
		}
		body.Text = req.Text
	}
	if body.Language == "" {
		body.Language = "en"
	}

	data, err := c.post(ctx, pathAnalyze, body)
	if err != nil {
		return model.AnalysisResult{}, fmt.Errorf("ner analysis failed: %w", err)
	}
	if err := validateAnalyzeResponse(data); err != nil {
		return model.AnalysisResult{}, err
	}

	var resp analyzeResponse
	if err := decode(pathAnalyze, data, &resp); err != nil {
		return model.AnalysisResult{}, err
	}

	return model.AnalysisResult{
		Confident:     toCandidates(resp.Confident),
		LowConfidence: toCandidates(resp.LowConfidence),
	}, nil
}

func toCandidates(in []wireCandidate) []model.Candidate {
	out := make([]model.Candidate, 0, len(in))
	for _, w := range in {
		c := model.Candidate{
			Name:           w.Name,
			Snippet:        w.Snippet,
			SpacyLabel:     w.SpacyLabel,
			Aliases:        w.Aliases,
			ChapterIndices: w.ChapterIndices,
			Frequency:      w.Frequency,
			ChapterCount:   w.ChapterCount,
		}
		if w.SuggestedType != nil {
			// Unknown suggestions are treated as no suggestion.
			if t, ok := model.ParseEntityType(*w.SuggestedType); ok && t != model.EntitySkip {
				c.SuggestedType = t
			}
		}
		if c.Aliases == nil {
			c.Aliases = []string{}
		}
		out = append(out, c)
	}
	return out
}
