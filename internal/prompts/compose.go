package prompts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/annolab/curator/pkg/llm"
)

func (r *repo) Instructions(ctx context.Context, stage Stage) (string, error) {
	if _, err := ParseStage(string(stage)); err != nil {
		return "", err
	}

	var text string
	err := r.db.QueryRowContext(
		ctx,
		"SELECT instructions FROM prompts WHERE stage = $1 AND active = true",
		stage,
	).Scan(&text)

	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, sql.ErrNoRows):
		return Template(stage)
	default:
		return "", fmt.Errorf("query active prompt: %w", err)
	}
}

func (r *repo) Annotation(ctx context.Context, guideline, text string) (llm.Prompt, error) {
	template, err := r.Instructions(ctx, StageAnnotate)
	if err != nil {
		return nil, err
	}

	content := strings.NewReplacer(
		placeholderGuideline, guideline,
		placeholderText, text,
	).Replace(template)

	return llm.Prompt{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: content},
	}, nil
}

func (r *repo) Aggregation(ctx context.Context, guideline string, rules []string) (llm.Prompt, error) {
	return r.numbered(ctx, StageAggregate, guideline, rules)
}

func (r *repo) Merge(ctx context.Context, guideline string, descriptions []string) (llm.Prompt, error) {
	return r.numbered(ctx, StageMerge, guideline, descriptions)
}

func (r *repo) numbered(ctx context.Context, stage Stage, guideline string, items []string) (llm.Prompt, error) {
	template, err := r.Instructions(ctx, stage)
	if err != nil {
		return nil, err
	}

	content := strings.NewReplacer(
		placeholderGuideline, guideline,
		placeholderEdgeCases, NumberedList(items),
	).Replace(template)

	return llm.Prompt{
		{Role: llm.RoleUser, Content: content},
	}, nil
}

// NumberedList renders items one per line with 1-based numbering, the
// reference frame the aggregation and merge parsers resolve indices against.
func NumberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return strings.TrimRight(b.String(), "\n")
}
