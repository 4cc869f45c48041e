package mock

import (
	"context"
	"strings"
	"unicode"

	"github.com/hyperjump/yomitori/internal/models"
)

// Annotator is a test double for ai.Annotator. By default it tags capitalized
// words as MISC entities, in document order, and returns no noun phrases.
type Annotator struct {
	// AnnotateFunc overrides Annotate when set.
	AnnotateFunc func(ctx context.Context, text string) ([]models.Entity, error)
	// NounPhrasesFunc overrides NounPhrases when set.
	NounPhrasesFunc func(ctx context.Context, text string) ([]string, error)
}

// NewAnnotator returns an annotator with the default heuristic behavior.
func NewAnnotator() *Annotator {
	return &Annotator{}
}

// Annotate returns entities for text.
func (a *Annotator) Annotate(ctx context.Context, text string) ([]models.Entity, error) {
	if a.AnnotateFunc != nil {
		return a.AnnotateFunc(ctx, text)
	}
	var entities []models.Entity
	for _, field := range strings.Fields(text) {
		word := strings.TrimFunc(field, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if word == "" {
			continue
		}
		if r := []rune(word)[0]; unicode.IsUpper(r) {
			entities = append(entities, models.Entity{Text: word, Label: "MISC"})
		}
	}
	return entities, nil
}

// NounPhrases returns noun phrases for text.
func (a *Annotator) NounPhrases(ctx context.Context, text string) ([]string, error) {
	if a.NounPhrasesFunc != nil {
		return a.NounPhrasesFunc(ctx, text)
	}
	return nil, nil
}
