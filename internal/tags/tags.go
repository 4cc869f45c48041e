// Package tags derives a bounded, deterministic keyword set for a document
// from its entities, noun phrases, and token frequencies. This is an
// explainable union of three passes, not a learned ranking.
package tags

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hyperjump/yomitori/internal/models"
)

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`
a an and are as at be but by for if in into is it no not of on or such that
the their then there these they this to was were will with you your from
`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

var (
	nonPhraseChars = regexp.MustCompile(`[^A-Za-z0-9\- ]+`)
	wordToken      = regexp.MustCompile(`[A-Za-z0-9\-]{3,}`)
)

// Options bounds the tag derivation.
type Options struct {
	// FrequencyK is how many top-frequency tokens to take.
	FrequencyK int
	// Limit caps the final tag set.
	Limit int
}

// DefaultOptions returns the standard bounds.
func DefaultOptions() Options {
	return Options{FrequencyK: 15, Limit: 50}
}

// Derive builds the tag set for a document: entity surfaces, then cleaned
// noun phrases, then top-frequency tokens, deduplicated case-sensitively in
// first-seen order and truncated to opts.Limit. nounPhrases may be nil
// (degraded mode when the annotation collaborator failed partway).
func Derive(text string, entities []models.Entity, nounPhrases []string, opts Options) []string {
	if opts.FrequencyK <= 0 {
		opts.FrequencyK = DefaultOptions().FrequencyK
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0)
	add := func(tag string) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return
		}
		if _, dup := seen[tag]; dup {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, e := range entities {
		add(e.Text)
	}
	for _, phrase := range cleanNounPhrases(nounPhrases) {
		add(phrase)
	}
	for _, word := range topFrequent(text, opts.FrequencyK) {
		add(word)
	}

	if len(tags) > opts.Limit {
		tags = tags[:opts.Limit]
	}
	return tags
}

// cleanNounPhrases strips non-alphanumeric-and-space characters, trims, and
// drops stopwords and phrases shorter than 3 characters after cleaning.
func cleanNounPhrases(phrases []string) []string {
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		cleaned := strings.TrimSpace(nonPhraseChars.ReplaceAllString(p, ""))
		if len(cleaned) < 3 {
			continue
		}
		if _, stop := stopwords[strings.ToLower(cleaned)]; stop {
			continue
		}
		out = append(out, cleaned)
	}
	return out
}

// topFrequent returns the k most frequent lowercase tokens of length >= 3,
// stopwords removed, ties broken by first occurrence order.
func topFrequent(text string, k int) []string {
	type wordCount struct {
		word  string
		count int
		first int
	}
	counts := make(map[string]*wordCount)
	order := make([]*wordCount, 0)
	for i, match := range wordToken.FindAllString(text, -1) {
		word := strings.ToLower(match)
		if _, stop := stopwords[word]; stop {
			continue
		}
		wc, ok := counts[word]
		if !ok {
			wc = &wordCount{word: word, first: i}
			counts[word] = wc
			order = append(order, wc)
		}
		wc.count++
	}
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].first < order[j].first
	})
	if k > len(order) {
		k = len(order)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = order[i].word
	}
	return out
}
