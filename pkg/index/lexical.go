package index

import (
	"sort"
	"strings"
	"unicode"
)

// phraseBonus rewards documents containing the query verbatim; with token
// overlap normalized by query length, an exact phrase hit scores 1.0.
const phraseBonus = 2.0

// searchLexical scores each document by token overlap against the query:
// case-insensitive, whitespace/punctuation tokenization, an exact-phrase
// bonus, normalized into (0, 1]. Ties break by insertion order and
// zero-overlap documents are excluded rather than returned with zero score.
func (s *Store) searchLexical(side *sideFile, docs []document, query string, k int) []Result {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}
	queryLower := strings.ToLower(query)
	denominator := float64(len(queryTokens)) + phraseBonus

	type scored struct {
		id    string
		score float64
	}

	var hits []scored
	for _, doc := range docs {
		docLower := strings.ToLower(doc.EmbeddingText)
		docTokens := tokenSet(docLower)

		overlap := 0
		for _, token := range queryTokens {
			if docTokens[token] {
				overlap++
			}
		}
		if overlap == 0 {
			continue
		}

		score := float64(overlap)
		if strings.Contains(docLower, queryLower) {
			score += phraseBonus
		}

		hits = append(hits, scored{id: doc.SkillID, score: score / denominator})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, s.toResult(side, hit.id, hit.score))
	}
	return results
}

func (s *Store) toResult(side *sideFile, skillID string, score float64) Result {
	snap := side.Skills[skillID]
	name := snap.Name
	if name == "" {
		name = skillID
	}
	return Result{
		SkillID:      skillID,
		Name:         name,
		Purpose:      snap.Purpose,
		Path:         snap.Path,
		Score:        score,
		FileTypes:    snap.FileTypes,
		Capabilities: snap.Capabilities,
	}
}

// tokenize lowercases and splits on any non-letter, non-digit rune,
// returning distinct tokens in first-seen order.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if !seen[field] {
			seen[field] = true
			out = append(out, field)
		}
	}
	return out
}

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, token := range tokenize(text) {
		set[token] = true
	}
	return set
}
