package index

import (
	"context"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// searchDense embeds the raw query string unmodified and ranks documents by
// cosine similarity against the persisted vectors.
func (s *Store) searchDense(ctx context.Context, side *sideFile, docs []document, query string, k int) ([]Result, error) {
	vectors, err := s.loadVectors(len(docs))
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dense index")
	}

	embedded, err := s.provider.Embed(ctx, []string{query})
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed query")
	}
	queryVec := embedded[0]

	type scored struct {
		id    string
		score float64
	}

	hits := make([]scored, 0, len(docs))
	for i, doc := range docs {
		hits = append(hits, scored{id: doc.SkillID, score: cosine(queryVec, vectors[i])})
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
	return results, nil
}

// cosine computes cosine similarity between two vectors. Mismatched lengths
// score zero rather than erroring; a stale vectors file should rank nothing
// highly, not break search.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}

	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0
	}
	return dot / den
}
