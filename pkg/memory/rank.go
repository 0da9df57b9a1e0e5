package memory

import (
	"errors"
	"math"
	"sort"
)

// DefaultRankLimit caps how many memories a query returns.
const DefaultRankLimit = 10

var (
	// ErrDimensionMismatch is returned when two vectors of different
	// dimensionality are compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrZeroVector is returned when a compared vector has zero norm.
	// Cosine similarity is undefined for it, so it's an error rather
	// than a silent zero score.
	ErrZeroVector = errors.New("embedding has zero norm")
)

// Cosine returns the cosine similarity of two equal-length vectors,
// in [-1, 1].
func Cosine(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, ErrZeroVector
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Rank scores candidates by cosine similarity to query and returns the top
// records in descending score order, at most limit of them. Candidates
// without an embedding are excluded. Ties keep the candidates' original
// relative order, so identical inputs always rank identically. Candidates
// are not mutated.
func Rank(query []float64, candidates []Record, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultRankLimit
	}

	type scored struct {
		rec   Record
		score float64
	}

	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if len(c.Embedding) == 0 {
			continue
		}
		score, err := Cosine(query, c.Embedding)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, scored{rec: c, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]Record, len(ranked))
	for i, s := range ranked {
		out[i] = s.rec
	}
	return out, nil
}
