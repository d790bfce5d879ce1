package match

import (
	"sort"
)

// MinSimilarity is the score below which a candidate is not suggested.
const MinSimilarity = 0.5

type scored struct {
	name  string
	score float64
	order int
}

// Suggest returns up to limit candidates most similar to name, best first.
// Ties keep the candidates' original order. Candidates scoring below
// MinSimilarity are dropped.
func Suggest(name string, candidates []string, limit int) []string {
	if limit <= 0 {
		return nil
	}

	ranked := make([]scored, 0, len(candidates))

	for i, c := range candidates {
		if c == "" {
			continue
		}

		s := Similarity(name, c)
		if s < MinSimilarity {
			continue
		}

		ranked = append(ranked, scored{name: c, score: s, order: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}

		return ranked[i].order < ranked[j].order
	})

	out := make([]string, 0, min(limit, len(ranked)))
	for _, r := range ranked {
		if len(out) == limit {
			break
		}

		out = append(out, r.name)
	}

	return out
}
