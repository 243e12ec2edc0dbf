package vector

import (
	"slices"

	"github.com/poiesic/evidex/core"
)

// scanSearch is the fallback similarity search: a direct scan over the
// normalized vectors persisted in the store. Used only when no in-memory
// structure is loaded.
func (i *Index) scanSearch(query []float32, topK int) ([]core.SimilarityMatch, error) {
	if topK <= 0 {
		return nil, nil
	}

	ids, vecs, err := i.store.NormalizedAll()
	if err != nil {
		return nil, err
	}

	matches := make([]core.SimilarityMatch, 0, len(ids))
	for j, vec := range vecs {
		matches = append(matches, core.SimilarityMatch{
			MessageID: ids[j],
			Score:     dotProduct(query, vec),
		})
	}

	slices.SortFunc(matches, func(a, b core.SimilarityMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
