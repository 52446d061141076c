package detector

import (
	"sort"

	"github.com/use-agent/sift/models"
)

// Optimize ranks candidates. It drops those below threshold*100, keeps the
// highest-confidence field per (type, name) key, sorts by confidence
// descending and truncates to limit. Ties keep input order. The input slice
// is not modified.
func Optimize(candidates []models.DetectedField, threshold float64, limit int) []models.DetectedField {
	floor := threshold * 100

	best := make(map[string]int, len(candidates))
	kept := make([]models.DetectedField, 0, len(candidates))
	for _, c := range candidates {
		if float64(c.Confidence) < floor {
			continue
		}
		key := c.Key()
		if i, ok := best[key]; ok {
			if c.Confidence > kept[i].Confidence {
				kept[i] = c
			}
			continue
		}
		best[key] = len(kept)
		kept = append(kept, c)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	if limit > 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
