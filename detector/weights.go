// Package detector proposes extraction rules for a parsed page: it finds
// repeating record containers, probes them for typed sub-elements, adds
// page-wide and semantic-pattern fallbacks, replays remembered fields and
// ranks the result.
package detector

// Weights collects every tunable heuristic constant of a detection run.
// The exact numbers are not load-bearing; the structure is: coverage
// dominates confidence, role priority and container weight are secondary
// boosts, and general heuristics are clamped to [MinConfidence, MaxConfidence].
type Weights struct {
	// MinContainerElements is the minimum match count for a repeating container.
	MinContainerElements int

	// CoverageRatio and MinCoverageCount form the coverage floor: a container
	// field needs at least max(MinCoverageCount, containers*CoverageRatio) hits.
	CoverageRatio    float64
	MinCoverageCount int

	// Confidence = coverage*CoverageWeight + priority*PriorityWeight
	//            + containerWeight*PatternWeight, clamped.
	CoverageWeight float64
	PriorityWeight float64
	PatternWeight  float64
	MinConfidence  int
	MaxConfidence  int

	// Semantic fields: min(SemanticMax, SemanticBaseline + matches*SemanticPerMatch + typeWeight).
	SemanticBaseline int
	SemanticPerMatch int
	SemanticMax      int

	// Page-wide signal confidences and floors.
	PriceSignalConfidence   int
	ImageSignalConfidence   int
	LinkSignalConfidence    int
	TableSignalConfidence   int
	HeadingSignalConfidence int
	MinSignalImages         int
	MinSignalLinks          int
	MinSignalHeadings       int

	// SelectThreshold is the confidence at and above which a field is
	// selected by default.
	SelectThreshold int

	// ResultCap bounds the optimizer output.
	ResultCap int

	// SampleSize bounds SampleData per field.
	SampleSize int

	// Pattern memory: fields above HighConfidenceCut are remembered per
	// domain and replayed with +MemoryBoost, capped at MemoryCap.
	HighConfidenceCut int
	MemoryBoost       int
	MemoryCap         int
}

// DefaultWeights returns the standard tuning.
func DefaultWeights() Weights {
	return Weights{
		MinContainerElements: 3,
		CoverageRatio:        0.3,
		MinCoverageCount:     2,
		CoverageWeight:       70,
		PriorityWeight:       15,
		PatternWeight:        10,
		MinConfidence:        60,
		MaxConfidence:        95,

		SemanticBaseline: 60,
		SemanticPerMatch: 5,
		SemanticMax:      95,

		PriceSignalConfidence:   75,
		ImageSignalConfidence:   70,
		LinkSignalConfidence:    65,
		TableSignalConfidence:   80,
		HeadingSignalConfidence: 70,
		MinSignalImages:         4,
		MinSignalLinks:          6,
		MinSignalHeadings:       3,

		SelectThreshold: 75,
		ResultCap:       20,
		SampleSize:      5,

		HighConfidenceCut: 85,
		MemoryBoost:       5,
		MemoryCap:         98,
	}
}

// coverageFloor is the minimum number of containers a field must be found in.
func (w Weights) coverageFloor(containers int) float64 {
	floor := float64(containers) * w.CoverageRatio
	if least := float64(w.MinCoverageCount); floor < least {
		return least
	}
	return floor
}

// containerConfidence scores a container-scoped field.
func (w Weights) containerConfidence(found, total int, priority, patternWeight float64) int {
	if total == 0 {
		return w.MinConfidence
	}
	coverage := float64(found) / float64(total)
	score := coverage*w.CoverageWeight + priority*w.PriorityWeight + patternWeight*w.PatternWeight
	return clamp(int(score+0.5), w.MinConfidence, w.MaxConfidence)
}

// semanticConfidence scores a semantic-pattern field.
func (w Weights) semanticConfidence(matches, typeWeight int) int {
	score := w.SemanticBaseline + matches*w.SemanticPerMatch + typeWeight
	if score > w.SemanticMax {
		return w.SemanticMax
	}
	return score
}

// boost applies the pattern-memory replay bonus.
func (w Weights) boost(confidence int) int {
	if c := confidence + w.MemoryBoost; c < w.MemoryCap {
		return c
	}
	return w.MemoryCap
}

func clamp(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
