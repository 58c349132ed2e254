package ranking

import (
	"fmt"
	"sort"
)

// DefaultSemanticThreshold is a permissive bound suited to deterministic embedding models
const DefaultSemanticThreshold = -0.5

// Gate is the semantic relevance prefilter
type Gate struct {
	// Threshold is the minimum cosine similarity a candidate needs to pass
	Threshold float64
	// MaxPool caps how many passing candidates go on to scoring; 0 means no cap
	MaxPool int
}

// NewGate returns a gate with the default threshold and no pool cap
func NewGate() Gate {
	return Gate{Threshold: DefaultSemanticThreshold}
}

// GateInput is one candidate embedding presented to the gate
type GateInput struct {
	ID        string
	Embedding []float64
}

// GateEntry is a candidate selected by the gate
type GateEntry struct {
	// Index is the position of the candidate in the gate input
	Index      int
	ID         string
	Similarity float64
}

// GateOutcome holds the gate selection and its bookkeeping
type GateOutcome struct {
	// Selected is ordered by input position
	Selected []GateEntry
	// Passed counts candidates that cleared the threshold, before any pool cap
	Passed            int
	MissingEmbeddings int
	ZeroEmbeddings    int
	FallbackUsed      bool
}

// Apply runs every candidate through the gate.
// Candidates without an embedding are skipped and counted, zero vectors always fail.
// When nobody passes but at least one candidate has a usable embedding, the top k
// candidates by raw similarity are selected instead and FallbackUsed is set.
// k <= 0 selects every usable candidate on fallback.
func (g Gate) Apply(project []float64, candidates []GateInput, k int) (GateOutcome, error) {
	var outcome GateOutcome
	if len(project) == 0 {
		return outcome, fmt.Errorf("project embedding is empty")
	}

	usable := make([]GateEntry, 0, len(candidates))
	passed := make([]GateEntry, 0, len(candidates))

	for i, c := range candidates {
		if len(c.Embedding) == 0 {
			outcome.MissingEmbeddings++
			continue
		}
		if len(c.Embedding) != len(project) {
			return GateOutcome{}, &DimensionError{CandidateID: c.ID, Expected: len(project), Actual: len(c.Embedding)}
		}
		if IsZeroVector(c.Embedding) {
			outcome.ZeroEmbeddings++
			continue
		}

		sim, err := CosineSimilarity(project, c.Embedding)
		if err != nil {
			return GateOutcome{}, err
		}

		entry := GateEntry{Index: i, ID: c.ID, Similarity: sim}
		usable = append(usable, entry)
		if sim >= g.Threshold {
			passed = append(passed, entry)
		}
	}

	outcome.Passed = len(passed)

	switch {
	case len(passed) > 0:
		outcome.Selected = topBySimilarity(passed, g.MaxPool)
	case len(usable) > 0:
		outcome.FallbackUsed = true
		outcome.Selected = topBySimilarity(usable, k)
	}

	return outcome, nil
}

// topBySimilarity keeps the n most similar entries (all when n <= 0 or n >= len)
// and returns them in input order.
func topBySimilarity(entries []GateEntry, n int) []GateEntry {
	if n <= 0 || n >= len(entries) {
		return entries
	}

	bySim := make([]GateEntry, len(entries))
	copy(bySim, entries)
	sort.SliceStable(bySim, func(i, j int) bool {
		return bySim[i].Similarity > bySim[j].Similarity
	})

	top := bySim[:n]
	sort.Slice(top, func(i, j int) bool {
		return top[i].Index < top[j].Index
	})
	return top
}
