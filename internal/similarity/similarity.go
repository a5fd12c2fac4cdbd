// Package similarity compares face embeddings.
package similarity

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// DefaultThreshold is the minimum cosine similarity accepted as the same person.
const DefaultThreshold = 0.7

// Cosine returns 1 - cosine distance between two embeddings, in [-1, 1].
// Embeddings of different (or zero) dimensionality are a configuration
// problem, not a mismatch, and are reported as domain.ErrConfiguration.
func Cosine(reference, candidate []float64) (float64, error) {
	if len(reference) == 0 || len(reference) != len(candidate) {
		return 0, domain.ErrConfiguration.WithError(
			fmt.Errorf("embedding dimensions differ: %d vs %d", len(reference), len(candidate)))
	}

	normRef := floats.Norm(reference, 2)
	normCand := floats.Norm(candidate, 2)
	if normRef == 0 || normCand == 0 {
		return 0, domain.ErrConfiguration.WithError(fmt.Errorf("zero-norm embedding"))
	}

	score := floats.Dot(reference, candidate) / (normRef * normCand)

	// float drift can push identical vectors slightly past 1
	return min(max(score, -1), 1), nil
}

// Mean returns the element-wise arithmetic mean of equally sized embeddings.
func Mean(vectors [][]float64) ([]float64, error) {
	if len(vectors) == 0 {
		return nil, domain.ErrConfiguration.WithError(fmt.Errorf("no embeddings to average"))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, domain.ErrConfiguration.WithError(fmt.Errorf("empty embedding"))
	}

	mean := make([]float64, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, domain.ErrConfiguration.WithError(
				fmt.Errorf("embedding %d has dimension %d, want %d", i, len(v), dim))
		}
		floats.Add(mean, v)
	}
	floats.Scale(1/float64(len(vectors)), mean)

	return mean, nil
}

// Normalize scales an embedding to unit length. Zero vectors are returned as is.
func Normalize(embedding []float64) []float64 {
	out := make([]float64, len(embedding))
	copy(out, embedding)

	norm := floats.Norm(out, 2)
	if norm == 0 {
		return out
	}
	floats.Scale(1/norm, out)
	return out
}

// Matcher applies a fixed acceptance threshold to cosine similarity.
type Matcher struct {
	threshold float64
}

// NewMatcher returns a Matcher accepting scores at or above threshold.
// Values outside (0, 1] fall back to DefaultThreshold.
func NewMatcher(threshold float64) *Matcher {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Matcher{threshold: threshold}
}

func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Match reports the similarity score and whether it reaches the threshold.
func (m *Matcher) Match(reference, candidate []float64) (float64, bool, error) {
	score, err := Cosine(reference, candidate)
	if err != nil {
		return 0, false, err
	}
	return score, score >= m.threshold, nil
}
