package domain

// VectorConfig holds internal vectorization settings, not exposed to clients.
type VectorConfig struct {
	Model               string
	Dimensions          int
	DistanceMetric      string
	Algorithm           string
	NList               int
	NProbe              int
	SimilarityThreshold float64
}

// DefaultVectorConfig returns the default configuration tuned for all-MiniLM-L6-v2.
// The metric is cosine: higher score means more similar, and the threshold is a lower bound.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:               "all-MiniLM-L6-v2",
		Dimensions:          384,
		DistanceMetric:      "cosine",
		Algorithm:           "ivf_flat",
		NList:               128,
		NProbe:              10,
		SimilarityThreshold: 0.25,
	}
}
