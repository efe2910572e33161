package vector

import (
	"math"

	"github.com/hyperjump/wali/pkg/utils"
)

// CosineSimilarity returns dot(a,b)/(|a||b|). Mismatched dimensions, empty or
// zero-magnitude input, and NaN or Inf components all yield 0.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	na, nb := utils.Norm(a), utils.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := utils.Dot(a, b) / (na * nb)
	if math.IsNaN(sim) || math.IsInf(sim, 0) {
		return 0
	}
	return float32(sim)
}
