package train

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// logFloor keeps the cross-entropy finite when a predicted probability
// underflows to zero.
const logFloor = 1e-12

// CrossEntropy returns the mean categorical cross-entropy between predicted
// probability rows and target distributions. Targets may be one-hot or soft;
// each target row is expected to sum to one.
func CrossEntropy(pred, target *mat.Dense) float64 {
	rows, cols := pred.Dims()
	total := 0.0
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			t := target.At(i, j)
			if t == 0 {
				continue
			}
			p := math.Max(pred.At(i, j), logFloor)
			total -= t * math.Log(p)
		}
	}
	return total / float64(rows)
}
