package model

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Hidden widths of the classification head's two refinement stages.
const (
	headHidden1 = 256
	headHidden2 = 128
)

// classificationHead collapses the time axis by global average pooling,
// refines the pooled vector through two dense+dropout stages, and maps it to
// a softmax probability distribution over glosses.
type classificationHead struct {
	hidden1 *dense
	hidden2 *dense
	out     *dense
	drop1   *dropout
	drop2   *dropout
}

func newClassificationHead(in, classes int, rate float64, rng *rand.Rand) *classificationHead {
	return &classificationHead{
		hidden1: newDense(in, headHidden1, rng),
		hidden2: newDense(headHidden1, headHidden2, rng),
		out:     newDense(headHidden2, classes, rng),
		drop1:   &dropout{rate: rate, rng: rng},
		drop2:   &dropout{rate: rate, rng: rng},
	}
}

// forward averages each L x D sequence over time, then applies the dense
// stack. Returns a B x classes matrix; every row is non-negative and sums
// to one.
func (h *classificationHead) forward(batch []*mat.Dense, mode Mode) *mat.Dense {
	_, dim := batch[0].Dims()
	pooled := mat.NewDense(len(batch), dim, nil)
	for i, x := range batch {
		rows, _ := x.Dims()
		dst := pooled.RawRowView(i)
		for t := 0; t < rows; t++ {
			for j, v := range x.RawRowView(t) {
				dst[j] += v
			}
		}
		for j := range dst {
			dst[j] /= float64(rows)
		}
	}

	y := h.hidden1.apply(pooled)
	reluInPlace(y)
	y = h.drop1.apply(y, mode)
	y = h.hidden2.apply(y)
	reluInPlace(y)
	y = h.drop2.apply(y, mode)
	y = h.out.apply(y)
	softmaxRows(y)
	return y
}
