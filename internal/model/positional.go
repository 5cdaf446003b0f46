package model

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// EncodingTable returns the seqLen x dim sinusoidal position table:
// angle(p, i) = p / 10000^(2*(i/2)/dim), sine on even channels, cosine on
// odd channels. The table is a pure function of its arguments and is
// recomputed per call; identical arguments always produce bit-identical
// output.
func EncodingTable(seqLen, dim int) *mat.Dense {
	table := mat.NewDense(seqLen, dim, nil)
	for pos := 0; pos < seqLen; pos++ {
		row := table.RawRowView(pos)
		for i := 0; i < dim; i++ {
			angle := float64(pos) / math.Pow(10000, float64(2*(i/2))/float64(dim))
			if i%2 == 0 {
				row[i] = math.Sin(angle)
			} else {
				row[i] = math.Cos(angle)
			}
		}
	}
	return table
}

// positionalEncoder injects frame order into an embedded sequence by adding
// the sinusoidal table sized to the live sequence length, then applies
// mode-gated dropout. It has no parameters.
type positionalEncoder struct {
	drop *dropout
}

func (p *positionalEncoder) forward(x *mat.Dense, mode Mode) *mat.Dense {
	rows, cols := x.Dims()
	y := mat.NewDense(rows, cols, nil)
	y.Add(x, EncodingTable(rows, cols))
	return p.drop.apply(y, mode)
}
