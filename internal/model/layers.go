package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// glorotUniform fills m with samples from U(-limit, limit) where
// limit = sqrt(6 / (fanIn + fanOut)).
func glorotUniform(m *mat.Dense, fanIn, fanOut int, rng *rand.Rand) {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	r, c := m.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			m.Set(i, j, (rng.Float64()*2-1)*limit)
		}
	}
}

// dense is a linear transform y = xW + b applied to every row of x
// independently.
type dense struct {
	w *mat.Dense // in x out
	b []float64  // out
}

func newDense(in, out int, rng *rand.Rand) *dense {
	w := mat.NewDense(in, out, nil)
	glorotUniform(w, in, out, rng)
	return &dense{w: w, b: make([]float64, out)}
}

func (d *dense) apply(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	_, out := d.w.Dims()
	y := mat.NewDense(rows, out, nil)
	y.Mul(x, d.w)
	for i := 0; i < rows; i++ {
		row := y.RawRowView(i)
		for j := range row {
			row[j] += d.b[j]
		}
	}
	return y
}

func reluInPlace(x *mat.Dense) {
	x.Apply(func(_, _ int, v float64) float64 {
		if v < 0 {
			return 0
		}
		return v
	}, x)
}

// dropout zeroes a random fraction of entries in training mode and rescales
// the survivors so the expected activation is unchanged. In inference mode
// it is the identity.
type dropout struct {
	rate float64
	rng  *rand.Rand
}

func (d *dropout) apply(x *mat.Dense, mode Mode) *mat.Dense {
	if mode != ModeTraining || d.rate <= 0 {
		return x
	}
	keep := 1.0 - d.rate
	r, c := x.Dims()
	y := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		src := x.RawRowView(i)
		dst := y.RawRowView(i)
		for j := range src {
			if d.rng.Float64() < keep {
				dst[j] = src[j] / keep
			}
		}
	}
	return y
}

// layerNorm normalizes every row to zero mean and unit variance, then
// applies a learned per-channel gain and shift.
type layerNorm struct {
	gain []float64
	bias []float64
	eps  float64
}

func newLayerNorm(dim int) *layerNorm {
	ln := &layerNorm{
		gain: make([]float64, dim),
		bias: make([]float64, dim),
		eps:  1e-6,
	}
	for i := range ln.gain {
		ln.gain[i] = 1
	}
	return ln
}

func (ln *layerNorm) apply(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	y := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		row := x.RawRowView(i)
		mean := 0.0
		for _, v := range row {
			mean += v
		}
		mean /= float64(c)
		variance := 0.0
		for _, v := range row {
			d := v - mean
			variance += d * d
		}
		variance /= float64(c)
		inv := 1.0 / math.Sqrt(variance+ln.eps)
		dst := y.RawRowView(i)
		for j, v := range row {
			dst[j] = ln.gain[j]*(v-mean)*inv + ln.bias[j]
		}
	}
	return y
}

// softmaxRows exponentiates and normalizes every row in place, subtracting
// the row maximum first so large scores do not overflow.
func softmaxRows(x *mat.Dense) {
	r, _ := x.Dims()
	for i := 0; i < r; i++ {
		row := x.RawRowView(i)
		maxVal := math.Inf(-1)
		for _, v := range row {
			if v > maxVal {
				maxVal = v
			}
		}
		sum := 0.0
		for j, v := range row {
			e := math.Exp(v - maxVal)
			row[j] = e
			sum += e
		}
		for j := range row {
			row[j] /= sum
		}
	}
}
