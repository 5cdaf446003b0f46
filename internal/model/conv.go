package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// kernelWidth is the receptive field of each convolution stage along the
// time axis.
const kernelWidth = 3

// poolWindow is the max-pooling window that halves the sequence length
// after the convolution stages.
const poolWindow = 2

// batchNorm normalizes each channel using statistics gathered over every
// frame of every sequence in the batch (training mode) or the accumulated
// running statistics (inference mode).
type batchNorm struct {
	gain        []float64
	bias        []float64
	runningMean []float64
	runningVar  []float64
	momentum    float64
	eps         float64
	initialized bool // set once a training pass has updated the running stats
}

func newBatchNorm(channels int) *batchNorm {
	bn := &batchNorm{
		gain:        make([]float64, channels),
		bias:        make([]float64, channels),
		runningMean: make([]float64, channels),
		runningVar:  make([]float64, channels),
		momentum:    0.99,
		eps:         1e-3,
	}
	for i := 0; i < channels; i++ {
		bn.gain[i] = 1
		bn.runningVar[i] = 1
	}
	return bn
}

func (bn *batchNorm) forward(batch []*mat.Dense, mode Mode) []*mat.Dense {
	channels := len(bn.gain)
	mean := make([]float64, channels)
	variance := make([]float64, channels)

	if mode == ModeTraining {
		count := 0
		for _, x := range batch {
			rows, _ := x.Dims()
			count += rows
			for t := 0; t < rows; t++ {
				for j, v := range x.RawRowView(t) {
					mean[j] += v
				}
			}
		}
		for j := range mean {
			mean[j] /= float64(count)
		}
		for _, x := range batch {
			rows, _ := x.Dims()
			for t := 0; t < rows; t++ {
				for j, v := range x.RawRowView(t) {
					d := v - mean[j]
					variance[j] += d * d
				}
			}
		}
		for j := range variance {
			variance[j] /= float64(count)
		}
		for j := range mean {
			bn.runningMean[j] = bn.momentum*bn.runningMean[j] + (1-bn.momentum)*mean[j]
			bn.runningVar[j] = bn.momentum*bn.runningVar[j] + (1-bn.momentum)*variance[j]
		}
		bn.initialized = true
	} else {
		copy(mean, bn.runningMean)
		copy(variance, bn.runningVar)
	}

	inv := make([]float64, channels)
	for j := range inv {
		inv[j] = 1.0 / math.Sqrt(variance[j]+bn.eps)
	}

	out := make([]*mat.Dense, len(batch))
	for i, x := range batch {
		rows, cols := x.Dims()
		y := mat.NewDense(rows, cols, nil)
		for t := 0; t < rows; t++ {
			src := x.RawRowView(t)
			dst := y.RawRowView(t)
			for j, v := range src {
				dst[j] = bn.gain[j]*(v-mean[j])*inv[j] + bn.bias[j]
			}
		}
		out[i] = y
	}
	return out
}

// convStage is one 1-D convolution over the time axis (kernel width 3,
// zero-padded so the output length equals the input length), followed by
// batch normalization and a rectified-linear activation.
type convStage struct {
	in   int
	out  int
	taps [kernelWidth]*mat.Dense // one in x out weight matrix per kernel tap
	bias []float64
	norm *batchNorm
}

func newConvStage(in, out int, rng *rand.Rand) *convStage {
	s := &convStage{
		in:   in,
		out:  out,
		bias: make([]float64, out),
		norm: newBatchNorm(out),
	}
	fanIn := kernelWidth * in
	fanOut := kernelWidth * out
	for k := range s.taps {
		s.taps[k] = mat.NewDense(in, out, nil)
		glorotUniform(s.taps[k], fanIn, fanOut, rng)
	}
	return s
}

// convolve applies the stage's linear filter to one L x in sequence,
// producing L x out. Boundary frames see zero padding.
func (s *convStage) convolve(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	y := mat.NewDense(rows, s.out, nil)
	for t := 0; t < rows; t++ {
		dst := y.RawRowView(t)
		copy(dst, s.bias)
		for k := 0; k < kernelWidth; k++ {
			src := t + k - kernelWidth/2
			if src < 0 || src >= rows {
				continue
			}
			xRow := x.RawRowView(src)
			w := s.taps[k]
			for i, xv := range xRow {
				wRow := w.RawRowView(i)
				for j, wv := range wRow {
					dst[j] += xv * wv
				}
			}
		}
	}
	return y
}

func (s *convStage) forward(batch []*mat.Dense, mode Mode) []*mat.Dense {
	out := make([]*mat.Dense, len(batch))
	for i, x := range batch {
		out[i] = s.convolve(x)
	}
	out = s.norm.forward(out, mode)
	for _, y := range out {
		reluInPlace(y)
	}
	return out
}

// maxPool halves the time axis, keeping the per-channel maximum of each
// non-overlapping window of two frames. A trailing odd frame is dropped, so
// an input of length n produces floor(n/2) frames.
func maxPool(x *mat.Dense) *mat.Dense {
	rows, cols := x.Dims()
	outRows := rows / poolWindow
	y := mat.NewDense(outRows, cols, nil)
	for t := 0; t < outRows; t++ {
		a := x.RawRowView(poolWindow * t)
		b := x.RawRowView(poolWindow*t + 1)
		dst := y.RawRowView(t)
		for j := range dst {
			dst[j] = math.Max(a[j], b[j])
		}
	}
	return y
}

// featureExtractor chains the convolution stages and the pooling step. It
// turns an L x landmarks sequence into a floor(L/2) x lastFilter sequence of
// local spatial-temporal features.
type featureExtractor struct {
	stages []*convStage
}

func newFeatureExtractor(inWidth int, filters []int, rng *rand.Rand) *featureExtractor {
	fe := &featureExtractor{}
	in := inWidth
	for _, f := range filters {
		fe.stages = append(fe.stages, newConvStage(in, f, rng))
		in = f
	}
	return fe
}

func (fe *featureExtractor) forward(batch []*mat.Dense, mode Mode) []*mat.Dense {
	for _, s := range fe.stages {
		batch = s.forward(batch, mode)
	}
	pooled := make([]*mat.Dense, len(batch))
	for i, x := range batch {
		pooled[i] = maxPool(x)
	}
	return pooled
}

func (fe *featureExtractor) outWidth() int {
	return fe.stages[len(fe.stages)-1].out
}

// ready reports whether every normalization stage has accumulated running
// statistics from at least one training pass.
func (fe *featureExtractor) ready() bool {
	for _, s := range fe.stages {
		if !s.norm.initialized {
			return false
		}
	}
	return true
}
