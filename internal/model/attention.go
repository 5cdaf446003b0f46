package model

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// attentionBlock is one transformer encoder block: multi-head scaled
// dot-product self-attention and a position-wise feed-forward sublayer, each
// wrapped in mode-gated dropout, a residual connection and layer
// normalization. The block preserves the shape of its input, so blocks
// compose.
type attentionBlock struct {
	dim     int
	heads   int
	headDim int

	query *dense
	key   *dense
	value *dense
	out   *dense

	ff1 *dense
	ff2 *dense

	norm1 *layerNorm
	norm2 *layerNorm
	drop1 *dropout
	drop2 *dropout
}

func newAttentionBlock(dim, heads, ffDim int, rate float64, rng *rand.Rand) (*attentionBlock, error) {
	if heads <= 0 || dim%heads != 0 {
		return nil, &ConfigError{Field: "embed_dim", Reason: "must be divisible by attention_heads"}
	}
	return &attentionBlock{
		dim:     dim,
		heads:   heads,
		headDim: dim / heads,
		query:   newDense(dim, dim, rng),
		key:     newDense(dim, dim, rng),
		value:   newDense(dim, dim, rng),
		out:     newDense(dim, dim, rng),
		ff1:     newDense(dim, ffDim, rng),
		ff2:     newDense(ffDim, dim, rng),
		norm1:   newLayerNorm(dim),
		norm2:   newLayerNorm(dim),
		drop1:   &dropout{rate: rate, rng: rng},
		drop2:   &dropout{rate: rate, rng: rng},
	}, nil
}

// forward runs one L x D sequence through the block. Attention is fully
// bidirectional: every position attends to every other position with no
// causal mask.
func (b *attentionBlock) forward(x *mat.Dense, mode Mode) *mat.Dense {
	seqLen, _ := x.Dims()

	q := b.query.apply(x)
	k := b.key.apply(x)
	v := b.value.apply(x)

	concat := mat.NewDense(seqLen, b.dim, nil)
	scale := 1.0 / math.Sqrt(float64(b.headDim))
	for h := 0; h < b.heads; h++ {
		lo := h * b.headDim
		hi := lo + b.headDim
		qh := q.Slice(0, seqLen, lo, hi).(*mat.Dense)
		kh := k.Slice(0, seqLen, lo, hi).(*mat.Dense)
		vh := v.Slice(0, seqLen, lo, hi).(*mat.Dense)

		scores := mat.NewDense(seqLen, seqLen, nil)
		scores.Mul(qh, kh.T())
		scores.Scale(scale, scores)
		softmaxRows(scores)

		ctx := mat.NewDense(seqLen, b.headDim, nil)
		ctx.Mul(scores, vh)
		concat.Slice(0, seqLen, lo, hi).(*mat.Dense).Copy(ctx)
	}

	attended := b.drop1.apply(b.out.apply(concat), mode)
	x1 := mat.NewDense(seqLen, b.dim, nil)
	x1.Add(x, attended)
	x1 = b.norm1.apply(x1)

	ff := b.ff1.apply(x1)
	reluInPlace(ff)
	ff = b.drop2.apply(b.ff2.apply(ff), mode)

	y := mat.NewDense(seqLen, b.dim, nil)
	y.Add(x1, ff)
	return b.norm2.apply(y)
}
