package train

import "math"

// Adam implements the adaptive moment estimation update rule over a flat
// parameter vector. Gradients come from the external differentiation
// engine; Adam only applies the step.
type Adam struct {
	lr    float64
	beta1 float64
	beta2 float64
	eps   float64

	m []float64
	v []float64
	t int
}

// NewAdam creates an optimizer from a training declaration.
func NewAdam(cfg Config) *Adam {
	return &Adam{
		lr:    cfg.LearningRate,
		beta1: cfg.Beta1,
		beta2: cfg.Beta2,
		eps:   cfg.Epsilon,
	}
}

// Step updates params in place using grads. Both slices must have the same
// length on every call; the moment buffers are sized on first use.
func (a *Adam) Step(params, grads []float64) {
	if a.m == nil {
		a.m = make([]float64, len(params))
		a.v = make([]float64, len(params))
	}
	a.t++
	bc1 := 1 - math.Pow(a.beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.beta2, float64(a.t))

	for i := range params {
		g := grads[i]
		a.m[i] = a.beta1*a.m[i] + (1-a.beta1)*g
		a.v[i] = a.beta2*a.v[i] + (1-a.beta2)*g*g

		mHat := a.m[i] / bc1
		vHat := a.v[i] / bc2

		params[i] -= a.lr * mHat / (math.Sqrt(vHat) + a.eps)
	}
}
