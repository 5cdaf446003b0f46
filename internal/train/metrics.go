package train

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// Metric accumulates an evaluation statistic over prediction batches.
type Metric interface {
	Reset()
	Update(pred, target *mat.Dense)
	Result() float64
	Name() string
}

// Metrics instantiates the metric set named in a training declaration.
func Metrics(cfg Config) []Metric {
	var ms []Metric
	for _, name := range cfg.Metrics {
		switch name {
		case MetricAccuracy:
			ms = append(ms, NewAccuracy())
		case MetricTop5Accuracy:
			ms = append(ms, NewTopKAccuracy(5))
		}
	}
	return ms
}

// Accuracy is top-1 categorical accuracy: the predicted class is the argmax
// of the probability row, the true class the argmax of the target row.
type Accuracy struct {
	correct int
	total   int
}

func NewAccuracy() *Accuracy { return &Accuracy{} }

func (a *Accuracy) Reset() {
	a.correct = 0
	a.total = 0
}

func (a *Accuracy) Update(pred, target *mat.Dense) {
	rows, _ := pred.Dims()
	for i := 0; i < rows; i++ {
		if argmax(pred.RawRowView(i)) == argmax(target.RawRowView(i)) {
			a.correct++
		}
		a.total++
	}
}

func (a *Accuracy) Result() float64 {
	if a.total == 0 {
		return 0
	}
	return float64(a.correct) / float64(a.total)
}

func (a *Accuracy) Name() string { return MetricAccuracy }

// TopKAccuracy counts a row as correct when the true class is among the K
// highest-probability predictions.
type TopKAccuracy struct {
	k       int
	correct int
	total   int
}

func NewTopKAccuracy(k int) *TopKAccuracy { return &TopKAccuracy{k: k} }

func (t *TopKAccuracy) Reset() {
	t.correct = 0
	t.total = 0
}

func (t *TopKAccuracy) Update(pred, target *mat.Dense) {
	rows, cols := pred.Dims()
	for i := 0; i < rows; i++ {
		trueClass := argmax(target.RawRowView(i))
		row := pred.RawRowView(i)

		idx := make([]int, cols)
		for j := range idx {
			idx[j] = j
		}
		sort.Slice(idx, func(a, b int) bool { return row[idx[a]] > row[idx[b]] })

		limit := t.k
		if limit > cols {
			limit = cols
		}
		for _, j := range idx[:limit] {
			if j == trueClass {
				t.correct++
				break
			}
		}
		t.total++
	}
}

func (t *TopKAccuracy) Result() float64 {
	if t.total == 0 {
		return 0
	}
	return float64(t.correct) / float64(t.total)
}

func (t *TopKAccuracy) Name() string { return fmt.Sprintf("top%d_accuracy", t.k) }

func argmax(row []float64) int {
	best := 0
	for j, v := range row {
		if v > row[best] {
			best = j
		}
	}
	return best
}
