// Package train declares the training recipe consumed by the external
// optimization harness: the optimizer, the loss, and the reported metrics.
// It has no forward-evaluation behavior of its own.
package train

import (
	"github.com/ayusman/glossnet/internal/model"
)

// Metric names reported during training and evaluation.
const (
	MetricAccuracy     = "accuracy"
	MetricTop5Accuracy = "top5_accuracy"
)

// Config declares how a model should be trained: an adaptive-gradient
// optimizer keyed by the model's learning rate, categorical cross-entropy
// over one-hot (or soft) gloss targets, and top-1/top-5 accuracy reporting.
type Config struct {
	Optimizer    string   `json:"optimizer"`
	LearningRate float64  `json:"learning_rate"`
	Beta1        float64  `json:"beta1"`
	Beta2        float64  `json:"beta2"`
	Epsilon      float64  `json:"epsilon"`
	Loss         string   `json:"loss"`
	Metrics      []string `json:"metrics"`
}

// NewConfig derives the training declaration for a model configuration.
func NewConfig(cfg model.Config) Config {
	return Config{
		Optimizer:    "adam",
		LearningRate: cfg.LearningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-7,
		Loss:         "categorical_crossentropy",
		Metrics:      []string{MetricAccuracy, MetricTop5Accuracy},
	}
}
