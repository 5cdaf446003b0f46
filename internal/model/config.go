package model

// Config fixes the topology of a Model. It is supplied once at construction
// and never changes afterwards; only parameter values do.
type Config struct {
	// NumFrames is the sequence length consumed per example.
	NumFrames int `json:"num_frames"`
	// NumLandmarks is the per-frame vector width: three coordinate values
	// for each tracked anatomical keypoint.
	NumLandmarks int `json:"num_landmarks"`
	// NumClasses is the number of gloss labels.
	NumClasses int `json:"num_classes"`
	// ConvFilters holds the output widths of the convolution stages, in order.
	ConvFilters []int `json:"conv_filters"`
	// AttentionHeads and EmbedDim shape the self-attention block.
	// EmbedDim must be divisible by AttentionHeads.
	AttentionHeads int `json:"attention_heads"`
	EmbedDim       int `json:"embed_dim"`
	// FeedForwardDim is the hidden width of the attention block's
	// position-wise feed-forward sublayer.
	FeedForwardDim int `json:"feedforward_dim"`
	// DropoutRate is the training-mode dropout probability, in [0, 1).
	DropoutRate float64 `json:"dropout_rate"`
	// LearningRate is the optimizer step size declared for the training
	// harness. It has no effect on forward evaluation.
	LearningRate float64 `json:"learning_rate"`
}

// DefaultConfig returns the architecture the recognizer ships with:
// 30-frame windows of 21 hand keypoints (63 values per frame) classified
// into 100 glosses.
func DefaultConfig() Config {
	return Config{
		NumFrames:      30,
		NumLandmarks:   63,
		NumClasses:     100,
		ConvFilters:    []int{64, 128},
		AttentionHeads: 4,
		EmbedDim:       128,
		FeedForwardDim: 256,
		DropoutRate:    0.3,
		LearningRate:   0.001,
	}
}

// Validate returns a *ConfigError describing the first violated invariant,
// or nil if the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.NumFrames <= 0:
		return &ConfigError{Field: "num_frames", Reason: "must be positive"}
	case c.NumLandmarks <= 0:
		return &ConfigError{Field: "num_landmarks", Reason: "must be positive"}
	case c.NumClasses <= 0:
		return &ConfigError{Field: "num_classes", Reason: "must be positive"}
	case len(c.ConvFilters) == 0:
		return &ConfigError{Field: "conv_filters", Reason: "must not be empty"}
	}
	for _, f := range c.ConvFilters {
		if f <= 0 {
			return &ConfigError{Field: "conv_filters", Reason: "widths must be positive"}
		}
	}
	frames := c.NumFrames
	for range c.ConvFilters {
		frames /= poolWindow
	}
	if frames == 0 {
		return &ConfigError{Field: "num_frames", Reason: "too short to survive the pooling stages"}
	}
	switch {
	case c.AttentionHeads <= 0:
		return &ConfigError{Field: "attention_heads", Reason: "must be positive"}
	case c.EmbedDim <= 0:
		return &ConfigError{Field: "embed_dim", Reason: "must be positive"}
	case c.EmbedDim%c.AttentionHeads != 0:
		return &ConfigError{Field: "embed_dim", Reason: "must be divisible by attention_heads"}
	case c.FeedForwardDim <= 0:
		return &ConfigError{Field: "feedforward_dim", Reason: "must be positive"}
	case c.DropoutRate < 0 || c.DropoutRate >= 1:
		return &ConfigError{Field: "dropout_rate", Reason: "must be in [0, 1)"}
	case c.LearningRate <= 0:
		return &ConfigError{Field: "learning_rate", Reason: "must be positive"}
	}
	return nil
}
