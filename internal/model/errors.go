package model

import "fmt"

// ConfigError reports a Config invariant violated at construction time.
// Construction does not proceed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("model: invalid config: %s %s", e.Field, e.Reason)
}

// ShapeError reports an input sequence whose dimensions disagree with the
// configuration the model was built for. No partial output is produced.
type ShapeError struct {
	Index         int // position of the offending sequence in the batch
	GotFrames     int
	GotLandmarks  int
	WantFrames    int
	WantLandmarks int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("model: sequence %d has shape (%d, %d), want (%d, %d)",
		e.Index, e.GotFrames, e.GotLandmarks, e.WantFrames, e.WantLandmarks)
}
