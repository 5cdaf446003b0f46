package model

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	cfg := testConfig()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	// Run a training pass so the round trip covers running statistics too.
	if _, err := m.Predict(randomBatch(4, cfg.NumFrames, cfg.NumLandmarks, 11), ModeTraining); err != nil {
		t.Fatalf("Predict(training) error = %v", err)
	}

	var buf bytes.Buffer
	if err := m.Save(&buf); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	batch := randomBatch(3, cfg.NumFrames, cfg.NumLandmarks, 12)
	want, err := m.Predict(batch, ModeInference)
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	got, err := loaded.Predict(batch, ModeInference)
	if err != nil {
		t.Fatalf("loaded Predict() error = %v", err)
	}

	if !mat.Equal(want, got) {
		t.Error("reloaded model disagrees with the original on the same input")
	}

	if loaded.StatsReady() != m.StatsReady() {
		t.Error("round trip lost the normalization statistics flag")
	}
}

func TestSaveLoad_FileHelpers(t *testing.T) {
	cfg := testConfig()
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	path := t.TempDir() + "/model.json"
	if err := m.SaveFile(path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Config().NumClasses != cfg.NumClasses {
		t.Errorf("loaded NumClasses = %d, want %d", loaded.Config().NumClasses, cfg.NumClasses)
	}
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	// A serialized model whose config violates the divisibility invariant.
	payload := `{"config": {"num_frames": 30, "num_landmarks": 63, "num_classes": 100,
		"conv_filters": [64, 128], "attention_heads": 5, "embed_dim": 128,
		"feedforward_dim": 256, "dropout_rate": 0.3, "learning_rate": 0.001}}`

	_, err := Load(strings.NewReader(payload))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Load() error = %v, want *ConfigError", err)
	}
}

func TestLoad_RejectsTruncatedState(t *testing.T) {
	if _, err := Load(strings.NewReader("{")); err == nil {
		t.Fatal("Load() accepted truncated input")
	}
}
