// Package testdata embeds dataset fixtures shared by integration tests.
package testdata

import (
	"embed"
	"fmt"
)

//go:embed meta/*
var metaFS embed.FS

// Metadata returns an embedded dataset metadata fixture by name.
func Metadata(name string) ([]byte, error) {
	data, err := metaFS.ReadFile("meta/" + name)
	if err != nil {
		return nil, fmt.Errorf("load metadata %s: %w", name, err)
	}
	return data, nil
}
