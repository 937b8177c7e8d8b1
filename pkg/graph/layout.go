package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// =============================================================================
// Layout - Finished Simulation Result
// =============================================================================

// Layout is a positioned document together with the parameters that produced
// it. It is the unit stored by caches, returned by the HTTP API and written by
// the CLI's layout command.
type Layout struct {
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Simulation summary
	Ticks     int     `json:"ticks" bson:"ticks"`
	Alpha     float64 `json:"alpha" bson:"alpha"`
	Converged bool    `json:"converged" bson:"converged"`

	Graph Document `json:"graph" bson:"graph"`
}

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout.
// Every node of a layout must be positioned.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Graph.Nodes) > 0 && !l.Graph.Positioned() {
		return Layout{}, fmt.Errorf("layout contains nodes without positions")
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
