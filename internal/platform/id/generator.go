package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for correlating log lines of one run.
type Generator interface {
	NewID() (string, error)
}

// TimeOrderedGenerator returns UUIDv7 strings, which sort by creation time.
type TimeOrderedGenerator struct{}

func NewTimeOrderedGenerator() *TimeOrderedGenerator {
	return &TimeOrderedGenerator{}
}

func (g *TimeOrderedGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return v.String(), nil
}
