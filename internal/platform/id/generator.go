package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates run identifiers for batch jobs.
type Generator interface {
	NewID() (string, error)
}

// TimeOrderedGenerator returns UUIDv7 values so run ids sort by start time.
type TimeOrderedGenerator struct{}

func NewTimeOrderedGenerator() *TimeOrderedGenerator {
	return &TimeOrderedGenerator{}
}

func (g *TimeOrderedGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuidv7: %w", err)
	}
	return v.String(), nil
}
