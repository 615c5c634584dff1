// Package storage persists aggregated experiment records so runs can
// be compared across invocations. The engine itself never touches
// storage; only the CLI and experiment tooling do.
package storage

import (
	"context"
	"time"

	"housesim/pkg/experiment"
)

// ExperimentRecord is one persisted experiment: the configuration that
// produced it and the aggregated summary.
type ExperimentRecord struct {
	SchemaVersion int       `json:"schema_version"`
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
	Seed          uint64    `json:"seed"`
	Experiments   int       `json:"experiments"`
	MaxRounds     int       `json:"max_rounds"`

	Summary *experiment.Summary `json:"summary"`
}

// Store defines persistence operations for experiment records.
type Store interface {
	Init(ctx context.Context) error
	SaveExperiment(ctx context.Context, record ExperimentRecord) error
	GetExperiment(ctx context.Context, id string) (ExperimentRecord, bool, error)
	ListExperiments(ctx context.Context) ([]ExperimentRecord, error)
	Close() error
}
