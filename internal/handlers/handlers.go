package handlers

import (
	"context"
	"time"

	"crate-sync/internal/converter"
	"crate-sync/internal/startup"
)

// Runner is the part of the converter the status server drives.
type Runner interface {
	Convert(ctx context.Context) (converter.Summary, error)
	LastSummary() (converter.Summary, bool)
}

type Handlers struct {
	runner     Runner
	outputPath string
	started    time.Time
}

func New(runner Runner, config *startup.Config) *Handlers {
	return &Handlers{
		runner:     runner,
		outputPath: config.OutputPath,
		started:    time.Now(),
	}
}
