package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type compensation struct {
	step string
	undo func(ctx context.Context) error
}

// settlementJournal records external effects of an in-flight buy so they can
// be undone in reverse order when a later step fails.
type settlementJournal struct {
	entries []compensation
	logger  *slog.Logger
}

func newSettlementJournal(logger *slog.Logger) *settlementJournal {
	return &settlementJournal{logger: logger}
}

func (j *settlementJournal) record(step string, undo func(ctx context.Context) error) {
	j.entries = append(j.entries, compensation{step: step, undo: undo})
}

func (j *settlementJournal) len() int {
	return len(j.entries)
}

// unwind runs every recorded undo, newest first, and clears the journal.
func (j *settlementJournal) unwind(ctx context.Context) error {
	var errs []error
	for i := len(j.entries) - 1; i >= 0; i-- {
		entry := j.entries[i]
		if err := entry.undo(ctx); err != nil {
			j.logger.Error("settlement compensation failed",
				"event", "marketplace_buy_compensation_failed",
				"module", logModule,
				"layer", "application",
				"step", entry.step,
				"error", err.Error(),
			)
			errs = append(errs, fmt.Errorf("compensate %s: %w", entry.step, err))
			continue
		}
		j.logger.Warn("settlement step compensated",
			"event", "marketplace_buy_compensated",
			"module", logModule,
			"layer", "application",
			"step", entry.step,
		)
	}
	j.entries = nil
	return errors.Join(errs...)
}
