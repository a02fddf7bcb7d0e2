package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/sounding-service/internal/domain"
)

// FanOut loads every batch to a primary loader and then to best-effort
// mirrors. Only a primary failure is returned; mirror failures are logged.
type FanOut struct {
	primary BatchLoader
	mirrors []BatchLoader
	logger  *slog.Logger
}

// NewFanOut creates a FanOut loader.
func NewFanOut(primary BatchLoader, logger *slog.Logger, mirrors ...BatchLoader) *FanOut {
	return &FanOut{primary: primary, mirrors: mirrors, logger: logger}
}

func (f *FanOut) LoadBatch(ctx context.Context, outcomes []domain.RetrievalOutcome) error {
	if err := f.primary.LoadBatch(ctx, outcomes); err != nil {
		return err
	}
	for _, m := range f.mirrors {
		if err := m.LoadBatch(ctx, outcomes); err != nil {
			f.logger.Warn("mirror load failed", "error", err, "batch_size", len(outcomes))
		}
	}
	return nil
}
