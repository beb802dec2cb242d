package job

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/contentpilot/internal/repository"
)

const usageRetention = 90 * 24 * time.Hour

// UsageCleanupJob prunes old usage log rows. Quota checks only look at the
// current day, so anything past the retention window is dead weight.
type UsageCleanupJob struct {
	ur repository.UsageLogRepository
}

func NewUsageCleanupJob(ur repository.UsageLogRepository) *UsageCleanupJob {
	return &UsageCleanupJob{
		ur: ur,
	}
}

func (c *UsageCleanupJob) Cleanup() {
	ctx := context.Background()

	cutoff := time.Now().UTC().Add(-usageRetention)

	removed, err := c.ur.RemoveOlderThan(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	if removed > 0 {
		slog.Info(fmt.Sprintf("Removed %d old usage log rows", removed))
	}
}
