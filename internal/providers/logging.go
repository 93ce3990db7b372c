package providers

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/nba-props-engine/internal/logging"
)

// logWithFeed emits a log entry if a logger is available and always includes the feed name.
func logWithFeed(ctx context.Context, logger *slog.Logger, level slog.Level, feed string, msg string, args ...any) {
	logger = logging.FromContext(ctx, logger)
	if logger == nil {
		return
	}
	args = append(args, slog.String(logging.FieldFeed, feed))
	logger.Log(ctx, level, msg, args...)
}
