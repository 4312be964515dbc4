package events

import (
	"context"
	"log/slog"
)

// LogPrinter forwards events into a slog.Logger. Build log lines keep their
// asset and bundle as attributes; Verbose lines are logged at Debug.
type LogPrinter struct {
	logger *slog.Logger
}

// NewLogPrinter creates a printer writing to logger, or to slog.Default if
// logger is nil.
func NewLogPrinter(logger *slog.Logger) *LogPrinter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPrinter{logger: logger}
}

func (p *LogPrinter) OnStatus(e StatusEvent) {
	level := slog.LevelDebug
	switch e.Status {
	case StatusSuccess, StatusSuccessWithWarnings:
		level = slog.LevelInfo
	case StatusFailed:
		level = slog.LevelError
	}
	attrs := []any{"asset", e.Asset, "status", e.Status.String()}
	if e.Reason != "" {
		attrs = append(attrs, "reason", e.Reason)
	}
	p.logger.Log(context.Background(), level, "Asset status changed.", attrs...)
}

func (p *LogPrinter) OnLog(e LogEvent) {
	p.logger.Log(context.Background(), slogLevel(e.Level), e.Message, "asset", e.Asset, "bundle", e.Bundle)
}

func (p *LogPrinter) OnBuildCompleted(e BuildCompleted) {
	attrs := []any{
		"content", e.Content,
		"duration", e.Duration,
		"success", e.Counts[StatusSuccess] + e.Counts[StatusSuccessWithWarnings],
		"skipped", e.Counts[StatusSkipped],
		"failed", e.Counts[StatusFailed],
	}
	switch {
	case e.Stopped:
		p.logger.Warn("🛑 Build stopped.", attrs...)
	case e.Failed:
		p.logger.Error("❌ Build failed.", attrs...)
	default:
		p.logger.Info("🏁 Build finished.", attrs...)
	}
}

func slogLevel(l Level) slog.Level {
	switch l {
	case LevelVerbose:
		return slog.LevelDebug
	case LevelWarning:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
