package middleware

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/shrek82/jsql/core"
)

// SlowLogBuilder builds a middleware that logs commands taking longer than
// the configured threshold.
type SlowLogBuilder struct {
	Threshold time.Duration
	LogPath   string // empty logs to standard output
	logger    *log.Logger
}

// NewSlowLog creates a SlowLogBuilder. Commands slower than threshold are
// logged to logPath, or to standard output when logPath is empty.
func NewSlowLog(threshold time.Duration, logPath string) *SlowLogBuilder {
	return &SlowLogBuilder{
		Threshold: threshold,
		LogPath:   logPath,
	}
}

// SetOutput sets the output destination for the logger.
// This is useful for testing or custom logging.
func (b *SlowLogBuilder) SetOutput(w io.Writer) {
	b.logger = log.New(w, "[SLOW SQL] ", log.LstdFlags)
}

func (b *SlowLogBuilder) Build() (core.Middleware, error) {
	if b.logger == nil {
		if b.LogPath != "" {
			f, err := os.OpenFile(b.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return nil, fmt.Errorf("failed to open slow log file: %w", err)
			}
			b.logger = log.New(f, "[SLOW SQL] ", log.LstdFlags)
		} else {
			b.logger = log.New(os.Stdout, "[SLOW SQL] ", log.LstdFlags)
		}
	}

	return func(next core.ExecFunc) core.ExecFunc {
		return func(ctx context.Context, info *core.ExecInfo) *core.ExecResult {
			start := time.Now()
			res := next(ctx, info)
			duration := time.Since(start)

			if duration > b.Threshold {
				b.logger.Printf("duration=%v | kind=%s | command=%s | args=%v | err=%v",
					duration, info.Kind, info.Description, info.Args, res.Err)
			}
			return res
		}
	}, nil
}
