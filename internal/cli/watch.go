package cli

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/domain"
)

// DefaultWatchInterval is how often a watched port is re-read.
const DefaultWatchInterval = time.Second

// Extractor reads one port.
type Extractor interface {
	Extract(ctx context.Context, node, port string) (*domain.ExtractionResult, error)
}

// WatchOptions selects the port to watch.
type WatchOptions struct {
	Node     string
	Port     string
	Interval time.Duration
	Logger   *slog.Logger
}

// Watch re-extracts a port every interval and calls render whenever the data
// differs from the last render. The first read always renders. Host failures
// are logged and retried on the next tick; a missing node stops the watch.
// Watch returns nil when ctx is cancelled.
func Watch(ctx context.Context, insp Extractor, opts WatchOptions, render func(*domain.ExtractionResult) error) error {
	if opts.Interval <= 0 {
		opts.Interval = DefaultWatchInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	var (
		last     [md5.Size]byte
		rendered bool
	)
	poll := func() error {
		result, err := insp.Extract(ctx, opts.Node, opts.Port)
		if err != nil {
			if errors.Is(err, domain.ErrNodeNotFound) || ctx.Err() != nil {
				return err
			}
			logger.Warn("watch read failed, retrying", "node", opts.Node, "port", opts.Port, "err", err)
			return nil
		}
		b, err := json.Marshal(result)
		if err != nil {
			return err
		}
		sum := md5.Sum(b)
		if rendered && sum == last {
			return nil
		}
		last, rendered = sum, true
		logger.Debug("port changed", "node", opts.Node, "port", opts.Port)
		return render(result)
	}

	if err := poll(); err != nil {
		return ignoreCancel(ctx, err)
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := poll(); err != nil {
				return ignoreCancel(ctx, err)
			}
		}
	}
}

func ignoreCancel(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	return err
}
