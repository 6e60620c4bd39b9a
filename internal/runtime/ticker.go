package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zeusync/zeuscene/internal/core/observability/log"
	"github.com/zeusync/zeuscene/internal/editor"
	"golang.org/x/sync/errgroup"
)

// FrameSink receives every distinct frame the ticker produces.
type FrameSink interface {
	Name() string
	SendFrame(ctx context.Context, f Frame) error
}

// Ticker drives editor playback at a fixed rate and forwards the resulting
// frames to its sinks. Frames identical to the previous one are not re-sent.
type Ticker struct {
	editor   *editor.Editor
	interval time.Duration
	sinks    []FrameSink
	logger   log.Log

	mu       sync.Mutex
	lastHash uint64
	seq      uint64
}

func NewTicker(e *editor.Editor, interval time.Duration, logger log.Log, sinks ...FrameSink) *Ticker {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Ticker{
		editor:   e,
		interval: interval,
		sinks:    sinks,
		logger:   logger.With(log.String("component", "ticker")),
	}
}

// AddSink registers a sink. Not safe to call while Run is active.
func (t *Ticker) AddSink(s FrameSink) {
	t.sinks = append(t.sinks, s)
}

// Run ticks until ctx is done. Deltas come from the monotonic clock, so wall
// clock jumps never move playback.
func (t *Ticker) Run(ctx context.Context) error {
	if t.interval <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidInterval, t.interval)
	}
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	t.logger.Info("Ticker started", log.Duration("interval", t.interval), log.Int("sinks", len(t.sinks)))
	prev := time.Now()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Ticker stopped")
			return nil
		case now := <-tk.C:
			delta := now.Sub(prev)
			prev = now
			if err := t.Step(ctx, delta.Seconds()); err != nil {
				t.logger.Warn("Frame delivery failed", log.Error(err))
			}
		}
	}
}

// Step advances playback by delta seconds and publishes the resulting frame.
func (t *Ticker) Step(ctx context.Context, delta float64) error {
	t.editor.Tick(delta)
	return t.Publish(ctx)
}

// Publish sends the current snapshot to every sink unless it matches the last
// frame sent.
func (t *Ticker) Publish(ctx context.Context) error {
	f, err := EncodeFrame(t.editor.Snapshot())
	if err != nil {
		return err
	}

	t.mu.Lock()
	if t.seq > 0 && f.Hash == t.lastHash {
		t.mu.Unlock()
		return nil
	}
	t.seq++
	t.lastHash = f.Hash
	f.Seq = t.seq
	t.mu.Unlock()

	var g errgroup.Group
	for _, s := range t.sinks {
		g.Go(func() error {
			if err := s.SendFrame(ctx, f); err != nil {
				return fmt.Errorf("sink %s: %w", s.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Sent returns the number of distinct frames published so far.
func (t *Ticker) Sent() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq
}
