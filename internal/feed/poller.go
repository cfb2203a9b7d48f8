package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/stats"
)

// TokenSource supplies the full upstream token list.
type TokenSource interface {
	FetchTokens(ctx context.Context) ([]model.Token, error)
}

// PollerConfig holds runtime settings for the poller.
type PollerConfig struct {
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Poller refreshes the shared token list on a fixed interval. Every refresh
// replaces the list wholesale; a failed refresh keeps the previous list and
// is only logged. Subscribers get a coalesced signal per replacement.
type Poller struct {
	cfg       PollerConfig
	source    TokenSource
	collector *stats.Collector
	logger    *zap.Logger

	mu     sync.RWMutex
	tokens []model.Token
	subs   []chan struct{}
}

// NewPoller builds a Poller with its dependencies.
func NewPoller(cfg PollerConfig, source TokenSource, collector *stats.Collector, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		cfg:       cfg,
		source:    source,
		collector: collector,
		logger:    logger,
	}
}

// Run executes the polling loop until the context is done. The first fetch
// happens immediately so sessions have data before the first tick.
func (p *Poller) Run(ctx context.Context) error {
	if p.source == nil {
		return fmt.Errorf("token source is nil")
	}

	p.refresh(ctx)

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.refresh(ctx)
		}
	}
}

func (p *Poller) refresh(ctx context.Context) {
	var tokens []model.Token
	err := WithRetry(ctx, p.cfg.MaxRetries, p.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		tokens, err = p.source.FetchTokens(ctx)
		return err
	})
	if err != nil {
		p.logger.Warn("token refresh failed, keeping previous list", zap.Error(err))
		return
	}

	p.mu.Lock()
	p.tokens = tokens
	p.mu.Unlock()

	if p.collector != nil {
		p.collector.RecordCycle(tokens)
	}
	p.logger.Info("token list refreshed", zap.Int("tokens", len(tokens)))
	p.notify()
}

// Current returns a copy of the latest token list.
func (p *Poller) Current() []model.Token {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Token, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// Subscribe returns a channel that carries one signal per completed refresh.
// The signal is coalesced: a subscriber that has not drained the previous
// one misses nothing it would act on differently.
func (p *Poller) Subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel registered with Subscribe.
func (p *Poller) Unsubscribe(ch chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subs {
		if sub == ch {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			break
		}
	}
}

func (p *Poller) notify() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, sub := range p.subs {
		select {
		case sub <- struct{}{}:
		default:
		}
	}
}
