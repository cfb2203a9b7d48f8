package history

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/storage"
	"tokenScope/internal/trend"
)

// Fetcher retrieves the sample series for one token.
type Fetcher interface {
	FetchTokenHistory(ctx context.Context, address string) ([]model.HistorySample, error)
}

// Service owns the history cache shared by every session. Fetches are
// fire-and-forget: each missing token gets its own goroutine, a second
// request for a token already in flight is suppressed, and a failed fetch
// leaves the entry absent so a later visibility event retries it.
type Service struct {
	cache    *Cache
	fetcher  Fetcher
	trends   *trend.Store
	settings storage.Store
	logger   *zap.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
	subs     []chan string
}

func NewService(cache *Cache, fetcher Fetcher, trends *trend.Store, settings storage.Store, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NewCache()
	}
	if trends == nil {
		trends = trend.NewStore()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cache:    cache,
		fetcher:  fetcher,
		trends:   trends,
		settings: settings,
		logger:   logger,
		inflight: make(map[string]struct{}),
	}
}

// LoadPersisted seeds the cache and trend store from the persisted blob, if
// one exists and is still fresh.
func (s *Service) LoadPersisted(ctx context.Context) error {
	if s.settings == nil {
		return nil
	}
	data, found, err := s.settings.Load(ctx, storage.KeyTokenHistory)
	if err != nil {
		return fmt.Errorf("load history blob: %w", err)
	}
	if !found {
		return nil
	}

	var blob model.HistoryBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		s.logger.Warn("discarding unreadable history blob", zap.Error(err))
		return nil
	}

	loaded := s.cache.LoadBlob(blob, time.Now())
	if loaded > 0 {
		for key := range blob.Data {
			if rec, ok := s.cache.Get(key); ok {
				s.trends.Update(key, rec.Samples)
			}
		}
	}
	s.logger.Info("history blob loaded", zap.Int("tokens", loaded))
	return nil
}

// Cached reports whether the token's history is already present.
func (s *Service) Cached(key string) bool {
	return s.cache.Has(key)
}

// Record returns the cached record for a token key.
func (s *Service) Record(key string) (model.HistoryRecord, bool) {
	return s.cache.Get(key)
}

// Ensure requests history for every key not yet cached. Each miss is fetched
// in its own goroutine; keys already cached or already being fetched are
// skipped. Callers do not wait, and nothing cancels a fetch once started —
// pass a process-lifetime context, not a per-viewport one.
func (s *Service) Ensure(ctx context.Context, keys []string) {
	for _, key := range keys {
		if key == "" || s.cache.Has(key) {
			continue
		}
		s.mu.Lock()
		if _, busy := s.inflight[key]; busy {
			s.mu.Unlock()
			continue
		}
		s.inflight[key] = struct{}{}
		s.mu.Unlock()
		go s.fetchOne(ctx, key)
	}
}

func (s *Service) fetchOne(ctx context.Context, key string) {
	defer func() {
		s.mu.Lock()
		delete(s.inflight, key)
		s.mu.Unlock()
	}()

	if s.fetcher == nil {
		return
	}
	samples, err := s.fetcher.FetchTokenHistory(ctx, key)
	if err != nil {
		s.logger.Warn("history fetch failed", zap.String("token", key), zap.Error(err))
		return
	}
	s.Put(ctx, key, samples)
	s.notify(key)
}

// Put stores fetched samples, recomputes the token's trends, and persists
// the whole cache blob so a restart inside the staleness window starts warm.
func (s *Service) Put(ctx context.Context, key string, samples []model.HistorySample) {
	s.cache.Put(key, samples)
	s.trends.Update(key, samples)
	s.persist(ctx)
}

func (s *Service) persist(ctx context.Context) {
	if s.settings == nil {
		return
	}
	blob := s.cache.Snapshot()
	data, err := json.Marshal(blob)
	if err != nil {
		s.logger.Error("marshal history blob", zap.Error(err))
		return
	}
	if err := s.settings.Save(ctx, storage.KeyTokenHistory, data); err != nil {
		s.logger.Warn("persist history blob", zap.Error(err))
	}
}

// Subscribe returns a channel that receives the key of every token whose
// history lands from now on. Slow receivers miss keys rather than block the
// fetch path; a missed key only delays a redraw.
func (s *Service) Subscribe() chan string {
	ch := make(chan string, 64)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel registered with Subscribe.
func (s *Service) Unsubscribe(ch chan string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.subs {
		if sub == ch {
			s.subs = append(s.subs[:i], s.subs[i+1:]...)
			break
		}
	}
}

func (s *Service) notify(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sub := range s.subs {
		select {
		case sub <- key:
		default:
		}
	}
}

// InflightCount reports how many fetches are currently running.
func (s *Service) InflightCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}
