package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"tokenScope/internal/model"
	"tokenScope/internal/storage"
	"tokenScope/internal/trend"
	"tokenScope/internal/view"
	"tokenScope/internal/viewport"
)

// TokenFeed supplies the current token list and refresh signals.
type TokenFeed interface {
	Current() []model.Token
	Subscribe() chan struct{}
	Unsubscribe(chan struct{})
}

// HistoryService is the shared history cache facade a session fetches
// through.
type HistoryService interface {
	Ensure(ctx context.Context, keys []string)
	Cached(key string) bool
	Subscribe() chan string
	Unsubscribe(chan string)
}

// Deps bundles the shared services a session reads from.
type Deps struct {
	Feed     TokenFeed
	History  HistoryService
	Trends   *trend.Store
	Settings storage.Store
	Logger   *zap.Logger

	// FetchCtx outlives individual sessions: history fetches launched for a
	// session keep running after it disconnects so the shared cache still
	// gains the result.
	FetchCtx context.Context
}

// Session owns one client's view state: filters, derived sequence,
// expansion set, measured heights, and scroll position. Everything runs on
// the session goroutine, so handlers mutate freely without locks — the
// one-writer model the derivation pipeline assumes.
type Session struct {
	id       string
	feed     TokenFeed
	history  HistoryService
	trends   *trend.Store
	settings storage.Store
	logger   *zap.Logger
	fetchCtx context.Context

	msgs      chan model.ClientMessage
	frames    chan model.RenderFrame
	feedCh    chan struct{}
	histCh    chan string
	closeOnce sync.Once

	filters        model.FilterState
	tokens         []model.Token
	derived        []model.Token
	expanded       map[string]struct{}
	heights        *viewport.HeightModel
	virt           *viewport.Virtualizer
	scrollOffset   float64
	viewportWidth  float64
	viewportHeight float64
	dynamicScaling bool
	pendingScroll  *model.ScrollCommand
	seq            uint64
}

// NewSession builds a session. The viewport dimensions start at a plausible
// default and are corrected by the client's first resize message.
func NewSession(id string, deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fetchCtx := deps.FetchCtx
	if fetchCtx == nil {
		fetchCtx = context.Background()
	}
	s := &Session{
		id:             id,
		feed:           deps.Feed,
		history:        deps.History,
		trends:         deps.Trends,
		settings:       deps.Settings,
		logger:         logger.With(zap.String("session", id)),
		fetchCtx:       fetchCtx,
		msgs:           make(chan model.ClientMessage, 32),
		frames:         make(chan model.RenderFrame, 8),
		expanded:       make(map[string]struct{}),
		filters:        model.DefaultFilterState(),
		viewportWidth:  1200,
		viewportHeight: 800,
	}
	s.heights = viewport.NewHeightModel(viewport.ExpansionFunc(s.expandedAt))
	s.virt = viewport.NewVirtualizer(s.heights, viewport.DefaultOverscan)
	return s
}

func (s *Session) ID() string { return s.id }

// Messages is the inbound mailbox. Close ends Run once the mailbox drains.
func (s *Session) Messages() chan<- model.ClientMessage { return s.msgs }

// Frames carries outbound paints, newest-wins when the consumer lags.
func (s *Session) Frames() <-chan model.RenderFrame { return s.frames }

// Close shuts the inbound mailbox. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() { close(s.msgs) })
}

// Run executes the session loop until the context is done or the mailbox is
// closed. The first frame goes out immediately so the client can paint.
func (s *Session) Run(ctx context.Context) error {
	if s.feed == nil {
		return fmt.Errorf("token feed is nil")
	}
	if s.trends == nil {
		return fmt.Errorf("trend store is nil")
	}

	s.loadPersisted(ctx)

	s.feedCh = s.feed.Subscribe()
	defer s.feed.Unsubscribe(s.feedCh)
	if s.history != nil {
		s.histCh = s.history.Subscribe()
		defer s.history.Unsubscribe(s.histCh)
	}

	s.tokens = s.feed.Current()
	s.derive()
	s.emit()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-s.msgs:
			if !ok {
				return nil
			}
			s.handleMessage(ctx, msg)
		case <-s.feedCh:
			s.handleFeedRefresh()
		case key := <-s.histCh:
			s.handleHistoryArrival(key)
		}
	}
}

func (s *Session) loadPersisted(ctx context.Context) {
	if s.settings == nil {
		return
	}
	if data, found, err := s.settings.Load(ctx, storage.KeyFilters); err != nil {
		s.logger.Warn("load persisted filters", zap.Error(err))
	} else if found {
		var filters model.FilterState
		if err := json.Unmarshal(data, &filters); err != nil {
			s.logger.Warn("discarding unreadable filter blob", zap.Error(err))
		} else {
			s.filters = filters
		}
	}
	if data, found, err := s.settings.Load(ctx, storage.KeyDynamicScaling); err != nil {
		s.logger.Warn("load scaling preference", zap.Error(err))
	} else if found {
		var enabled bool
		if err := json.Unmarshal(data, &enabled); err != nil {
			s.logger.Warn("discarding unreadable scaling blob", zap.Error(err))
		} else {
			s.dynamicScaling = enabled
		}
	}
}

// derive recomputes the filtered/sorted sequence and resizes the scroll
// space. Measured heights and the scroll offset are left alone here; the
// filter update path layers its own resets on top.
func (s *Session) derive() {
	s.derived = view.Apply(s.tokens, s.filters)
	s.virt.SetLength(len(s.derived))
	s.scrollOffset = s.virt.ClampOffset(s.scrollOffset, s.viewportHeight)
}

func (s *Session) handleMessage(ctx context.Context, msg model.ClientMessage) {
	switch msg.Type {
	case model.MsgScroll:
		s.scrollOffset = s.virt.ClampOffset(msg.Offset, s.viewportHeight)
	case model.MsgMeasure:
		s.handleMeasure(msg.Index, msg.RowHeight)
	case model.MsgToggle:
		s.handleToggle(msg.Address)
	case model.MsgToggleAll:
		s.handleToggleAll()
	case model.MsgResize:
		s.handleResize(msg.ViewportWidth, msg.ViewportHeight)
	case model.MsgScaling:
		s.dynamicScaling = msg.Enabled
		s.persistJSON(ctx, storage.KeyDynamicScaling, msg.Enabled)
	case model.MsgFilters:
		s.handleFilters(ctx, msg.Filters)
	default:
		s.logger.Debug("unknown message type", zap.String("type", msg.Type))
		return
	}
	s.emit()
}

// handleMeasure folds one observed row height into the model. The extent
// shifts, so the client's offset is restored on the frame that carries the
// new layout.
func (s *Session) handleMeasure(index int, height float64) {
	if index < 0 || index >= len(s.derived) {
		return
	}
	if !s.heights.Measure(index, height) {
		return
	}
	captured := s.scrollOffset
	s.virt.Remeasure()
	s.pendingScroll = &model.ScrollCommand{Kind: model.ScrollKindOffset, Offset: captured}
}

func (s *Session) handleToggle(address string) {
	key := model.NormalizeAddress(address)
	index := s.indexOf(key)
	if index < 0 {
		s.logger.Debug("toggle for token outside the derived list", zap.String("token", key))
		return
	}
	if _, ok := s.expanded[key]; ok {
		delete(s.expanded, key)
	} else {
		s.expanded[key] = struct{}{}
	}
	s.heights.InvalidateIndex(index)
	s.virt.Remeasure()
	s.pendingScroll = &model.ScrollCommand{
		Kind:   model.ScrollKindIndex,
		Index:  index,
		Align:  model.AlignStart,
		Smooth: true,
	}
}

// handleToggleAll collapses everything when any filtered token is expanded,
// otherwise expands every filtered token. The asymmetry is intentional.
func (s *Session) handleToggleAll() {
	anyExpanded := false
	for i := range s.derived {
		if _, ok := s.expanded[s.derived[i].Key()]; ok {
			anyExpanded = true
			break
		}
	}
	if anyExpanded {
		s.expanded = make(map[string]struct{})
	} else {
		for i := range s.derived {
			s.expanded[s.derived[i].Key()] = struct{}{}
		}
	}
	captured := s.scrollOffset
	s.heights.InvalidateAll()
	s.virt.Remeasure()
	s.pendingScroll = &model.ScrollCommand{Kind: model.ScrollKindOffset, Offset: captured}
}

func (s *Session) handleResize(width, height float64) {
	if width > 0 {
		s.viewportWidth = width
	}
	if height > 0 {
		s.viewportHeight = height
	}
	captured := s.scrollOffset
	s.heights.InvalidateAll()
	s.virt.Remeasure()
	s.pendingScroll = &model.ScrollCommand{Kind: model.ScrollKindOffset, Offset: captured}
}

// handleFilters is the single mutation entry point for the filter state. A
// successful update persists the new state, re-derives the sequence, drops
// every positional height, and sends the viewport back to the top.
func (s *Session) handleFilters(ctx context.Context, filters *model.FilterState) {
	if filters == nil {
		s.logger.Debug("filters message without payload")
		return
	}
	s.filters = *filters
	s.persistJSON(ctx, storage.KeyFilters, s.filters)
	s.heights.InvalidateAll()
	s.derive()
	s.scrollOffset = 0
	s.pendingScroll = &model.ScrollCommand{Kind: model.ScrollKindOffset, Offset: 0}
}

// handleFeedRefresh folds in a wholesale replacement of the upstream list.
// Positional measurements and the scroll offset survive; visible rows
// re-measure on their next paint, which corrects any drift.
func (s *Session) handleFeedRefresh() {
	s.tokens = s.feed.Current()
	s.derive()
	s.emit()
}

func (s *Session) handleHistoryArrival(key string) {
	// Repaint only when the landed token is part of this session's view.
	if s.indexOf(key) < 0 {
		return
	}
	s.emit()
}

func (s *Session) indexOf(key string) int {
	for i := range s.derived {
		if s.derived[i].Key() == key {
			return i
		}
	}
	return -1
}

func (s *Session) expandedAt(index int) bool {
	if index < 0 || index >= len(s.derived) {
		return false
	}
	_, ok := s.expanded[s.derived[index].Key()]
	return ok
}

// persistJSON writes a settings blob. Persistence failures are logged and
// absorbed; a broken store never takes the session down.
func (s *Session) persistJSON(ctx context.Context, key string, value interface{}) {
	if s.settings == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("marshal settings blob", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.settings.Save(ctx, key, data); err != nil {
		s.logger.Warn("persist settings blob", zap.String("key", key), zap.Error(err))
	}
}

// emit builds and queues one frame — a complete paint of the visible
// window. A pending scroll command is resolved against the just-rebuilt
// layout, one frame after the mutation that scheduled it, and the session's
// own offset follows the command so subsequent windows agree with the
// client.
func (s *Session) emit() {
	cmd := s.pendingScroll
	s.pendingScroll = nil
	if cmd != nil {
		if cmd.Kind == model.ScrollKindIndex {
			cmd.Offset = s.virt.ScrollToIndex(cmd.Index, cmd.Align, s.viewportHeight)
		} else {
			cmd.Offset = s.virt.ClampOffset(cmd.Offset, s.viewportHeight)
		}
		s.scrollOffset = cmd.Offset
	}
	s.queueFrame(s.buildFrame(cmd))
}

func (s *Session) buildFrame(cmd *model.ScrollCommand) model.RenderFrame {
	start, end := s.virt.Window(s.scrollOffset, s.viewportHeight)
	rows := make([]model.RowView, 0, end-start)
	missing := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		token := s.derived[i]
		key := token.Key()
		_, expanded := s.expanded[key]
		rows = append(rows, model.RowView{
			Index:    i,
			Token:    token,
			Expanded: expanded,
			Trends:   s.trends.Pair(key),
			Top:      s.virt.OffsetOf(i),
			Height:   s.virt.HeightOf(i),
		})
		if s.history != nil && !s.history.Cached(key) {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		s.history.Ensure(s.fetchCtx, missing)
	}

	s.seq++
	return model.RenderFrame{
		Seq:            s.seq,
		Rows:           rows,
		WindowStart:    start,
		WindowEnd:      end,
		TotalCount:     len(s.derived),
		TotalHeight:    s.virt.TotalHeight(),
		DynamicScaling: s.dynamicScaling,
		Scroll:         cmd,
	}
}

// queueFrame delivers with newest-wins semantics: every frame is a full
// paint, so when the client lags only the latest one matters.
func (s *Session) queueFrame(frame model.RenderFrame) {
	select {
	case s.frames <- frame:
		return
	default:
	}
	select {
	case <-s.frames:
	default:
	}
	select {
	case s.frames <- frame:
	default:
	}
}
