package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/zeebo/xxh3"

	"github.com/0xkowalskidev/sourcequery/protocol"
)

// WatchConfig configures a Watcher.
type WatchConfig struct {
	Servers        []string
	Interval       time.Duration
	MaxConcurrency int
	Logger         zerolog.Logger
	QueryOptions   []Option

	// OnChange fires when a server's decoded info differs from the
	// previous poll, including the first successful poll.
	OnChange func(addr string, info *protocol.ServerInfo)
}

// Watcher polls a fixed set of servers and reports state changes. Each
// server gets its own circuit breaker so hosts that keep failing are
// skipped for a while instead of being hammered every tick.
type Watcher struct {
	cfg      WatchConfig
	breakers map[string]*gobreaker.CircuitBreaker[*protocol.ServerInfo]

	mu      sync.Mutex
	digests map[string]uint64
}

// NewWatcher creates a Watcher for the configured servers.
func NewWatcher(cfg WatchConfig) *Watcher {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = len(cfg.Servers)
	}
	if cfg.MaxConcurrency < 1 {
		cfg.MaxConcurrency = 1
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker[*protocol.ServerInfo], len(cfg.Servers))
	for _, addr := range cfg.Servers {
		breakers[addr] = newServerBreaker(addr, cfg.Logger)
	}

	return &Watcher{
		cfg:      cfg,
		breakers: breakers,
		digests:  make(map[string]uint64, len(cfg.Servers)),
	}
}

func newServerBreaker(addr string, log zerolog.Logger) *gobreaker.CircuitBreaker[*protocol.ServerInfo] {
	return gobreaker.NewCircuitBreaker[*protocol.ServerInfo](gobreaker.Settings{
		Name:        addr,
		MaxRequests: 1,
		Interval:    2 * time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Info().Str("server", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("circuit state changed")
		},
	})
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.Poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Poll(ctx)
		}
	}
}

// Poll queries every configured server once, bounded by MaxConcurrency.
func (w *Watcher) Poll(ctx context.Context) {
	semaphore := make(chan struct{}, w.cfg.MaxConcurrency)
	var wg sync.WaitGroup

	for _, addr := range w.cfg.Servers {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			w.pollServer(ctx, addr)
		}(addr)
	}

	wg.Wait()
}

func (w *Watcher) pollServer(ctx context.Context, addr string) {
	info, err := w.breakers[addr].Execute(func() (*protocol.ServerInfo, error) {
		return Query(ctx, addr, w.cfg.QueryOptions...)
	})
	if err != nil {
		w.cfg.Logger.Warn().Str("server", addr).Err(err).Msg("poll failed")
		return
	}

	d := digest(info)
	w.mu.Lock()
	prev, seen := w.digests[addr]
	w.digests[addr] = d
	w.mu.Unlock()

	if seen && prev == d {
		return
	}

	w.cfg.Logger.Info().Str("server", addr).Str("name", info.Name).
		Str("map", info.Map).Uint8("players", info.Players).
		Msg("server state changed")

	if w.cfg.OnChange != nil {
		w.cfg.OnChange(addr, info)
	}
}

// BreakerState reports the circuit state for one configured server.
func (w *Watcher) BreakerState(addr string) (gobreaker.State, bool) {
	cb, ok := w.breakers[addr]
	if !ok {
		return 0, false
	}
	return cb.State(), true
}

// digest hashes the decoded record so unchanged servers stay quiet
// between polls.
func digest(info *protocol.ServerInfo) uint64 {
	b, _ := json.Marshal(info)
	return xxh3.Hash(b)
}
