package random

import (
	"context"
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	mrand "math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/louisbranch/dmassist/internal/platform/logging"
)

const (
	// DefaultCapacity is the number of 64-bit words fetched per refill.
	DefaultCapacity = 4096

	refillKey = "refill"
)

// block is one published generation of pre-fetched words. The cursor only
// moves forward and never passes len(words).
type block struct {
	words  []uint64
	cursor atomic.Int64
}

func (b *block) next() (uint64, bool) {
	for {
		c := b.cursor.Load()
		if c >= int64(len(b.words)) {
			return 0, false
		}
		if b.cursor.CompareAndSwap(c, c+1) {
			return b.words[c], true
		}
	}
}

func (b *block) remaining() int {
	return len(b.words) - int(b.cursor.Load())
}

// Pool is a refillable buffer of uniformly distributed words. Draws never
// block on entropy: once the pool runs dry they are served by math/rand/v2
// until a refill publishes a new block.
type Pool struct {
	current      atomic.Pointer[block]
	capacity     int
	lowWatermark int
	entropy      io.Reader

	refills    singleflight.Group
	logger     *zap.Logger
	metrics    *poolMetrics
	failureLog *rate.Sometimes
}

// PoolOption configures a Pool.
type PoolOption func(*Pool)

// WithCapacity sets the number of words fetched per refill.
func WithCapacity(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.capacity = n
		}
	}
}

// WithLowWatermark sets the remaining-word threshold under which IsLow
// reports true.
func WithLowWatermark(n int) PoolOption {
	return func(p *Pool) {
		if n >= 0 {
			p.lowWatermark = n
		}
	}
}

// WithEntropy replaces crypto/rand as the refill source.
func WithEntropy(r io.Reader) PoolOption {
	return func(p *Pool) {
		if r != nil {
			p.entropy = r
		}
	}
}

// WithLogger sets the logger used for refill failures.
func WithLogger(logger *zap.Logger) PoolOption {
	return func(p *Pool) {
		p.logger = logging.OrNop(logger)
	}
}

// NewPool creates an empty pool. Call Fill or RefillAsync to load it; until
// then every draw uses the fallback generator.
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{
		capacity:     DefaultCapacity,
		lowWatermark: -1,
		entropy:      crand.Reader,
		logger:       zap.NewNop(),
		metrics:      newPoolMetrics(),
		failureLog:   &rate.Sometimes{First: 1, Interval: time.Minute},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.lowWatermark < 0 {
		p.lowWatermark = p.capacity / 4
	}
	p.current.Store(&block{})
	return p
}

// Capacity returns the number of words fetched per refill.
func (p *Pool) Capacity() int {
	return p.capacity
}

// LowWatermark returns the threshold used by IsLow.
func (p *Pool) LowWatermark() int {
	return p.lowWatermark
}

// Remaining returns the number of unread words in the current block.
func (p *Pool) Remaining() int {
	return p.current.Load().remaining()
}

// IsLow reports whether fewer than LowWatermark words remain.
func (p *Pool) IsLow() bool {
	return p.Remaining() < p.lowWatermark
}

// Intn returns a uniformly distributed value in [min, max]. Bounds are
// swapped when reversed.
func (p *Pool) Intn(min, max int) int {
	if min > max {
		min, max = max, min
	}
	span := uint64(max-min) + 1
	if span == 0 {
		return int(p.word())
	}

	// Reject the tail of the word range that would bias the modulo.
	tail := (math.MaxUint64%span + 1) % span
	for {
		w := p.word()
		if tail == 0 || w <= math.MaxUint64-tail {
			return min + int(w%span)
		}
	}
}

func (p *Pool) word() uint64 {
	if w, ok := p.current.Load().next(); ok {
		return w
	}
	p.metrics.fallbacks.Inc()
	return mrand.Uint64()
}

// RefillAsync starts a background refill. While one is running further
// calls are no-ops. Failures are logged and never reported to the caller.
func (p *Pool) RefillAsync() {
	p.refills.DoChan(refillKey, p.refill)
}

// Fill refills the pool and waits for the new block to be published, or
// for ctx to end. The refill itself keeps running if ctx ends first.
func (p *Pool) Fill(ctx context.Context) error {
	ch := p.refills.DoChan(refillKey, p.refill)
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pool) refill() (any, error) {
	buf := make([]byte, p.capacity*8)
	if _, err := io.ReadFull(p.entropy, buf); err != nil {
		p.metrics.refills.WithLabelValues(refillResultError).Inc()
		p.failureLog.Do(func() {
			p.logger.Warn("randomness pool refill failed",
				zap.Error(err),
				zap.Int("remaining", p.Remaining()),
			)
		})
		return nil, fmt.Errorf("read entropy: %w", err)
	}

	next := &block{words: make([]uint64, p.capacity)}
	for i := range next.words {
		next.words[i] = binary.LittleEndian.Uint64(buf[i*8:])
	}
	p.current.Store(next)

	p.metrics.refills.WithLabelValues(refillResultOK).Inc()
	p.logger.Debug("randomness pool refilled", zap.Int("capacity", p.capacity))
	return nil, nil
}
