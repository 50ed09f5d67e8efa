// Package notify delivers transient user-facing notifications.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Kind is the severity of a notification.
type Kind string

const (
	Success Kind = "success"
	Danger  Kind = "danger"
)

// DefaultTTL is how long a banner notification stays visible.
const DefaultTTL = 5 * time.Second

// Notification is a single message shown to the user.
type Notification struct {
	Kind    Kind
	Message string
	At      time.Time
}

// Sink receives notifications. Notify must not block.
type Sink interface {
	Notify(kind Kind, message string)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(kind Kind, message string)

func (f SinkFunc) Notify(kind Kind, message string) { f(kind, message) }

// Multi fans a notification out to every sink.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

type multi []Sink

func (m multi) Notify(kind Kind, message string) {
	for _, s := range m {
		if s != nil {
			s.Notify(kind, message)
		}
	}
}

// LogSink writes notifications to a zap logger.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Notify(kind Kind, message string) {
	if s.Logger == nil {
		return
	}
	if kind == Danger {
		s.Logger.Warn("notification", zap.String("kind", string(kind)), zap.String("message", message))
		return
	}
	s.Logger.Info("notification", zap.String("kind", string(kind)), zap.String("message", message))
}

// Timer is the subset of *time.Timer a Banner needs.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules fn after d.
type AfterFunc func(d time.Duration, fn func()) Timer

func stdAfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// Banner keeps the most recent notification visible until its TTL elapses or
// a newer one replaces it.
type Banner struct {
	mu      sync.Mutex
	ttl     time.Duration
	after   AfterFunc
	now     func() time.Time
	current *Notification
	timer   Timer
	seq     uint64
	onClear func()
}

// BannerOption configures a Banner.
type BannerOption func(*Banner)

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) BannerOption {
	return func(b *Banner) {
		if ttl > 0 {
			b.ttl = ttl
		}
	}
}

// WithAfterFunc replaces the timer source, mainly for tests.
func WithAfterFunc(fn AfterFunc) BannerOption {
	return func(b *Banner) {
		if fn != nil {
			b.after = fn
		}
	}
}

// WithClock replaces the clock used to stamp notifications.
func WithClock(now func() time.Time) BannerOption {
	return func(b *Banner) {
		if now != nil {
			b.now = now
		}
	}
}

// OnDismiss registers a callback run when a notification expires.
func OnDismiss(fn func()) BannerOption {
	return func(b *Banner) {
		b.onClear = fn
	}
}

// NewBanner constructs a Banner.
func NewBanner(opts ...BannerOption) *Banner {
	b := &Banner{
		ttl:   DefaultTTL,
		after: stdAfterFunc,
		now:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b
}

// Notify replaces the current notification and restarts the dismiss timer.
func (b *Banner) Notify(kind Kind, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.seq++
	seq := b.seq
	b.current = &Notification{Kind: kind, Message: message, At: b.now()}
	b.timer = b.after(b.ttl, func() { b.expire(seq) })
}

// expire clears the banner only if no newer notification arrived since seq
// was scheduled; a stopped timer may still fire.
func (b *Banner) expire(seq uint64) {
	b.mu.Lock()
	if seq != b.seq || b.current == nil {
		b.mu.Unlock()
		return
	}
	b.current = nil
	b.timer = nil
	onClear := b.onClear
	b.mu.Unlock()

	if onClear != nil {
		onClear()
	}
}

// Current returns the visible notification, if any.
func (b *Banner) Current() (Notification, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return Notification{}, false
	}
	return *b.current, true
}

// Dismiss hides the current notification immediately.
func (b *Banner) Dismiss() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.seq++
	b.current = nil
}
