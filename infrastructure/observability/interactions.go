package observability

import (
	"sync"

	"brainbrowser/application/ports"

	"go.uber.org/zap/zapcore"
)

// InteractionCapacity is how many log entries the interaction log keeps
const InteractionCapacity = 1000

// interactionRing is the storage shared by every core derived with With
type interactionRing struct {
	mu       sync.Mutex
	entries  []ports.InteractionEntry
	next     int
	full     bool
	tracking bool
}

// InteractionLog is a zapcore.Core that keeps the most recent log entries
// in memory while tracking is on. Tee it with the process core so the
// session's own log lines become the interaction history.
type InteractionLog struct {
	ring   *interactionRing
	level  zapcore.LevelEnabler
	fields []zapcore.Field
}

// NewInteractionLog captures entries enabled by level, keeping capacity of
// them. Tracking starts on.
func NewInteractionLog(level zapcore.LevelEnabler, capacity int) *InteractionLog {
	if capacity <= 0 {
		capacity = InteractionCapacity
	}
	return &InteractionLog{
		ring: &interactionRing{
			entries:  make([]ports.InteractionEntry, capacity),
			tracking: true,
		},
		level: level,
	}
}

var (
	_ zapcore.Core             = (*InteractionLog)(nil)
	_ ports.InteractionHistory = (*InteractionLog)(nil)
)

// Enabled implements zapcore.LevelEnabler
func (l *InteractionLog) Enabled(lvl zapcore.Level) bool {
	l.ring.mu.Lock()
	tracking := l.ring.tracking
	l.ring.mu.Unlock()
	return tracking && l.level.Enabled(lvl)
}

// With implements zapcore.Core
func (l *InteractionLog) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &InteractionLog{ring: l.ring, level: l.level, fields: merged}
}

// Check implements zapcore.Core
func (l *InteractionLog) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if l.Enabled(ent.Level) {
		return ce.AddCore(ent, l)
	}
	return ce
}

// Write implements zapcore.Core
func (l *InteractionLog) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range l.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}

	entry := ports.InteractionEntry{
		Time:    ent.Time,
		Level:   ent.Level.String(),
		Message: ent.Message,
	}
	if len(enc.Fields) > 0 {
		entry.Fields = enc.Fields
	}

	r := l.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.tracking {
		return nil
	}
	r.entries[r.next] = entry
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
	return nil
}

// Sync implements zapcore.Core
func (l *InteractionLog) Sync() error { return nil }

// SetTracking turns capture on or off. Captured entries are kept.
func (l *InteractionLog) SetTracking(enabled bool) {
	l.ring.mu.Lock()
	l.ring.tracking = enabled
	l.ring.mu.Unlock()
}

// Len reports how many entries are held
func (l *InteractionLog) Len() int {
	r := l.ring
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}

// Recent returns up to n entries, oldest first
func (l *InteractionLog) Recent(n int) []ports.InteractionEntry {
	r := l.ring
	r.mu.Lock()
	defer r.mu.Unlock()

	size := r.next
	if r.full {
		size = len(r.entries)
	}
	if n <= 0 || size == 0 {
		return nil
	}
	if n > size {
		n = size
	}

	out := make([]ports.InteractionEntry, n)
	start := r.next - n
	if start < 0 {
		start += len(r.entries)
	}
	for i := 0; i < n; i++ {
		out[i] = r.entries[(start+i)%len(r.entries)]
	}
	return out
}
