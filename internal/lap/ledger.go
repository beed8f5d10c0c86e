package lap

import (
	"sort"
	"sync"
	"time"

	"github.com/MARDON1989/gearbox-live-telemetry/internal/session"
)

// UnknownName labels track/car fields an agent did not report.
const UnknownName = "Unknown"

// Ledger is the append-only log of lap records. Records are never mutated
// or reordered after insertion; append order is the only order.
type Ledger struct {
	mu      sync.RWMutex
	records []Record
}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Append builds a record from a raw telemetry payload if it carries a
// usable lap time. Payloads with an absent, non-numeric, zero or negative
// lapTime are skipped and the ledger is left unchanged.
func (l *Ledger) Append(payload map[string]any, sess session.Session, now time.Time) (Record, bool) {
	lapTime, ok := number(payload["lapTime"])
	if !ok || lapTime <= 0 {
		return Record{}, false
	}

	rec := Record{
		AgentID:      sess.ID,
		DriverName:   sess.DriverName,
		ComputerName: sess.ComputerName,
		TrackName:    stringOr(payload["trackName"], UnknownName),
		CarName:      stringOr(payload["carName"], UnknownName),
		LapTime:      lapTime,
		LapNumber:    lapNumber(payload["lapNumber"]),
		IsValid:      boolOrTrue(payload["isValid"]),
		RecordedAt:   now,
	}

	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
	return rec, true
}

// Recent returns the last n records in insertion order, oldest of the
// window first. n larger than the ledger returns the whole ledger.
func (l *Ledger) Recent(n int) []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.records) {
		n = len(l.records)
	}
	out := make([]Record, n)
	copy(out, l.records[len(l.records)-n:])
	return out
}

// All returns a copy of the full ledger.
func (l *Ledger) All() []Record {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Len reports the number of recorded laps.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Stats recomputes lap totals and the distinct driver/track sets.
func (l *Ledger) Stats() Stats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	drivers := make(map[string]struct{})
	tracks := make(map[string]struct{})
	for _, rec := range l.records {
		drivers[rec.DriverName] = struct{}{}
		tracks[rec.TrackName] = struct{}{}
	}

	return Stats{
		TotalLaps: len(l.records),
		Drivers:   sortedKeys(drivers),
		Tracks:    sortedKeys(tracks),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func lapNumber(v any) int {
	n, ok := number(v)
	if !ok || n < 0 {
		return 0
	}
	return int(n)
}

func boolOrTrue(v any) bool {
	b, ok := v.(bool)
	return !ok || b
}
