package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/MARDON1989/gearbox-live-telemetry/internal/bus"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/envelope"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/lap"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/metrics"
	"github.com/MARDON1989/gearbox-live-telemetry/internal/session"
)

// Outbound event names on the viewer feed.
const (
	EventInitialData   = "initial-data"
	EventAgentsUpdate  = "agents-update"
	EventNewLap        = "new-lap"
	EventLiveTelemetry = "live-telemetry"
	EventError         = "error"
)

// InitialData is the snapshot handed to every new connection before live
// events start flowing.
type InitialData struct {
	Agents     []session.Session `json:"agents"`
	RecentLaps []lap.Record      `json:"recentLaps"`
}

// Stats is the aggregate snapshot served on /api/stats.
type Stats struct {
	TotalLaps    int      `json:"totalLaps"`
	ActiveAgents int      `json:"activeAgents"`
	Drivers      []string `json:"drivers"`
	Tracks       []string `json:"tracks"`
}

// Hub owns the session registry and lap ledger and fans derived events out
// to viewers. Every state mutation and the publish derived from it happen
// under one mutex, so ledger order and broadcast order always agree.
type Hub struct {
	mu       sync.Mutex
	registry *session.Registry
	ledger   *lap.Ledger
	bus      *bus.Bus
	metrics  *metrics.Metrics

	recentSnapshot int
	now            func() time.Time
}

func New(registry *session.Registry, ledger *lap.Ledger, b *bus.Bus, m *metrics.Metrics, recentSnapshot int) *Hub {
	return &Hub{
		registry:       registry,
		ledger:         ledger,
		bus:            b,
		metrics:        m,
		recentSnapshot: recentSnapshot,
		now:            time.Now,
	}
}

func (h *Hub) Registry() *session.Registry { return h.registry }
func (h *Hub) Ledger() *lap.Ledger         { return h.ledger }

// Attach subscribes a new connection to the feed and returns its
// subscription together with the initial snapshot.
func (h *Hub) Attach(connID string) (*bus.Subscription, InitialData) {
	sub := h.bus.Subscribe()
	h.metrics.Viewers.Inc()

	h.mu.Lock()
	init := InitialData{
		Agents:     h.registry.Snapshot(),
		RecentLaps: h.ledger.Recent(h.recentSnapshot),
	}
	h.mu.Unlock()

	log.Printf("hub: client connected: %s", connID)
	return sub, init
}

// Detach drops the subscription and removes the agent session, if one was
// registered on this connection.
func (h *Hub) Detach(connID string, sub *bus.Subscription) {
	h.bus.Unsubscribe(sub)
	h.metrics.Viewers.Dec()
	h.Disconnect(connID)
}

// HandleMessage dispatches one validated frame from a connection.
func (h *Hub) HandleMessage(connID string, env envelope.Envelope) {
	switch env.Type {
	case envelope.TypeRegisterAgent:
		h.Register(connID, env.Data)
	case envelope.TypeTelemetryData:
		h.Telemetry(connID, env.Data)
	}
}

// Register records the agent identity for a connection and broadcasts the
// updated presence list. Re-registering replaces the previous identity.
func (h *Hub) Register(connID string, data json.RawMessage) {
	var reg session.Registration
	// fields of the wrong type are simply left empty and defaulted below
	_ = json.Unmarshal(data, &reg)

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.registry.Register(connID, reg, h.now())
	h.metrics.ActiveAgents.Set(float64(h.registry.Count()))
	log.Printf("hub: agent registered: %s from %s", s.DriverName, s.ComputerName)
	h.publish(bus.Event{Type: EventAgentsUpdate, Data: h.registry.Snapshot()})
}

// Telemetry processes one telemetry-data frame. Frames from connections
// that never registered are discarded without touching the ledger. A frame
// carrying a usable lap time yields a new-lap broadcast; every frame yields
// a live-telemetry broadcast stamped with the agent's identity.
func (h *Hub) Telemetry(connID string, data json.RawMessage) {
	h.metrics.MessagesTotal.Inc()

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		h.metrics.InvalidTotal.Inc()
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sess, err := h.registry.Touch(connID, h.now())
	if err != nil {
		// unregistered connections are not a valid data source
		return
	}

	if rec, ok := h.ledger.Append(payload, sess, h.now()); ok {
		h.metrics.LapsTotal.Inc()
		log.Printf("hub: lap recorded: %s - %.3fs", rec.DriverName, rec.LapTime)
		h.publish(bus.Event{Type: EventNewLap, Data: rec})
	}

	live := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		live[k] = v
	}
	live["agentId"] = connID
	live["driverName"] = sess.DriverName
	h.publish(bus.Event{Type: EventLiveTelemetry, Data: live, Lossy: true})
}

// Disconnect removes the session for a connection, if any, and broadcasts
// the updated presence list. A connection that never registered, or was
// already removed, produces no broadcast.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.registry.Remove(connID)
	if err != nil {
		log.Printf("hub: client disconnected: %s", connID)
		return
	}

	h.metrics.ActiveAgents.Set(float64(h.registry.Count()))
	log.Printf("hub: agent disconnected: %s", s.DriverName)
	h.publish(bus.Event{Type: EventAgentsUpdate, Data: h.registry.Snapshot()})
}

// Stats answers the aggregate snapshot query.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	ls := h.ledger.Stats()
	return Stats{
		TotalLaps:    ls.TotalLaps,
		ActiveAgents: h.registry.Count(),
		Drivers:      ls.Drivers,
		Tracks:       ls.Tracks,
	}
}

func (h *Hub) publish(ev bus.Event) {
	if dropped := h.bus.Publish(ev); dropped > 0 {
		h.metrics.TelemetryDropped.Add(float64(dropped))
	}
}
