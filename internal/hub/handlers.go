package hub

import (
	"context"
	"sync"

	"github.com/MARDON1989/gearbox-live-telemetry/internal/envelope"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// frame is one outbound message on the viewer feed.
type frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// RegisterRoutes mounts the websocket endpoint shared by agents and
// viewers: every connection gets the initial snapshot and the live feed,
// and may send register-agent / telemetry-data frames.
func RegisterRoutes(r fiber.Router, h *Hub) {
	r.Get("/ws", websocket.New(func(c *websocket.Conn) {
		connID := uuid.NewString()
		sub, init := h.Attach(connID)
		defer h.Detach(connID, sub)

		// writes come from both the feed pump and reader-side error
		// replies, so serialize them
		var writeMu sync.Mutex
		write := func(fr frame) error {
			writeMu.Lock()
			defer writeMu.Unlock()
			return c.WriteJSON(fr)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			if err := write(frame{Type: EventInitialData, Data: init}); err != nil {
				return
			}
			for {
				ev, ok := sub.Receive(ctx)
				if !ok {
					return
				}
				if err := write(frame{Type: ev.Type, Data: ev.Data}); err != nil {
					return
				}
			}
		}()

		for {
			_, raw, err := c.ReadMessage()
			if err != nil {
				break
			}
			env, err := envelope.Parse(raw)
			if err != nil {
				// reject for this connection only
				h.metrics.InvalidTotal.Inc()
				_ = write(frame{Type: EventError, Data: fiber.Map{"message": err.Error()}})
				continue
			}
			h.HandleMessage(connID, env)
		}

		cancel()
		<-done
	}))
}

// RegisterAPIRoutes mounts the aggregate snapshot query.
func RegisterAPIRoutes(r fiber.Router, h *Hub) {
	r.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(h.Stats())
	})
}
