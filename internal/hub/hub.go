package hub

import (
	"context"
	"time"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/room"
)

// DefaultLinger is how long an event for a topic nobody watches is held, and
// how long an empty room stays up before it retires.
const DefaultLinger = 30 * time.Second

type HubMsg interface{ isHubMsg() }

type GetRoom struct {
	Topic string
	Reply chan *room.Room
}

type EnsureRoom struct {
	Topic string
	Reply chan *room.Room
}

// RemoveRoom drops a topic's room. When Room is set the topic is only
// dropped if it still maps to that room.
type RemoveRoom struct {
	Topic string
	Room  *room.Room
}

// Publish hands an event to the topic's room. Without a room the event is
// held for the linger period and replayed to the next room opened for it.
type Publish struct {
	Topic string
	Event engine.Event
}

type ShutdownHub struct{}

func (GetRoom) isHubMsg()     {}
func (EnsureRoom) isHubMsg()  {}
func (RemoveRoom) isHubMsg()  {}
func (Publish) isHubMsg()     {}
func (ShutdownHub) isHubMsg() {}

type held struct {
	evt   engine.Event
	until time.Time
}

type Option func(*Hub)

// WithLinger overrides DefaultLinger. Non-positive values are ignored.
func WithLinger(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.linger = d
		}
	}
}

type Hub struct {
	inbox  chan HubMsg
	rooms  map[string]*room.Room
	recent map[string]held
	linger time.Duration
	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(parent context.Context, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:  make(chan HubMsg, 64),
		rooms:  make(map[string]*room.Room),
		recent: make(map[string]held),
		linger: DefaultLinger,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Publish is the non-actor entry point used by request handlers and the
// database listener. It gives up when ctx or the hub is done.
func (h *Hub) Publish(ctx context.Context, topic string, evt engine.Event) {
	select {
	case h.inbox <- Publish{Topic: topic, Event: evt}:
	case <-ctx.Done():
	case <-h.ctx.Done():
	}
}

// Room returns the topic's room, creating it when ensure is set. It returns
// nil once the hub has shut down.
func (h *Hub) Room(ctx context.Context, topic string, ensure bool) *room.Room {
	reply := make(chan *room.Room, 1)
	var msg HubMsg = GetRoom{Topic: topic, Reply: reply}
	if ensure {
		msg = EnsureRoom{Topic: topic, Reply: reply}
	}
	select {
	case h.inbox <- msg:
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
	select {
	case rm := <-reply:
		return rm
	case <-ctx.Done():
		return nil
	case <-h.ctx.Done():
		return nil
	}
}

func (h *Hub) Shutdown() {
	select {
	case h.inbox <- ShutdownHub{}:
	case <-h.ctx.Done():
	}
}

// retire runs on a room's goroutine once the room has shut itself down.
func (h *Hub) retire(rm *room.Room) {
	select {
	case h.inbox <- RemoveRoom{Topic: rm.Topic(), Room: rm}:
	case <-h.ctx.Done():
	}
}

// live returns the topic's room unless it has retired.
func (h *Hub) live(topic string) *room.Room {
	rm := h.rooms[topic]
	if rm == nil {
		return nil
	}
	select {
	case <-rm.Done():
		delete(h.rooms, topic)
		return nil
	default:
		return rm
	}
}

func (h *Hub) ensure(topic string) *room.Room {
	if rm := h.live(topic); rm != nil {
		return rm
	}
	rm := room.NewRoom(h.ctx, topic, room.WithIdle(h.linger, h.retire))
	h.rooms[topic] = rm
	if ev, ok := h.recent[topic]; ok {
		delete(h.recent, topic)
		if time.Now().Before(ev.until) {
			deliver(rm, room.Publish{Event: ev.evt})
		}
	}
	return rm
}

func (h *Hub) publish(topic string, evt engine.Event) {
	if rm := h.live(topic); rm != nil && deliver(rm, room.Publish{Event: evt}) {
		return
	}
	delete(h.rooms, topic)
	h.recent[topic] = held{evt: evt, until: time.Now().Add(h.linger)}
}

func (h *Hub) sweep(now time.Time) {
	for topic, ev := range h.recent {
		if !now.Before(ev.until) {
			delete(h.recent, topic)
		}
	}
}

// deliver sends to a room unless it has already shut down.
func deliver(rm *room.Room, m room.Msg) bool {
	select {
	case rm.Inbox() <- m:
		return true
	case <-rm.Done():
		return false
	}
}

func (h *Hub) loop() {
	sweep := time.NewTicker(h.linger)
	defer sweep.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case now := <-sweep.C:
			h.sweep(now)

		case m := <-h.inbox:
			switch msg := m.(type) {
			case GetRoom:
				msg.Reply <- h.live(msg.Topic) // May be nil

			case EnsureRoom:
				msg.Reply <- h.ensure(msg.Topic)

			case Publish:
				h.publish(msg.Topic, msg.Event)

			case RemoveRoom:
				rm := h.rooms[msg.Topic]
				if rm == nil || (msg.Room != nil && msg.Room != rm) {
					continue
				}
				delete(h.rooms, msg.Topic)
				deliver(rm, room.Shutdown{})

			case ShutdownHub:
				for _, rm := range h.rooms {
					deliver(rm, room.Shutdown{})
				}
				clear(h.rooms)
				clear(h.recent)
				h.cancel()
			}
		}
	}
}
