package room

import (
	"context"
	"time"

	"github.com/DoyleJ11/poker-table-backend/internal/engine"
)

type Msg interface{ isRoomMsg() }

type Publish struct {
	Event engine.Event
}

func (Publish) isRoomMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive events
}

func (Join) isRoomMsg() {}

type Leave struct{ ClientID string }

func (Leave) isRoomMsg() {}

type Shutdown struct{}

func (Shutdown) isRoomMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isRoomMsg() {}

type Snapshot struct {
	Version int
	Event   engine.Event
}

type View struct {
	Topic      string
	Version    int
	NumClients int
	Last       *engine.Event
}

// Option configures a room before its loop starts.
type Option func(*Room)

// WithIdle retires the room once it has had no clients for d. The last event
// is kept for that long so a client connecting right after still sees it.
// onIdle runs on the room goroutine after the room has shut down.
func WithIdle(d time.Duration, onIdle func(*Room)) Option {
	return func(r *Room) {
		r.idle = d
		r.onIdle = onIdle
	}
}

// Room fans the events of one topic (a table or a profile) out to the
// websocket clients watching it. All state is owned by the loop goroutine.
type Room struct {
	topic   string
	inbox   chan Msg
	version int
	last    *engine.Event
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc

	idle      time.Duration
	onIdle    func(*Room)
	idleTimer *time.Timer
	idleC     <-chan time.Time
}

func NewRoom(parent context.Context, topic string, opts ...Option) *Room {
	ctx, cancel := context.WithCancel(parent)

	r := &Room{
		topic:   topic,
		inbox:   make(chan Msg, 64),
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(r)
	}

	go r.loop()
	return r
}

func (r *Room) loop() {
	r.armIdle()
	for {
		select {
		case <-r.ctx.Done():
			r.shutdown()
			return

		case <-r.idleC:
			r.idleC = nil
			if len(r.clients) > 0 {
				continue
			}
			r.shutdown()
			if r.onIdle != nil {
				r.onIdle(r)
			}
			return

		case m := <-r.inbox:
			switch msg := m.(type) {
			case Join:
				r.disarmIdle()
				r.clients[msg.ClientID] = msg.Outbox
				// Late joiners catch up on the latest event only.
				if r.last != nil {
					r.send(msg.ClientID, msg.Outbox, Snapshot{Version: r.version, Event: *r.last})
				}

			case Leave:
				delete(r.clients, msg.ClientID)
				r.armIdle()

			case Publish:
				r.version++
				evt := msg.Event
				r.last = &evt
				r.broadcast(Snapshot{Version: r.version, Event: evt})
				if len(r.clients) == 0 {
					// Restart the countdown so the new event gets the full linger.
					r.disarmIdle()
					r.armIdle()
				}

			case GetState:
				msg.Reply <- View{
					Topic:      r.topic,
					Version:    r.version,
					NumClients: len(r.clients),
					Last:       r.last,
				}

			case Shutdown:
				r.shutdown()
				return
			}
		}
	}
}

func (r *Room) shutdown() {
	for id, ch := range r.clients {
		close(ch) // no more events for this client
		delete(r.clients, id)
	}
	r.disarmIdle()
	r.cancel()
}

// armIdle starts the idle countdown when the room has no clients and no
// countdown is running.
func (r *Room) armIdle() {
	if r.idle <= 0 || len(r.clients) > 0 || r.idleC != nil {
		return
	}
	r.idleTimer = time.NewTimer(r.idle)
	r.idleC = r.idleTimer.C
}

func (r *Room) disarmIdle() {
	if r.idleTimer != nil {
		r.idleTimer.Stop()
	}
	r.idleTimer = nil
	r.idleC = nil
}

func (r *Room) broadcast(snap Snapshot) {
	for id, ch := range r.clients {
		r.send(id, ch, snap)
	}
}

// send drops a client whose outbox is full.
func (r *Room) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
	default:
		close(ch)
		delete(r.clients, id)
	}
}

func (r *Room) Topic() string { return r.topic }

// Inbox exposes the room's mailbox to the hub, the websocket layer and tests.
func (r *Room) Inbox() chan<- Msg { return r.inbox }

// Done is closed once the room has shut down.
func (r *Room) Done() <-chan struct{} { return r.ctx.Done() }

// State asks the loop for a snapshot of the room. It fails once the room or
// ctx is done.
func (r *Room) State(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	select {
	case r.inbox <- GetState{Reply: reply}:
	case <-r.ctx.Done():
		return View{}, r.ctx.Err()
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
	select {
	case v := <-reply:
		return v, nil
	case <-r.ctx.Done():
		return View{}, r.ctx.Err()
	case <-ctx.Done():
		return View{}, ctx.Err()
	}
}
