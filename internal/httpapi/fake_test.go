package httpapi

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/engine"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
)

// memStore is an in-memory Store with the same conflict rules as the
// Postgres schema.
type memStore struct {
	mu       sync.Mutex
	profiles map[string]store.Profile
	tables   map[string]store.PokerTable
	members  []store.Member
	invites  map[string]store.Invite
	sessions []store.Session
	hands    []store.Hand
	fail     map[string]error

	// beforeTransition runs inside TransitionHand ahead of the status check
	// so a test can move the hand as a concurrent request would.
	beforeTransition func(h *store.Hand)
}

func newMemStore() *memStore {
	return &memStore{
		profiles: map[string]store.Profile{},
		tables:   map[string]store.PokerTable{},
		invites:  map[string]store.Invite{},
		fail:     map[string]error{},
	}
}

func (m *memStore) Ping(context.Context) error { return m.fail["Ping"] }

func (m *memStore) GetProfile(_ context.Context, id string) (store.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["GetProfile"]; err != nil {
		return store.Profile{}, err
	}
	p, ok := m.profiles[id]
	if !ok {
		return store.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListProfiles(_ context.Context, role engine.Role) ([]store.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.Profile
	for _, p := range m.profiles {
		if role == "" || p.Role == role {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b store.Profile) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *memStore) SetRole(_ context.Context, id string, role engine.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	p.Role = role
	m.profiles[id] = p
	return nil
}

func (m *memStore) CreateTable(_ context.Context, t *store.PokerTable) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	m.tables[t.ID] = *t
	return nil
}

func (m *memStore) JoinedMembers(_ context.Context, tableID string) ([]store.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail["JoinedMembers"]; err != nil {
		return nil, err
	}
	var out []store.Member
	for _, mem := range m.members {
		if mem.TableID == tableID && mem.Status == engine.MemberJoined {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *memStore) FindActiveInvite(_ context.Context, tableID, userID string) (store.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var found *store.Invite
	for _, inv := range m.invites {
		if inv.TableID != tableID || inv.UserID != userID {
			continue
		}
		switch inv.Status {
		case engine.InviteAccepted:
			return inv, nil
		case engine.InvitePending:
			found = &inv
		}
	}
	if found == nil {
		return store.Invite{}, store.ErrNotFound
	}
	return *found, nil
}

func (m *memStore) CreateInvite(_ context.Context, inv *store.Invite) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv.ID = uuid.NewString()
	inv.CreatedAt = time.Now()
	m.invites[inv.ID] = *inv
	return nil
}

func (m *memStore) GetInvite(_ context.Context, id string) (store.Invite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invites[id]
	if !ok {
		return store.Invite{}, store.ErrNotFound
	}
	return inv, nil
}

func (m *memStore) resolve(id string, to engine.InviteStatus) (store.Invite, error) {
	inv, ok := m.invites[id]
	if !ok || inv.Status != engine.InvitePending {
		return store.Invite{}, store.ErrConflict
	}
	inv.Status = to
	m.invites[id] = inv
	return inv, nil
}

func (m *memStore) DeclineInvite(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, err := m.resolve(id, engine.InviteDeclined)
	return err
}

func (m *memStore) AcceptInvite(_ context.Context, inv store.Invite, joinedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.resolve(inv.ID, engine.InviteAccepted); err != nil {
		return err
	}
	for i, mem := range m.members {
		if mem.TableID == inv.TableID && mem.UserID == inv.UserID {
			m.members[i].Status = engine.MemberJoined
			m.members[i].JoinedAt = &joinedAt
			return nil
		}
	}
	m.members = append(m.members, store.Member{
		TableID: inv.TableID, UserID: inv.UserID, Status: engine.MemberJoined, JoinedAt: &joinedAt,
	})
	return nil
}

func (m *memStore) InvitesForUser(_ context.Context, userID string) ([]store.InviteView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []store.InviteView
	for _, inv := range m.invites {
		if inv.UserID == userID {
			out = append(out, store.InviteView{Invite: inv, PokerTableName: m.tables[inv.TableID].Name})
		}
	}
	return out, nil
}

func (m *memStore) RunningSessions(_ context.Context, tableID string) ([]store.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running(tableID), nil
}

func (m *memStore) running(tableID string) []store.Session {
	var out []store.Session
	for _, s := range m.sessions {
		if s.TableID == tableID && s.Status == engine.SessionRunning {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(a, b store.Session) int { return b.StartedAt.Compare(a.StartedAt) })
	return out
}

func (m *memStore) CreateSession(_ context.Context, s *store.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.running(s.TableID)) > 0 {
		return store.ErrConflict
	}
	s.ID = uuid.NewString()
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *memStore) EndSessions(_ context.Context, tableID string, at time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i, s := range m.sessions {
		if s.TableID == tableID && s.Status == engine.SessionRunning {
			m.sessions[i].Status = engine.SessionEnded
			m.sessions[i].EndedAt = &at
			n++
		}
	}
	return n, nil
}

func (m *memStore) LastHand(_ context.Context, sessionID string) (store.Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *store.Hand
	for i, h := range m.hands {
		if h.SessionID == sessionID && (last == nil || h.HandNumber > last.HandNumber) {
			last = &m.hands[i]
		}
	}
	if last == nil {
		return store.Hand{}, store.ErrNotFound
	}
	return *last, nil
}

func (m *memStore) CreateHand(_ context.Context, h *store.Hand) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.hands {
		if existing.SessionID == h.SessionID && existing.HandNumber == h.HandNumber {
			return store.ErrConflict
		}
	}
	h.ID = uuid.NewString()
	h.CreatedAt = time.Now()
	m.hands = append(m.hands, *h)
	return nil
}

func (m *memStore) GetHand(_ context.Context, id string) (store.Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.hands {
		if h.ID == id {
			return h, nil
		}
	}
	return store.Hand{}, store.ErrNotFound
}

func (m *memStore) TransitionHand(_ context.Context, id string, from, to engine.HandStatus) (store.Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.hands {
		if m.hands[i].ID == id {
			if m.beforeTransition != nil {
				m.beforeTransition(&m.hands[i])
			}
			if m.hands[i].Status != from {
				return store.Hand{}, store.ErrConflict
			}
			m.hands[i].Status = to
			return m.hands[i], nil
		}
	}
	return store.Hand{}, store.ErrConflict
}

func (m *memStore) handByNumber(sessionID string, n int) store.Hand {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.hands, func(h store.Hand) bool { return h.SessionID == sessionID && h.HandNumber == n })
	if i < 0 {
		return store.Hand{}
	}
	return m.hands[i]
}

type published struct {
	topic string
	evt   engine.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, evt engine.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, published{topic: topic, evt: evt})
}

func (p *recordingPublisher) types() []engine.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]engine.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.evt.Type
	}
	return out
}

func (p *recordingPublisher) last() published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

// bearerAuth treats the bearer token as the user id.
type bearerAuth struct{}

func (bearerAuth) Authenticate(r *http.Request) (auth.User, error) {
	tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || tok == "" {
		return auth.User{}, auth.ErrNoToken
	}
	return auth.User{ID: tok, Email: tok + "@example.com"}, nil
}
