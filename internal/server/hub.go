// Package server coordinates session registration, the chat state machine,
// and directive fan-out for the roomchat service via the Hub type.
package server

import (
	"context"
	"regexp"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Tyrowin/roomchat/internal/logging"
	"github.com/Tyrowin/roomchat/internal/roomstore"
)

// nameRE validates usernames and room names: non-empty, letters, digits and
// underscore only.
var nameRE = regexp.MustCompile(`^\w+$`)

// Hub is the single owner of all shared chat state: the set of live
// sessions, the username registry, and the room occupancy table. It consumes
// the shared inbound event channel one event at a time, so state mutations
// never interleave and no lock protects the maps. The hub never blocks on
// I/O; it only enqueues directives onto per-session buffered channels,
// evicting any session whose queue is full.
type Hub struct {
	events chan event

	sessions map[*Session]struct{}
	users    map[string]*Session
	rooms    map[string]map[string]struct{}

	store  roomstore.Store
	banner string
	log    *zap.Logger

	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a Hub and loads the durable room set. Room existence
// survives restarts; occupancy is rebuilt empty. A store failure here is
// fatal since room data is foundational.
func NewHub(store roomstore.Store, banner string) (*Hub, error) {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		events:   make(chan event, 256),
		sessions: make(map[*Session]struct{}),
		users:    make(map[string]*Session),
		rooms:    make(map[string]map[string]struct{}),
		store:    store,
		banner:   banner,
		log:      logging.L().Named("hub"),
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	names, err := store.LoadRoomNames(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	for _, name := range names {
		h.rooms[name] = make(map[string]struct{})
	}

	h.log.Info("room set loaded", zap.Int("rooms", len(h.rooms)))
	return h, nil
}

// Register announces a new session to the hub. It is the only way a session
// enters the system; the hub starts the session's pumps when it processes
// the registration.
func (h *Hub) Register(s *Session) {
	h.enqueue(event{kind: eventRegister, session: s})
}

// enqueue places an event on the shared inbound channel, giving up when the
// hub is shutting down so pump goroutines never wedge on a dead hub.
func (h *Hub) enqueue(ev event) {
	select {
	case h.events <- ev:
	case <-h.ctx.Done():
	}
}

// Run starts the hub's event loop. It processes exactly one event to
// completion before dequeuing the next; this total ordering is what keeps
// room and user mutations race-free. Run should be called in its own
// goroutine as it blocks until shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownSessions()
			return
		case ev := <-h.events:
			h.handleEvent(ev)
		}
	}
}

func (h *Hub) handleEvent(ev event) {
	s := ev.session
	if s == nil {
		h.log.Warn("event without session; skipping")
		return
	}

	switch ev.kind {
	case eventRegister:
		h.registerSession(s)

	case eventClosed:
		h.reapSession(s)

	case eventLine:
		if _, live := h.sessions[s]; !live {
			return
		}
		if s.state == stateNew {
			h.login(s, ev.line)
			return
		}
		h.dispatch(s, DecodeIntent(ev.line))
	}
}

func (h *Hub) registerSession(s *Session) {
	h.sessions[s] = struct{}{}
	s.state = stateNew

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		s.writePump()
	}()
	go func() {
		defer h.wg.Done()
		s.readPump()
	}()

	h.send(s, Banner{Text: h.banner})
	h.send(s, LoginPrompt{})

	h.log.Info("session registered",
		zap.String("session_id", s.id),
		zap.Int("sessions", len(h.sessions)))
}

// login treats a line from a New session as a username attempt.
func (h *Hub) login(s *Session, name string) {
	if _, taken := h.users[name]; taken {
		h.send(s, NameTaken{})
		h.send(s, LoginPrompt{})
		return
	}
	if !nameRE.MatchString(name) {
		h.send(s, InvalidName{})
		h.send(s, LoginPrompt{})
		return
	}

	h.users[name] = s
	s.state = stateLoggedIn
	s.username = name
	s.loggedIn.Store(true)
	h.send(s, Welcome{Name: name})

	h.log.Info("user logged in", zap.String("user", name), zap.String("session_id", s.id))
}

func (h *Hub) dispatch(s *Session, intent Intent) {
	switch in := intent.(type) {
	case ListRoomsIntent:
		h.send(s, RoomList{Rooms: h.roomEntries()})

	case CreateRoomIntent:
		h.createRoom(s, in.Name)

	case JoinRoomIntent:
		h.joinRoom(s, in.Name)

	case LeaveRoomIntent:
		if s.state != stateInRoom {
			h.send(s, NotInRoom{})
			return
		}
		h.leaveRoom(s)

	case PrivateIntent:
		h.setPrivate(s, in.Targets)

	case PublicIntent:
		if s.state != stateInRoom {
			h.send(s, NotInRoom{})
			return
		}
		s.targets = nil
		h.send(s, NowPublic{})

	case ChatIntent:
		h.chat(s, in.Text)

	case QuitIntent:
		h.quit(s)

	case UnknownIntent:
		h.send(s, UnknownCommand{})
	}
}

// roomEntries lists every room with its occupant count, sorted by name for
// deterministic output.
func (h *Hub) roomEntries() []RoomEntry {
	names := make([]string, 0, len(h.rooms))
	for name := range h.rooms {
		names = append(names, name)
	}
	sort.Strings(names)

	entries := make([]RoomEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, RoomEntry{Name: name, Occupants: len(h.rooms[name])})
	}
	return entries
}

func (h *Hub) createRoom(s *Session, name string) {
	if _, exists := h.rooms[name]; exists {
		h.send(s, RoomExists{Room: name})
		return
	}
	if !nameRE.MatchString(name) {
		h.send(s, InvalidRoomName{})
		return
	}

	if err := h.store.AddRoomName(h.ctx, name); err != nil {
		// The room still exists until restart; losing it then beats
		// rejecting the command now.
		h.log.Error("failed to persist room", zap.String("room", name), zap.Error(err))
	}
	h.rooms[name] = make(map[string]struct{})

	h.send(s, RoomCreated{Creator: s.username, Room: name})
	for _, other := range h.users {
		if other != s {
			h.send(other, RoomCreatedNotice{Creator: s.username, Room: name})
		}
	}

	h.log.Info("room created", zap.String("room", name), zap.String("user", s.username))
}

func (h *Hub) joinRoom(s *Session, name string) {
	occupants, known := h.rooms[name]
	if !known {
		h.send(s, UnknownRoom{Room: name})
		return
	}

	if s.state == stateInRoom {
		h.leaveRoom(s)
	}

	occupants[s.username] = struct{}{}
	s.state = stateInRoom
	s.room = name

	names := make([]string, 0, len(occupants))
	for occupant := range occupants {
		names = append(names, occupant)
	}
	sort.Strings(names)
	h.send(s, RoomJoined{Room: name, Self: s.username, Occupants: names})

	for occupant := range occupants {
		if occupant != s.username {
			h.send(h.users[occupant], UserJoined{User: s.username, Room: name})
		}
	}

	h.log.Info("user joined room", zap.String("user", s.username), zap.String("room", name))
}

// leaveRoom removes s from its current room and notifies the remaining
// occupants. The caller guarantees s.state == stateInRoom. Private targeting
// is cleared: it is scoped to the room it was issued in.
func (h *Hub) leaveRoom(s *Session) {
	room := s.room
	delete(h.rooms[room], s.username)

	s.state = stateLoggedIn
	s.room = ""
	s.targets = nil

	h.send(s, RoomLeft{User: s.username, Room: room})
	for occupant := range h.rooms[room] {
		h.send(h.users[occupant], UserLeft{User: s.username, Room: room})
	}

	h.log.Info("user left room", zap.String("user", s.username), zap.String("room", room))
}

func (h *Hub) setPrivate(s *Session, targets []string) {
	if s.state != stateInRoom {
		h.send(s, NotInRoom{})
		return
	}
	if len(targets) == 0 {
		return
	}

	occupants := h.rooms[s.room]
	for _, target := range targets {
		if _, present := occupants[target]; !present {
			h.send(s, InvalidPrivateTarget{Name: target})
			return
		}
	}

	s.targets = targets
	h.send(s, NowPrivate{Targets: targets})
}

// chat fans a message out to the sender's room. With targets set, delivery
// is the sender plus each target still present in the room: targets are
// validated once at /private time, so one that has since left is silently
// excluded rather than erroring.
func (h *Hub) chat(s *Session, text string) {
	if s.state != stateInRoom {
		h.send(s, NotInRoom{})
		return
	}

	line := ChatLine{From: s.username, Text: text}
	occupants := h.rooms[s.room]

	if s.targets == nil {
		for occupant := range occupants {
			h.send(h.users[occupant], line)
		}
		return
	}

	delivered := map[string]struct{}{s.username: {}}
	h.send(s, line)
	for _, target := range s.targets {
		if _, done := delivered[target]; done {
			continue
		}
		delivered[target] = struct{}{}
		if _, present := occupants[target]; present {
			h.send(h.users[target], line)
		}
	}
}

// quit is the designed exit: leave effects first, then registry cleanup,
// then a goodbye whose rendering ends the session's write pump.
func (h *Hub) quit(s *Session) {
	if s.state == stateInRoom {
		h.leaveRoom(s)
	}
	if s.username != "" {
		delete(h.users, s.username)
	}
	delete(h.sessions, s)

	h.send(s, Goodbye{})
	h.evict(s)

	h.log.Info("session quit", zap.String("session_id", s.id), zap.String("user", s.username))
}

// reapSession reconciles state for a session whose connection died without a
// client quit. Processing is idempotent: both pumps report closure and a
// quit session reports it again once its transport closes.
func (h *Hub) reapSession(s *Session) {
	if _, live := h.sessions[s]; !live {
		return
	}

	if s.state == stateInRoom {
		h.leaveRoom(s)
	}
	if s.username != "" {
		delete(h.users, s.username)
	}
	delete(h.sessions, s)
	h.evict(s)

	h.log.Info("session closed",
		zap.String("session_id", s.id),
		zap.Int("sessions", len(h.sessions)))
}

// send enqueues a directive without blocking. A full queue means the client
// has stalled for the entire buffer; the session is evicted so one slow
// client never stalls dispatch for the rest.
func (h *Hub) send(s *Session, d Directive) {
	if s.evicted {
		return
	}
	select {
	case s.out <- d:
	default:
		h.log.Warn("outbound queue full; evicting session",
			zap.String("session_id", s.id),
			zap.String("user", s.username))
		h.evict(s)
	}
}

// evict closes the session's outbound channel, ending its write pump. Only
// the hub goroutine closes out, so the close cannot race a send.
func (h *Hub) evict(s *Session) {
	if s.evicted {
		return
	}
	s.evicted = true
	close(s.out)
}

// shutdownSessions broadcasts a goodbye to every known session on shutdown.
// Best effort: sessions drain their queues and close their own transports.
func (h *Hub) shutdownSessions() {
	h.log.Info("shutting down sessions", zap.Int("sessions", len(h.sessions)))

	for s := range h.sessions {
		h.send(s, Goodbye{})
		h.evict(s)
	}
}

// Shutdown initiates graceful shutdown and waits for the event loop and all
// session pumps to finish, or for the timeout to lapse.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		h.log.Info("hub shutdown completed")
		return nil
	case <-time.After(timeout):
		h.log.Warn("hub shutdown timeout reached; some sessions may still be draining")
		return context.DeadlineExceeded
	}
}
