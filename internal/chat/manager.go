// Package chat holds the in-memory chat state: connected clients, rooms
// and their subscriptions, and every user's inbox of thread previews.
// A single Manager goroutine owns message dispatch; read paths take the
// shared lock directly.
package chat

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/pelusa-v/chatline/internal/store"
)

type Manager struct {
	mu sync.RWMutex

	clients       map[string]*Client // id -> client
	clientsByName map[string]*Client // name -> client

	register   chan *Client
	unregister chan *Client
	messages   chan *Message
	system     chan *Message // join/leave notifications

	subs      *Subscriptions
	inbox     map[string]map[string]*ThreadPreview // nick -> threadId -> preview
	rooms     map[string]bool                      // directory of rooms
	roomOwner map[string]string                    // room -> owner
	muted     map[string]bool                      // nick -> inbox muted

	st      *store.Store
	log     zerolog.Logger
	metrics *metrics
	now     func() time.Time
}

// NewManager builds a manager backed by the given chat database. The
// store may be nil, in which case nothing is persisted. A nil registerer
// disables metrics.
func NewManager(st *store.Store, log zerolog.Logger, reg prometheus.Registerer) *Manager {
	return &Manager{
		clients:       map[string]*Client{},
		clientsByName: map[string]*Client{},
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		messages:      make(chan *Message),
		system:        make(chan *Message, 16),
		subs: &Subscriptions{
			UserRooms: map[string]map[string]bool{},
			RoomUsers: map[string]map[string]bool{},
		},
		inbox:     map[string]map[string]*ThreadPreview{},
		rooms:     map[string]bool{"general": true},
		roomOwner: map[string]string{"general": ""},
		muted:     map[string]bool{},
		st:        st,
		log:       log,
		metrics:   newMetrics(reg),
		now:       time.Now,
	}
}

// Register queues a client for registration with the dispatch loop.
func (m *Manager) Register(c *Client) {
	m.register <- c
}

// Unregister queues a client for removal.
func (m *Manager) Unregister(c *Client) {
	m.unregister <- c
}

// Deliver hands a message to the dispatch loop.
func (m *Manager) Deliver(msg *Message) {
	m.messages <- msg
}

// ClientJson is the wire form of an online user.
type ClientJson struct {
	Id   string `json:"id"`
	Name string `json:"name"`
}

// ListClients returns the online users sorted by name, optionally
// excluding one by id or name.
func (m *Manager) ListClients(exclude string) []ClientJson {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ClientJson, 0, len(m.clients))
	for id, c := range m.clients {
		if exclude != "" && (exclude == id || exclude == c.Name) {
			continue
		}
		out = append(out, ClientJson{Id: id, Name: c.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Start runs the dispatch loop until ctx is cancelled.
func (m *Manager) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-m.register:
			m.mu.Lock()
			m.clients[client.ID] = client
			m.clientsByName[client.Name] = client
			n := len(m.clients)
			m.mu.Unlock()
			m.metrics.setClients(n)
			m.log.Info().Str("nick", client.Name).Msg("client joined")
			m.system <- &Message{
				Broadcast:  true,
				Content:    client.Name + " joined",
				OriginName: "Manager",
			}

		case client := <-m.unregister:
			m.mu.Lock()
			delete(m.clients, client.ID)
			delete(m.clientsByName, client.Name)
			n := len(m.clients)
			m.mu.Unlock()
			m.metrics.setClients(n)
			m.log.Info().Str("nick", client.Name).Msg("client left")
			m.system <- &Message{
				Broadcast:  true,
				Content:    client.Name + " left",
				OriginName: "Manager",
			}

		case msg := <-m.messages:
			m.dispatch(msg)

		case sys := <-m.system:
			m.metrics.message("system")
			m.mu.RLock()
			for _, c := range m.clients {
				data, _ := json.Marshal(sys)
				select {
				case c.Send <- data:
				default:
				}
			}
			m.mu.RUnlock()
		}
	}
}

func (m *Manager) dispatch(msg *Message) {
	now := m.now().Unix()

	if msg.Broadcast {
		// Group: deliver to subscribers only.
		room := normalizeRoom(msg.Room)
		if room == "" {
			room = "general"
		}
		m.mu.Lock()
		m.rooms[room] = true
		m.mu.Unlock()

		m.mu.RLock()
		subs := m.subs.RoomUsers[room]
		snapshot := make([]*Client, 0, len(subs))
		for nick := range subs {
			if c := m.clientsByName[nick]; c != nil {
				snapshot = append(snapshot, c)
			}
		}
		from := m.clients[msg.OriginId]
		m.mu.RUnlock()

		for _, c := range snapshot {
			out := *msg
			out.Room = room // echo the normalized room name
			out.Ts = now
			if from != nil {
				out.OriginId, out.OriginName = from.ID, from.Name
			}
			data, _ := json.Marshal(&out)
			select {
			case c.Send <- data:
			default:
			}
		}
		if from != nil {
			m.metrics.message("group")
			m.onGroupMessage(room, from.Name, msg.Content, now)
		}
		return
	}

	// Private: point-to-point, plus an echo back to the sender.
	m.mu.RLock()
	toCli := m.clients[msg.DestinationId]
	fromCli := m.clients[msg.OriginId]
	m.mu.RUnlock()

	if toCli == nil {
		return
	}
	out := *msg
	out.Ts = now
	if fromCli != nil {
		out.OriginId, out.OriginName = fromCli.ID, fromCli.Name
	}
	data, _ := json.Marshal(&out)
	select {
	case toCli.Send <- data:
	default:
	}
	if fromCli != nil {
		select {
		case fromCli.Send <- data:
		default:
		}
		m.metrics.message("private")
		m.onPrivateMessage(fromCli.Name, toCli.Name, msg.Content, now)
	}
}
