package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"slem/pkg/logger"
)

// UserChannel is the private channel every connection joins on connect.
func UserChannel(userID string) string {
	return "user:" + userID
}

// ChatChannel is joined explicitly by chat participants.
func ChatChannel(chatID string) string {
	return "chat:" + chatID
}

// Manager routes frames to named channels. It is constructed once at startup
// and handed to every component that publishes.
type Manager struct {
	channels map[string]map[*Client]bool
	clients  map[*Client]bool
	closed   bool

	mutex sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		channels: make(map[string]map[*Client]bool),
		clients:  make(map[*Client]bool),
	}
}

// Start closes every connection once ctx is done. Later Register calls are refused.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		m.closeAll()
	}()
}

// Register joins the client to its user channel before its pumps start, so the
// first frame it reads already sees the registration. It reports false after shutdown.
func (m *Manager) Register(c *Client) bool {
	if !m.addClient(c) {
		return false
	}
	logger.Debug("Client registered: %s (%s)", c.ID, c.UserID)
	return true
}

// Unregister is idempotent and safe after shutdown.
func (m *Manager) Unregister(c *Client) {
	if m.removeClient(c) {
		logger.Debug("Client unregistered: %s (%s)", c.ID, c.UserID)
	}
}

func (m *Manager) addClient(c *Client) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.closed {
		return false
	}
	m.clients[c] = true
	m.subscribeLocked(c, UserChannel(c.UserID))
	return true
}

func (m *Manager) removeClient(c *Client) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.clients[c] {
		return false
	}
	for channel := range c.channels {
		m.unsubscribeLocked(c, channel)
	}
	delete(m.clients, c)
	close(c.Send)
	return true
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.closed = true
	for c := range m.clients {
		close(c.Send)
	}
	m.clients = make(map[*Client]bool)
	m.channels = make(map[string]map[*Client]bool)
}

// Subscribe adds the client to a channel. It is a no-op for unregistered clients.
func (m *Manager) Subscribe(c *Client, channel string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.clients[c] {
		m.subscribeLocked(c, channel)
	}
}

func (m *Manager) Unsubscribe(c *Client, channel string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.unsubscribeLocked(c, channel)
}

func (m *Manager) IsSubscribed(c *Client, channel string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.channels[channel][c]
}

func (m *Manager) subscribeLocked(c *Client, channel string) {
	members, ok := m.channels[channel]
	if !ok {
		members = make(map[*Client]bool)
		m.channels[channel] = members
	}
	members[c] = true
	c.channels[channel] = true
}

func (m *Manager) unsubscribeLocked(c *Client, channel string) {
	if members, ok := m.channels[channel]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(m.channels, channel)
		}
	}
	delete(c.channels, channel)
}

// PublishToUser pushes an event to every connection of one user.
func (m *Manager) PublishToUser(userID, event string, data interface{}) {
	m.publish(UserChannel(userID), event, data, nil)
}

// PublishToChat pushes an event to every connection that joined the chat.
func (m *Manager) PublishToChat(chatID, event string, data interface{}) {
	m.publish(ChatChannel(chatID), event, data, nil)
}

func (m *Manager) publish(channel, event string, data interface{}, except *Client) {
	payload, err := json.Marshal(WSMessage{
		Type:      event,
		Channel:   channel,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: failed to marshal %s for %s: %v", event, channel, err)
		return
	}

	var slow []*Client
	m.mutex.RLock()
	for c := range m.channels[channel] {
		if c == except {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			slow = append(slow, c)
		}
	}
	m.mutex.RUnlock()

	// A full send buffer means the peer stopped reading.
	for _, c := range slow {
		logger.Warn("WebSocket: dropping slow client %s (%s)", c.ID, c.UserID)
		m.removeClient(c)
	}
}

// ConnectedUsers reports how many distinct users hold at least one connection.
func (m *Manager) ConnectedUsers() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	users := make(map[string]bool)
	for c := range m.clients {
		users[c.UserID] = true
	}
	return len(users)
}
