package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slem/pkg/errors"
)

type fakeGateway struct {
	mu        sync.Mutex
	allowed   map[string]bool
	delivered []string
	read      []string
}

func (g *fakeGateway) AuthorizeChat(ctx context.Context, chatID, userID string) error {
	if !g.allowed[chatID+"/"+userID] {
		return errors.Forbidden("You are not a participant of this chat", nil)
	}
	return nil
}

func (g *fakeGateway) DeliverMessage(ctx context.Context, chatID, senderID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.delivered = append(g.delivered, chatID+"/"+senderID+"/"+text)
	return nil
}

func (g *fakeGateway) MarkChatRead(ctx context.Context, chatID, userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.read = append(g.read, chatID+"/"+userID)
	return nil
}

func connect(m *Manager, userID string, gateway ChatGateway) *Client {
	c := NewClient(userID, nil, gateway)
	m.addClient(c)
	return c
}

func readFrame(t *testing.T, c *Client) WSMessage {
	t.Helper()
	select {
	case payload := <-c.Send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no frame for %s", c.UserID)
		return WSMessage{}
	}
}

func assertNoFrame(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload := <-c.Send:
		t.Fatalf("unexpected frame for %s: %s", c.UserID, payload)
	default:
	}
}

func frame(t *testing.T, msg ClientMessage) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func TestPublishToUserReachesEveryConnection(t *testing.T) {
	m := NewManager()
	gw := &fakeGateway{}
	phone := connect(m, "u1", gw)
	laptop := connect(m, "u1", gw)
	other := connect(m, "u2", gw)

	m.PublishToUser("u1", MessageTypeOrderCreated, map[string]string{"orderId": "o1"})

	for _, c := range []*Client{phone, laptop} {
		msg := readFrame(t, c)
		assert.Equal(t, MessageTypeOrderCreated, msg.Type)
		assert.Equal(t, UserChannel("u1"), msg.Channel)
	}
	assertNoFrame(t, other)
	assert.Equal(t, 2, m.ConnectedUsers())
}

func TestJoinChatRequiresParticipation(t *testing.T) {
	m := NewManager()
	gw := &fakeGateway{allowed: map[string]bool{"c1/u1": true}}
	member := connect(m, "u1", gw)
	outsider := connect(m, "u3", gw)

	m.HandleClientMessage(member, frame(t, ClientMessage{Type: MessageTypeJoinChat, ChatID: "c1"}))
	assert.Equal(t, MessageTypeJoinedChat, readFrame(t, member).Type)
	assert.True(t, m.IsSubscribed(member, ChatChannel("c1")))

	m.HandleClientMessage(outsider, frame(t, ClientMessage{Type: MessageTypeJoinChat, ChatID: "c1"}))
	msg := readFrame(t, outsider)
	assert.Equal(t, MessageTypeError, msg.Type)
	assert.Equal(t, errors.CodeForbidden, msg.Data.(map[string]interface{})["code"])
	assert.False(t, m.IsSubscribed(outsider, ChatChannel("c1")))

	m.PublishToChat("c1", MessageTypeNewMessage, map[string]string{"text": "hi"})
	assert.Equal(t, MessageTypeNewMessage, readFrame(t, member).Type)
	assertNoFrame(t, outsider)

	m.HandleClientMessage(member, frame(t, ClientMessage{Type: MessageTypeLeaveChat, ChatID: "c1"}))
	assert.False(t, m.IsSubscribed(member, ChatChannel("c1")))
}

func TestTypingSkipsSender(t *testing.T) {
	m := NewManager()
	gw := &fakeGateway{allowed: map[string]bool{"c1/u1": true, "c1/u2": true}}
	a := connect(m, "u1", gw)
	b := connect(m, "u2", gw)
	for _, c := range []*Client{a, b} {
		m.HandleClientMessage(c, frame(t, ClientMessage{Type: MessageTypeJoinChat, ChatID: "c1"}))
		readFrame(t, c)
	}

	m.HandleClientMessage(a, frame(t, ClientMessage{Type: MessageTypeTyping, ChatID: "c1"}))
	msg := readFrame(t, b)
	assert.Equal(t, MessageTypeTyping, msg.Type)
	assert.Equal(t, "u1", msg.Data.(map[string]interface{})["userId"])
	assertNoFrame(t, a)

	stranger := connect(m, "u9", gw)
	m.HandleClientMessage(stranger, frame(t, ClientMessage{Type: MessageTypeTyping, ChatID: "c1"}))
	assert.Equal(t, MessageTypeError, readFrame(t, stranger).Type)
}

func TestChatFramesReachGateway(t *testing.T) {
	m := NewManager()
	gw := &fakeGateway{}
	c := connect(m, "u1", gw)

	data, err := json.Marshal(SendMessageData{Text: "is it still available?"})
	require.NoError(t, err)
	m.HandleClientMessage(c, frame(t, ClientMessage{Type: MessageTypeSendMessage, ChatID: "c1", Data: data}))
	m.HandleClientMessage(c, frame(t, ClientMessage{Type: MessageTypeMarkRead, ChatID: "c1"}))

	assert.Equal(t, []string{"c1/u1/is it still available?"}, gw.delivered)
	assert.Equal(t, []string{"c1/u1"}, gw.read)
	assertNoFrame(t, c)

	m.HandleClientMessage(c, frame(t, ClientMessage{Type: MessageTypeSendMessage, ChatID: "c1"}))
	assert.Equal(t, MessageTypeError, readFrame(t, c).Type)

	m.HandleClientMessage(c, []byte("not json"))
	assert.Equal(t, MessageTypeError, readFrame(t, c).Type)

	m.HandleClientMessage(c, frame(t, ClientMessage{Type: MessageTypePing}))
	assert.Equal(t, MessageTypePong, readFrame(t, c).Type)
}

func TestSlowClientIsDropped(t *testing.T) {
	m := NewManager()
	slow := &Client{ID: "slow", UserID: "u1", Send: make(chan []byte), channels: make(map[string]bool)}
	m.addClient(slow)

	m.PublishToUser("u1", MessageTypeOrderUpdated, nil)

	assert.Equal(t, 0, m.ConnectedUsers())
	_, open := <-slow.Send
	assert.False(t, open)
}

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	c := NewClient("u1", nil, &fakeGateway{})
	require.True(t, m.Register(c))
	assert.Equal(t, 1, m.ConnectedUsers())

	m.Unregister(c)
	assert.Equal(t, 0, m.ConnectedUsers())
	_, open := <-c.Send
	assert.False(t, open)
	m.Unregister(c)

	other := NewClient("u2", nil, &fakeGateway{})
	require.True(t, m.Register(other))
	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-other.Send:
			return !open
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterAndUnregisterAfterShutdownDoNotBlock(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	live := NewClient("u1", nil, &fakeGateway{})
	require.True(t, m.Register(live))
	cancel()
	require.Eventually(t, func() bool { return m.ConnectedUsers() == 0 }, time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		m.Unregister(live)
		assert.False(t, m.Register(NewClient("u2", nil, &fakeGateway{})))
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("registration blocked after shutdown")
	}
	assert.Equal(t, 0, m.ConnectedUsers())
}

func TestJoinChatRightAfterRegister(t *testing.T) {
	m := NewManager()
	gw := &fakeGateway{allowed: map[string]bool{"c1/u1": true}}

	c := NewClient("u1", nil, gw)
	require.True(t, m.Register(c))
	m.HandleClientMessage(c, frame(t, ClientMessage{Type: MessageTypeJoinChat, ChatID: "c1"}))

	assert.Equal(t, MessageTypeJoinedChat, readFrame(t, c).Type)
	assert.True(t, m.IsSubscribed(c, ChatChannel("c1")))
}
