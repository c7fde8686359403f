package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_JoinAndLeaveRoom(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	assert.NoError(t, err)
	clientB, err := hub.Register(20, nil)
	assert.NoError(t, err)

	hub.JoinRoom(7, clientA)
	hub.JoinRoom(7, clientB)
	assert.Equal(t, 2, hub.RoomSize(7))

	// Joining twice is a no-op.
	hub.JoinRoom(7, clientA)
	assert.Equal(t, 2, hub.RoomSize(7))

	hub.LeaveRoom(7, clientA)
	assert.Equal(t, 1, hub.RoomSize(7))

	hub.LeaveRoom(7, clientB)
	assert.Equal(t, 0, hub.RoomSize(7))
}

func TestHub_BroadcastReachesAllRoomMembers(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(1, nil)
	assert.NoError(t, err)
	clientB, err := hub.Register(2, nil)
	assert.NoError(t, err)
	outsider, err := hub.Register(3, nil)
	assert.NoError(t, err)

	hub.JoinRoom(5, clientA)
	hub.JoinRoom(5, clientB)
	hub.JoinRoom(9, outsider)

	hub.BroadcastToRoom(5, `{"type":"message"}`)

	assert.Len(t, clientA.Send, 1)
	assert.Len(t, clientB.Send, 1)
	assert.Len(t, outsider.Send, 0)
}

func TestHub_UnregisterRemovesClientFromRooms(t *testing.T) {
	hub := NewHub()

	client, err := hub.Register(4, nil)
	assert.NoError(t, err)
	hub.JoinRoom(1, client)
	hub.JoinRoom(2, client)

	hub.UnregisterClient(client)

	assert.Equal(t, 0, hub.RoomSize(1))
	assert.Equal(t, 0, hub.RoomSize(2))
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(99, nil)
		assert.NoError(t, err)
	}
	_, err := hub.Register(99, nil)
	assert.Error(t, err)
}

func TestHub_WiringForwardsPublishedEvents(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	notifier := NewNotifier(rdb)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, notifier))

	client, err := hub.Register(11, nil)
	require.NoError(t, err)
	hub.JoinRoom(3, client)

	event := NewEvent(EventMessage, 3, map[string]string{"content": "hello"})
	require.NoError(t, notifier.PublishRoom(ctx, 3, event))

	assert.Eventually(t, func() bool {
		return len(client.Send) == 1
	}, testEventuallyTimeout, testPollInterval)

	var received Event
	require.NoError(t, json.Unmarshal(<-client.Send, &received))
	assert.Equal(t, event.ID, received.ID)
	assert.Equal(t, EventMessage, received.Type)
	assert.Equal(t, uint(3), received.ChatID)
}

func TestNotifier_NilClientIsNoop(t *testing.T) {
	notifier := NewNotifier(nil)
	err := notifier.PublishRoom(context.Background(), 1, NewEvent(EventMessage, 1, nil))
	assert.NoError(t, err)
}

func TestNewEvent_AssignsUniqueIDs(t *testing.T) {
	a := NewEvent(EventMessage, 1, nil)
	b := NewEvent(EventMessage, 1, nil)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}
