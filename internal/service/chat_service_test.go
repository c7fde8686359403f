package service

import (
	"context"
	"testing"

	"foodloop/internal/models"
	"foodloop/internal/notifications"
	"foodloop/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newChatService(db *gorm.DB, broadcaster notifications.Broadcaster) *ChatService {
	return NewChatService(
		repository.NewChatRepository(db),
		repository.NewUserRepository(db),
		repository.NewFoodPostRepository(db),
		broadcaster,
	)
}

func TestChatService_Open(t *testing.T) {
	db := setupTestDB(t)
	svc := newChatService(db, nil)
	posts := newFoodPostService(db)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")

	t.Run("creates a chat with exactly two participants", func(t *testing.T) {
		chat, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID})
		require.NoError(t, err)
		require.Len(t, chat.Participants, 2)
		assert.True(t, chat.HasParticipant(alice.ID))
		assert.True(t, chat.HasParticipant(bob.ID))
		assert.False(t, chat.LastMessage.IsZero())
	})

	t.Run("opening again returns the same chat", func(t *testing.T) {
		first, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID})
		require.NoError(t, err)
		second, err := svc.Open(ctx, bob.ID, OpenChatInput{OtherUserID: alice.ID})
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("a post-scoped chat is distinct from the general chat", func(t *testing.T) {
		post, err := posts.Create(ctx, alice.ID, validPostInput(52.52, 13.405))
		require.NoError(t, err)

		general, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID})
		require.NoError(t, err)
		scoped, err := svc.Open(ctx, bob.ID, OpenChatInput{OtherUserID: alice.ID, FoodPostID: &post.ID})
		require.NoError(t, err)
		assert.NotEqual(t, general.ID, scoped.ID)

		again, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID, FoodPostID: &post.ID})
		require.NoError(t, err)
		assert.Equal(t, scoped.ID, again.ID)
	})

	t.Run("chat with self is rejected", func(t *testing.T) {
		_, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: alice.ID})
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("unknown counterpart is not found", func(t *testing.T) {
		_, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: 9999})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})

	t.Run("unknown food post is not found", func(t *testing.T) {
		missing := uint(9999)
		_, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID, FoodPostID: &missing})
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestChatService_SendMessage(t *testing.T) {
	db := setupTestDB(t)
	broadcaster := &recordingBroadcaster{}
	svc := newChatService(db, broadcaster)
	ctx := context.Background()
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	eve := createTestUser(t, db, "eve", "eve@example.com")

	chat, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID})
	require.NoError(t, err)

	t.Run("persists the message and bumps last activity", func(t *testing.T) {
		msg, err := svc.SendMessage(ctx, chat.ID, alice.ID, "hello bob")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, msg.SenderID)
		assert.False(t, msg.Read)
		require.NotNil(t, msg.Sender)
		assert.Equal(t, "alice", msg.Sender.Name)

		got, err := svc.GetChatForUser(ctx, chat.ID, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, msg.CreatedAt.Unix(), got.LastMessage.Unix())
	})

	t.Run("publishes a room event with a unique ID", func(t *testing.T) {
		before := len(broadcaster.events)
		_, err := svc.SendMessage(ctx, chat.ID, bob.ID, "hi alice")
		require.NoError(t, err)
		require.Len(t, broadcaster.events, before+1)
		event := broadcaster.events[len(broadcaster.events)-1]
		assert.Equal(t, notifications.EventMessage, event.Type)
		assert.Equal(t, chat.ID, event.ChatID)
		assert.NotEmpty(t, event.ID)
	})

	t.Run("non-participant cannot send", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, chat.ID, eve.ID, "let me in")
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, chat.ID, alice.ID, "")
		assertAppErrorCode(t, err, models.CodeValidation)
	})

	t.Run("unknown chat is not found", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, 9999, alice.ID, "hello?")
		assertAppErrorCode(t, err, models.CodeNotFound)
	})
}

func TestChatService_MessagesAndReadState(t *testing.T) {
	db := setupTestDB(t)
	svc := newChatService(db, &recordingBroadcaster{})
	ctx := context.Background()
	alice := createTestUser(t, db, "alice", "alice@example.com")
	bob := createTestUser(t, db, "bob", "bob@example.com")
	eve := createTestUser(t, db, "eve", "eve@example.com")

	chat, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: bob.ID})
	require.NoError(t, err)

	_, err = svc.SendMessage(ctx, chat.ID, alice.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, chat.ID, bob.ID, "two")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, chat.ID, alice.ID, "three")
	require.NoError(t, err)

	t.Run("messages arrive oldest first", func(t *testing.T) {
		msgs, err := svc.ListMessages(ctx, chat.ID, alice.ID, 50, 0)
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "one", msgs[0].Content)
		assert.Equal(t, "three", msgs[2].Content)
	})

	t.Run("non-participant cannot list messages", func(t *testing.T) {
		_, err := svc.ListMessages(ctx, chat.ID, eve.ID, 50, 0)
		assertAppErrorCode(t, err, models.CodeForbidden)
	})

	t.Run("mark as read flips only the counterpart's messages", func(t *testing.T) {
		updated, err := svc.MarkAsRead(ctx, chat.ID, bob.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), updated)

		msgs, err := svc.ListMessages(ctx, chat.ID, bob.ID, 50, 0)
		require.NoError(t, err)
		for _, m := range msgs {
			if m.SenderID == alice.ID {
				assert.True(t, m.Read)
			} else {
				assert.False(t, m.Read)
			}
		}
	})

	t.Run("marking again changes nothing", func(t *testing.T) {
		updated, err := svc.MarkAsRead(ctx, chat.ID, bob.ID)
		require.NoError(t, err)
		assert.Zero(t, updated)
	})

	t.Run("chats list is ordered by last activity", func(t *testing.T) {
		other, err := svc.Open(ctx, alice.ID, OpenChatInput{OtherUserID: eve.ID})
		require.NoError(t, err)
		_, err = svc.SendMessage(ctx, other.ID, alice.ID, "newest thread")
		require.NoError(t, err)

		chats, err := svc.ListChats(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, chats, 2)
		assert.Equal(t, other.ID, chats[0].ID)
	})
}
