package service

import (
	"context"
	"errors"
	"strings"

	"chatsync/internal/chat/repository"
	"chatsync/internal/common"
	"chatsync/internal/dbmongo"
	"chatsync/internal/typing"
)

// Draft is what the render layer hands in. For non-text types the mediaRef
// must already be resolved by the attachment pipeline.
type Draft struct {
	ConversationKey string
	SenderID        string
	SenderName      string
	Type            common.MessageType
	Text            string
	MediaRef        string
}

// ChatService defines the interface exposed to the gateway layer
type ChatService interface {
	// Send validates the draft, appends the message and unconditionally
	// clears the sender's typing flag afterwards. An empty text draft is a
	// silent no-op, not an error. Append failures surface to the caller
	// and are never retried here.
	Send(ctx context.Context, draft Draft) (*dbmongo.Message, error)

	History(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error)
	SubscribeMessages(ctx context.Context, conversationKey string, onChange func([]*dbmongo.Message)) (func(), error)
	SubscribeTyping(ctx context.Context, conversationKey, peerUserID string, onChange func(bool)) func()
}

type chatService struct {
	repo   repository.MessageRepository
	typing typing.Channel
}

// Constructor used in DI/wire
func NewChatService(repo repository.MessageRepository, typingChannel typing.Channel) ChatService {
	return &chatService{
		repo:   repo,
		typing: typingChannel,
	}
}

func (s *chatService) Send(ctx context.Context, draft Draft) (*dbmongo.Message, error) {
	if draft.SenderID == "" {
		return nil, common.ErrNoSession
	}
	if draft.ConversationKey == "" {
		return nil, common.ErrInvalidConversationKey
	}
	if !draft.Type.IsValid() {
		return nil, errors.New("unknown message type")
	}

	msg := &dbmongo.Message{
		ConversationKey: draft.ConversationKey,
		SenderID:        draft.SenderID,
		SenderName:      draft.SenderName,
		Type:            draft.Type,
	}

	if draft.Type == common.MessageTypeText {
		text := strings.TrimSpace(draft.Text)
		if text == "" {
			// Empty sends are silently ignored; typing stays as-is.
			return nil, nil
		}
		msg.Text = draft.Text
	} else {
		if draft.MediaRef == "" {
			return nil, errors.New("media draft is missing its resolved mediaRef")
		}
		msg.MediaRef = draft.MediaRef
	}

	saved, err := s.repo.Append(ctx, msg)

	// Typing state must not persist past a send attempt, even a failed one.
	s.typing.Set(ctx, draft.ConversationKey, draft.SenderID, false)

	if err != nil {
		return nil, err
	}
	return saved, nil
}

func (s *chatService) History(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error) {
	if conversationKey == "" {
		return nil, common.ErrInvalidConversationKey
	}
	return s.repo.History(ctx, conversationKey)
}

func (s *chatService) SubscribeMessages(ctx context.Context, conversationKey string, onChange func([]*dbmongo.Message)) (func(), error) {
	return s.repo.Subscribe(ctx, conversationKey, onChange)
}

func (s *chatService) SubscribeTyping(ctx context.Context, conversationKey, peerUserID string, onChange func(bool)) func() {
	return s.typing.Subscribe(ctx, conversationKey, peerUserID, onChange)
}
