package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"chatsync/internal/chat/service/mocks"
	"chatsync/internal/common"
	"chatsync/internal/dbmongo"
)

func TestChatService_SendText(t *testing.T) {
	tests := []struct {
		name        string
		draft       Draft
		mockSetup   func(repo *mocks.MockMessageRepository, typingCh *mocks.MockChannel)
		expectSaved bool
		expectError error
	}{
		{
			name: "successful text send clears typing",
			draft: Draft{
				ConversationKey: "uid1_uid2",
				SenderID:        "uid1",
				SenderName:      "Alice",
				Type:            common.MessageTypeText,
				Text:            "hi",
			},
			mockSetup: func(repo *mocks.MockMessageRepository, typingCh *mocks.MockChannel) {
				repo.EXPECT().
					Append(gomock.Any(), gomock.Any()).
					DoAndReturn(func(ctx context.Context, msg *dbmongo.Message) (*dbmongo.Message, error) {
						assert.Equal(t, "uid1_uid2", msg.ConversationKey)
						assert.Equal(t, "uid1", msg.SenderID)
						assert.Equal(t, "Alice", msg.SenderName)
						assert.Equal(t, "hi", msg.Text)
						assert.Empty(t, msg.MediaRef)
						msg.ID = "m1"
						msg.CreatedAt = time.Now().UTC()
						return msg, nil
					}).
					Times(1)
				typingCh.EXPECT().
					Set(gomock.Any(), "uid1_uid2", "uid1", false).
					Times(1)
			},
			expectSaved: true,
		},
		{
			name: "whitespace-only text is a silent no-op",
			draft: Draft{
				ConversationKey: "uid1_uid2",
				SenderID:        "uid1",
				Type:            common.MessageTypeText,
				Text:            "   \t ",
			},
			// no Append, and typing is NOT cleared twice: an ignored send
			// leaves the flag alone
			mockSetup:   func(repo *mocks.MockMessageRepository, typingCh *mocks.MockChannel) {},
			expectSaved: false,
		},
		{
			name: "missing sender is a precondition failure",
			draft: Draft{
				ConversationKey: "uid1_uid2",
				Type:            common.MessageTypeText,
				Text:            "hi",
			},
			mockSetup:   func(repo *mocks.MockMessageRepository, typingCh *mocks.MockChannel) {},
			expectError: common.ErrNoSession,
		},
		{
			name: "empty conversation key rejected",
			draft: Draft{
				SenderID: "uid1",
				Type:     common.MessageTypeText,
				Text:     "hi",
			},
			mockSetup:   func(repo *mocks.MockMessageRepository, typingCh *mocks.MockChannel) {},
			expectError: common.ErrInvalidConversationKey,
		},
		{
			name: "append failure surfaces but typing is still cleared",
			draft: Draft{
				ConversationKey: "uid1_uid2",
				SenderID:        "uid1",
				Type:            common.MessageTypeText,
				Text:            "hi",
			},
			mockSetup: func(repo *mocks.MockMessageRepository, typingCh *mocks.MockChannel) {
				repo.EXPECT().
					Append(gomock.Any(), gomock.Any()).
					Return(nil, common.ErrStoreUnavailable).
					Times(1)
				typingCh.EXPECT().
					Set(gomock.Any(), "uid1_uid2", "uid1", false).
					Times(1)
			},
			expectError: common.ErrStoreUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockRepo := mocks.NewMockMessageRepository(ctrl)
			mockTyping := mocks.NewMockChannel(ctrl)
			tt.mockSetup(mockRepo, mockTyping)

			svc := NewChatService(mockRepo, mockTyping)
			saved, err := svc.Send(context.Background(), tt.draft)

			if tt.expectError != nil {
				assert.ErrorIs(t, err, tt.expectError)
				assert.Nil(t, saved)
				return
			}
			assert.NoError(t, err)
			if tt.expectSaved {
				assert.NotNil(t, saved)
				assert.NotEmpty(t, saved.ID)
			} else {
				assert.Nil(t, saved)
			}
		})
	}
}

func TestChatService_SendMedia(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMessageRepository(ctrl)
	mockTyping := mocks.NewMockChannel(ctrl)
	svc := NewChatService(mockRepo, mockTyping)

	mockRepo.EXPECT().
		Append(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, msg *dbmongo.Message) (*dbmongo.Message, error) {
			assert.Equal(t, common.MessageTypeLocation, msg.Type)
			assert.Equal(t, "https://maps.google.com/?q=37,-122", msg.MediaRef)
			assert.Empty(t, msg.Text)
			msg.ID = "m2"
			return msg, nil
		}).
		Times(1)
	mockTyping.EXPECT().
		Set(gomock.Any(), "uid1_uid2", "uid1", false).
		Times(1)

	saved, err := svc.Send(context.Background(), Draft{
		ConversationKey: "uid1_uid2",
		SenderID:        "uid1",
		SenderName:      "Alice",
		Type:            common.MessageTypeLocation,
		MediaRef:        "https://maps.google.com/?q=37,-122",
	})

	assert.NoError(t, err)
	assert.NotNil(t, saved)
}

func TestChatService_SendMedia_MissingRef(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMessageRepository(ctrl)
	mockTyping := mocks.NewMockChannel(ctrl)
	svc := NewChatService(mockRepo, mockTyping)

	// validation fails before any append, so typing stays untouched
	saved, err := svc.Send(context.Background(), Draft{
		ConversationKey: "uid1_uid2",
		SenderID:        "uid1",
		Type:            common.MessageTypePhoto,
	})

	assert.Error(t, err)
	assert.Nil(t, saved)
}

func TestChatService_History(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMessageRepository(ctrl)
	mockTyping := mocks.NewMockChannel(ctrl)
	svc := NewChatService(mockRepo, mockTyping)

	messages := []*dbmongo.Message{
		{ID: "m2", Text: "newer"},
		{ID: "m1", Text: "older"},
	}
	mockRepo.EXPECT().
		History(gomock.Any(), "uid1_uid2").
		Return(messages, nil).
		Times(1)

	got, err := svc.History(context.Background(), "uid1_uid2")
	assert.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = svc.History(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrInvalidConversationKey)
}
