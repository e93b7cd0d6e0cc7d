package dbmongo

import (
	"time"

	"chatsync/internal/common"
)

// Message is one entry in a conversation's append-only log. Immutable once
// written - there is no edit or delete path.
type Message struct {
	ID              string             `bson:"_id,omitempty" json:"id"`
	ConversationKey string             `bson:"conversationKey" json:"conversationKey"`
	SenderID        string             `bson:"senderId" json:"senderId"`
	SenderName      string             `bson:"senderName" json:"senderName"` // captured at send time, no live join
	Type            common.MessageType `bson:"type" json:"type"`
	Text            string             `bson:"text" json:"text"`         // only for type == text
	MediaRef        string             `bson:"mediaUrl" json:"mediaUrl"` // URL, map-query string, or contact summary
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// TypingStatus is the per-(conversation, user) ephemeral cell. Overwritten on
// every publish, never appended, never deleted - staleness is accepted.
type TypingStatus struct {
	ConversationKey string `bson:"conversationKey" json:"conversationKey"`
	UserID          string `bson:"userId" json:"userId"`
	IsTyping        bool   `bson:"isTyping" json:"isTyping"`
}

// User is the profile record carrying the presence fields. Only the locally
// authenticated user's presence is ever written by this process.
type User struct {
	UID         string    `bson:"uid" json:"uid"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Email       string    `bson:"email,omitempty" json:"email,omitempty"`
	Online      bool      `bson:"online" json:"online"`
	LastSeen    time.Time `bson:"lastSeen" json:"lastSeen"`
}
