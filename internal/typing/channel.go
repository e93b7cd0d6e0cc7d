// Package typing is the ephemeral is-typing side channel. It piggybacks on
// the same document store as messages but is its own logical stream - best
// effort, last write wins, never blocking message delivery.
package typing

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatsync/internal/chat/stream"
	"chatsync/internal/dbmongo"
)

type Channel interface {
	// Set overwrites the (conversation, user) typing cell. Last write wins;
	// write failures are logged and swallowed.
	Set(ctx context.Context, conversationKey, userID string, isTyping bool)

	// Subscribe delivers the peer's current flag and all subsequent
	// changes. The returned release is idempotent.
	Subscribe(ctx context.Context, conversationKey, peerUserID string, onChange func(bool)) func()
}

type mongoChannel struct {
	client *dbmongo.MongoClient
	hub    *stream.Hub[dbmongo.TypingStatus]
}

func NewChannel(client *dbmongo.MongoClient) Channel {
	return &mongoChannel{
		client: client,
		hub:    stream.NewHub[dbmongo.TypingStatus](),
	}
}

func (c *mongoChannel) Set(ctx context.Context, conversationKey, userID string, isTyping bool) {
	status := dbmongo.TypingStatus{
		ConversationKey: conversationKey,
		UserID:          userID,
		IsTyping:        isTyping,
	}

	filter := bson.M{"conversationKey": conversationKey, "userId": userID}
	update := bson.M{"$set": bson.M{"isTyping": isTyping}}
	opts := options.Update().SetUpsert(true)

	if _, err := c.client.TypingStatus().UpdateOne(ctx, filter, update, opts); err != nil {
		// Typing indication is an enrichment, not a guarantee.
		log.Printf("typing write failed for %s/%s: %v", conversationKey, userID, err)
	}

	c.hub.Publish(conversationKey, status)
}

func (c *mongoChannel) Subscribe(ctx context.Context, conversationKey, peerUserID string, onChange func(bool)) func() {
	unsubscribe := c.hub.Subscribe(conversationKey, func(status dbmongo.TypingStatus) {
		if status.UserID == peerUserID {
			onChange(status.IsTyping)
		}
	})

	onChange(c.current(ctx, conversationKey, peerUserID))
	return unsubscribe
}

func (c *mongoChannel) current(ctx context.Context, conversationKey, peerUserID string) bool {
	filter := bson.M{"conversationKey": conversationKey, "userId": peerUserID}

	var status dbmongo.TypingStatus
	err := c.client.TypingStatus().FindOne(ctx, filter).Decode(&status)
	if err == mongo.ErrNoDocuments {
		return false
	}
	if err != nil {
		log.Printf("typing read failed for %s/%s: %v", conversationKey, peerUserID, err)
		return false
	}
	return status.IsTyping
}
