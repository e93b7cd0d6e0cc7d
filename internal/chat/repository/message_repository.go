package repository

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chatsync/internal/chat/stream"
	"chatsync/internal/common"
	"chatsync/internal/dbmongo"
)

// MessageRepository is the append-only ordered log of messages per
// conversation, plus the realtime subscription surface over it.
type MessageRepository interface {
	// Append assigns the server timestamp and id, persists the message and
	// pushes a fresh snapshot to every subscriber of the conversation.
	Append(ctx context.Context, msg *dbmongo.Message) (*dbmongo.Message, error)

	// History returns the conversation newest-first by createdAt, ties
	// broken by id ascending.
	History(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error)

	// Subscribe invokes onChange once immediately with current state and
	// again after every insert. The returned release is idempotent and must
	// be called on consumer teardown. Duplicate delivery after a reconnect
	// is tolerated by consumers via id-based de-duplication - the adapter
	// does not de-duplicate.
	Subscribe(ctx context.Context, conversationKey string, onChange func([]*dbmongo.Message)) (func(), error)
}

// messageStore is the raw document access underneath the repository.
type messageStore interface {
	insert(ctx context.Context, msg *dbmongo.Message) error
	find(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error)
}

type messageRepo struct {
	store messageStore
	hub   *stream.Hub[[]*dbmongo.Message]

	// mu serializes snapshot-build+publish against subscription setup: a
	// subscriber must never land in the gap between its initial snapshot
	// and its hub registration, and two concurrent appends must not
	// publish snapshots out of order.
	mu sync.Mutex
}

func NewMessageRepository(client *dbmongo.MongoClient) MessageRepository {
	return &messageRepo{
		store: &mongoMessageStore{client: client},
		hub:   stream.NewHub[[]*dbmongo.Message](),
	}
}

func (r *messageRepo) Append(ctx context.Context, msg *dbmongo.Message) (*dbmongo.Message, error) {
	if msg.ConversationKey == "" {
		return nil, common.ErrInvalidConversationKey
	}

	// Ordering authority is the store, never the client clock.
	msg.ID = primitive.NewObjectID().Hex()
	msg.CreatedAt = time.Now().UTC()

	if err := r.store.insert(ctx, msg); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Push-on-write: every subscriber gets the new ordered snapshot. The
	// read happens under the lock, so a snapshot published later is never
	// staler than one published earlier.
	snapshot, err := r.store.find(ctx, msg.ConversationKey)
	if err != nil {
		log.Printf("snapshot after append failed for %s: %v", msg.ConversationKey, err)
		return msg, nil
	}
	r.hub.Publish(msg.ConversationKey, snapshot)

	return msg, nil
}

func (r *messageRepo) History(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error) {
	if conversationKey == "" {
		return nil, common.ErrInvalidConversationKey
	}
	return r.store.find(ctx, conversationKey)
}

func (r *messageRepo) Subscribe(ctx context.Context, conversationKey string, onChange func([]*dbmongo.Message)) (func(), error) {
	r.mu.Lock()

	// Register before reading so an append between the two either lands in
	// the initial snapshot or is published to the already-registered
	// listener. Both paths hold the lock, so neither can interleave.
	unsubscribe := r.hub.Subscribe(conversationKey, onChange)

	snapshot, err := r.History(ctx, conversationKey)
	if err != nil {
		r.mu.Unlock()
		unsubscribe()
		return nil, err
	}
	onChange(snapshot)
	r.mu.Unlock()

	return unsubscribe, nil
}

type mongoMessageStore struct {
	client *dbmongo.MongoClient
}

func (s *mongoMessageStore) insert(ctx context.Context, msg *dbmongo.Message) error {
	if _, err := s.client.Messages().InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return nil
}

func (s *mongoMessageStore) find(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "createdAt", Value: -1},
		{Key: "_id", Value: 1},
	})

	cursor, err := s.client.Messages().Find(ctx, bson.M{"conversationKey": conversationKey}, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var messages []*dbmongo.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStoreUnavailable, err)
	}
	return messages, nil
}
