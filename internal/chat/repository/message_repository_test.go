package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatsync/internal/chat/stream"
	"chatsync/internal/dbmongo"
)

// fakeMessageStore keeps the log in memory, newest first. find captures its
// snapshot at call time; the first gatedFinds calls then block on findGate
// before returning, which lets a test freeze a reader mid-flight.
type fakeMessageStore struct {
	mu         sync.Mutex
	msgs       []*dbmongo.Message
	findGate   chan struct{}
	gatedFinds int32
}

func (s *fakeMessageStore) insert(ctx context.Context, msg *dbmongo.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append([]*dbmongo.Message{msg}, s.msgs...)
	return nil
}

func (s *fakeMessageStore) find(ctx context.Context, conversationKey string) ([]*dbmongo.Message, error) {
	s.mu.Lock()
	snapshot := append([]*dbmongo.Message(nil), s.msgs...)
	s.mu.Unlock()

	if s.findGate != nil && atomic.AddInt32(&s.gatedFinds, -1) >= 0 {
		<-s.findGate
	}
	return snapshot, nil
}

func (s *fakeMessageStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.msgs)
}

func newFakeRepo(store *fakeMessageStore) *messageRepo {
	return &messageRepo{
		store: store,
		hub:   stream.NewHub[[]*dbmongo.Message](),
	}
}

// An append racing a fresh subscription must reach the subscriber: either
// inside the initial snapshot or as a published update, never neither.
func TestSubscribeConcurrentWithAppendLosesNothing(t *testing.T) {
	store := &fakeMessageStore{
		findGate:   make(chan struct{}),
		gatedFinds: 1, // freeze the subscriber's initial read
	}
	repo := newFakeRepo(store)
	ctx := context.Background()

	var (
		mu        sync.Mutex
		snapshots [][]*dbmongo.Message
	)
	subscribed := make(chan struct{})
	go func() {
		unsubscribe, err := repo.Subscribe(ctx, "uid1_uid2", func(messages []*dbmongo.Message) {
			mu.Lock()
			snapshots = append(snapshots, messages)
			mu.Unlock()
		})
		assert.NoError(t, err)
		defer unsubscribe()
		close(subscribed)
	}()

	appended := make(chan struct{})
	go func() {
		_, err := repo.Append(ctx, &dbmongo.Message{
			ConversationKey: "uid1_uid2",
			SenderID:        "uid2",
			Text:            "racing",
		})
		assert.NoError(t, err)
		close(appended)
	}()

	// wait for the append's insert to land while the subscriber is frozen
	require.Eventually(t, func() bool {
		return store.size() == 1
	}, time.Second, time.Millisecond)
	close(store.findGate)

	<-subscribed
	<-appended

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		if len(snapshots) == 0 {
			return false
		}
		last := snapshots[len(snapshots)-1]
		return len(last) == 1 && last[0].Text == "racing"
	}, time.Second, time.Millisecond, "the racing append never reached the subscriber")
}

// Concurrent appends publish monotonic snapshots: a subscriber never sees a
// list shrink, and the final snapshot holds every message.
func TestConcurrentAppendsPublishMonotonicSnapshots(t *testing.T) {
	repo := newFakeRepo(&fakeMessageStore{})
	ctx := context.Background()

	var (
		mu      sync.Mutex
		lengths []int
	)
	unsubscribe, err := repo.Subscribe(ctx, "uid1_uid2", func(messages []*dbmongo.Message) {
		mu.Lock()
		lengths = append(lengths, len(messages))
		mu.Unlock()
	})
	require.NoError(t, err)
	defer unsubscribe()

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Append(ctx, &dbmongo.Message{
				ConversationKey: "uid1_uid2",
				SenderID:        "uid1",
				Text:            "burst",
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, lengths)
	for i := 1; i < len(lengths); i++ {
		assert.GreaterOrEqual(t, lengths[i], lengths[i-1], "snapshot shrank between publishes")
	}
	assert.Equal(t, writers, lengths[len(lengths)-1])
}

func TestAppendRejectsEmptyKey(t *testing.T) {
	repo := newFakeRepo(&fakeMessageStore{})

	_, err := repo.Append(context.Background(), &dbmongo.Message{Text: "hi"})
	assert.Error(t, err)
}
