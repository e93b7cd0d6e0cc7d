package typing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChannel records every write in order.
type fakeChannel struct {
	mu     sync.Mutex
	writes []bool
}

func (f *fakeChannel) Set(ctx context.Context, conversationKey, userID string, isTyping bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, isTyping)
}

func (f *fakeChannel) Subscribe(ctx context.Context, conversationKey, peerUserID string, onChange func(bool)) func() {
	return func() {}
}

func (f *fakeChannel) snapshot() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]bool, len(f.writes))
	copy(out, f.writes)
	return out
}

func TestPublisher_BlurLandsLast(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(ch, "uid1_uid2", "uid1", 100)
	defer pub.Close()

	pub.Keystroke()
	require.Eventually(t, func() bool {
		return len(ch.snapshot()) >= 1
	}, time.Second, 5*time.Millisecond)

	pub.Blur()
	require.Eventually(t, func() bool {
		writes := ch.snapshot()
		return len(writes) >= 2 && !writes[len(writes)-1]
	}, time.Second, 5*time.Millisecond)

	writes := ch.snapshot()
	assert.True(t, writes[0], "first write should be typing=true")
	assert.False(t, writes[len(writes)-1], "last write wins with typing=false")
}

func TestPublisher_KeystrokeBurstsCoalesce(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(ch, "uid1_uid2", "uid1", 2) // slow on purpose
	defer pub.Close()

	for i := 0; i < 50; i++ {
		pub.Keystroke()
	}

	require.Eventually(t, func() bool {
		return len(ch.snapshot()) >= 1
	}, time.Second, 5*time.Millisecond)

	// With the limiter pacing writes, a 50-keystroke burst must not turn
	// into anywhere near 50 channel writes.
	time.Sleep(100 * time.Millisecond)
	assert.Less(t, len(ch.snapshot()), 5)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	ch := &fakeChannel{}
	pub := NewPublisher(ch, "uid1_uid2", "uid1", 100)

	pub.Close()
	pub.Close()

	// Blur after close must not hang.
	done := make(chan struct{})
	go func() {
		pub.Blur()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Blur blocked after Close")
	}
}
