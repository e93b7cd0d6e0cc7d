package typing

import (
	"context"
	"sync"

	"go.uber.org/ratelimit"
)

// Publisher sits in front of Channel.Set for one (conversation, user) pair
// and absorbs per-keystroke amplification: bursts coalesce into a single
// pending write and "typing" writes are paced by a rate limiter. All writes
// flow through one goroutine, so the channel sees a single ordered writer
// and a trailing "not typing" always lands last.
type Publisher struct {
	channel         Channel
	conversationKey string
	userID          string

	limiter   ratelimit.Limiter
	events    chan bool
	closeOnce sync.Once
	done      chan struct{}
}

func NewPublisher(channel Channel, conversationKey, userID string, writesPerSec int) *Publisher {
	if writesPerSec <= 0 {
		writesPerSec = 3
	}
	p := &Publisher{
		channel:         channel,
		conversationKey: conversationKey,
		userID:          userID,
		limiter:         ratelimit.New(writesPerSec),
		events:          make(chan bool, 1),
		done:            make(chan struct{}),
	}
	go p.loop()
	return p
}

// Keystroke records typing intent. Bursts while a write is pending collapse
// into one event.
func (p *Publisher) Keystroke() {
	select {
	case p.events <- true:
	default:
	}
}

// Blur clears the flag (input lost focus or a send just happened). Unlike
// keystrokes this is never dropped.
func (p *Publisher) Blur() {
	select {
	case p.events <- false:
	case <-p.done:
	}
}

// Close stops the publisher. Idempotent.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

func (p *Publisher) loop() {
	for {
		select {
		case <-p.done:
			return
		case isTyping := <-p.events:
			if isTyping {
				p.limiter.Take()
			}
			p.channel.Set(context.Background(), p.conversationKey, p.userID, isTyping)
		}
	}
}
