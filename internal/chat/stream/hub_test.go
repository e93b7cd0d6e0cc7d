package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHub_PublishReachesOnlyMatchingKey(t *testing.T) {
	hub := NewHub[int]()

	var gotA, gotB []int
	unsubA := hub.Subscribe("conv-a", func(v int) { gotA = append(gotA, v) })
	defer unsubA()
	unsubB := hub.Subscribe("conv-b", func(v int) { gotB = append(gotB, v) })
	defer unsubB()

	hub.Publish("conv-a", 1)
	hub.Publish("conv-a", 2)
	hub.Publish("conv-b", 9)

	assert.Equal(t, []int{1, 2}, gotA)
	assert.Equal(t, []int{9}, gotB)
}

func TestHub_UnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub[string]()

	var got []string
	unsub := hub.Subscribe("conv", func(v string) { got = append(got, v) })

	hub.Publish("conv", "before")
	unsub()
	hub.Publish("conv", "after")

	assert.Equal(t, []string{"before"}, got)
	assert.Equal(t, 0, hub.Subscribers("conv"))
}

func TestHub_UnsubscribeIsIdempotent(t *testing.T) {
	hub := NewHub[bool]()

	unsub1 := hub.Subscribe("conv", func(bool) {})
	unsub2 := hub.Subscribe("conv", func(bool) {})

	unsub1()
	unsub1() // second call must not remove anyone else's slot
	assert.Equal(t, 1, hub.Subscribers("conv"))

	unsub2()
	assert.Equal(t, 0, hub.Subscribers("conv"))
}

func TestHub_MultipleListenersAllReceive(t *testing.T) {
	hub := NewHub[int]()

	count := 0
	for i := 0; i < 3; i++ {
		unsub := hub.Subscribe("conv", func(int) { count++ })
		defer unsub()
	}

	hub.Publish("conv", 42)
	assert.Equal(t, 3, count)
}
