package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type settled struct{ timeslot int }

func TestBusPublishSubscribe(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Publish(settled{timeslot: 7})
	v := <-ch
	assert.Equal(t, settled{timeslot: 7}, v)
	bus.Unsubscribe(ch)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestBusDropsOnFullSubscriber(t *testing.T) {
	bus := NewWithBuffer(2)
	ch := bus.Subscribe()
	for i := 0; i < 5; i++ {
		bus.Publish(settled{timeslot: i})
	}
	assert.Equal(t, int64(3), bus.Dropped())
	assert.Equal(t, settled{timeslot: 0}, <-ch)
	assert.Equal(t, settled{timeslot: 1}, <-ch)
}

func TestBusClose(t *testing.T) {
	bus := New()
	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	bus.Close()
	bus.Close()
	_, ok := <-ch1
	assert.False(t, ok)
	_, ok = <-ch2
	assert.False(t, ok)

	late := bus.Subscribe()
	_, ok = <-late
	assert.False(t, ok)
	bus.Publish(settled{})
	assert.Zero(t, bus.Dropped())
}

func TestBusUnsubscribeAfterClose(t *testing.T) {
	bus := New()
	ch := bus.Subscribe()
	bus.Close()
	require.NotPanics(t, func() { bus.Unsubscribe(ch) })
}
