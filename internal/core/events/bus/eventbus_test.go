package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got []Event
	_, err := b.Subscribe("object.added", func(e Event) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Publish(NewEvent("object.added", "test", "obj-1")))
	require.NoError(t, b.Publish(NewEvent("object.removed", "test", "obj-1")))

	require.Len(t, got, 1)
	assert.Equal(t, "obj-1", got[0].Data)
	assert.False(t, got[0].Timestamp.IsZero())
}

func TestWildcardReceivesEverything(t *testing.T) {
	b := New()
	count := 0
	_, _ = b.Subscribe(AllEvents, func(Event) error { count++; return nil })

	_ = b.PublishBatch(NewEvent("a", "", nil), NewEvent("b", "", nil))
	assert.Equal(t, 2, count)
}

func TestCancelStopsDelivery(t *testing.T) {
	b := New()
	count := 0
	sub, err := b.Subscribe("x", func(Event) error { count++; return nil })
	require.NoError(t, err)

	_ = b.Publish(NewEvent("x", "", nil))
	require.NoError(t, b.Unsubscribe(sub))
	require.NoError(t, sub.Cancel())
	_ = b.Publish(NewEvent("x", "", nil))

	assert.Equal(t, 1, count)
	assert.False(t, sub.IsActive())
	assert.Equal(t, 0, b.Subscribers("x"))
	assert.NoError(t, b.Unsubscribe(nil))
}

func TestHandlerErrorsAreJoined(t *testing.T) {
	b := New()
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	_, _ = b.Subscribe("x", func(Event) error { return errA })
	_, _ = b.Subscribe("x", func(Event) error { return errB })
	_, _ = b.Subscribe("x", func(Event) error { return nil })

	err := b.Publish(NewEvent("x", "", nil))
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	m := b.GetMetrics()
	assert.Equal(t, uint64(1), m.Published)
	assert.Equal(t, uint64(3), m.DeliveredHandlers)
	assert.Equal(t, uint64(2), m.Errors)
}

func TestPublishAsyncReturnsErrorChannel(t *testing.T) {
	b := New()
	handlerErr := errors.New("fail")
	_, _ = b.Subscribe("x", func(Event) error { return handlerErr })

	select {
	case err := <-b.PublishAsync(NewEvent("x", "src", nil)):
		assert.ErrorIs(t, err, handlerErr)
	case <-time.After(time.Second):
		t.Fatal("async publish did not complete")
	}
}

func TestSubscribeValidation(t *testing.T) {
	b := New()
	_, err := b.Subscribe("", func(Event) error { return nil })
	assert.ErrorIs(t, err, ErrEmptyEventType)
	_, err = b.Subscribe("x", nil)
	assert.ErrorIs(t, err, ErrNilHandler)
}
