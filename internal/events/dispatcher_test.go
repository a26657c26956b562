package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_RunsAllHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	var seen []string
	boom := errors.New("webhook down")

	d.Subscribe(EventMechanicAssigned, func(_ context.Context, e Event) error {
		seen = append(seen, "first")
		return boom
	})
	d.Subscribe(EventMechanicAssigned, func(_ context.Context, e Event) error {
		seen = append(seen, "second")
		return nil
	})
	d.Subscribe(EventPartAdded, func(_ context.Context, e Event) error {
		seen = append(seen, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventMechanicAssigned, 1, 7, AssociationChangedPayload{EntityID: 3}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"first", "second"}, seen)
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(EventTicketCreated, 4, 2, nil)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, int64(4), e.TicketID)
	assert.Equal(t, int64(2), e.CustomerID)
	assert.False(t, e.Timestamp.IsZero())
	assert.NotEqual(t, e.ID, NewEvent(EventTicketCreated, 4, 2, nil).ID)
}

func TestDispatcher_IsolatesPanickingHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := false

	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error { panic("nil map") })
	d.Subscribe(EventTicketDeleted, func(context.Context, Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventTicketDeleted, 9, 1, nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), string(EventTicketDeleted))
	assert.Contains(t, err.Error(), "handler panicked")
	assert.True(t, delivered)

	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventPartRemoved, 9, 1, nil)))
}
