package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventHandler_Handle(t *testing.T) {
	handler := NewMockEventHandler("TestEvent")
	event := NewTestEvent("TestEvent")

	require.NoError(t, handler.Handle(context.Background(), event))
	assert.Equal(t, 1, handler.HandledCount())
	assert.Equal(t, event, handler.Handled()[0])
	assert.Equal(t, []string{"TestEvent"}, handler.EventTypes())
}

func TestMockEventHandler_SetError(t *testing.T) {
	handler := NewMockEventHandler()
	handler.SetError(assert.AnError)

	err := handler.Handle(context.Background(), NewTestEvent("TestEvent"))
	assert.Equal(t, assert.AnError, err)
	assert.Equal(t, 1, handler.HandledCount())
}

func TestNewTestEvent(t *testing.T) {
	event := NewTestEvent("TestEvent")

	assert.NotEqual(t, uuid.Nil, event.EventID())
	assert.NotEqual(t, uuid.Nil, event.AggregateID())
	assert.Equal(t, "TestEvent", event.EventType())
	assert.Equal(t, "TestAggregate", event.AggregateType())
	assert.False(t, event.OccurredAt().IsZero())
}
