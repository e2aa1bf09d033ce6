package server_test

import (
	"context"
	"testing"

	"feedsim/models"
	"feedsim/server"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterDeliversToClients(t *testing.T) {
	bc := server.NewBroadcaster()
	first := make(chan models.RecordEvent, 1)
	second := make(chan models.RecordEvent, 1)
	bc.AddClient("first", first)
	bc.AddClient("second", second)

	rec := record(1, "Tech News")
	require.NoError(t, bc.Publish(context.Background(), rec))

	assert.Equal(t, rec, (<-first).Record)
	assert.Equal(t, rec, (<-second).Record)
}

func TestBroadcasterDropsWhenClientIsFull(t *testing.T) {
	bc := server.NewBroadcaster()
	client := make(chan models.RecordEvent, 1)
	bc.AddClient("slow", client)

	require.NoError(t, bc.Publish(context.Background(), record(1, "Tech News")))
	require.NoError(t, bc.Publish(context.Background(), record(2, "Tech News")))

	assert.Len(t, client, 1)
	assert.Equal(t, record(1, "Tech News"), (<-client).Record)
}

func TestBroadcasterRemoveClosesChannel(t *testing.T) {
	bc := server.NewBroadcaster()
	client := make(chan models.RecordEvent, 1)
	bc.AddClient("gone", client)
	require.Equal(t, 1, bc.ClientCount())

	bc.RemoveClient("gone")
	bc.RemoveClient("gone")

	_, open := <-client
	assert.False(t, open)
	assert.Equal(t, 0, bc.ClientCount())
}

func TestBroadcasterShutdown(t *testing.T) {
	bc := server.NewBroadcaster()
	a := make(chan models.RecordEvent)
	b := make(chan models.RecordEvent)
	bc.AddClient("a", a)
	bc.AddClient("b", b)

	bc.Shutdown()

	_, openA := <-a
	_, openB := <-b
	assert.False(t, openA)
	assert.False(t, openB)
	assert.Equal(t, 0, bc.ClientCount())
	assert.NoError(t, bc.Publish(context.Background(), record(1, "Tech News")))
}
