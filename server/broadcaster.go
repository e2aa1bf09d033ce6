package server

import (
	"context"
	"sync"

	"feedsim/models"

	log "github.com/sirupsen/logrus"
)

// Broadcaster fans new records out to SSE clients. A client whose channel is
// full misses the event rather than slowing down the simulator.
type Broadcaster struct {
	sync.RWMutex
	clients map[string]chan models.RecordEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan models.RecordEvent),
	}
}

// Publish implements the simulator sink. It never fails.
func (b *Broadcaster) Publish(ctx context.Context, record models.Record) error {
	b.RLock()
	defer b.RUnlock()

	event := models.RecordEvent{Record: record}
	for id, client := range b.clients {
		select {
		case client <- event: // Non-blocking send
		default:
			log.Warnf("Client channel full, skipping record for client: %v", id)
		}
	}

	return nil
}

func (b *Broadcaster) AddClient(key string, client chan models.RecordEvent) {
	b.Lock()
	defer b.Unlock()
	b.clients[key] = client
	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Adding client to broadcaster")
}

func (b *Broadcaster) RemoveClient(key string) {
	b.Lock()
	defer b.Unlock()

	if client, ok := b.clients[key]; ok {
		close(client)
		delete(b.clients, key)
	}

	log.WithFields(log.Fields{
		"key":   key,
		"count": len(b.clients),
	}).Info("Removed client from broadcaster")
}

func (b *Broadcaster) ClientCount() int {
	b.RLock()
	defer b.RUnlock()
	return len(b.clients)
}

func (b *Broadcaster) Shutdown() {
	log.Info("Shutting down broadcaster")
	b.Lock()
	defer b.Unlock()
	for key, client := range b.clients {
		close(client)
		delete(b.clients, key)
	}
}
