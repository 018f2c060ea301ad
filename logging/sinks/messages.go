package sinks

import (
	"context"

	"better-dreadroot/logging"
)

// MessageQueue is the in-world player message log.
type MessageQueue interface {
	AddPlayerMessage(message string)
}

// Messages forwards event messages into the player's message log. Events
// without a Message are not meant for players and are ignored.
type Messages struct {
	queue MessageQueue
}

func NewMessages(queue MessageQueue) *Messages {
	return &Messages{queue: queue}
}

func (s *Messages) Write(event logging.Event) error {
	if s.queue == nil || event.Message == "" {
		return nil
	}
	s.queue.AddPlayerMessage(event.Message)
	return nil
}

func (s *Messages) Close(context.Context) error {
	return nil
}
