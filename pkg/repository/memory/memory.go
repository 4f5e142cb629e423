// Package memory provides an in-memory Repository implementation for
// development mode and tests.
package memory

import (
	"github.com/inkwell-labs/mnemosyne/pkg/domain/interfaces"
)

type Memory struct {
	memories *memoryRepository
	messages *messageRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		memories: newMemoryRepository(),
		messages: newMessageRepository(),
	}
}

func (m *Memory) Memory() interfaces.MemoryRepository {
	return m.memories
}

func (m *Memory) Message() interfaces.MessageRepository {
	return m.messages
}

func (m *Memory) Close() error {
	return nil
}
