package utils

import (
	"encoding/binary"

	"github.com/google/uuid"
)

// NewMessageID returns a random positive client message id.
func NewMessageID() int64 {
	u := uuid.New()
	id := int64(binary.BigEndian.Uint64(u[:8]) >> 1)
	if id == 0 {
		return 1
	}
	return id
}
