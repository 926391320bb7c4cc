package naming

import "github.com/google/uuid"

// Namer hands out the identifier shared by every artifact of one run.
type Namer interface {
	NewRunID() string
}

type UUIDNamer struct{}

// NewRunID returns a random (v4) UUID.
func (UUIDNamer) NewRunID() string {
	return uuid.NewString()
}
