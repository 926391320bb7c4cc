package naming

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDNamer_ReturnsV4(t *testing.T) {
	id := UUIDNamer{}.NewRunID()

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestUUIDNamer_Unique(t *testing.T) {
	var namer Namer = UUIDNamer{}
	seen := make(map[string]struct{}, 1000)

	for i := 0; i < 1000; i++ {
		id := namer.NewRunID()
		_, dup := seen[id]
		require.False(t, dup, "run id %s generated twice", id)
		seen[id] = struct{}{}
	}
}
