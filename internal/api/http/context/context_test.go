package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager()

	ctx := m.SetUserIDToContext(context.Background(), "alice")
	userID, ok := m.GetUserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "alice", userID)
}

func TestManager_MissingUserID(t *testing.T) {
	m := NewManager()

	userID, ok := m.GetUserIDFromContext(context.Background())
	assert.False(t, ok)
	assert.Empty(t, userID)
}
