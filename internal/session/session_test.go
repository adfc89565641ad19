package session

import (
	"testing"
	"time"

	"github.com/fieldworks/meterhub/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForIdentity(t *testing.T, ch <-chan *Identity) *Identity {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("no session event received")
		return nil
	}
}

func TestStoreCurrent(t *testing.T) {
	store := NewStore()

	assert.Nil(t, store.Current())
	assert.False(t, store.IsAuthenticated())
	assert.False(t, store.IsAdmin())

	store.Set(&Identity{ID: "u1", Email: "u1@example.com", Role: models.RoleMedidor})

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "u1", current.ID)
	assert.True(t, store.IsAuthenticated())
	assert.False(t, store.IsAdmin())
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()
	original := &Identity{ID: "u1", Role: models.RoleMedidor}
	store.Set(original)

	// Mutating either the input or a returned value must not leak into
	// the stored identity.
	original.Role = models.RoleAdmin
	assert.False(t, store.IsAdmin())

	current := store.Current()
	current.Role = models.RoleAdmin
	assert.False(t, store.IsAdmin())
}

func TestStoreIsAdmin(t *testing.T) {
	store := NewStore()
	store.Set(&Identity{ID: "a1", Role: models.RoleAdmin})
	assert.True(t, store.IsAdmin())
}

func TestStoreClear(t *testing.T) {
	store := NewStore()
	store.Set(&Identity{ID: "u1"})
	store.Clear()

	assert.Nil(t, store.Current())
	assert.False(t, store.IsAuthenticated())
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore()

	events := make(chan *Identity, 4)
	store.Subscribe("test_listener", func(id *Identity) {
		events <- id
	})

	store.Set(&Identity{ID: "u1", Role: models.RoleMedidor})
	got := waitForIdentity(t, events)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)

	// Sign-out delivers nil
	store.Clear()
	assert.Nil(t, waitForIdentity(t, events))
}

func TestStoreLastWriteWins(t *testing.T) {
	store := NewStore()
	store.Set(&Identity{ID: "first"})
	store.Set(&Identity{ID: "second"})

	current := store.Current()
	require.NotNil(t, current)
	assert.Equal(t, "second", current.ID)
}
