package memory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenDSN(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAppend(t *testing.T) {
	store := openTestStore(t)

	t.Run("assigns a uuid and persists the record", func(t *testing.T) {
		record, err := store.Append("alice", "aishop-agent", "room-1", "crear wallet", "CREATE_WALLET",
			map[string]string{"address": "0x1111111111111111111111111111111111111111"})
		require.NoError(t, err)

		assert.Len(t, record.ID, 36)
		assert.Equal(t, "CREATE_WALLET", record.Action)

		got, err := store.ListByUser("alice", 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, record.ID, got[0].ID)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(got[0].Payload, &payload))
		assert.Equal(t, "0x1111111111111111111111111111111111111111", payload["address"])
	})

	t.Run("requires user and action", func(t *testing.T) {
		_, err := store.Append("", "a", "r", "text", "ACTION", nil)
		assert.Error(t, err)

		_, err = store.Append("u", "a", "r", "text", "", nil)
		assert.Error(t, err)
	})

	t.Run("nil payload is allowed", func(t *testing.T) {
		record, err := store.Append("bob", "aishop-agent", "room-1", "hola", "CHECK_BALANCE", nil)
		require.NoError(t, err)
		assert.Empty(t, record.Payload)
	})
}

func TestListByUser(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 3; i++ {
		_, err := store.Append("carol", "aishop-agent", "room-1", "msg", "CHECK_BALANCE", map[string]int{"n": i})
		require.NoError(t, err)
	}
	_, err := store.Append("dave", "aishop-agent", "room-1", "msg", "CHECK_BALANCE", nil)
	require.NoError(t, err)

	t.Run("scopes to the user", func(t *testing.T) {
		got, err := store.ListByUser("carol", 10)
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("respects the limit", func(t *testing.T) {
		got, err := store.ListByUser("carol", 2)
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("unknown user yields nothing", func(t *testing.T) {
		got, err := store.ListByUser("nobody", 10)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}
