package user

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryStoreFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	seed := `[
		{"id": "nurse-1", "name": "Lakshmi", "role": "partner", "profession": "Registered Nurse", "is_verified": true},
		{"id": "patient-1", "name": "Ravi", "role": "patient"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	store, err := NewMemoryStoreFromFile(path)
	require.NoError(t, err)

	u, err := store.Get(context.Background(), "nurse-1")
	require.NoError(t, err)
	assert.True(t, u.IsVerified)
	assert.Equal(t, RolePartner, u.Role)

	_, err = store.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadSeedRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"not json":   `{"id":`,
		"missing id": `[{"name": "no id"}]`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadSeed(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestNewMemoryStoreFromFileMissing(t *testing.T) {
	_, err := NewMemoryStoreFromFile(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}
