package migrations

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsEmbedded(t *testing.T) {
	files, err := fs.Glob(Migrations, "*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	data, err := fs.ReadFile(Migrations, "00001_init.sql")
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, "-- +goose Up")
	assert.Contains(t, body, "-- +goose Down")
	for _, table := range []string{"users", "refresh_tokens", "vault_entries"} {
		assert.Contains(t, body, "CREATE TABLE "+table)
	}
}
