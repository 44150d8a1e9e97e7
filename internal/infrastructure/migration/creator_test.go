package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/dms/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add ledger index", "add_ledger_index"},
		{"Add-Ledger-Index", "add_ledger_index"},
		{"ADD__LEDGER__INDEX", "add_ledger_index"},
		{"bill number 2", "bill_number_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading_and_trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")

	first, err := CreateMigration(dir, "add ledger index", "speeds up statements")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_ledger_index.up.sql", filepath.Base(first.UpPath))
	assert.Equal(t, "000001_add_ledger_index.down.sql", filepath.Base(first.DownPath))

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add_ledger_index (up)")
	assert.Contains(t, string(up), "speeds up statements")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "add_ledger_index (down)")

	second, err := CreateMigration(dir, "Collections notes", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "000002_collections_notes.up.sql", filepath.Base(second.UpPath))
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_ledger.up.sql":   {Data: []byte("--")},
		"000002_ledger.down.sql": {Data: []byte("--")},
		"000001_init.up.sql":     {Data: []byte("--")},
		"000003_seed.up.sql":     {Data: []byte("--")},
		"README.md":              {Data: []byte("docs")},
		"embed.go":               {Data: []byte("package migrations")},
		"subdir.up.sql/x":        {Data: []byte("--")},
	}

	entries, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Version: 1, Name: "init"},
		{Version: 2, Name: "ledger", HasDown: true},
		{Version: 3, Name: "seed"},
	}, entries)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	entries, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i, e := range entries {
		assert.Equal(t, uint(i+1), e.Version, "versions must be contiguous")
		assert.True(t, e.HasDown, "migration %d has no down file", e.Version)
	}
}
