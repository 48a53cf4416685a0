package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masoud-shayan/northwind/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add shippers table", "add_shippers_table"},
		{"Add-Shippers-Table", "add_shippers_table"},
		{"ADD__SHIPPERS", "add_shippers"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_Sequential(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add shippers", "Shippers table")
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_add_shippers.up.sql"), first.UpPath)

	up, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "Shippers table")

	down, err := os.ReadFile(first.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")

	second, err := CreateMigration(dir, "add orders", "")
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)
}

func TestCreateMigration_EmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000010_later.up.sql":    {},
		"m/000010_later.down.sql":  {},
		"m/000002_second.up.sql":   {},
		"m/000002_second.down.sql": {},
		"m/README.md":              {},
	}

	names, err := ListMigrations(fsys, "m")
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_second", "000010_later"}, names)

	missing, err := ListMigrations(fsys, "nope")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestListMigrations_Embedded(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		names, err := ListMigrations(migrations.FS, migrations.Dir(driver))
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_create_catalog", "000002_seed_northwind"}, names, driver)
	}
}
