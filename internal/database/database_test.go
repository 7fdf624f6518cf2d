package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Path:        filepath.Join(t.TempDir(), "provider.db"),
		WALMode:     true,
		BusyTimeout: 5,
		LogLevel:    "silent",
	}
}

// setupTestManager opens a handle with the schema ensured
func setupTestManager(t *testing.T) (*Manager, *gorm.DB, func()) {
	t.Helper()
	m := NewManager(testConfig(t))
	db, err := m.OpenHandle()
	require.NoError(t, err)
	require.NoError(t, m.EnsureSchema(db))

	cleanup := func() {
		Close(db)
	}
	return m, db, cleanup
}

func tableSQL(t *testing.T, db *gorm.DB, table string) string {
	t.Helper()
	var sql string
	err := db.Raw("SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Row().Scan(&sql)
	require.NoError(t, err)
	return sql
}

func TestManager_OpenHandle_CreatesFileAndDirectory(t *testing.T) {
	cfg := testConfig(t)
	cfg.Path = filepath.Join(filepath.Dir(cfg.Path), "nested", "dir", "provider.db")

	m := NewManager(cfg)
	db, err := m.OpenHandle()
	require.NoError(t, err)
	defer Close(db)

	_, err = os.Stat(cfg.Path)
	assert.NoError(t, err, "database file should be created")
}

func TestManager_OpenHandle_EmptyPath(t *testing.T) {
	m := NewManager(Config{})

	_, err := m.OpenHandle()

	assert.Error(t, err)
}

func TestManager_EnsureSchema_CreatesTables(t *testing.T) {
	_, db, cleanup := setupTestManager(t)
	defer cleanup()

	assert.Equal(t, "CREATE TABLE book(_id INTEGER PRIMARY KEY, name TEXT)", tableSQL(t, db, "book"))
	assert.Equal(t, "CREATE TABLE user(_id INTEGER PRIMARY KEY, name TEXT, sex INTEGER)", tableSQL(t, db, "user"))

	version, err := SchemaVersionOf(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, version)
}

func TestManager_EnsureSchema_Idempotent(t *testing.T) {
	m, db, cleanup := setupTestManager(t)
	defer cleanup()

	require.NoError(t, db.Exec("INSERT INTO book(_id, name) VALUES (1, 'Android')").Error)

	require.NoError(t, m.EnsureSchema(db))
	require.NoError(t, m.EnsureSchema(db))

	var count int64
	require.NoError(t, db.Table("book").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestManager_EnsureSchema_SurvivesReopen(t *testing.T) {
	cfg := testConfig(t)
	m := NewManager(cfg)

	db, err := m.OpenHandle()
	require.NoError(t, err)
	require.NoError(t, m.EnsureSchema(db))
	require.NoError(t, db.Exec("INSERT INTO user(_id, name, sex) VALUES (1, 'Spike', 1)").Error)
	require.NoError(t, Close(db))

	db, err = NewManager(cfg).OpenHandle()
	require.NoError(t, err)
	defer Close(db)
	require.NoError(t, m.EnsureSchema(db))

	var name string
	require.NoError(t, db.Raw("SELECT name FROM user WHERE _id = 1").Row().Scan(&name))
	assert.Equal(t, "Spike", name)
}

func TestManager_EnsureSchema_UpgradeHook(t *testing.T) {
	m, db, cleanup := setupTestManager(t)
	defer cleanup()

	require.NoError(t, db.Exec("INSERT INTO book(_id, name) VALUES (3, 'Android')").Error)
	m.version = SchemaVersion + 1

	var calls [][2]int
	m.OnUpgrade = func(tx *gorm.DB, oldVersion, newVersion int) error {
		calls = append(calls, [2]int{oldVersion, newVersion})
		return nil
	}

	require.NoError(t, m.EnsureSchema(db))

	assert.Equal(t, [][2]int{{SchemaVersion, SchemaVersion + 1}}, calls)
	version, err := SchemaVersionOf(db)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion+1, version)

	var count int64
	require.NoError(t, db.Table("book").Count(&count).Error)
	assert.Equal(t, int64(1), count, "upgrade must not lose rows")
}

func TestManager_EnsureSchema_RejectsDowngrade(t *testing.T) {
	m, db, cleanup := setupTestManager(t)
	defer cleanup()

	require.NoError(t, db.Exec("PRAGMA user_version = 7").Error)

	err := m.EnsureSchema(db)

	assert.ErrorIs(t, err, ErrDowngrade)
}

func TestManager_EnsureSchema_RejectsInvalidSchema(t *testing.T) {
	cfg := testConfig(t)
	m := NewManager(cfg, TableSchema{
		Name:    "broken",
		Columns: []Column{{Name: "name", Type: ColumnText}},
	})
	db, err := m.OpenHandle()
	require.NoError(t, err)
	defer Close(db)

	err = m.EnsureSchema(db)

	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestNewDatabase(t *testing.T) {
	db, err := NewDatabase(testConfig(t))
	require.NoError(t, err)
	defer db.Close()

	var tables []string
	require.NoError(t, db.DB.Table("sqlite_master").Where("type = ?", "table").Order("name").Pluck("name", &tables).Error)
	assert.Equal(t, []string{"book", "user"}, tables)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, ParseLogLevel("warn"), ParseLogLevel("unknown"))
	assert.NotEqual(t, ParseLogLevel("silent"), ParseLogLevel("info"))
}
