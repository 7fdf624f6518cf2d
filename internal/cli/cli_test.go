package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookprovider/internal/config"
	"github.com/mrlokans/bookprovider/internal/provider"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Database: config.Database{
			Path:        filepath.Join(t.TempDir(), "cli.db"),
			WALMode:     true,
			BusyTimeout: 5,
			LogLevel:    "silent",
		},
		Provider: config.Provider{
			Scheme:    config.DefaultScheme,
			Authority: config.DefaultAuthority,
		},
	}
}

func runSeed(t *testing.T, cfg *config.Config) {
	t.Helper()
	cmd := NewSeedCommand(cfg)
	cmd.Out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())
}

func runQuery(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := NewQueryCommand(cfg)
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags(args))
	require.NoError(t, cmd.Run())
	return out.String()
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, int64(6), parseValue("6"))
	assert.Equal(t, int64(-2), parseValue("-2"))
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("false"))
	assert.Nil(t, parseValue("null"))
	assert.Equal(t, "HTML5", parseValue("HTML5"))
	assert.Equal(t, "42", parseValue(`"42"`))
	assert.Equal(t, "null", parseValue("'null'"))
	assert.Equal(t, "", parseValue(""))
}

func TestValuesFlag(t *testing.T) {
	values := valuesFlag{}
	require.NoError(t, values.Set("_id=6"))
	require.NoError(t, values.Set("name=a=b"))

	assert.Equal(t, int64(6), values["_id"])
	assert.Equal(t, "a=b", values["name"])

	assert.Error(t, values.Set("novalue"))
	assert.Error(t, values.Set("=6"))
}

func TestListFlag(t *testing.T) {
	var l listFlag
	require.NoError(t, l.Set("_id, name"))
	require.NoError(t, l.Set("sex,"))

	assert.Equal(t, listFlag{"_id", "name", "sex"}, l)
	assert.Equal(t, "_id,name,sex", l.String())
}

func TestResourceID(t *testing.T) {
	cfg := testConfig(t)

	o := newStoreOptions(cfg)
	o.URI = "book"
	id, err := o.resourceID()
	require.NoError(t, err)
	assert.Equal(t, provider.BookURI, id)

	o.URI = "content://org.example.book.provider/user"
	id, err = o.resourceID()
	require.NoError(t, err)
	assert.Equal(t, provider.UserURI, id)

	o.URI = "://broken"
	_, err = o.resourceID()
	assert.ErrorIs(t, err, provider.ErrUnsupportedResource)
}

func TestCommands_RequireURI(t *testing.T) {
	cfg := testConfig(t)

	assert.Error(t, NewQueryCommand(cfg).ParseFlags(nil))
	assert.Error(t, NewDeleteCommand(cfg).ParseFlags(nil))
	assert.Error(t, NewInsertCommand(cfg).ParseFlags([]string{"-set", "_id=1"}))
	assert.Error(t, NewUpdateCommand(cfg).ParseFlags([]string{"-set", "name=x"}))
}

func TestCommands_RequireValues(t *testing.T) {
	cfg := testConfig(t)

	assert.Error(t, NewInsertCommand(cfg).ParseFlags([]string{"-uri", "book"}))
	assert.Error(t, NewUpdateCommand(cfg).ParseFlags([]string{"-uri", "book"}))
}

func TestDatabaseFlagDefaultsToConfig(t *testing.T) {
	cfg := testConfig(t)

	cmd := NewSeedCommand(cfg)
	require.NoError(t, cmd.ParseFlags(nil))
	assert.Equal(t, cfg.Database.Path, cmd.DatabasePath)

	other := filepath.Join(t.TempDir(), "other.db")
	cmd = NewSeedCommand(cfg)
	require.NoError(t, cmd.ParseFlags([]string{"-db", other}))
	assert.Equal(t, other, cmd.DatabasePath)
}

func TestSeedThenQuery(t *testing.T) {
	cfg := testConfig(t)
	runSeed(t, cfg)

	out := runQuery(t, cfg, "-uri", "book", "-order", "_id")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Equal(t, []string{
		"_id\tname",
		"3\tAndroid",
		"4\tiOS",
		"5\tHTML5",
		"(3 rows)",
	}, lines)
}

func TestQuery_ProjectionFilterAndArgs(t *testing.T) {
	cfg := testConfig(t)
	runSeed(t, cfg)

	out := runQuery(t, cfg, "-uri", "user", "-columns", "name", "-where", "sex = ?", "-args", "1")

	assert.Equal(t, "name\nSpike\n(1 rows)\n", out)
}

func TestQuery_UnsupportedResource(t *testing.T) {
	cfg := testConfig(t)

	cmd := NewQueryCommand(cfg)
	cmd.Out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-uri", "content://org.example.book.provider/unknown"}))

	err := cmd.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnsupportedResource)
}

func TestInsertUpdateDelete(t *testing.T) {
	cfg := testConfig(t)
	runSeed(t, cfg)

	var out bytes.Buffer

	insert := NewInsertCommand(cfg)
	insert.Out = &out
	require.NoError(t, insert.ParseFlags([]string{"-uri", "book", "-set", "_id=6", "-set", "name=Go"}))
	require.NoError(t, insert.Run())
	assert.Contains(t, out.String(), "Inserted 1 record")

	out.Reset()
	update := NewUpdateCommand(cfg)
	update.Out = &out
	require.NoError(t, update.ParseFlags([]string{"-uri", "book", "-set", "name=Go 2", "-where", "_id = ?", "-args", "6"}))
	require.NoError(t, update.Run())
	assert.Contains(t, out.String(), "Updated 1 records")

	assert.Contains(t, runQuery(t, cfg, "-uri", "book", "-where", "_id = ?", "-args", "6"), "6\tGo 2\n")

	out.Reset()
	del := NewDeleteCommand(cfg)
	del.Out = &out
	require.NoError(t, del.ParseFlags([]string{"-uri", "book", "-where", "_id >= ?", "-args", "5"}))
	require.NoError(t, del.Run())
	assert.Contains(t, out.String(), "Deleted 2 records")

	assert.Contains(t, runQuery(t, cfg, "-uri", "book"), "(2 rows)")
}

func TestInsert_DuplicateKeyFails(t *testing.T) {
	cfg := testConfig(t)
	runSeed(t, cfg)

	cmd := NewInsertCommand(cfg)
	cmd.Out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-uri", "book", "-set", "_id=3", "-set", "name=again"}))

	err := cmd.Run()
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrStorage)
}

func TestUpdate_BooleanColumn(t *testing.T) {
	cfg := testConfig(t)
	runSeed(t, cfg)

	cmd := NewUpdateCommand(cfg)
	cmd.Out = &bytes.Buffer{}
	require.NoError(t, cmd.ParseFlags([]string{"-uri", "user", "-set", "sex=true", "-where", "name = ?", "-args", "Wang"}))
	require.NoError(t, cmd.Run())

	out := runQuery(t, cfg, "-uri", "user", "-columns", "name", "-where", "sex = ?", "-args", "1", "-order", "_id")
	assert.Equal(t, "name\nSpike\nWang\n(2 rows)\n", out)
}

func TestDemo(t *testing.T) {
	cfg := testConfig(t)

	var out bytes.Buffer
	cmd := NewDemoCommand(cfg)
	cmd.Out = &out
	require.NoError(t, cmd.ParseFlags(nil))
	require.NoError(t, cmd.Run())

	text := out.String()
	assert.Contains(t, text, "Inserted book 6")
	assert.Contains(t, text, `Book{id=3, name="Android"}`)
	assert.Contains(t, text, `Book{id=6, name="Faith in God"}`)
	assert.Contains(t, text, `User{id=1, name="Spike", male=true}`)
	assert.Contains(t, text, `User{id=2, name="Wang", male=false}`)
}

func TestDemo_DuplicateIsReportedNotFatal(t *testing.T) {
	cfg := testConfig(t)

	first := NewDemoCommand(cfg)
	first.Out = &bytes.Buffer{}
	require.NoError(t, first.ParseFlags(nil))
	require.NoError(t, first.Run())

	var out bytes.Buffer
	second := NewDemoCommand(cfg)
	second.Out = &out
	require.NoError(t, second.ParseFlags([]string{"-no-seed"}))
	require.NoError(t, second.Run())

	assert.Contains(t, out.String(), "Book 6 not inserted")
	assert.Equal(t, 1, strings.Count(out.String(), "id=6,"))
}
