package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// testEnv provides an isolated environment with its own config and data
// directory.
type testEnv struct {
	t       *testing.T
	config  string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	tempDir := t.TempDir()
	return &testEnv{
		t:       t,
		config:  filepath.Join(tempDir, "config"),
		dataDir: filepath.Join(tempDir, "data"),
	}
}

// cmdResult holds the result of a shelf command execution.
type cmdResult struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// run executes the shelf CLI in-process with the environment's directories.
func (e *testEnv) run(args ...string) cmdResult {
	e.t.Helper()
	allArgs := append([]string{"--config-dir", e.config, "--data-dir", e.dataDir}, args...)

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(allArgs)

	err := root.Execute()
	return cmdResult{
		stdout:   stdout.String(),
		stderr:   stderr.String(),
		exitCode: exitCode(err),
		err:      err,
	}
}

// mustRun executes the CLI and fails the test if it returns non-zero.
func (e *testEnv) mustRun(args ...string) cmdResult {
	e.t.Helper()
	r := e.run(args...)
	require.Equal(e.t, exitSuccess, r.exitCode, "shelf %v: %v\nstderr: %s", args, r.err, r.stderr)
	return r
}

func (e *testEnv) writeConfig(content string) {
	e.t.Helper()
	require.NoError(e.t, os.MkdirAll(e.config, 0o755))
	require.NoError(e.t, os.WriteFile(filepath.Join(e.config, configFileExt), []byte(content), 0o644))
}

func parseJSON[T any](t *testing.T, s string) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal([]byte(s), &out), s)
	return out
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("version")
	assert.Contains(t, r.stdout, "shelf v"+Version)
	assert.Contains(t, r.stdout, modulePath)

	r = env.mustRun("version", "--json")
	got := parseJSON[map[string]any](t, r.stdout)
	assert.Equal(t, Version, got["version"])
}

func TestInit(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("init")
	dbPath := filepath.Join(env.dataDir, "shelf.db")
	assert.Contains(t, r.stdout, dbPath)

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")

	data, err := os.ReadFile(filepath.Join(env.config, configFileExt))
	require.NoError(t, err)
	assert.Contains(t, string(data), "journal_mode: wal")
	assert.Contains(t, string(data), "db: shelf.db")

	// init is idempotent and leaves an edited config alone
	env.writeConfig("db: other.db\n")
	env.mustRun("init")
	_, err = os.Stat(filepath.Join(env.dataDir, "other.db"))
	assert.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(env.config, configFileExt))
	require.NoError(t, err)
	assert.Equal(t, "db: other.db\n", string(data))
}

func TestInitJSON(t *testing.T) {
	env := newTestEnv(t)

	r := env.mustRun("init", "--json", "--db", "named.db")
	got := parseJSON[map[string]string](t, r.stdout)
	assert.Equal(t, filepath.Join(env.dataDir, "named.db"), got["db"])
	assert.Equal(t, env.config, got["config_dir"])
	assert.NotEmpty(t, got["driver"])
}

func TestConfigDirFromEnv(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "from-env")
	t.Setenv("SHELF_CONFIG_DIR", dir)
	t.Setenv("SHELF_DATA_DIR", filepath.Join(t.TempDir(), "data-env"))

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"init"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(filepath.Join(dir, configFileExt))
	assert.NoError(t, err)
}

func TestExecQueryScalar(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", `
		CREATE TABLE Person (id integer PRIMARY KEY, name text, score real);
		INSERT INTO Person VALUES (1, 'ada', 1.5);
		INSERT INTO Person VALUES (2, 'grace', 2.25);
	`)

	t.Run("query table", func(t *testing.T) {
		r := env.mustRun("query", "SELECT id, name FROM Person ORDER BY id", "--shape", "int64,text")
		lines := strings.Split(strings.TrimSpace(r.stdout), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, []string{"INT64", "TEXT"}, strings.Fields(lines[0]))
		assert.Equal(t, []string{"1", "ada"}, strings.Fields(lines[1]))
		assert.Equal(t, []string{"2", "grace"}, strings.Fields(lines[2]))
	})

	t.Run("query json with args", func(t *testing.T) {
		r := env.mustRun("query", "SELECT name, score FROM Person WHERE id > ? AND name <> ?",
			"--shape", "text,float64", "--arg", "int64:1", "--arg", "text:nobody", "--json")
		got := parseJSON[[][]any](t, r.stdout)
		assert.Equal(t, [][]any{{"grace", 2.25}}, got)
	})

	t.Run("scalar", func(t *testing.T) {
		r := env.mustRun("scalar", "SELECT COUNT(*) FROM Person")
		assert.Equal(t, "2", strings.TrimSpace(r.stdout))

		r = env.mustRun("scalar", "SELECT name FROM Person WHERE id = ?", "--kind", "text", "--arg", "int32:2", "--json")
		got := parseJSON[map[string]any](t, r.stdout)
		assert.Equal(t, "grace", got["value"])
		assert.Equal(t, "text", got["kind"])
	})

	t.Run("scalar not found", func(t *testing.T) {
		r := env.run("scalar", "SELECT id FROM Person WHERE id = ?", "--arg", "int64:99")
		assert.Equal(t, exitUserError, r.exitCode)
		assert.ErrorIs(t, r.err, types.ErrScalarNotFound)
	})

	t.Run("decode failure", func(t *testing.T) {
		r := env.run("query", "SELECT name FROM Person", "--shape", "int64")
		assert.Equal(t, exitUserError, r.exitCode)
		assert.ErrorIs(t, r.err, types.ErrDecodeFailed)
	})
}

func TestCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("init")

	tests := []struct {
		name string
		args []string
		code int
	}{
		{"bad sql", []string{"exec", "CREATE NOTHING"}, exitUserError},
		{"missing shape", []string{"query", "SELECT 1"}, exitUserError},
		{"unknown shape kind", []string{"query", "SELECT 1", "--shape", "int64,blob"}, exitUserError},
		{"malformed arg", []string{"scalar", "SELECT ?", "--arg", "42"}, exitUserError},
		{"unparseable arg", []string{"scalar", "SELECT ?", "--arg", "int32:abc"}, exitUserError},
		{"unknown kind", []string{"scalar", "SELECT 1", "--kind", "decimal"}, exitUserError},
		{"bad log level", []string{"scalar", "SELECT 1", "--log-level", "loud"}, exitUserError},
		{"too many args", []string{"exec", "SELECT 1", "SELECT 2"}, exitUserError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := env.run(tt.args...)
			assert.Equal(t, tt.code, r.exitCode, "err: %v", r.err)
		})
	}
}

func TestOpenErrorsAreSystemErrors(t *testing.T) {
	t.Run("bad journal mode", func(t *testing.T) {
		env := newTestEnv(t)
		env.writeConfig("journal_mode: sideways\n")
		r := env.run("init")
		assert.Equal(t, exitSysError, r.exitCode)
		assert.ErrorIs(t, r.err, types.ErrConnectionOpenFailed)
	})

	t.Run("data dir is a file", func(t *testing.T) {
		env := newTestEnv(t)
		require.NoError(t, os.WriteFile(env.dataDir, []byte("x"), 0o644))
		r := env.run("init")
		assert.Equal(t, exitSysError, r.exitCode)
	})
}

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"int64:-3", "uint64:18446744073709551615", "text:a:b", "string:", "float32:0.5"})
	require.NoError(t, err)
	assert.Equal(t, []types.Value{
		types.Int64(-3),
		types.Uint64(18446744073709551615),
		types.Text("a:b"),
		types.Text(""),
		types.Float32(0.5),
	}, params)
}

func TestQueryOutAndLoad(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("exec", `
		CREATE TABLE src (id integer PRIMARY KEY, name text);
		CREATE TABLE dst (id integer PRIMARY KEY, name text);
		INSERT INTO src VALUES (1, 'ada');
		INSERT INTO src VALUES (2, 'grace');
	`)

	out := filepath.Join(t.TempDir(), "rows.jsonl")
	r := env.mustRun("query", "SELECT id, name FROM src ORDER BY id", "--shape", "int64,text", "--out", out)
	assert.Contains(t, r.stdout, "Wrote 2 rows")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "[1,\"ada\"]\n[2,\"grace\"]\n", string(data))

	r = env.mustRun("load", "dst", out, "--columns", "id, name", "--shape", "int64,text")
	assert.Contains(t, r.stdout, "Loaded 2 rows into dst")

	r = env.mustRun("scalar", "SELECT COUNT(*) FROM dst")
	assert.Equal(t, "2", strings.TrimSpace(r.stdout))

	// loading the same rows again violates the primary key and changes nothing
	r = env.run("load", "dst", out, "--columns", "id,name", "--shape", "int64,text")
	assert.Equal(t, exitUserError, r.exitCode)
	assert.ErrorIs(t, r.err, types.ErrEngineExecFailed)

	r = env.run("load", "dst", out, "--columns", "id", "--shape", "int64,text")
	assert.Equal(t, exitUserError, r.exitCode)
}
