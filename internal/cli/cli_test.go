package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/keshon/server-mimic/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	dir     string
	storage string
	tuning  string
}

func newFixture(t *testing.T, h storage.Histories) fixture {
	t.Helper()
	dir := t.TempDir()
	chdirForTest(t, dir)
	f := fixture{
		dir:     dir,
		storage: filepath.Join(dir, "memory.json"),
		tuning:  filepath.Join(dir, "tuning.yaml"),
	}
	be, err := storage.NewJSON(storage.DefaultJSONConfig(f.storage))
	require.NoError(t, err)
	require.NoError(t, be.Save(context.Background(), h))
	return f
}

func (f fixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--storage", f.storage, "--tuning", f.tuning, "--driver", "json"}, args...))
	err := root.Execute()
	return out.String(), err
}

func (f fixture) load(t *testing.T) storage.Histories {
	t.Helper()
	be, err := storage.NewJSON(storage.DefaultJSONConfig(f.storage))
	require.NoError(t, err)
	h, err := be.Load(context.Background())
	require.NoError(t, err)
	return h
}

func TestStats(t *testing.T) {
	f := newFixture(t, storage.Histories{1: {"a": 1, "b": 2}, 2: {"c": 1}})

	out, err := f.run(t, "stats", "--format", "json")
	require.NoError(t, err)

	var got statsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Groups)
	assert.Equal(t, 3, got.Entries)
	assert.Equal(t, []groupStats{{Group: 1, Entries: 2}, {Group: 2, Entries: 1}}, got.PerGrp)
}

func TestDump(t *testing.T) {
	f := newFixture(t, storage.Histories{1: {"light": 1, "heavy": 9}})

	out, err := f.run(t, "dump", "--group", "1")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("heavy")), bytes.Index([]byte(out), []byte("light")))

	_, err = f.run(t, "dump")
	assert.Error(t, err, "group is required")
}

func TestDecay(t *testing.T) {
	f := newFixture(t, storage.Histories{1: {"a": 1, "b": 5}, 2: {"c": 1}})

	out, err := f.run(t, "decay", "--cutoff", "1", "--group", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "removed 1 entries")
	assert.Equal(t, storage.Histories{1: {"b": 5}, 2: {"c": 1}}, f.load(t))

	_, err = f.run(t, "decay", "--cutoff", "5")
	require.NoError(t, err)
	assert.Equal(t, storage.Histories{1: {}, 2: {}}, f.load(t))
}

func TestBlacklistAddAndList(t *testing.T) {
	f := newFixture(t, storage.Histories{})

	_, err := f.run(t, "blacklist", "add", `^!roll`)
	require.NoError(t, err)

	out, err := f.run(t, "blacklist", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `^!roll`)

	_, err = f.run(t, "blacklist", "add", "(")
	assert.Error(t, err)
}

func TestReplyPreview(t *testing.T) {
	f := newFixture(t, storage.Histories{1: {"good morning": 3}})

	out, err := f.run(t, "reply", "--group", "1", "--text", "Good morning!", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"good morning","kind":"matched"}`, out)

	_, err = f.run(t, "reply", "--group", "2", "--text", "hi")
	assert.Error(t, err)
}

// chdirForTest changes the working directory for the duration of the test
// and restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
