package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuxinal/packwiz-parent-pack/pkg/fakeserver"
	"github.com/tuxinal/packwiz-parent-pack/pkg/fetch"
	"github.com/tuxinal/packwiz-parent-pack/pkg/hashfmt"
	"github.com/tuxinal/packwiz-parent-pack/pkg/packwiz"
)

type noLocal struct{}

func (noLocal) Exists(string) (bool, error) { return false, nil }
func (noLocal) Read(string) ([]byte, error) { return nil, os.ErrNotExist }

type fakeRemote struct {
	delay    time.Duration
	failPath string

	mu       sync.Mutex
	formats  map[string]hashfmt.Format
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (r *fakeRemote) Fetch(
	_ context.Context, rel, _ string, format hashfmt.Format,
) ([]byte, error) {
	r.calls.Add(1)
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}
	r.mu.Lock()
	if r.formats == nil {
		r.formats = make(map[string]hashfmt.Format)
	}
	r.formats[rel] = format
	r.mu.Unlock()

	time.Sleep(r.delay)
	if rel == r.failPath {
		return nil, fmt.Errorf("%s: boom", rel)
	}
	return []byte("remote:" + rel), nil
}

func entries(n int) []packwiz.File {
	out := make([]packwiz.File, n)
	for i := range out {
		out[i] = packwiz.File{
			File: fmt.Sprintf("mods/m%02d.jar", i),
			Hash: "00",
		}
	}
	return out
}

func TestRunBoundedConcurrency(t *testing.T) {
	out := t.TempDir()
	remote := &fakeRemote{delay: 20 * time.Millisecond}

	stats, err := Run(context.Background(), entries(40), Options{
		Local:         noLocal{},
		Remote:        remote,
		DefaultFormat: hashfmt.SHA256,
		OutputDir:     out,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, stats.Downloaded)
	assert.Equal(t, 0, stats.Copied)
	assert.LessOrEqual(t, remote.peak.Load(), int32(MaxConcurrent))
	assert.Greater(t, remote.peak.Load(), int32(1))

	data, err := os.ReadFile(filepath.Join(out, "mods", "m07.jar"))
	require.NoError(t, err)
	assert.Equal(t, "remote:mods/m07.jar", string(data))
}

func TestRunFirstErrorStopsNewWork(t *testing.T) {
	out := t.TempDir()
	remote := &fakeRemote{
		delay:    10 * time.Millisecond,
		failPath: "mods/m00.jar",
	}

	_, err := Run(context.Background(), entries(100), Options{
		Local:         noLocal{},
		Remote:        remote,
		DefaultFormat: hashfmt.SHA256,
		OutputDir:     out,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mods/m00.jar: boom")
	assert.Less(t, remote.calls.Load(), int32(100))

	_, statErr := os.Stat(filepath.Join(out, "mods", "m00.jar"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestRunEffectiveFormat(t *testing.T) {
	md5 := hashfmt.MD5
	remote := &fakeRemote{}
	_, err := Run(context.Background(), []packwiz.File{
		{File: "a.txt", Hash: "0"},
		{File: "b.txt", Hash: "0", HashFormat: &md5},
	}, Options{
		Local:         noLocal{},
		Remote:        remote,
		DefaultFormat: hashfmt.SHA1,
		OutputDir:     t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, hashfmt.SHA1, remote.formats["a.txt"])
	assert.Equal(t, hashfmt.MD5, remote.formats["b.txt"])
}

func TestRunRejectsUnsafePaths(t *testing.T) {
	remote := &fakeRemote{}
	_, err := Run(context.Background(), []packwiz.File{
		{File: "ok.txt", Hash: "0"},
		{File: "../escape.txt", Hash: "0"},
	}, Options{
		Local:     noLocal{},
		Remote:    remote,
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Equal(t, int32(0), remote.calls.Load())
}

func TestRunLocalAndRemote(t *testing.T) {
	packDir := t.TempDir()
	require.NoError(t, fakeserver.MakeTree(packDir, map[string]string{
		"config/override.toml": "local wins",
	}))

	parentDir := t.TempDir()
	require.NoError(t, fakeserver.MakeTree(parentDir, map[string]string{
		"config/override.toml": "parent version",
		"mods/b.jar":           "parent jar",
	}))
	srv := fakeserver.New(parentDir)
	t.Cleanup(srv.Close)
	base, err := fetch.ParseBase(srv.PackURL())
	require.NoError(t, err)

	out := t.TempDir()
	stats, err := Run(context.Background(), []packwiz.File{
		// the local copy is trusted even though this hash is wrong
		{File: "config/override.toml", Hash: "deadbeef"},
		{File: "mods/b.jar", Hash: hashfmt.SHA256.Sum([]byte("parent jar"))},
	}, Options{
		Local:         &fetch.Local{Dir: packDir},
		Remote:        &fetch.Remote{Getter: fetch.New(), Base: base},
		DefaultFormat: hashfmt.SHA256,
		OutputDir:     out,
	})
	require.NoError(t, err)
	assert.Equal(t, Stats{Copied: 1, Downloaded: 1}, stats)
	assert.Equal(t, 0, srv.Requests("config/override.toml"))

	data, err := os.ReadFile(filepath.Join(out, "config", "override.toml"))
	require.NoError(t, err)
	assert.Equal(t, "local wins", string(data))
	data, err = os.ReadFile(filepath.Join(out, "mods", "b.jar"))
	require.NoError(t, err)
	assert.Equal(t, "parent jar", string(data))
}

func TestRunMismatchWritesNothing(t *testing.T) {
	parentDir := t.TempDir()
	require.NoError(t, fakeserver.MakeTree(parentDir, map[string]string{
		"mods/b.jar": "parent jar",
	}))
	srv := fakeserver.New(parentDir)
	t.Cleanup(srv.Close)
	base, err := fetch.ParseBase(srv.PackURL())
	require.NoError(t, err)

	out := t.TempDir()
	_, err = Run(context.Background(), []packwiz.File{
		{File: "mods/b.jar", Hash: "bb"},
	}, Options{
		Local:         &fetch.Local{Dir: t.TempDir()},
		Remote:        &fetch.Remote{Getter: fetch.New(), Base: base},
		DefaultFormat: hashfmt.SHA256,
		OutputDir:     out,
	})
	var mm *hashfmt.MismatchError
	require.ErrorAs(t, err, &mm)

	_, statErr := os.Stat(filepath.Join(out, "mods", "b.jar"))
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}
