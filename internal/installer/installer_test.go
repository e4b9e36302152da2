package installer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"jlo/internal/java"

	"github.com/stretchr/testify/require"
)

// fakeCatalog serves asset metadata and archives for a fixed set of builds.
type fakeCatalog struct {
	srv      *httptest.Server
	mu       sync.Mutex
	builds   map[int]string // major -> semver
	archives map[string][]byte
	requests atomic.Int32
	broken   map[int]bool // majors whose archive fails the checksum
}

func newFakeCatalog(t *testing.T, builds map[int]string) *fakeCatalog {
	t.Helper()
	c := &fakeCatalog{builds: builds, archives: map[string][]byte{}, broken: map[int]bool{}}
	for _, semver := range builds {
		c.archives[semver] = buildTarGz(t, jdkEntries("jdk-"+semver))
	}

	c.srv = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.srv.Close)
	return c
}

func (c *fakeCatalog) publish(t *testing.T, major int, semver string) {
	data := buildTarGz(t, jdkEntries("jdk-"+semver))
	c.mu.Lock()
	defer c.mu.Unlock()
	c.builds[major] = semver
	c.archives[semver] = data
}

func (c *fakeCatalog) corrupt(major int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.broken[major] = true
}

func (c *fakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	c.requests.Add(1)
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, ok := strings.CutPrefix(r.URL.Path, "/download/"); ok {
		data, ok := c.archives[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(data)))
		w.Write(data)
		return
	}

	var major int
	if _, err := fmt.Sscanf(r.URL.Path, "/assets/latest/%d/hotspot", &major); err != nil {
		http.NotFound(w, r)
		return
	}
	semver, ok := c.builds[major]
	if !ok {
		w.Write([]byte(`[]`))
		return
	}
	checksum := sha256Hex(c.archives[semver])
	if c.broken[major] {
		checksum = sha256Hex([]byte("something else"))
	}
	fmt.Fprintf(w, `[{"binary":{"package":{"link":%q,"checksum":%q,"size":%d,"name":"jdk-%s.tar.gz"}},"release_name":"jdk-%s","version":{"semver":%q}}]`,
		c.srv.URL+"/download/"+semver, checksum, len(c.archives[semver]), semver, semver, semver)
}

func newTestInstaller(t *testing.T, c *fakeCatalog) (*Installer, *java.Store) {
	t.Helper()
	root := t.TempDir()
	store := java.NewStore(filepath.Join(root, "jdks"), linux)
	resolver := NewAdoptium(linux, WithBaseURL(c.srv.URL), WithHTTPClient(c.srv.Client()))
	inst := NewInstaller(resolver, store, linux,
		WithFetcher(NewFetcher(c.srv.Client(), nil)),
		WithScratchDir(filepath.Join(root, "tmp")),
	)
	return inst, store
}

func TestEnsureAvailableInstalls(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{21: "21.0.3+9"})
	inst, store := newTestInstaller(t, c)

	home, err := inst.EnsureAvailable(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, store.Dir("21.0.3+9"), home)
	require.FileExists(t, filepath.Join(home, "bin", "java"))
	require.FileExists(t, filepath.Join(home, java.MarkerFile))

	entries, err := os.ReadDir(filepath.Join(filepath.Dir(store.Base), "tmp"))
	require.NoError(t, err)
	require.Empty(t, entries, "scratch directory must be cleaned up")
}

func TestEnsureAvailableIsIdempotent(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{17: "17.0.11+9"})
	inst, _ := newTestInstaller(t, c)

	first, err := inst.EnsureAvailable(context.Background(), 17)
	require.NoError(t, err)
	before := c.requests.Load()

	second, err := inst.EnsureAvailable(context.Background(), 17)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, before, c.requests.Load(), "local match must not touch the network")
}

func TestEnsureAvailableChecksumMismatch(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{21: "21.0.3+9"})
	c.corrupt(21)
	inst, store := newTestInstaller(t, c)

	_, err := inst.EnsureAvailable(context.Background(), 21)
	require.ErrorIs(t, err, ErrChecksumMismatch)
	require.NoDirExists(t, store.Dir("21.0.3+9"))
}

func TestEnsureAvailableNoBuild(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{})
	inst, _ := newTestInstaller(t, c)

	_, err := inst.EnsureAvailable(context.Background(), 9)
	require.ErrorIs(t, err, ErrNoMatchingBuild)
}

func TestUpdateAlreadyInstalled(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{21: "21.0.3+9"})
	inst, store := newTestInstaller(t, c)

	res, err := inst.Update(context.Background(), 21)
	require.NoError(t, err)
	require.True(t, res.Installed)
	require.Equal(t, "21.0.3+9", res.Semver)

	res, err = inst.Update(context.Background(), 21)
	require.NoError(t, err)
	require.False(t, res.Installed)
	require.Equal(t, store.Dir("21.0.3+9"), res.Path)
}

func TestUpdateInstallsNewerBuild(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{21: "21.0.3+9"})
	inst, store := newTestInstaller(t, c)

	_, err := inst.Update(context.Background(), 21)
	require.NoError(t, err)

	c.publish(t, 21, "21.0.4+7")

	res, err := inst.Update(context.Background(), 21)
	require.NoError(t, err)
	require.True(t, res.Installed)

	versions, err := store.List()
	require.NoError(t, err)
	require.Len(t, versions, 2)

	require.NoError(t, inst.Reclaim())
	versions, err = store.List()
	require.NoError(t, err)
	require.Len(t, versions, 1)
	require.Equal(t, "21.0.4+7", versions[0].Name)
}

func TestUpdateAllIsolatesFailures(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{11: "11.0.23+9", 17: "17.0.11+9", 21: "21.0.3+9"})
	c.corrupt(17)
	inst, store := newTestInstaller(t, c)

	err := inst.UpdateAll(context.Background(), []int{21, 17, 11, 21})
	require.ErrorIs(t, err, ErrChecksumMismatch)
	require.Contains(t, err.Error(), "JDK 17")

	majors, err := inst.InstalledMajors()
	require.NoError(t, err)
	require.Equal(t, []int{11, 21}, majors)
	require.NoDirExists(t, store.Dir("17.0.11+9"))
}

func TestInstallRecoversUnmarkedDestination(t *testing.T) {
	c := newFakeCatalog(t, map[int]string{21: "21.0.3+9"})
	inst, store := newTestInstaller(t, c)

	// Simulate a run killed between rename and marker write.
	dest := store.Dir("21.0.3+9")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "bin"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dest, "bin", "java"), []byte("#!/bin/sh\n"), 0o755))

	home, err := inst.EnsureAvailable(context.Background(), 21)
	require.NoError(t, err)
	require.Equal(t, dest, home)
	require.FileExists(t, filepath.Join(dest, java.MarkerFile))
}
