package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/fs"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/git"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/path"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	root     string
	fs       *fs.OSFileSystem
	resolver *path.Resolver
	cfg      *config.Config
}

// newTestEnv creates a sandbox populated with files (relative path -> content).
func newTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	for rel, data := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	}

	osfs := fs.NewOSFileSystem()
	resolver, err := path.NewResolver(osfs, root, nil)
	require.NoError(t, err)
	return &testEnv{root: root, fs: osfs, resolver: resolver, cfg: config.DefaultConfig()}
}

func (e *testEnv) ignoreMatcher(t *testing.T) *git.IgnoreMatcher {
	t.Helper()
	m, err := git.NewIgnoreMatcher([]string{e.root}, e.fs)
	require.NoError(t, err)
	return m
}
