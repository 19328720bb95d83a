package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/fs"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/path"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	root     string
	fs       *fs.OSFileSystem
	resolver *path.Resolver
	cfg      *config.Config
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)

	osfs := fs.NewOSFileSystem()
	resolver, err := path.NewResolver(osfs, root, nil)
	require.NoError(t, err)

	return &testEnv{root: root, fs: osfs, resolver: resolver, cfg: config.DefaultConfig()}
}

func (e *testEnv) write(t *testing.T, rel, data string) string {
	t.Helper()
	p := filepath.Join(e.root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func intPtr(v int) *int { return &v }
