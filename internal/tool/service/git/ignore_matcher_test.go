package git

import (
	"errors"
	"os"
	"testing"
)

// mockFileSystem is a local mock implementing fileSystem for testing
type mockFileSystem struct {
	files   map[string][]byte
	readErr error
}

func newMockFileSystem() *mockFileSystem {
	return &mockFileSystem{files: make(map[string][]byte)}
}

func (m *mockFileSystem) createFile(path string, content []byte) {
	m.files[path] = content
}

func (m *mockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return content, nil
}

func TestLoadGitignore(t *testing.T) {
	roots := []string{"/workspace"}

	t.Run("load gitignore from root", func(t *testing.T) {
		fs := newMockFileSystem()
		fs.createFile("/workspace/.gitignore", []byte("# build output\n*.log\nnode_modules/\n"))

		matcher, err := NewIgnoreMatcher(roots, fs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !matcher.ShouldIgnore("/workspace/test.log", false) {
			t.Error("expected test.log to be ignored")
		}
		if !matcher.ShouldIgnore("/workspace/web/node_modules", true) {
			t.Error("expected nested node_modules dir to be ignored")
		}
		if matcher.ShouldIgnore("/workspace/test.txt", false) {
			t.Error("expected test.txt not to be ignored")
		}
		if matcher.ShouldIgnore("/workspace", true) {
			t.Error("root itself must never be ignored")
		}
	})

	t.Run("missing gitignore still ignores .git", func(t *testing.T) {
		matcher, err := NewIgnoreMatcher(roots, newMockFileSystem())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if matcher.ShouldIgnore("/workspace/test.log", false) {
			t.Error("expected no files to be ignored without .gitignore")
		}
		if !matcher.ShouldIgnore("/workspace/.git/config", false) {
			t.Error("expected .git contents to be ignored")
		}
	})

	t.Run("most specific root wins", func(t *testing.T) {
		fs := newMockFileSystem()
		fs.createFile("/workspace/.gitignore", []byte("*.log\n"))
		fs.createFile("/data/.gitignore", []byte("*.csv\n"))

		matcher, err := NewIgnoreMatcher([]string{"/workspace", "/data"}, fs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !matcher.ShouldIgnore("/data/a.csv", false) {
			t.Error("expected a.csv to be ignored under /data")
		}
		if matcher.ShouldIgnore("/data/a.log", false) {
			t.Error("workspace patterns must not apply to /data")
		}
		if matcher.ShouldIgnore("/elsewhere/a.log", false) {
			t.Error("paths outside roots are never ignored")
		}
	})

	t.Run("CRLF line endings", func(t *testing.T) {
		fs := newMockFileSystem()
		fs.createFile("/workspace/.gitignore", []byte("*.log\r\nnode_modules\r\n"))

		matcher, err := NewIgnoreMatcher(roots, fs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !matcher.ShouldIgnore("/workspace/app.log", false) {
			t.Error("failed to match pattern with CRLF")
		}
		if !matcher.ShouldIgnore("/workspace/node_modules/foo", false) {
			t.Error("failed to match directory with CRLF")
		}
	})
}

func TestNewIgnoreMatcher_ReadError(t *testing.T) {
	fs := newMockFileSystem()
	fs.readErr = errors.New("disk failure")

	_, err := NewIgnoreMatcher([]string{"/workspace"}, fs)

	var gitErr *GitignoreReadError
	if !errors.As(err, &gitErr) {
		t.Errorf("expected GitignoreReadError, got %T: %v", err, err)
	}
}

func TestNoOpMatcher(t *testing.T) {
	if (NoOpMatcher{}).ShouldIgnore("/workspace/.git", true) {
		t.Error("NoOpMatcher must never ignore")
	}
}
