package search

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cyclone1070/toolproxy/internal/config"
	"github.com/Cyclone1070/toolproxy/internal/tool/errutil"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/fs"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/git"
	"github.com/Cyclone1070/toolproxy/internal/tool/service/path"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGrepTool(t *testing.T, files map[string]string, withIgnore bool) (*GrepSearchTool, *config.Config) {
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
	cfg := config.DefaultConfig()

	if withIgnore {
		m, err := git.NewIgnoreMatcher([]string{root}, osfs)
		require.NoError(t, err)
		return NewGrepSearchTool(osfs, resolver, m, cfg), cfg
	}
	return NewGrepSearchTool(osfs, resolver, nil, cfg), cfg
}

func TestGrepSearch_BasicMatches(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{
		"a.go":     "package a\n\nfunc Hello() {}\n",
		"b/b.go":   "package b\n// hello there\nfunc World() {}\n",
		"c.txt":    "nothing here\n",
		"bin.data": "Hello\x00\x01",
	}, false)

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: `func \w+\(`})

	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	assert.Equal(t, "a.go", resp.Matches[0].File)
	assert.Equal(t, 3, resp.Matches[0].Line.Number)
	assert.Equal(t, "b/b.go", resp.Matches[1].File)
	assert.Equal(t, 3, resp.FilesSearched, "binary file skipped")
	assert.Equal(t, "a.go:3: func Hello() {}\nb/b.go:3: func World() {}\n\n[Found 2 matches in 3 files searched]", resp.LLMContent())
}

func TestGrepSearch_CaseInsensitive(t *testing.T) {
	files := map[string]string{"x.txt": "Hello\nhello\nHELLO\n"}

	tests := []struct {
		name        string
		insensitive bool
		want        int
	}{
		{"case sensitive", false, 1},
		{"case insensitive", true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool, _ := newGrepTool(t, files, false)
			resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "hello", CaseInsensitive: tt.insensitive})
			require.NoError(t, err)
			assert.Len(t, resp.Matches, tt.want)
		})
	}
}

func TestGrepSearch_ContextLines(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{
		"f.txt": "one\ntwo\nTARGET\nfour\nfive\n",
	}, false)

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "TARGET", ContextLines: 1})

	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	m := resp.Matches[0]
	assert.Equal(t, []Line{{Number: 2, Text: "two"}}, m.Before)
	assert.Equal(t, []Line{{Number: 4, Text: "four"}}, m.After)
	assert.Equal(t, "f.txt\n  2: two\n> 3: TARGET\n  4: four\n\n[Found 1 matches in 1 files searched]", resp.LLMContent())
}

func TestGrepSearch_ContextAtFileEdges(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{"f.txt": "TARGET\nmid\nTARGET"}, false)

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "TARGET", ContextLines: 5})

	require.NoError(t, err)
	require.Len(t, resp.Matches, 2)
	assert.Empty(t, resp.Matches[0].Before)
	assert.Len(t, resp.Matches[0].After, 2)
	assert.Len(t, resp.Matches[1].Before, 2)
	assert.Empty(t, resp.Matches[1].After)
	assert.Contains(t, resp.LLMContent(), "\n--\n")
}

func TestGrepSearch_FilePatternAndSingleFile(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{
		"src/a.go":  "needle",
		"src/b.py":  "needle",
		"docs/c.md": "needle",
	}, false)

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "needle", FilePattern: "*.go"})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "src/a.go", resp.Matches[0].File)

	resp, err = tool.Run(context.Background(), &GrepSearchRequest{Pattern: "needle", Path: "docs/c.md"})
	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "docs/c.md", resp.Matches[0].File)
}

func TestGrepSearch_MatchCap(t *testing.T) {
	tool, cfg := newGrepTool(t, map[string]string{"many.txt": strings.Repeat("x\n", 20)}, false)
	cfg.Tools.MaxGrepMatches = 5

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "x"})

	require.NoError(t, err)
	assert.Len(t, resp.Matches, 5)
	assert.True(t, resp.Truncated)
	assert.Contains(t, resp.LLMContent(), "[Results truncated at 5 matches]")
}

func TestGrepSearch_Gitignore(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{
		".gitignore":       "dist/\n",
		"dist/bundle.js":   "needle",
		"src/index.js":     "needle",
		".git/COMMIT_EDIT": "needle",
	}, true)

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "needle"})

	require.NoError(t, err)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "src/index.js", resp.Matches[0].File)
}

func TestGrepSearch_NoMatchesIsNotError(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{"a.txt": "abc"}, false)

	resp, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "zzz"})

	require.NoError(t, err)
	assert.Empty(t, resp.Matches)
	assert.Equal(t, "No matches found for pattern: zzz (1 files searched)", resp.LLMContent())
}

func TestGrepSearch_Errors(t *testing.T) {
	tool, _ := newGrepTool(t, map[string]string{"a.txt": "abc"}, false)

	tests := []struct {
		name     string
		req      *GrepSearchRequest
		wantKind errutil.Kind
		wantMsg  string
	}{
		{"invalid regex", &GrepSearchRequest{Pattern: "(unclosed"}, errutil.KindInvalidPattern, "missing closing )"},
		{"invalid file pattern", &GrepSearchRequest{Pattern: "a", FilePattern: "[x"}, errutil.KindInvalidPattern, ""},
		{"negative context", &GrepSearchRequest{Pattern: "a", ContextLines: -1}, errutil.KindMalformedToolArguments, ""},
		{"missing path", &GrepSearchRequest{Pattern: "a", Path: "nope"}, errutil.KindFileNotFound, ""},
		{"outside sandbox", &GrepSearchRequest{Pattern: "a", Path: "/etc"}, errutil.KindPathDenied, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Run(context.Background(), tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, errutil.KindOf(err))
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}

	_, err := tool.Run(context.Background(), &GrepSearchRequest{Pattern: "("})
	assert.True(t, errors.Is(err, ErrInvalidPattern))
}
