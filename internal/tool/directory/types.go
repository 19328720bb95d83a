package directory

import (
	"fmt"
	"strings"

	units "github.com/docker/go-units"
)

// -- List Directory --

type ListDirectoryRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"`
	Pattern   string `json:"pattern"`
}

func (r *ListDirectoryRequest) String() string {
	if r.Recursive {
		return fmt.Sprintf("Listing %s recursively", r.Path)
	}
	return fmt.Sprintf("Listing %s", r.Path)
}

// DirectoryEntry represents a single entry in a directory listing.
type DirectoryEntry struct {
	RelativePath string // relative to the listed directory, forward slashes
	IsDir        bool
	Size         int64
}

type ListDirectoryResponse struct {
	DirectoryPath string
	Pattern       string
	Entries       []DirectoryEntry
	Truncated     bool
	Limit         int
}

func (r *ListDirectoryResponse) LLMContent() string {
	if len(r.Entries) == 0 {
		if r.Pattern != "" {
			return fmt.Sprintf("No entries matching %q in %s", r.Pattern, r.DirectoryPath)
		}
		return fmt.Sprintf("Directory %s is empty", r.DirectoryPath)
	}

	var sb strings.Builder
	for i, e := range r.Entries {
		if i > 0 {
			sb.WriteByte('\n')
		}
		if e.IsDir {
			fmt.Fprintf(&sb, "[DIR]  %s/", e.RelativePath)
		} else {
			fmt.Fprintf(&sb, "[FILE] %s (%s)", e.RelativePath, units.HumanSize(float64(e.Size)))
		}
	}
	if r.Truncated {
		fmt.Fprintf(&sb, "\n\n[Listing truncated at %d entries]", r.Limit)
	}
	return sb.String()
}

// -- Glob Files --

type GlobFilesRequest struct {
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
}

func (r *GlobFilesRequest) String() string {
	return fmt.Sprintf("Globbing %s", r.Pattern)
}

type GlobFilesResponse struct {
	Pattern   string
	Matches   []string // sandbox-relative paths, sorted
	Truncated bool
	Limit     int
}

func (r *GlobFilesResponse) LLMContent() string {
	if len(r.Matches) == 0 {
		return fmt.Sprintf("No files found matching pattern: %s", r.Pattern)
	}
	out := strings.Join(r.Matches, "\n")
	if r.Truncated {
		out += fmt.Sprintf("\n\n[Results truncated at %d files]", r.Limit)
	}
	return out
}
