package search

import (
	"fmt"
	"strings"
)

type GrepSearchRequest struct {
	Pattern         string `json:"pattern"`
	Path            string `json:"path"`
	FilePattern     string `json:"file_pattern"`
	CaseInsensitive bool   `json:"case_insensitive"`
	ContextLines    int    `json:"context_lines"`
}

func (r *GrepSearchRequest) String() string {
	return fmt.Sprintf("Searching for %q", r.Pattern)
}

// Line is one numbered line of a file.
type Line struct {
	Number int
	Text   string
}

// Match is a single matching line with its surrounding context.
type Match struct {
	File   string // sandbox-relative path
	Line   Line
	Before []Line
	After  []Line
}

type GrepSearchResponse struct {
	Pattern       string
	Matches       []Match
	FilesSearched int
	Truncated     bool
	Limit         int
	WithContext   bool
}

func (r *GrepSearchResponse) LLMContent() string {
	if len(r.Matches) == 0 {
		return fmt.Sprintf("No matches found for pattern: %s (%d files searched)", r.Pattern, r.FilesSearched)
	}

	var sb strings.Builder
	for i, m := range r.Matches {
		if !r.WithContext {
			fmt.Fprintf(&sb, "%s:%d: %s\n", m.File, m.Line.Number, m.Line.Text)
			continue
		}
		if i > 0 {
			sb.WriteString("--\n")
		}
		sb.WriteString(m.File + "\n")
		for _, l := range m.Before {
			fmt.Fprintf(&sb, "  %d: %s\n", l.Number, l.Text)
		}
		fmt.Fprintf(&sb, "> %d: %s\n", m.Line.Number, m.Line.Text)
		for _, l := range m.After {
			fmt.Fprintf(&sb, "  %d: %s\n", l.Number, l.Text)
		}
	}

	fmt.Fprintf(&sb, "\n[Found %d matches in %d files searched]", len(r.Matches), r.FilesSearched)
	if r.Truncated {
		fmt.Fprintf(&sb, "\n[Results truncated at %d matches]", r.Limit)
	}
	return sb.String()
}
