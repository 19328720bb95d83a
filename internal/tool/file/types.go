package file

import (
	"fmt"
	"strings"
)

// -- Read File --

type ReadFileRequest struct {
	FilePath string `json:"file_path"`
	Offset   *int   `json:"offset"`
	Limit    *int   `json:"limit"`
}

func (r *ReadFileRequest) String() string {
	return fmt.Sprintf("Reading %s", r.FilePath)
}

type ReadFileResponse struct {
	Path       string
	Content    string // numbered lines
	StartLine  int
	EndLine    int
	TotalLines int
	Size       int64
	Binary     bool
}

func (r *ReadFileResponse) LLMContent() string {
	if r.Binary {
		return fmt.Sprintf("Binary file %s (%d bytes) not displayed", r.Path, r.Size)
	}
	if r.Content == "" {
		return ""
	}
	if r.StartLine > 1 || r.EndLine < r.TotalLines {
		return fmt.Sprintf("%s\n\n[Showing lines %d-%d of %d total]", r.Content, r.StartLine, r.EndLine, r.TotalLines)
	}
	return r.Content
}

// -- Write File --

type WriteFileRequest struct {
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
}

func (r *WriteFileRequest) String() string {
	return fmt.Sprintf("Writing %s", r.FilePath)
}

type WriteFileResponse struct {
	Path         string
	BytesWritten int
	Created      bool
}

func (r *WriteFileResponse) LLMContent() string {
	if r.Created {
		return fmt.Sprintf("Successfully wrote %d bytes to %s (new file)", r.BytesWritten, r.Path)
	}
	return fmt.Sprintf("Successfully wrote %d bytes to %s", r.BytesWritten, r.Path)
}

// -- Edit File --

type EditFileRequest struct {
	FilePath   string `json:"file_path"`
	OldString  string `json:"old_string"`
	NewString  string `json:"new_string"`
	ReplaceAll bool   `json:"replace_all"`
}

func (r *EditFileRequest) String() string {
	return fmt.Sprintf("Editing %s", r.FilePath)
}

type EditFileResponse struct {
	Path         string
	Replacements int
	Diff         string
	AddedLines   int
	RemovedLines int
}

func (r *EditFileResponse) LLMContent() string {
	if r.Replacements == 0 {
		return fmt.Sprintf("No occurrences of old_string in %s; file unchanged", r.Path)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Successfully replaced %d occurrence(s) in %s (+%d -%d)", r.Replacements, r.Path, r.AddedLines, r.RemovedLines)
	if r.Diff != "" {
		sb.WriteString("\n\n")
		sb.WriteString(r.Diff)
	}
	return sb.String()
}
