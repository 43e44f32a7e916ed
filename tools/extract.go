// Package tools turns user-supplied files into the plain-text documents the
// analysis pipeline consumes. Text formats are read directly; anything the
// reader cannot decode gets a placeholder body so the file still shows up in
// reports instead of silently vanishing.
package tools

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// PlaceholderBody stands in for files whose text could not be extracted.
const PlaceholderBody = "Could not extract text from this file"

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".text": true,
	".csv":  true,
	".log":  true,
	".json": true,
	".yaml": true,
	".yml":  true,
}

// ExtractText reads a file and returns its plain-text body. Unsupported or
// unreadable files yield an inline error marker rather than an error so a
// single bad file never sinks a multi-document request.
func ExtractText(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return PlaceholderBody
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("(error extracting text: %v)", err)
	}
	if !utf8.Valid(data) {
		return PlaceholderBody
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return PlaceholderBody
	}
	return text
}

// IsExtractionError reports whether a document body is a failure marker
// produced by ExtractText.
func IsExtractionError(text string) bool {
	return text == PlaceholderBody || strings.HasPrefix(text, "(error extracting text:")
}

// BuildCorpus converts file paths into named documents. Names are the base
// file names; duplicate names get a numeric suffix so extraction records stay
// unambiguous.
func BuildCorpus(paths []string) []framework.Document {
	docs := make([]framework.Document, 0, len(paths))
	seen := make(map[string]int)
	for _, path := range paths {
		name := filepath.Base(path)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s (%d)", name, n+1)
		}
		seen[filepath.Base(path)]++
		docs = append(docs, framework.Document{Name: name, Text: ExtractText(path)})
	}
	return docs
}
