package codemod

import (
	"io"
	"os"

	"github.com/atotto/clipboard"
)

// StdinPath names standard input as the patch source.
const StdinPath = "-"

type SourceProvider struct {
	stdin io.Reader
}

func NewSourceProvider() *SourceProvider {
	return &SourceProvider{stdin: os.Stdin}
}

// GetContent reads the patch document from path, from stdin when path is
// "-", or from the system clipboard when fromClipboard is set.
func (sp *SourceProvider) GetContent(path string, fromClipboard bool) ([]byte, Format, error) {
	if fromClipboard {
		c, err := clipboard.ReadAll()
		if err != nil {
			return nil, FormatAuto, &UsageError{Msg: "cannot read clipboard: " + err.Error()}
		}
		return []byte(c), FormatAuto, nil
	}

	if path == "" {
		return nil, FormatAuto, &UsageError{Msg: "--patch is required"}
	}

	if path == StdinPath {
		c, err := io.ReadAll(sp.stdin)
		if err != nil {
			return nil, FormatAuto, &IOError{Op: "read", Path: "stdin", Err: err}
		}
		return c, FormatAuto, nil
	}

	c, err := os.ReadFile(path)
	if err != nil {
		return nil, FormatAuto, &UsageError{Msg: "cannot read patch " + path + ": " + err.Error()}
	}
	return c, FormatForPath(path), nil
}

// LoadPatch reads and decodes a patch document.
func (sp *SourceProvider) LoadPatch(path string, fromClipboard bool) (*Patch, error) {
	data, format, err := sp.GetContent(path, fromClipboard)
	if err != nil {
		return nil, err
	}
	return DecodePatch(data, format)
}
