package codemod

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a patch document.
type Format int

const (
	FormatAuto Format = iota
	FormatJSON
	FormatYAML
	FormatMarkdown
)

func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".md", ".markdown":
		return FormatMarkdown
	default:
		return FormatAuto
	}
}

type rawPatch struct {
	Operations *[]rawOperation `json:"operations" yaml:"operations"`
}

type rawOperation struct {
	Type    string    `json:"type" yaml:"type"`
	File    string    `json:"file" yaml:"file"`
	Module  *string   `json:"module" yaml:"module"`
	Named   *[]string `json:"named" yaml:"named"`
	Old     *string   `json:"old" yaml:"old"`
	New     *string   `json:"new" yaml:"new"`
	OldName *string   `json:"oldName" yaml:"oldName"`
	NewName *string   `json:"newName" yaml:"newName"`
}

// DecodePatch decodes and validates a patch document.
func DecodePatch(data []byte, format Format) (*Patch, error) {
	if format == FormatAuto {
		format = sniffFormat(data)
	}

	var raw rawPatch
	switch format {
	case FormatJSON:
		if err := sonic.ConfigStd.Unmarshal(data, &raw); err != nil {
			return nil, &InvalidPatchError{Reason: "cannot decode JSON", Err: err}
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, &InvalidPatchError{Reason: "cannot decode YAML", Err: err}
		}
	case FormatMarkdown:
		fenced, err := findFencedPatch(data)
		if err != nil {
			return nil, err
		}
		return DecodePatch(fenced.Content, fenced.Format)
	default:
		return nil, &InvalidPatchError{Reason: fmt.Sprintf("unknown format %d", format)}
	}

	if raw.Operations == nil {
		return nil, &InvalidPatchError{Reason: `"operations" must be an array`}
	}

	patch := &Patch{Operations: make([]Operation, 0, len(*raw.Operations))}
	for i, r := range *raw.Operations {
		if r.File == "" {
			continue
		}
		op, err := r.operation()
		if err != nil {
			return nil, &InvalidPatchError{Reason: fmt.Sprintf("operation %d", i), Err: err}
		}
		patch.Operations = append(patch.Operations, op)
	}
	return patch, nil
}

func (r rawOperation) operation() (Operation, error) {
	switch r.Type {
	case KindInsertImport:
		if r.Module == nil {
			return nil, fmt.Errorf("%s: missing \"module\"", r.Type)
		}
		if r.Named == nil {
			return nil, fmt.Errorf("%s: missing \"named\"", r.Type)
		}
		return InsertImport{File: r.File, Module: *r.Module, Named: uniqueNames(*r.Named)}, nil

	case KindReplaceStringLiteral:
		if r.Old == nil || r.New == nil {
			return nil, fmt.Errorf("%s: \"old\" and \"new\" are required", r.Type)
		}
		return ReplaceStringLiteral{File: r.File, Old: *r.Old, New: *r.New}, nil

	case KindRenameIdentifier:
		if r.OldName == nil || *r.OldName == "" || r.NewName == nil || *r.NewName == "" {
			return nil, fmt.Errorf("%s: \"oldName\" and \"newName\" must be non-empty", r.Type)
		}
		return RenameIdentifier{File: r.File, OldName: *r.OldName, NewName: *r.NewName}, nil

	case "":
		return nil, fmt.Errorf("missing \"type\"")

	default:
		return nil, fmt.Errorf("unknown type %q", r.Type)
	}
}

func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	case bytes.Contains(trimmed, []byte("```")):
		return FormatMarkdown
	default:
		return FormatYAML
	}
}
