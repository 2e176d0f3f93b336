// Package frontend selects the parser which turns a target source file into the parsed function consumed by the
// condition extractor.
package frontend

import (
	"path/filepath"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/frontend/golang"
	"github.com/crytic/symgen/symbolic/frontend/python"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/pkg/errors"
)

// Frontend parses target functions and constraint expressions of one language.
type Frontend interface {
	// Language returns the name of the language.
	Language() string

	// ParseFunction parses a source file and returns the named function. Constructs outside the supported subset are
	// kept as syntax.Unsupported statements so that the extractor can report them. Parameters of unsupported types
	// fail with an *extraction.UnsupportedConstructError.
	ParseFunction(src []byte, name string) (*syntax.Function, error)

	// ParseExpr parses an expression over the provided parameters.
	ParseExpr(src string, params []syntax.Param) (expr.Expr, error)
}

// extensions maps file extensions to language names.
var extensions = map[string]string{
	".go": golang.Language,
	".py": python.Language,
}

// New returns the frontend of the named language. Integer parameters are restricted to signed integers of intWidth
// bits.
func New(language string, intWidth int) (Frontend, error) {
	switch strings.ToLower(language) {
	case golang.Language, "golang":
		return golang.NewFrontend(intWidth), nil
	case python.Language, "py":
		return python.NewFrontend(intWidth), nil
	default:
		return nil, errors.Errorf("unsupported language %q", language)
	}
}

// ForFile returns the frontend of the provided language or, if language is empty, the one for the extension of path.
func ForFile(path string, language string, intWidth int) (Frontend, error) {
	if language != "" {
		return New(language, intWidth)
	}
	ext := strings.ToLower(filepath.Ext(path))
	language, ok := extensions[ext]
	if !ok {
		return nil, errors.Errorf("cannot infer the language of %v, set it explicitly", path)
	}
	return New(language, intWidth)
}
