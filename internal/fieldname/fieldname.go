// Package fieldname parses the declaration grammar of catalog field names.
//
// A field name carries its own layout: up to two leading '*' markers for
// pointer depth, a bare identifier, and up to two "[N]" array extents.
// Function pointers are written "(*name)()" and are treated as a single
// pointer.
package fieldname

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/meigma/blend/internal/blendtype"
)

const (
	// MaxDepth is the deepest supported pointer indirection.
	MaxDepth = 2

	// MaxDims is the largest supported number of array extents.
	MaxDims = 2
)

// Layout is the parsed form of a field name.
type Layout struct {
	// Base is the bare identifier.
	Base string

	// Depth is the pointer depth.
	Depth int

	// Dims holds the array extents in declaration order.
	Dims []int

	// Function marks a function-pointer declaration.
	Function bool
}

// Count returns the number of elements the extents describe, 1 for a
// non-array field.
func (l Layout) Count() int {
	n := 1
	for _, d := range l.Dims {
		n *= d
	}
	return n
}

// IsArray reports whether the field has at least one extent.
func (l Layout) IsArray() bool {
	return len(l.Dims) > 0
}

// Parse decodes a field name. Names with more than two pointer markers or
// more than two extents fail with blendtype.ErrUnsupportedLayout.
func Parse(name string) (Layout, error) {
	if strings.HasPrefix(name, "(") {
		return parseFunction(name)
	}

	var l Layout
	rest := name
	for strings.HasPrefix(rest, "*") {
		l.Depth++
		rest = rest[1:]
	}
	if l.Depth > MaxDepth {
		return Layout{}, fmt.Errorf("%w: field %q: pointer depth %d", blendtype.ErrUnsupportedLayout, name, l.Depth)
	}

	open := strings.IndexByte(rest, '[')
	if open < 0 {
		l.Base = rest
	} else {
		l.Base = rest[:open]
		dims, err := parseDims(name, rest[open:])
		if err != nil {
			return Layout{}, err
		}
		l.Dims = dims
	}
	if l.Base == "" {
		return Layout{}, fmt.Errorf("%w: field %q: empty identifier", blendtype.ErrUnsupportedLayout, name)
	}
	return l, nil
}

// parseDims parses a run of "[N]" groups.
func parseDims(name, s string) ([]int, error) {
	var dims []int
	for s != "" {
		if s[0] != '[' {
			return nil, fmt.Errorf("%w: field %q: unexpected %q", blendtype.ErrUnsupportedLayout, name, s)
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, fmt.Errorf("%w: field %q: unterminated extent", blendtype.ErrUnsupportedLayout, name)
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: field %q: bad extent %q", blendtype.ErrUnsupportedLayout, name, s[1:end])
		}
		dims = append(dims, n)
		if len(dims) > MaxDims {
			return nil, fmt.Errorf("%w: field %q: more than %d extents", blendtype.ErrUnsupportedLayout, name, MaxDims)
		}
		s = s[end+1:]
	}
	return dims, nil
}

// parseFunction handles "(*name)()" declarations.
func parseFunction(name string) (Layout, error) {
	inner, ok := strings.CutPrefix(name, "(*")
	if ok {
		inner, ok = strings.CutSuffix(inner, ")()")
	}
	if !ok || inner == "" {
		return Layout{}, fmt.Errorf("%w: field %q: malformed function pointer", blendtype.ErrUnsupportedLayout, name)
	}
	return Layout{Base: inner, Depth: 1, Function: true}, nil
}
