// Package org resolves free-text department names to their top-level organizational unit.
package org

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Header titles of the organization workbook.
const (
	HeaderName   = "Name"
	HeaderCode   = "Code"
	HeaderParent = "PDepartmentCode"
)

// nanMarker is how an empty parent code appears in exported sheets.
const nanMarker = "nan"

var (
	// ErrCycle marks a parent chain that loops back on itself.
	ErrCycle = errors.New("cyclic parent chain")
	// ErrDanglingParent marks a parent code with no matching node.
	ErrDanglingParent = errors.New("parent code not found")
	// ErrNoHeader is returned when the organization table is empty.
	ErrNoHeader = errors.New("organization table has no header row")
)

// Node is one organizational unit.
type Node struct {
	Code       string
	Name       string
	ParentCode string // empty for a root
}

// IsRoot reports whether the node has no parent.
func (n Node) IsRoot() bool {
	return isRootCode(n.ParentCode)
}

func isRootCode(code string) bool {
	c := strings.TrimSpace(code)
	return c == "" || strings.EqualFold(c, nanMarker)
}

// Problem is a data error found while resolving the hierarchy. It never aborts a run.
type Problem struct {
	Code string
	Name string
	Err  error
}

func (p Problem) Error() string {
	return fmt.Sprintf("department %s (%s): %v", p.Name, p.Code, p.Err)
}

func (p Problem) Unwrap() error {
	return p.Err
}

// ParseNodes reads the organization table. Row 0 holds the column titles and
// row 1 is a banner; nodes start at row 2. Columns are located by title and
// fall back to the positional order name, code, parent code.
func ParseNodes(rows [][]string) ([]Node, error) {
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	nameIdx, codeIdx, parentIdx := 0, 1, 2
	for i, title := range rows[0] {
		switch strings.TrimSpace(title) {
		case HeaderName:
			nameIdx = i
		case HeaderCode:
			codeIdx = i
		case HeaderParent:
			parentIdx = i
		}
	}

	if len(rows) < 2 {
		return nil, nil
	}

	nodes := make([]Node, 0, len(rows)-2)
	for _, row := range rows[2:] {
		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		n := Node{Name: cell(nameIdx), Code: cell(codeIdx), ParentCode: cell(parentIdx)}
		if n.Code == "" && n.Name == "" {
			continue
		}
		if isRootCode(n.ParentCode) {
			n.ParentCode = ""
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Resolver maps department names to the name of their top-level ancestor.
// It is immutable once built.
type Resolver struct {
	topByName map[string]string
	problems  []Problem
}

// NewResolver indexes nodes by code and walks each parent chain iteratively.
//
// A chain that reaches a missing code or revisits a node is recorded as a
// Problem and the starting node resolves to its own name. When several nodes
// share a name the first one wins.
func NewResolver(nodes []Node) *Resolver {
	byCode := make(map[string]*Node, len(nodes))
	for i := range nodes {
		n := &nodes[i]
		if n.Code == "" {
			continue
		}
		if _, dup := byCode[n.Code]; !dup {
			byCode[n.Code] = n
		}
	}

	r := &Resolver{topByName: make(map[string]string, len(nodes))}
	for _, n := range nodes {
		if n.Name == "" {
			continue
		}

		top, err := walkToRoot(n, byCode)
		if err != nil {
			p := Problem{Code: n.Code, Name: n.Name, Err: err}
			r.problems = append(r.problems, p)
			log.Warn().Str("code", n.Code).Str("name", n.Name).Err(err).Msg("Department left unresolved")
			top = n.Name
		}

		for _, key := range []string{n.Name, CleanName(n.Name)} {
			if _, seen := r.topByName[key]; !seen {
				r.topByName[key] = top
			}
		}
	}
	return r
}

func walkToRoot(start Node, byCode map[string]*Node) (string, error) {
	visited := map[string]bool{start.Code: true}
	cur := start
	for !cur.IsRoot() {
		parent, ok := byCode[cur.ParentCode]
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrDanglingParent, cur.ParentCode)
		}
		if visited[parent.Code] {
			return "", fmt.Errorf("%w via %s", ErrCycle, parent.Code)
		}
		visited[parent.Code] = true
		cur = *parent
	}
	return cur.Name, nil
}

// Resolve returns the top-level department for name. Unknown names resolve to themselves.
func (r *Resolver) Resolve(name string) string {
	if r == nil {
		return name
	}
	if top, ok := r.topByName[name]; ok {
		return top
	}
	return name
}

// Len returns the number of names in the resolution map.
func (r *Resolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.topByName)
}

// Problems returns the data errors met while building the resolver.
func (r *Resolver) Problems() []Problem {
	if r == nil {
		return nil
	}
	return r.problems
}
