// Copyright 2025 The ribatlas authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package regexsynth builds compact regular expressions that match exactly
// the set of strings starting with one of a given set of tokens.
//
// The synthesizer builds a trie over the token set, merges equivalent suffix
// subtrees into a minimal acyclic automaton, and renders the automaton as a
// pattern with shared literal prefixes, character classes and alternations.
// The pattern carries no anchors: it is meant to be matched against the head
// of a longer string, e.g. the token "10.0." against "10.0.5.1".
//
// The output is deterministic: it depends only on the token set, not on the
// order tokens are supplied in.
package regexsynth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ribatlas/ribatlas/pkg/private/serrors"
)

// ErrEmptySet indicates that synthesis was invoked with zero tokens. There
// is no meaningful pattern for the empty set; callers must filter such
// inputs beforehand.
var ErrEmptySet = serrors.New("empty token set")

// Synthesize returns a regular expression matching, as an unanchored prefix
// pattern, exactly the strings that start with one of the given tokens.
// Tokens that have another token as a proper prefix are redundant in that
// language and do not influence the result.
func Synthesize(tokens []string) (string, error) {
	if len(tokens) == 0 {
		return "", serrors.Join(ErrEmptySet, nil)
	}
	root := newNode()
	for _, tok := range tokens {
		root.insert(tok)
	}
	m := &minimizer{
		ids:      map[string]int{},
		rendered: map[int]string{},
	}
	m.canonicalize(root)
	return m.render(root), nil
}

type node struct {
	children  map[byte]*node
	accepting bool
	id        int
}

func newNode() *node {
	return &node{children: map[byte]*node{}}
}

// insert adds one token to the trie. An accepting node already covers every
// continuation, so insertion stops there and accepting nodes keep no
// children. This holds regardless of insertion order.
func (n *node) insert(tok string) {
	for i := 0; i < len(tok); i++ {
		if n.accepting {
			return
		}
		child, ok := n.children[tok[i]]
		if !ok {
			child = newNode()
			n.children[tok[i]] = child
		}
		n = child
	}
	n.accepting = true
	n.children = map[byte]*node{}
}

// minimizer assigns canonical state ids by hash-consing: two subtrees with
// the same acceptance and the same labeled transitions to the same canonical
// states are the same state of the minimal automaton. Rendering is memoized
// per canonical state, so merged states render once and group together.
type minimizer struct {
	ids      map[string]int
	rendered map[int]string
}

func (m *minimizer) canonicalize(n *node) int {
	var sig strings.Builder
	if n.accepting {
		sig.WriteByte('A')
	}
	for _, c := range sortedKeys(n.children) {
		fmt.Fprintf(&sig, "%d:%d;", c, m.canonicalize(n.children[c]))
	}
	id, ok := m.ids[sig.String()]
	if !ok {
		id = len(m.ids)
		m.ids[sig.String()] = id
	}
	n.id = id
	return id
}

func (m *minimizer) render(n *node) string {
	if s, ok := m.rendered[n.id]; ok {
		return s
	}
	s := m.renderBranches(n)
	m.rendered[n.id] = s
	return s
}

// renderBranches renders the outgoing transitions of one state. Transitions
// leading to the same canonical state collapse into a character class;
// distinct targets become alternatives.
func (m *minimizer) renderBranches(n *node) string {
	if n.accepting || len(n.children) == 0 {
		return ""
	}
	type branch struct {
		chars  []byte
		suffix string
	}
	var branches []branch
	index := map[int]int{}
	for _, c := range sortedKeys(n.children) {
		child := n.children[c]
		if i, ok := index[child.id]; ok {
			branches[i].chars = append(branches[i].chars, c)
			continue
		}
		index[child.id] = len(branches)
		branches = append(branches, branch{chars: []byte{c}, suffix: m.render(child)})
	}
	parts := make([]string, 0, len(branches))
	for _, b := range branches {
		parts = append(parts, renderChars(b.chars)+b.suffix)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return "(" + strings.Join(parts, "|") + ")"
}

// renderChars renders a set of characters as a literal or a character class,
// compressing runs of three or more consecutive characters into ranges.
func renderChars(chars []byte) string {
	if len(chars) == 1 {
		return escapeLiteral(chars[0])
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i := 0; i < len(chars); {
		j := i
		for j+1 < len(chars) && chars[j+1] == chars[j]+1 {
			j++
		}
		switch {
		case j-i >= 2:
			sb.WriteString(escapeClass(chars[i]))
			sb.WriteByte('-')
			sb.WriteString(escapeClass(chars[j]))
		default:
			for k := i; k <= j; k++ {
				sb.WriteString(escapeClass(chars[k]))
			}
		}
		i = j + 1
	}
	sb.WriteByte(']')
	return sb.String()
}

func escapeLiteral(c byte) string {
	if strings.IndexByte(`\.+*?()|[]{}^$`, c) >= 0 {
		return `\` + string(c)
	}
	return string(c)
}

func escapeClass(c byte) string {
	if strings.IndexByte(`\]^-`, c) >= 0 {
		return `\` + string(c)
	}
	return string(c)
}

func sortedKeys(children map[byte]*node) []byte {
	keys := make([]byte, 0, len(children))
	for c := range children {
		keys = append(keys, c)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
