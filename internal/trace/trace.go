// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package trace records an execution tree for a generation run. A nil
// *Recorder is valid and inert, so callers never branch on tracing.
package trace

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Node is one step of the trace tree.
type Node struct {
	ID       string            `json:"id"`
	Kind     string            `json:"kind"`
	Label    string            `json:"label"`
	Input    string            `json:"input,omitempty"`
	Output   string            `json:"output,omitempty"`
	Meta     map[string]string `json:"meta,omitempty"`
	Children []*Node           `json:"children,omitempty"`
}

// Recorder builds the tree. It must never alter evaluation results:
// every method is a pure append to the recorder's own state.
type Recorder struct {
	RunID string
	root  *Node
	stack []*Node
}

// New creates a recorder with a fresh run id.
func New() *Recorder {
	root := &Node{ID: uuid.NewString(), Kind: "run", Label: "run"}
	return &Recorder{
		RunID: root.ID,
		root:  root,
		stack: []*Node{root},
	}
}

// Begin opens a child node; every Begin must be paired with End.
func (r *Recorder) Begin(kind, label, input string) {
	if r == nil {
		return
	}
	n := &Node{ID: uuid.NewString(), Kind: kind, Label: label, Input: input}
	top := r.stack[len(r.stack)-1]
	top.Children = append(top.Children, n)
	r.stack = append(r.stack, n)
}

// End closes the current node, recording its output.
func (r *Recorder) End(output string) {
	if r == nil || len(r.stack) <= 1 {
		return
	}
	r.stack[len(r.stack)-1].Output = output
	r.stack = r.stack[:len(r.stack)-1]
}

// Leaf records a childless node under the current one.
func (r *Recorder) Leaf(kind, label, value string) {
	if r == nil {
		return
	}
	top := r.stack[len(r.stack)-1]
	top.Children = append(top.Children, &Node{
		ID: uuid.NewString(), Kind: kind, Label: label, Output: value,
	})
}

// Annotate attaches metadata to the current node.
func (r *Recorder) Annotate(key, value string) {
	if r == nil {
		return
	}
	top := r.stack[len(r.stack)-1]
	if top.Meta == nil {
		top.Meta = make(map[string]string)
	}
	top.Meta[key] = value
}

// Root returns the completed tree, or nil when tracing is disabled.
func (r *Recorder) Root() *Node {
	if r == nil {
		return nil
	}
	return r.root
}

// JSON serializes the tree for export.
func (r *Recorder) JSON() ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	return json.MarshalIndent(r.root, "", "  ")
}
