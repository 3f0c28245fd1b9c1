// Copyright 2025 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package abmark

// isLeafBlock reports whether a block contains inline spans rather
// than other blocks.
func isLeafBlock(kind BlockKind) bool {
	switch kind {
	case CodeBlockKind, HeadingKind, MathBlockKind, ParagraphKind:
		return true
	}
	return false
}

// walk emits the events of one completed sub-tree in depth-first
// pre-order, running the span phase over every leaf block.
// A sink failure aborts the walk immediately.
func (p *parser) walk(c *container) error {
	if err := p.sink.EnterBlock(c.kind, c.bounds, c.attrs, c.detail); err != nil {
		return err
	}
	for _, child := range c.children {
		if child.kind == emptyKind {
			continue
		}
		if err := p.walk(child); err != nil {
			return err
		}
	}
	if isLeafBlock(c.kind) {
		if err := p.parseSpans(c); err != nil {
			return err
		}
	}
	return p.sink.LeaveBlock(c.kind)
}

// flush hands every completed top-level child to the walker and
// recycles their arena slots. The above cursor returns to the root.
func (p *parser) flush() error {
	root := p.arena.root()
	for _, child := range root.children {
		if err := p.walk(child); err != nil {
			return err
		}
	}
	root.children = root.children[:0]
	p.above = root
	p.arena.recycle()
	return nil
}
