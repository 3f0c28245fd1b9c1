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

// Package abmark parses a Markdown-family markup dialect extended
// with LaTeX math blocks, named divisions, definitions, attribute
// annotations, and alphabetic and roman list enumerations.
//
// The parser is event-driven: [Parse] walks a single in-memory
// buffer and drives a caller-supplied [Sink] with enter-block,
// leave-block, enter-span, leave-span, and text events. No rendering
// is built into the core; [HTMLRenderer] is one sink among any the
// caller may supply.
//
// Parsing happens in two phases. The block phase classifies each
// line into a segment and folds segments into a tree of containers,
// carrying continuation and indent rules across lines. The span
// phase then runs over the content lines of each leaf block,
// resolving marker candidates into nested inline spans.
//
// The grammar is total: every byte sequence maps to a document.
// [Parse] fails only when a sink callback fails.
package abmark

import "fmt"

// parser is the state of one Parse call.
type parser struct {
	source []byte
	sink   Sink
	lines  lineIndex
	arena  *arena

	// current is the insertion tip: new containers become its
	// children. above tracks the container that held the same
	// logical position on the previous line, or nil.
	current *container
	above   *container
}

// Parse reads the entire source buffer and reports it to sink as an
// event stream. The source is borrowed for the duration of the call
// and never modified.
//
// Parse is synchronous and single-threaded; callbacks are invoked
// inline. Independent Parse calls on distinct buffers may run
// concurrently.
func Parse(source []byte, sink Sink) error {
	p := &parser{
		source: source,
		sink:   sink,
		lines:  buildLineIndex(source),
		arena:  newArena(),
	}
	p.current = p.arena.root()

	if err := p.run(); err != nil {
		return fmt.Errorf("abmark: %w", err)
	}
	return nil
}

func (p *parser) run() error {
	if err := p.sink.EnterBlock(DocumentKind, nil, nil, nil); err != nil {
		return err
	}

	off := 0
	for off < len(p.source) {
		p.selectLastChild()
		seg, next := p.analyzeSegment(off)
		if err := p.processSegment(&seg); err != nil {
			return err
		}
		off = next
		if off >= seg.end {
			// End of line: both cursors return to the root.
			p.above = p.arena.root()
			p.current = p.above
			off++
		}
	}

	if err := p.flush(); err != nil {
		return err
	}
	return p.sink.LeaveBlock(DocumentKind)
}
