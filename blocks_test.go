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

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestParser(src string) *parser {
	p := &parser{
		source: []byte(src),
		lines:  buildLineIndex([]byte(src)),
		arena:  newArena(),
	}
	p.current = p.arena.root()
	return p
}

func TestAnalyzeSegmentClassification(t *testing.T) {
	tests := []struct {
		line      string
		wantFlags openerFlags
		wantAcc   string
	}{
		{"abc\n", pOpener, ""},
		{"\\# escaped\n", pOpener, ""},
		{"# h\n", hOpener, ""},
		{"###### h\n", hOpener, ""},
		{"####### too deep\n", pOpener, ""},
		{"#hashtag\n", pOpener, ""},
		{"> quoted\n", quoteOpener, ""},
		{"* bullet\n", listOpener, ""},
		{"*emphasis?\n", pOpener, ""},
		{"- bullet\n", listOpener, ""},
		{"   - bullet\n", listOpener, ""},
		{"---\n", hrOpener, ""},
		{"--- \n", hrOpener, ""},
		{"--\n", pOpener, ""},
		{"---x\n", pOpener, ""},
		{"+ bullet\n", listOpener, ""},
		{"+x\n", pOpener, ""},
		{"1. item\n", listOpener, "1"},
		{"12. item\n", listOpener, "12"},
		{"0123. leading zero\n", pOpener, ""},
		{"1234567890. too long\n", pOpener, ""},
		{"(i) roman\n", listOpener, "i"},
		{"(i. mismatched\n", pOpener, ""},
		{"iv) roman\n", listOpener, "iv"},
		{"im) alpha not roman\n", listOpener, "im"},
		{"b) alpha\n", listOpener, "b"},
		{"aaaa) too long\n", pOpener, ""},
		{"[name]: def\n", definitionOpener, "name"},
		{"[x]: too short\n", pOpener, ""},
		{"[name] no colon\n", pOpener, ""},
		{"::: div\n", divOpener, "div"},
		{":::: nope\n", pOpener, ""},
		{"$$\n", latexOpener, ""},
		{"$ $\n", pOpener, ""},
		{"```go\n", codeOpener, "go"},
		{"``\n", pOpener, ""},
		{"\n", 0, ""},
		{"   \n", 0, ""},
	}
	for _, test := range tests {
		p := newTestParser(test.line)
		seg, _ := p.analyzeSegment(0)
		if seg.flags != test.wantFlags {
			t.Errorf("analyzeSegment(%q) flags = %#x; want %#x", test.line, seg.flags, test.wantFlags)
		}
		if seg.acc != test.wantAcc {
			t.Errorf("analyzeSegment(%q) acc = %q; want %q", test.line, seg.acc, test.wantAcc)
		}
	}
}

func TestAnalyzeSegmentQuote(t *testing.T) {
	p := newTestParser("> abc\n")
	seg, next := p.analyzeSegment(0)
	if seg.flags != quoteOpener {
		t.Fatalf("flags = %#x; want quote", seg.flags)
	}
	want := Boundaries{Line: 0, Pre: 0, Beg: 2, End: -1, Post: -1}
	if diff := cmp.Diff(want, seg.bounds); diff != "" {
		t.Errorf("bounds (-want +got):\n%s", diff)
	}
	if next != 2 {
		t.Errorf("next = %d; want 2", next)
	}
}

func TestAnalyzeSegmentListMarker(t *testing.T) {
	p := newTestParser("- item\n")
	seg, next := p.analyzeSegment(0)
	if seg.flags != listOpener {
		t.Fatalf("flags = %#x; want list", seg.flags)
	}
	if seg.liPreMarker != '-' {
		t.Errorf("pre marker = %q; want '-'", seg.liPreMarker)
	}
	if seg.indent != 2 {
		t.Errorf("indent = %d; want 2", seg.indent)
	}
	if next != 2 {
		t.Errorf("next = %d; want 2", next)
	}
	if seg.noContentAfter {
		t.Error("noContentAfter = true for item with content")
	}

	p = newTestParser("-\n")
	seg, _ = p.analyzeSegment(0)
	if !seg.noContentAfter {
		t.Error("noContentAfter = false for bare item")
	}
}

func TestAnalyzeSegmentCodeFence(t *testing.T) {
	p := newTestParser("```py {{lines=3}}\nx\n")
	seg, _ := p.analyzeSegment(0)
	if seg.flags != codeOpener {
		t.Fatalf("flags = %#x; want code", seg.flags)
	}
	if seg.acc != "py" {
		t.Errorf("acc = %q; want \"py\"", seg.acc)
	}
	if seg.count != 3 {
		t.Errorf("count = %d; want 3", seg.count)
	}
	if diff := cmp.Diff(Attributes{"lines": "3"}, seg.attrs); diff != "" {
		t.Errorf("attrs (-want +got):\n%s", diff)
	}
}

func TestCheckClosingDelimiters(t *testing.T) {
	fence := repeatedMarker{marker: '`', count: 3}
	tests := []struct {
		line string
		want int
	}{
		{"```\n", 3},
		{"````\n", 0},
		{"``` \n", 3},
		{"```x\n", -1},
		{"\\```\n", 0},
		{"``\n", 0},
	}
	for _, test := range tests {
		p := newTestParser(test.line)
		seg := segment{end: p.lines.nextLineEnd(p.source, 0), firstNonBlank: 0}
		got, _, _ := p.checkClosingDelimiters(0, &seg, fence)
		if got != test.want {
			t.Errorf("checkClosingDelimiters(%q) = %d; want %d", test.line, got, test.want)
		}
	}

	greater := repeatedMarker{marker: '$', count: 2, allowGreater: true, allowCharsBefore: true, allowAttributes: true}
	p := newTestParser("$$$\n")
	seg := segment{end: 3, firstNonBlank: 0}
	if got, _, _ := p.checkClosingDelimiters(0, &seg, greater); got != 3 {
		t.Errorf("allowGreater close = %d; want 3", got)
	}
}

func TestLineIndex(t *testing.T) {
	src := []byte("ab\nc\n\nd")
	ix := buildLineIndex(src)
	wantBegins := []int{0, 3, 5, 6}
	if diff := cmp.Diff(wantBegins, ix.begins); diff != "" {
		t.Errorf("begins (-want +got):\n%s", diff)
	}
	wantLineOf := []int{0, 0, 0, 1, 1, 2, 3, 3}
	if diff := cmp.Diff(wantLineOf, ix.lineOf); diff != "" {
		t.Errorf("lineOf (-want +got):\n%s", diff)
	}
	if got := ix.nextLineEnd(src, 0); got != 2 {
		t.Errorf("nextLineEnd(0) = %d; want 2", got)
	}
	if got := ix.nextLineEnd(src, 6); got != 7 {
		t.Errorf("nextLineEnd(6) = %d; want 7", got)
	}
}

func TestArenaRecycle(t *testing.T) {
	a := newArena()
	root := a.root()
	c1 := a.alloc()
	c1.kind = ParagraphKind
	c1.bounds = append(c1.bounds, Boundaries{Line: 1})
	c2 := a.alloc()
	c2.kind = QuoteKind

	a.recycle()
	r1 := a.alloc()
	if r1 != c1 {
		t.Error("first alloc after recycle did not reuse the first slot")
	}
	if r1.kind != 0 || len(r1.bounds) != 0 || r1.closed {
		t.Errorf("recycled slot not reset: %+v", r1)
	}
	if a.root() != root {
		t.Error("recycle moved the root")
	}
}
