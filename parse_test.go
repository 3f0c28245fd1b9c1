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
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// eventRecorder is a Sink that flattens the event stream into
// readable strings for comparison.
type eventRecorder struct {
	source []byte
	events []string

	// failAfter, if positive, makes the callback that would record
	// event number failAfter return errStop.
	failAfter int
}

var errStop = errors.New("sink stop")

func (r *eventRecorder) record(s string) error {
	if r.failAfter > 0 && len(r.events)+1 >= r.failAfter {
		return errStop
	}
	r.events = append(r.events, s)
	return nil
}

func shortKind(s string) string {
	return strings.TrimSuffix(s, "Kind")
}

func formatAttrs(attrs Attributes) string {
	if len(attrs) == 0 {
		return ""
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	return " {" + strings.Join(parts, ",") + "}"
}

func (r *eventRecorder) EnterBlock(kind BlockKind, bounds []Boundaries, attrs Attributes, detail BlockDetail) error {
	s := "+" + shortKind(kind.String())
	switch d := detail.(type) {
	case *HeadingDetail:
		s += fmt.Sprintf(" level=%d", d.Level)
	case *CodeDetail:
		s += fmt.Sprintf(" lang=%s ticks=%d", d.Lang, d.NumTicks)
	case *UlDetail:
		s += fmt.Sprintf(" marker=%c", d.Marker)
	case *OlDetail:
		s += fmt.Sprintf(" style=%d post=%c", d.Style, d.PostMarker)
	case *LiDetail:
		if d.Number != "" {
			s += " number=" + d.Number
		}
	case *DefDetail:
		s += fmt.Sprintf(" name=%s kind=%d", d.Name, d.Kind)
	case *DivDetail:
		s += " name=" + d.Name
	}
	return r.record(s + formatAttrs(attrs))
}

func (r *eventRecorder) LeaveBlock(kind BlockKind) error {
	return r.record("-" + shortKind(kind.String()))
}

func (r *eventRecorder) EnterSpan(kind SpanKind, bounds []Boundaries, attrs Attributes, detail SpanDetail) error {
	s := "+" + shortKind(kind.String())
	switch d := detail.(type) {
	case *LinkDetail:
		s += " href=" + d.Href
		if d.Alias {
			s += " alias"
		}
	case *ImageDetail:
		s += " src=" + d.Src
		if d.Title != "" {
			s += " title=" + d.Title
		}
		if d.Alias {
			s += " alias"
		}
	case *RefDetail:
		s += " name=" + d.Name
		if d.Inserted {
			s += " inserted"
		}
	}
	return r.record(s + formatAttrs(attrs))
}

func (r *eventRecorder) LeaveSpan(kind SpanKind) error {
	return r.record("-" + shortKind(kind.String()))
}

func (r *eventRecorder) Text(kind TextKind, b Boundaries) error {
	return r.record(fmt.Sprintf("text %s %q",
		strings.TrimPrefix(kind.String(), "Text"), r.source[b.Beg:b.End]))
}

func recordEvents(t *testing.T, input string) []string {
	t.Helper()
	rec := &eventRecorder{source: []byte(input)}
	if err := Parse([]byte(input), rec); err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return rec.events
}

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "Paragraph",
			input: "abc\n",
			want: []string{
				"+Document",
				"+Paragraph",
				`text Normal "abc"`,
				"-Paragraph",
				"-Document",
			},
		},
		{
			name:  "QuoteTwoLines",
			input: "> a\n> b\n",
			want: []string{
				"+Document",
				"+Quote",
				"+Paragraph",
				`text Normal "a"`,
				`text Normal "b"`,
				"-Paragraph",
				"-Quote",
				"-Document",
			},
		},
		{
			name:  "ListSurvivesOneBlank",
			input: "- x\n- y\n\n- z\n",
			want: []string{
				"+Document",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "x"`,
				"-Paragraph",
				"-ListItem",
				"+ListItem",
				"+Paragraph",
				`text Normal "y"`,
				"-Paragraph",
				"-ListItem",
				"+Hidden",
				"-Hidden",
				"+ListItem",
				"+Paragraph",
				`text Normal "z"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"-Document",
			},
		},
		{
			name:  "IndentedDashBullet",
			input: "   - x\n",
			want: []string{
				"+Document",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "x"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"-Document",
			},
		},
		{
			name:  "TwoBlanksSplitList",
			input: "- x\n\n\n- y\n",
			want: []string{
				"+Document",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "x"`,
				"-Paragraph",
				"-ListItem",
				"+Hidden",
				"-Hidden",
				"+Hidden",
				"-Hidden",
				"-UnorderedList",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "y"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"-Document",
			},
		},
		{
			name:  "FencedCode",
			input: "```py\nprint(1)\n```\n",
			want: []string{
				"+Document",
				"+CodeBlock lang=py ticks=3",
				`text Code "print(1)"`,
				"-CodeBlock",
				"-Document",
			},
		},
		{
			name:  "EmphasisAndStrong",
			input: "a *b* c _d_ e\n",
			want: []string{
				"+Document",
				"+Paragraph",
				`text Normal "a "`,
				"+Strong",
				`text Normal "b"`,
				"-Strong",
				`text Normal " c "`,
				"+Emphasis",
				`text Normal "d"`,
				"-Emphasis",
				`text Normal " e"`,
				"-Paragraph",
				"-Document",
			},
		},
		{
			name:  "LinkWithAttributes",
			input: "[see](http://x){{cls=hi}}\n",
			want: []string{
				"+Document",
				"+Paragraph",
				"+Link href=http://x {cls=hi}",
				`text Normal "see"`,
				"-Link",
				"-Paragraph",
				"-Document",
			},
		},
		{
			name:  "Heading",
			input: "## Two words\n",
			want: []string{
				"+Document",
				"+Heading level=2",
				`text Normal "Two words"`,
				"-Heading",
				"-Document",
			},
		},
		{
			name:  "EmptyHeading",
			input: "##\n",
			want: []string{
				"+Document",
				"+Heading level=2",
				"-Heading",
				"-Document",
			},
		},
		{
			name:  "ThematicBreak",
			input: "a\n\n---\n",
			want: []string{
				"+Document",
				"+Paragraph",
				`text Normal "a"`,
				"-Paragraph",
				"+Hidden",
				"-Hidden",
				"+ThematicBreak",
				"-ThematicBreak",
				"-Document",
			},
		},
		{
			name:  "MathBlock",
			input: "$$\nE=mc^2\n$$\n",
			want: []string{
				"+Document",
				"+MathBlock",
				`text Latex "E=mc^2"`,
				"-MathBlock",
				"-Document",
			},
		},
		{
			name:  "Division",
			input: "::: note\n    inside\n",
			want: []string{
				"+Document",
				"+Div name=note",
				"+Paragraph",
				`text Normal "inside"`,
				"-Paragraph",
				"-Div",
				"-Document",
			},
		},
		{
			name:  "Definition",
			input: "[site]: http://example.com\n",
			want: []string{
				"+Document",
				"+Definition name=site kind=0",
				"+Paragraph",
				"+Link href=http://example.com",
				`text Normal "http://example.com"`,
				"-Link",
				"-Paragraph",
				"-Definition",
				"-Document",
			},
		},
		{
			name:  "OrderedListNumeric",
			input: "1. a\n2. b\n",
			want: []string{
				"+Document",
				"+OrderedList style=0 post=.",
				"+ListItem number=1",
				"+Paragraph",
				`text Normal "a"`,
				"-Paragraph",
				"-ListItem",
				"+ListItem number=2",
				"+Paragraph",
				`text Normal "b"`,
				"-Paragraph",
				"-ListItem",
				"-OrderedList",
				"-Document",
			},
		},
		{
			name:  "OrderedListRomanParenthesised",
			input: "(i) a\n(ii) b\n",
			want: []string{
				"+Document",
				"+OrderedList style=2 post=)",
				"+ListItem number=i",
				"+Paragraph",
				`text Normal "a"`,
				"-Paragraph",
				"-ListItem",
				"+ListItem number=ii",
				"+Paragraph",
				`text Normal "b"`,
				"-Paragraph",
				"-ListItem",
				"-OrderedList",
				"-Document",
			},
		},
		{
			name:  "MarkerChangeSplitsList",
			input: "- a\n* b\n",
			want: []string{
				"+Document",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "a"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"+UnorderedList marker=*",
				"+ListItem",
				"+Paragraph",
				`text Normal "b"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"-Document",
			},
		},
		{
			name:  "QuotedListThenParagraph",
			input: "> - item1\n> abc\n",
			want: []string{
				"+Document",
				"+Quote",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "item1"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"+Paragraph",
				`text Normal "abc"`,
				"-Paragraph",
				"-Quote",
				"-Document",
			},
		},
		{
			name:  "ListItemHangingContinuation",
			input: "- item\n  cont\n",
			want: []string{
				"+Document",
				"+UnorderedList marker=-",
				"+ListItem",
				"+Paragraph",
				`text Normal "item"`,
				`text Normal "cont"`,
				"-Paragraph",
				"-ListItem",
				"-UnorderedList",
				"-Document",
			},
		},
		{
			name:  "Autolink",
			input: "see http://a.b now\n",
			want: []string{
				"+Document",
				"+Paragraph",
				`text Normal "see "`,
				"+Link href=http://a.b",
				`text Normal "http://a.b"`,
				"-Link",
				`text Normal " now"`,
				"-Paragraph",
				"-Document",
			},
		},
		{
			name:  "Reference",
			input: "a [[target]] b\n",
			want: []string{
				"+Document",
				"+Paragraph",
				`text Normal "a "`,
				"+Ref name=target",
				"-Ref",
				`text Normal " b"`,
				"-Paragraph",
				"-Document",
			},
		},
		{
			name:  "UnclosedFenceRunsToEOF",
			input: "```\nraw\n",
			want: []string{
				"+Document",
				"+CodeBlock lang= ticks=3",
				`text Code "raw"`,
				"-CodeBlock",
				"-Document",
			},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := recordEvents(t, test.input)
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("events of %q (-want +got):\n%s", test.input, diff)
			}
		})
	}
}

func TestSinkErrorStopsParse(t *testing.T) {
	rec := &eventRecorder{source: []byte("a *b* c\n"), failAfter: 4}
	err := Parse([]byte("a *b* c\n"), rec)
	if !errors.Is(err, errStop) {
		t.Fatalf("Parse error = %v; want %v", err, errStop)
	}
	if got := len(rec.events); got != 3 {
		t.Errorf("callbacks recorded after failure = %d; want 3", got)
	}
}

// balanceChecker verifies the enter/leave pairing and boundary
// ordering invariants on arbitrary input.
type balanceChecker struct {
	t          *testing.T
	blockStack []BlockKind
	spanStack  []SpanKind
}

func (c *balanceChecker) EnterBlock(kind BlockKind, bounds []Boundaries, attrs Attributes, detail BlockDetail) error {
	lastLine := -1
	for _, b := range bounds {
		if !(b.Pre <= b.Beg && b.Beg <= b.End && b.End <= b.Post) {
			c.t.Errorf("%v boundary out of order: %+v", kind, b)
		}
		if b.Line <= lastLine {
			c.t.Errorf("%v boundary lines not strictly increasing: %+v", kind, bounds)
		}
		lastLine = b.Line
	}
	c.blockStack = append(c.blockStack, kind)
	return nil
}

func (c *balanceChecker) LeaveBlock(kind BlockKind) error {
	if len(c.blockStack) == 0 {
		c.t.Errorf("LeaveBlock(%v) with empty stack", kind)
		return nil
	}
	top := c.blockStack[len(c.blockStack)-1]
	c.blockStack = c.blockStack[:len(c.blockStack)-1]
	if top != kind {
		c.t.Errorf("LeaveBlock(%v); open block is %v", kind, top)
	}
	if len(c.spanStack) != 0 {
		c.t.Errorf("LeaveBlock(%v) with %d open spans", kind, len(c.spanStack))
	}
	return nil
}

func (c *balanceChecker) EnterSpan(kind SpanKind, bounds []Boundaries, attrs Attributes, detail SpanDetail) error {
	if len(bounds) == 0 {
		c.t.Errorf("EnterSpan(%v) with no boundaries", kind)
	}
	c.spanStack = append(c.spanStack, kind)
	return nil
}

func (c *balanceChecker) LeaveSpan(kind SpanKind) error {
	if len(c.spanStack) == 0 {
		c.t.Errorf("LeaveSpan(%v) with empty stack", kind)
		return nil
	}
	top := c.spanStack[len(c.spanStack)-1]
	c.spanStack = c.spanStack[:len(c.spanStack)-1]
	if top != kind {
		c.t.Errorf("LeaveSpan(%v); open span is %v", kind, top)
	}
	return nil
}

func (c *balanceChecker) Text(kind TextKind, b Boundaries) error {
	if b.Beg > b.End {
		c.t.Errorf("text boundary out of order: %+v", b)
	}
	return nil
}

func TestEventInvariants(t *testing.T) {
	inputs := []string{
		"",
		"\n",
		"a",
		"a\nb\n\nc\n",
		"# h\npara *em _nested_ tail*\n",
		"> - a\n> - b\n>\n> c\n",
		"1. a\n2. b\n\n(i) c\n(ii) d\n",
		"```\ncode *not em*\n\nstill code\n```\nafter\n",
		"$$\nx^2\n$$\n[def]: target\n::: warn\n    body\n",
		"text `verbatim *x*` and [l](u) ![i](s) [[r]] {{k=v}}\n",
		"*unclosed\n_ _ ` ``` {{\n",
		"- \n-\n+ x\n",
		"\\# not heading\n\\\n",
	}
	for _, input := range inputs {
		c := &balanceChecker{t: t}
		if err := Parse([]byte(input), c); err != nil {
			t.Errorf("Parse(%q): %v", input, err)
		}
		if len(c.blockStack) != 0 {
			t.Errorf("Parse(%q): %d unclosed blocks", input, len(c.blockStack))
		}
	}
}
