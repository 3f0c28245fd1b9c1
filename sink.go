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

//go:generate stringer -type=BlockKind,SpanKind,TextKind -output=kind_string.go

package abmark

// Boundaries brackets the textual content of a block or span on a
// single line. pre..beg is leading markup (a "> " prefix, a "- "
// bullet), beg..end is displayable content, and end..post is trailing
// markup (the ")" of a link). For single-line blocks
// pre <= beg <= end <= post.
type Boundaries struct {
	Line int
	Pre  int
	Beg  int
	End  int
	Post int
}

// Attributes is the parsed form of a "{{k=v, ...}}" annotation block.
type Attributes map[string]string

// clone returns a copy of the map, or nil for an empty map.
func (attrs Attributes) clone() Attributes {
	if len(attrs) == 0 {
		return nil
	}
	c := make(Attributes, len(attrs))
	for k, v := range attrs {
		c[k] = v
	}
	return c
}

// BlockKind is an enumeration of the structural elements reported to
// [Sink.EnterBlock].
type BlockKind uint16

const (
	// DocumentKind wraps the entire event stream.
	DocumentKind BlockKind = 1 + iota
	// HiddenKind is used for blank lines. It carries no content.
	HiddenKind
	// QuoteKind is used for block quotes.
	QuoteKind
	// UnorderedListKind is used for bullet lists.
	// Its detail is [*UlDetail].
	UnorderedListKind
	// OrderedListKind is used for enumerated lists.
	// Its detail is [*OlDetail].
	OrderedListKind
	// ListItemKind is used for items in either list kind.
	// Its detail is [*LiDetail].
	ListItemKind
	// ThematicBreakKind is used for horizontal rules.
	ThematicBreakKind
	// HeadingKind is used for "#" headings. Its detail is
	// [*HeadingDetail].
	HeadingKind
	// DivKind is used for ":::"-introduced named divisions.
	// Its detail is [*DivDetail].
	DivKind
	// DefinitionKind is used for "[name]:" definitions.
	// Its detail is [*DefDetail].
	DefinitionKind
	// MathBlockKind is used for "$$" fenced display math.
	MathBlockKind
	// CodeBlockKind is used for backtick-fenced code.
	// Its detail is [*CodeDetail].
	CodeBlockKind
	// ParagraphKind is used for a block of text.
	ParagraphKind

	// The table family is reserved for a future revision of the
	// grammar; the block phase never produces it.
	TableKind
	TableHeadKind
	TableBodyKind
	TableRowKind
	TableHeaderCellKind
	TableDataCellKind

	// emptyKind marks internal placeholder children
	// (bare list items, freshly opened divs). Never emitted.
	emptyKind
)

// SpanKind is an enumeration of the inline elements reported to
// [Sink.EnterSpan].
type SpanKind uint16

const (
	EmphasisKind SpanKind = 1 + iota
	StrongKind
	// LinkKind is used for inline links, reference links and
	// autolinks. Its detail is [*LinkDetail].
	LinkKind
	// ImageKind's detail is [*ImageDetail].
	ImageKind
	// CodeSpanKind is used for backtick verbatim runs.
	CodeSpanKind
	DeleteKind
	// MathSpanKind is used for "$$" inline math.
	MathSpanKind
	// RefKind is used for "[[...]]" references.
	// Its detail is [*RefDetail].
	RefKind
	UnderlineKind
	HighlightKind
)

// TextKind classifies the content handed to [Sink.Text].
type TextKind uint16

const (
	TextNormal TextKind = iota
	TextLatex
	TextCode

	// The hidden kinds are emitted by no core path; visualizing
	// sinks may use them to tag marker bytes they re-derive from
	// boundary records.
	TextBlockMarkerHidden
	TextSpanMarkerHidden
)

// BlockDetail is the kind-specific payload of a block event.
// The dynamic type is determined by the [BlockKind].
type BlockDetail interface {
	isBlockDetail()
}

// SpanDetail is the kind-specific payload of a span event.
// The dynamic type is determined by the [SpanKind].
type SpanDetail interface {
	isSpanDetail()
}

// CodeDetail describes a fenced code block.
type CodeDetail struct {
	// Lang is the info tag following the opening fence.
	Lang string
	// NumTicks is the length of the opening fence.
	NumTicks int
}

// OlStyle is the enumeration style of an ordered list.
type OlStyle uint8

const (
	OlNumeric OlStyle = iota
	OlAlphabetic
	OlRoman
)

// OlDetail describes an ordered list.
type OlDetail struct {
	// PreMarker is '(' for parenthesised enumerations, 0 otherwise.
	PreMarker byte
	// PostMarker is ')' or '.'.
	PostMarker byte
	LowerCase  bool
	Style      OlStyle
}

// UlDetail describes a bullet list.
type UlDetail struct {
	// Marker is one of '-', '*', or '+'.
	Marker byte
}

// TaskState reports the checkbox state of a task list item.
type TaskState uint8

const (
	TaskNone TaskState = iota
	TaskFailed
	TaskSucceeded
)

// LiDetail describes a single list item.
type LiDetail struct {
	// Number is the raw enumeration text ("3", "iv", "c");
	// empty for bullet items.
	Number string
	Task   TaskState
	Level  int
}

// DefKind classifies a "[name]:" definition by its name shape.
type DefKind uint8

const (
	DefLink DefKind = iota
	DefFootnote
	DefCitation
)

// DefDetail describes a definition block.
type DefDetail struct {
	Name string
	Kind DefKind
}

// DivDetail describes a ":::" named division.
type DivDetail struct {
	Name string
}

// HeadingDetail describes a heading.
type HeadingDetail struct {
	// Level is 1 to 6.
	Level int
}

// LinkDetail describes a link span.
type LinkDetail struct {
	Href string
	// Alias is true for "[text][name]" reference links whose
	// destination must be resolved against a definition.
	Alias bool
}

// ImageDetail describes an image span.
type ImageDetail struct {
	Src   string
	Title string
	// Alias is true for "![alt][name]" and bare "![alt]" forms.
	Alias bool
}

// RefDetail describes a "[[...]]" reference span.
type RefDetail struct {
	Name string
	// Inserted is true for the "![[...]]" form.
	Inserted bool
}

func (*CodeDetail) isBlockDetail()    {}
func (*OlDetail) isBlockDetail()      {}
func (*UlDetail) isBlockDetail()      {}
func (*LiDetail) isBlockDetail()      {}
func (*DefDetail) isBlockDetail()     {}
func (*DivDetail) isBlockDetail()     {}
func (*HeadingDetail) isBlockDetail() {}

func (*LinkDetail) isSpanDetail()  {}
func (*ImageDetail) isSpanDetail() {}
func (*RefDetail) isSpanDetail()   {}

// A Sink receives the ordered event stream of one [Parse] call.
//
// Enter and leave events are balanced and nest in LIFO order, for
// blocks and spans alike. A non-nil error from any callback aborts
// the parse: no further callbacks are invoked and the error is
// returned from [Parse].
//
// Boundary slices and detail values are only valid for the duration
// of the callback unless documented otherwise; sinks that retain
// them must copy.
type Sink interface {
	EnterBlock(kind BlockKind, bounds []Boundaries, attrs Attributes, detail BlockDetail) error
	LeaveBlock(kind BlockKind) error
	EnterSpan(kind SpanKind, bounds []Boundaries, attrs Attributes, detail SpanDetail) error
	LeaveSpan(kind SpanKind) error
	Text(kind TextKind, bounds Boundaries) error
}
