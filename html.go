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
	"fmt"
	"html"
	"io"
	"sort"
	"strconv"

	"golang.org/x/net/html/atom"
)

// An HTMLRenderer is a [Sink] that converts the event stream into
// HTML. It renders what the events carry and nothing more: aliases
// are resolved against Definitions when supplied, and left as
// fragment links otherwise.
type HTMLRenderer struct {
	// Definitions resolves "[text][name]" links and "![alt][name]"
	// images. May be nil.
	Definitions DefinitionMap
	// IncludeDefinitions renders definition blocks as visible
	// content instead of omitting them.
	IncludeDefinitions bool

	source []byte
	w      io.Writer
	buf    []byte

	skipDepth   int
	lastLine    int
	olStack     []*OlDetail
	openHeading atom.Atom
}

// RenderHTML parses source and writes it to w as HTML.
func RenderHTML(w io.Writer, source []byte) error {
	defs, err := CollectDefinitions(source)
	if err != nil {
		return err
	}
	r := &HTMLRenderer{Definitions: defs}
	return r.Render(w, source)
}

// Render parses source and writes the rendered HTML to w.
// It returns the first error encountered, if any.
func (r *HTMLRenderer) Render(w io.Writer, source []byte) error {
	r.source = source
	r.w = w
	r.buf = r.buf[:0]
	r.skipDepth = 0
	r.lastLine = -1
	if err := Parse(source, r); err != nil {
		return fmt.Errorf("render to html: %w", err)
	}
	if len(r.buf) > 0 {
		if _, err := w.Write(r.buf); err != nil {
			return fmt.Errorf("render to html: %w", err)
		}
		r.buf = r.buf[:0]
	}
	return nil
}

func (r *HTMLRenderer) openTag(name atom.Atom, attrs Attributes) {
	r.buf = append(r.buf, '<')
	r.buf = append(r.buf, name.String()...)
	r.appendAttrs(attrs)
	r.buf = append(r.buf, '>')
}

func (r *HTMLRenderer) closeTag(name atom.Atom) {
	r.buf = append(r.buf, "</"...)
	r.buf = append(r.buf, name.String()...)
	r.buf = append(r.buf, '>')
}

func (r *HTMLRenderer) appendAttrs(attrs Attributes) {
	if len(attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		r.buf = append(r.buf, ' ')
		r.buf = append(r.buf, html.EscapeString(k)...)
		r.buf = append(r.buf, `="`...)
		r.buf = append(r.buf, html.EscapeString(attrs[k])...)
		r.buf = append(r.buf, '"')
	}
}

func (r *HTMLRenderer) flushBuf() error {
	if len(r.buf) == 0 {
		return nil
	}
	_, err := r.w.Write(r.buf)
	r.buf = r.buf[:0]
	return err
}

// EnterBlock implements [Sink].
func (r *HTMLRenderer) EnterBlock(kind BlockKind, bounds []Boundaries, attrs Attributes, detail BlockDetail) error {
	if r.skipDepth > 0 {
		r.skipDepth++
		return nil
	}
	r.lastLine = -1
	switch kind {
	case DocumentKind, HiddenKind:
	case ParagraphKind:
		r.openTag(atom.P, attrs)
	case QuoteKind:
		r.openTag(atom.Blockquote, attrs)
		r.buf = append(r.buf, '\n')
	case UnorderedListKind:
		r.openTag(atom.Ul, attrs)
		r.buf = append(r.buf, '\n')
	case OrderedListKind:
		d := detail.(*OlDetail)
		r.olStack = append(r.olStack, d)
		merged := Attributes{"type": olTypeAttr(d)}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.Ol, merged)
		r.buf = append(r.buf, '\n')
	case ListItemKind:
		d := detail.(*LiDetail)
		var merged Attributes
		if d.Number != "" && len(r.olStack) > 0 {
			if n := listOrdinal(d.Number, r.olStack[len(r.olStack)-1].Style); n > 0 {
				merged = Attributes{"value": strconv.Itoa(n)}
				for k, v := range attrs {
					merged[k] = v
				}
			}
		}
		if merged == nil {
			merged = attrs
		}
		r.openTag(atom.Li, merged)
	case ThematicBreakKind:
		r.openTag(atom.Hr, attrs)
		r.buf = append(r.buf, '\n')
	case HeadingKind:
		r.openHeading = headingAtom(detail.(*HeadingDetail).Level)
		r.openTag(r.openHeading, attrs)
	case DivKind:
		merged := Attributes{"class": detail.(*DivDetail).Name}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.Div, merged)
		r.buf = append(r.buf, '\n')
	case DefinitionKind:
		if !r.IncludeDefinitions {
			r.skipDepth = 1
			return nil
		}
		d := detail.(*DefDetail)
		merged := Attributes{"class": "definition", "id": d.Name}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.Div, merged)
		r.buf = append(r.buf, '\n')
	case CodeBlockKind:
		r.openTag(atom.Pre, nil)
		codeAttrs := attrs
		if lang := detail.(*CodeDetail).Lang; lang != "" {
			codeAttrs = Attributes{"class": "language-" + lang}
			for k, v := range attrs {
				codeAttrs[k] = v
			}
		}
		r.openTag(atom.Code, codeAttrs)
	case MathBlockKind:
		merged := Attributes{"class": "math"}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.Div, merged)
	}
	return r.flushBuf()
}

// LeaveBlock implements [Sink].
func (r *HTMLRenderer) LeaveBlock(kind BlockKind) error {
	if r.skipDepth > 0 {
		r.skipDepth--
		return nil
	}
	r.lastLine = -1
	switch kind {
	case DocumentKind, HiddenKind, ThematicBreakKind:
	case ParagraphKind:
		r.closeTag(atom.P)
		r.buf = append(r.buf, '\n')
	case QuoteKind:
		r.closeTag(atom.Blockquote)
		r.buf = append(r.buf, '\n')
	case UnorderedListKind:
		r.closeTag(atom.Ul)
		r.buf = append(r.buf, '\n')
	case OrderedListKind:
		if n := len(r.olStack); n > 0 {
			r.olStack = r.olStack[:n-1]
		}
		r.closeTag(atom.Ol)
		r.buf = append(r.buf, '\n')
	case ListItemKind:
		r.closeTag(atom.Li)
		r.buf = append(r.buf, '\n')
	case HeadingKind:
		r.closeTag(r.openHeading)
		r.buf = append(r.buf, '\n')
	case DivKind, MathBlockKind:
		r.closeTag(atom.Div)
		r.buf = append(r.buf, '\n')
	case DefinitionKind:
		r.closeTag(atom.Div)
		r.buf = append(r.buf, '\n')
	case CodeBlockKind:
		r.closeTag(atom.Code)
		r.closeTag(atom.Pre)
		r.buf = append(r.buf, '\n')
	}
	return r.flushBuf()
}

// EnterSpan implements [Sink].
func (r *HTMLRenderer) EnterSpan(kind SpanKind, bounds []Boundaries, attrs Attributes, detail SpanDetail) error {
	if r.skipDepth > 0 {
		return nil
	}
	switch kind {
	case EmphasisKind:
		r.openTag(atom.Em, attrs)
	case StrongKind:
		r.openTag(atom.Strong, attrs)
	case CodeSpanKind:
		r.openTag(atom.Code, attrs)
	case DeleteKind:
		r.openTag(atom.Del, attrs)
	case UnderlineKind:
		r.openTag(atom.U, attrs)
	case HighlightKind:
		r.openTag(atom.Mark, attrs)
	case MathSpanKind:
		merged := Attributes{"class": "math"}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.Span, merged)
	case LinkKind:
		d := detail.(*LinkDetail)
		merged := Attributes{"href": r.resolveHref(d)}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.A, merged)
	case ImageKind:
		d := detail.(*ImageDetail)
		src := d.Src
		if d.Alias {
			if def, ok := r.Definitions[NormalizeLabel(d.Src)]; ok {
				src = def.Content
			}
		}
		merged := Attributes{"src": src, "alt": d.Title}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.Img, merged)
	case RefKind:
		d := detail.(*RefDetail)
		merged := Attributes{"class": "ref", "href": "#" + d.Name}
		for k, v := range attrs {
			merged[k] = v
		}
		r.openTag(atom.A, merged)
		r.buf = append(r.buf, html.EscapeString(d.Name)...)
	}
	return r.flushBuf()
}

// LeaveSpan implements [Sink].
func (r *HTMLRenderer) LeaveSpan(kind SpanKind) error {
	if r.skipDepth > 0 {
		return nil
	}
	switch kind {
	case EmphasisKind:
		r.closeTag(atom.Em)
	case StrongKind:
		r.closeTag(atom.Strong)
	case CodeSpanKind:
		r.closeTag(atom.Code)
	case DeleteKind:
		r.closeTag(atom.Del)
	case UnderlineKind:
		r.closeTag(atom.U)
	case HighlightKind:
		r.closeTag(atom.Mark)
	case MathSpanKind:
		r.closeTag(atom.Span)
	case LinkKind, RefKind:
		r.closeTag(atom.A)
	case ImageKind:
		// Void element.
	}
	return r.flushBuf()
}

// Text implements [Sink].
func (r *HTMLRenderer) Text(kind TextKind, b Boundaries) error {
	if r.skipDepth > 0 {
		return nil
	}
	if r.lastLine >= 0 && b.Line > r.lastLine {
		r.buf = append(r.buf, '\n')
	}
	r.lastLine = b.Line
	r.buf = append(r.buf, html.EscapeString(string(r.source[b.Beg:b.End]))...)
	return r.flushBuf()
}

func (r *HTMLRenderer) resolveHref(d *LinkDetail) string {
	if !d.Alias {
		return d.Href
	}
	if def, ok := r.Definitions[NormalizeLabel(d.Href)]; ok {
		return def.Content
	}
	return "#" + d.Href
}

var headingAtoms = [...]atom.Atom{atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6}

func headingAtom(level int) atom.Atom {
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	return headingAtoms[level-1]
}

func olTypeAttr(d *OlDetail) string {
	switch d.Style {
	case OlAlphabetic:
		if d.LowerCase {
			return "a"
		}
		return "A"
	case OlRoman:
		if d.LowerCase {
			return "i"
		}
		return "I"
	}
	return "1"
}

// listOrdinal converts an item's raw enumeration text to its decimal
// position under the enclosing list's style.
func listOrdinal(number string, style OlStyle) int {
	switch style {
	case OlRoman:
		return romanToDecimal(number)
	case OlAlphabetic:
		return alphaToDecimal(number)
	}
	if !isPositiveNumber(number) {
		return -1
	}
	n := 0
	for i := 0; i < len(number); i++ {
		n = n*10 + int(number[i]-'0')
	}
	return n
}
