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

// selectLastChild advances the above cursor to the corresponding
// position one level deeper: the last child of the current above
// container, descending through list wrappers to their last item.
// The insertion tip follows. If there is nothing to descend into, the
// above cursor becomes nil.
func (p *parser) selectLastChild() {
	if p.above == nil {
		return
	}
	if len(p.above.children) == 0 {
		p.above = nil
		return
	}
	child := p.above.lastChild()
	if child.kind == UnorderedListKind || child.kind == OrderedListKind {
		if li := child.lastVisibleChild(); li != nil {
			child = li
		}
	}
	p.above = child
	p.current = child
}

// selectParent returns the container blank lines at above's level
// belong to: the enclosing list for a list item, otherwise the
// parent, skipping list wrappers.
func selectParent(c *container) *container {
	if c.kind == ListItemKind {
		return c.parent
	}
	parent := c.parent
	if parent != nil && (parent.kind == UnorderedListKind || parent.kind == OrderedListKind) {
		parent = parent.parent
	}
	return parent
}

// addContainer opens a new container as a child of the insertion tip
// and makes it the new tip.
func (p *parser) addContainer(kind BlockKind, bounds Boundaries, seg *segment, detail BlockDetail) *container {
	parent := p.current
	c := p.arena.alloc()
	c.kind = kind
	c.detail = detail
	c.parent = parent
	c.bounds = append(c.bounds, bounds)
	c.indent = seg.indent
	c.flag = seg.flags
	c.attrs = seg.attrs.clone()
	if kind != HiddenKind {
		parent.lastNonEmptyChildLine = seg.line
	}
	parent.children = append(parent.children, c)
	p.current = c
	return c
}

// closeCurrent closes the insertion tip and pops to its parent.
// Must not be called while the tip is the document root.
func (p *parser) closeCurrent() {
	p.current.closed = true
	p.current = p.current.parent
}

// addAbsorbedHidden records a blank line that analysis already
// committed as a boundary of an indented container. The blank still
// appears in the tree as a hidden child: between the items of the
// enclosing list, or inside the definition or division itself.
func (p *parser) addAbsorbedHidden(seg *segment) {
	parent := seg.absorbedBy
	if parent.kind == ListItemKind {
		parent = parent.parent
	}
	h := p.arena.alloc()
	h.kind = HiddenKind
	h.parent = parent
	h.bounds = append(h.bounds, Boundaries{
		Line: seg.line, Pre: seg.start, Beg: seg.start, End: seg.end, Post: seg.end,
	})
	h.closed = true
	parent.children = append(parent.children, h)
}

// processSegment maps an analyzed segment into the container tree:
// continue the matching container from the previous line, close and
// pop ancestors that no longer match, or open new containers.
func (p *parser) processSegment(seg *segment) error {
	if seg.skip {
		p.addAbsorbedHidden(seg)
		return nil
	}

	above := p.above
	setAboveNil := false

	// If the container above no longer matches the detected block,
	// it has ended.
	lineDiff := 0
	if above != nil && above.kind != DocumentKind {
		lineDiff = seg.line - above.lastBoundaryLine()
		if lineDiff > 1 || above.flag != seg.flags || above.flag&definitionOpener != 0 {
			p.closeCurrent()
			if above.kind == ListItemKind {
				p.closeCurrent()
			}
			setAboveNil = true

			if above.parent != nil && above.parent.kind == DocumentKind && !seg.blank {
				if err := p.flush(); err != nil {
					return err
				}
			}
		}
	}

	if seg.blank {
		parent := p.arena.root()
		if above != nil && above.kind != DocumentKind {
			parent = selectParent(above)
		}
		p.current = parent
		p.addContainer(HiddenKind, Boundaries{
			Line: seg.line, Pre: seg.start, Beg: seg.start, End: seg.end, Post: seg.end,
		}, seg, nil)
		p.closeCurrent()
	}
	if setAboveNil {
		p.above = nil
		above = nil
	}

	continued := func(kind BlockKind) bool {
		return above != nil && above.kind == kind && lineDiff > 0
	}

	switch {
	case seg.flags&pOpener != 0:
		b := Boundaries{Line: seg.line, Pre: seg.start, Beg: seg.firstNonBlank, End: seg.end, Post: seg.end}
		if continued(ParagraphKind) {
			above.bounds = append(above.bounds, b)
		} else {
			p.addContainer(ParagraphKind, b, seg, nil)
		}

	case seg.flags&hrOpener != 0:
		p.addContainer(ThematicBreakKind, Boundaries{
			Line: seg.line, Pre: seg.start, Beg: seg.start, End: seg.end, Post: seg.end,
		}, seg, nil)

	case seg.flags&hOpener != 0:
		level := seg.count
		// Headings can be empty ("##"); only non-empty ones carry the
		// mandatory space, which is not content.
		if seg.bounds.Beg < seg.end {
			seg.bounds.Beg++
		}
		b := Boundaries{Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.end, Post: seg.end}
		newHeading := true
		if continued(HeadingKind) {
			if d := above.detail.(*HeadingDetail); d.Level == level {
				newHeading = false
				above.bounds = append(above.bounds, b)
			} else {
				p.closeCurrent()
			}
		}
		if newHeading {
			p.addContainer(HeadingKind, b, seg, &HeadingDetail{Level: level})
		}

	case seg.flags&quoteOpener != 0:
		b := Boundaries{Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.end, Post: seg.end}
		if continued(QuoteKind) {
			above.bounds = append(above.bounds, b)
		} else {
			p.addContainer(QuoteKind, b, seg, nil)
		}

	case seg.flags&definitionOpener != 0:
		detail := &DefDetail{Name: seg.acc}
		switch {
		case seg.acc[0] == '^':
			detail.Kind = DefFootnote
		case seg.acc[0] == 'c' && len(seg.acc) > 3 && seg.acc[1] == ':':
			detail.Kind = DefCitation
		default:
			detail.Kind = DefLink
		}
		p.addContainer(DefinitionKind, Boundaries{
			Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.bounds.End, Post: seg.bounds.Post,
		}, seg, detail)

	case seg.flags&listOpener != 0:
		p.makeListItem(seg)

	case seg.flags&divOpener != 0:
		p.addContainer(DivKind, Boundaries{
			Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.bounds.End, Post: seg.bounds.Post,
		}, seg, &DivDetail{Name: seg.acc})
		seg.flags = 0
		p.addContainer(emptyKind, Boundaries{Line: seg.line}, seg, nil)

	case seg.flags&latexOpener != 0:
		b := Boundaries{Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.bounds.End, Post: seg.bounds.Post}
		if continued(MathBlockKind) {
			p.current.bounds = append(p.current.bounds, b)
			p.current.attrs = seg.attrs.clone()
		} else {
			p.addContainer(MathBlockKind, b, seg, nil)
			p.current.fence = repeatedMarker{
				marker: '$', count: 2,
				allowGreater: true, allowCharsBefore: true, allowAttributes: true,
			}
		}
		if seg.closeBlock {
			p.current.closed = true
		}

	case seg.flags&codeOpener != 0:
		b := Boundaries{Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.bounds.End, Post: seg.bounds.Post}
		if continued(CodeBlockKind) {
			p.current.bounds = append(p.current.bounds, b)
		} else {
			p.addContainer(CodeBlockKind, b, seg, &CodeDetail{Lang: seg.acc, NumTicks: seg.count})
			p.current.fence = repeatedMarker{marker: '`', count: seg.count}
		}
		if seg.closeBlock {
			p.current.closed = true
		}
	}

	return nil
}

// makeListItem decides whether the item continues the list above it
// or starts a new one, then attaches the item.
func (p *parser) makeListItem(seg *segment) {
	above := p.above
	isBullet := seg.acc == ""
	var aboveParent *container
	if above != nil {
		aboveParent = above.parent
	}
	aboveOl := aboveParent != nil && aboveParent.kind == OrderedListKind
	aboveUl := aboveParent != nil && aboveParent.kind == UnorderedListKind

	var style OlStyle
	alpha, roman := -1, -1
	if !isBullet {
		alpha = alphaToDecimal(seg.acc)
		roman = romanToDecimal(seg.acc)
		switch {
		case isPositiveNumber(seg.acc):
			style = OlNumeric
		case alpha > 0 && roman > 0:
			// Ambiguous tokens ("i", "c") read as whichever style
			// yields the smaller value; ties go to roman.
			if alpha < roman {
				style = OlAlphabetic
			} else {
				style = OlRoman
			}
		case roman > 0:
			style = OlRoman
		default:
			style = OlAlphabetic
		}
	}

	newList := false
	switch {
	case !aboveUl && !aboveOl:
		newList = true
	case aboveUl:
		if d := aboveParent.detail.(*UlDetail); seg.liPreMarker != d.Marker {
			newList = true
		}
	case aboveOl && isBullet:
		newList = true
	case aboveOl:
		d := aboveParent.detail.(*OlDetail)
		if d.PreMarker != seg.liPreMarker || d.PostMarker != seg.liPostMarker {
			newList = true
		}
		// An item valid in both alpha and roman inherits the style of
		// the list it would join.
		if style != OlNumeric && alpha > 0 && roman > 0 &&
			(d.Style == OlAlphabetic || d.Style == OlRoman) {
			style = d.Style
		}
		if style != d.Style {
			newList = true
		}
	}

	if aboveUl || aboveOl {
		for _, child := range above.children {
			child.closed = true
		}
		p.current.closed = true
		// More than one blank line since the list's last visible item
		// forces a new list.
		if seg.line-above.lastNonEmptyChildLine > 2 {
			newList = true
		}
		if newList {
			p.current = aboveParent.parent
		} else {
			p.current = aboveParent
		}
	}

	listBounds := Boundaries{
		Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Pre, End: seg.end, Post: seg.end,
	}
	if newList {
		if isBullet {
			p.addContainer(UnorderedListKind, listBounds, seg, &UlDetail{Marker: seg.liPreMarker})
		} else {
			p.addContainer(OrderedListKind, listBounds, seg, &OlDetail{
				PreMarker:  seg.liPreMarker,
				PostMarker: seg.liPostMarker,
				Style:      style,
				LowerCase:  isASCIILower(seg.acc[0]),
			})
		}
	} else {
		aboveParent.bounds = append(aboveParent.bounds, listBounds)
		p.current = aboveParent
	}

	p.addContainer(ListItemKind, Boundaries{
		Line: seg.line, Pre: seg.bounds.Pre, Beg: seg.bounds.Beg, End: seg.end, Post: seg.end,
	}, seg, &LiDetail{Number: seg.acc})
	if seg.noContentAfter {
		// Placeholder child so the walker can identify bare items.
		p.addContainer(emptyKind, Boundaries{Line: seg.line}, seg, nil)
	}

	p.above = nil
}
