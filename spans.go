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

// spanFlag identifies one row of the mark table. Several flags can
// map to the same public SpanKind.
type spanFlag uint32

const (
	sEmSimple spanFlag = 1 << iota
	sEm
	sStrongSimple
	sStrong
	sVerbatim
	sHighlight
	sUnderline
	sDelete
	sLink
	sLinkDef
	sAutolink
	sRef
	sInsertedRef
	sImg
	sImgDef
	sImgAlt
	sLatex
	sAttribute
)

const (
	selectAllSpans   = ^spanFlag(0)
	selectLinkFamily = sLink | sLinkDef | sAutolink | sRef | sInsertedRef | sImg | sImgDef | sImgAlt
	refImgFamily     = sRef | sInsertedRef | sImg | sImgDef | sImgAlt
)

// verbatimRunCap bounds the length of a recognized backtick run.
const verbatimRunCap = 32

func spanKindOf(f spanFlag) SpanKind {
	switch f {
	case sEmSimple, sEm:
		return EmphasisKind
	case sStrongSimple, sStrong:
		return StrongKind
	case sVerbatim:
		return CodeSpanKind
	case sHighlight:
		return HighlightKind
	case sUnderline:
		return UnderlineKind
	case sDelete:
		return DeleteKind
	case sLink, sLinkDef, sAutolink:
		return LinkKind
	case sRef, sInsertedRef:
		return RefKind
	case sImg, sImgDef, sImgAlt:
		return ImageKind
	case sLatex:
		return MathSpanKind
	}
	return 0
}

type markPattern struct {
	flag        spanFlag
	open        string
	close       string
	secondClose string
	// needFlank requires whitespace or punctuation on the outside of
	// both the open and the close.
	needFlank bool
	// repeat marks run-counted patterns: the close run length must
	// equal the open run length.
	repeat bool
	// disallowInside aborts a close whose matching opener lies
	// beyond an already-solved span of one of these flags.
	disallowInside spanFlag
}

// markPatterns is checked in order; longer-pattern variants precede
// their prefix siblings.
var markPatterns = []markPattern{
	{flag: sEm, open: "{_", close: "_}"},
	{flag: sEmSimple, open: "_", close: "_", needFlank: true},
	{flag: sStrong, open: "{*", close: "*}"},
	{flag: sStrongSimple, open: "*", close: "*", needFlank: true},
	{flag: sVerbatim, open: "`", close: "`", repeat: true, disallowInside: selectAllSpans},
	{flag: sHighlight, open: "{=", close: "=}"},
	{flag: sUnderline, open: "{+", close: "+}"},
	{flag: sDelete, open: "{-", close: "-}"},
	{flag: sInsertedRef, open: "![[", close: "]]", disallowInside: selectAllSpans},
	{flag: sRef, open: "[[", close: "]]", disallowInside: selectAllSpans},
	{flag: sImg, open: "![", close: "](", secondClose: ")", disallowInside: selectLinkFamily},
	{flag: sImgDef, open: "![", close: "][", secondClose: "]", disallowInside: selectLinkFamily},
	{flag: sImgAlt, open: "![", close: "]", disallowInside: selectLinkFamily},
	{flag: sLink, open: "[", close: "](", secondClose: ")", disallowInside: selectLinkFamily},
	{flag: sLinkDef, open: "[", close: "][", secondClose: "]", disallowInside: selectLinkFamily},
	{flag: sLatex, open: "$$", close: "$$", disallowInside: selectAllSpans},
	{flag: sAttribute, open: "{{", close: "}}"},
}

// mark is a span candidate in the chain. Openers become solved when a
// closing token pairs with them; every closing mark back-references
// its opener by chain index (never by pointer: the chain compacts).
type mark struct {
	pat  *markPattern
	flag spanFlag

	// Opener fields.
	line  int
	bIdx  int // index into the container's boundary list
	pre   int
	beg   int
	count int // run length for repeat patterns

	solved  bool
	closing bool

	// opener is the chain index of the opening twin (closing marks).
	opener int
	// closeStart/closeEnd bracket the consumed closing token,
	// including any second-close window. Mirrored onto the opener
	// when it is solved, for detail synthesis.
	closeStart int
	closeEnd   int

	// trueBounds is the resolved multi-line boundary list (openers).
	trueBounds []Boundaries
	attrs      Attributes
}

// spanParser resolves the inline spans of one leaf container.
type spanParser struct {
	p      *parser
	src    []byte
	bounds []Boundaries

	chain []mark
	// openCount is the per-flag multiset of unsolved opens.
	openCount map[spanFlag]int

	// raw is the flag of the verbatim or math span currently being
	// scanned in raw mode, zero otherwise. While raw, only the
	// matching closer is recognized.
	raw     spanFlag
	rawMark int
}

// parseSpans runs the span phase over one leaf container,
// replaying the resolved marks as span and text events.
func (p *parser) parseSpans(c *container) error {
	switch c.kind {
	case CodeBlockKind:
		return p.emitLeafText(c, TextCode)
	case MathBlockKind:
		return p.emitLeafText(c, TextLatex)
	}
	sp := &spanParser{
		p:         p,
		src:       p.source,
		bounds:    c.bounds,
		openCount: make(map[spanFlag]int),
	}
	sp.scan()
	sp.reconcile()
	return sp.replay()
}

// emitLeafText emits the content lines of a non-text leaf (code,
// math) as bare text events without marker scanning.
func (p *parser) emitLeafText(c *container, kind TextKind) error {
	for _, b := range c.bounds {
		if b.Beg >= b.End {
			continue
		}
		if err := p.sink.Text(kind, Boundaries{
			Line: b.Line, Pre: b.Beg, Beg: b.Beg, End: b.End, Post: b.End,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (sp *spanParser) matchAt(pat string, off, end int) bool {
	if off+len(pat) > end {
		return false
	}
	return string(sp.src[off:off+len(pat)]) == pat
}

func (sp *spanParser) scan() {
	for bi := range sp.bounds {
		b := sp.bounds[bi]
		off := b.Beg
		for off < b.End {
			c := sp.src[off]

			if sp.raw != 0 {
				off = sp.scanRaw(off, b, bi)
				continue
			}

			if c == '\\' {
				off += 2
				continue
			}

			if next, ok := sp.tryClose(off, b, bi); ok {
				off = next
				continue
			}
			if next, ok := sp.tryOpen(off, b, bi); ok {
				off = next
				continue
			}
			if c == 'h' {
				if next, ok := sp.tryAutolink(off, b, bi); ok {
					off = next
					continue
				}
			}
			off++
		}
	}
}

// scanRaw advances through verbatim or math content, recognizing only
// escapes and the matching closer.
func (sp *spanParser) scanRaw(off int, b Boundaries, bi int) int {
	opener := &sp.chain[sp.rawMark]
	switch {
	case sp.src[off] == '\\':
		// Inside a verbatim run a backslash only hides a backtick.
		if sp.raw == sVerbatim {
			if off+1 < b.End && sp.src[off+1] == '`' {
				return off + 2
			}
			return off + 1
		}
		return off + 2
	case sp.raw == sVerbatim && sp.src[off] == '`':
		n := countMarks(sp.src, off, '`')
		if off+n > b.End {
			n = b.End - off
		}
		if n != opener.count {
			return off + n
		}
		sp.solve(sp.rawMark, bi, off, off+n)
		sp.raw = 0
		return off + n
	case sp.raw == sLatex && sp.matchAt("$$", off, b.End):
		sp.solve(sp.rawMark, bi, off, off+2)
		sp.raw = 0
		return off + 2
	}
	return off + 1
}

// tryOpen attempts the open patterns at off. All patterns sharing the
// longest matching open text push their marks (the twins are sorted
// out at close time), and the scan advances past the open.
func (sp *spanParser) tryOpen(off int, b Boundaries, bi int) (int, bool) {
	flankOK := off == b.Beg
	if !flankOK {
		prev := sp.src[off-1]
		flankOK = isWhitespace(prev) || isPunct(prev)
	}

	bestLen := 0
	runLen := 0
	var matched []*markPattern
	for i := range markPatterns {
		pat := &markPatterns[i]
		if pat.needFlank && !flankOK {
			continue
		}
		if !sp.matchAt(pat.open, off, b.End) {
			continue
		}
		n := len(pat.open)
		if pat.repeat {
			n = countMarks(sp.src, off, pat.open[0])
			if off+n > b.End {
				n = b.End - off
			}
			if n > verbatimRunCap {
				n = verbatimRunCap
			}
		}
		if len(pat.open) > bestLen {
			bestLen = len(pat.open)
			runLen = n
			matched = matched[:0]
		}
		if len(pat.open) == bestLen {
			matched = append(matched, pat)
		}
	}
	if len(matched) == 0 {
		return 0, false
	}
	for _, pat := range matched {
		m := mark{
			pat:  pat,
			flag: pat.flag,
			line: b.Line,
			bIdx: bi,
			pre:  off,
			beg:  off + runLen,
		}
		if pat.repeat {
			m.count = runLen
		}
		sp.chain = append(sp.chain, m)
		sp.openCount[pat.flag]++
		if pat.flag == sVerbatim || pat.flag == sLatex {
			sp.raw = pat.flag
			sp.rawMark = len(sp.chain) - 1
		}
	}
	return off + runLen, true
}

// tryClose attempts to close the most recently opened compatible mark
// at off, walking the patterns in table order.
func (sp *spanParser) tryClose(off int, b Boundaries, bi int) (int, bool) {
	for i := range markPatterns {
		pat := &markPatterns[i]
		if pat.flag == sVerbatim || pat.flag == sLatex {
			continue // closed in raw mode
		}
		if sp.openCount[pat.flag] == 0 {
			continue
		}
		if !sp.matchAt(pat.close, off, b.End) {
			continue
		}
		closeEnd := off + len(pat.close)
		if pat.secondClose != "" {
			found := -1
			for q := closeEnd; q+len(pat.secondClose) <= b.End; q++ {
				if sp.matchAt(pat.secondClose, q, b.End) {
					found = q
					break
				}
			}
			if found < 0 {
				continue
			}
			closeEnd = found + len(pat.secondClose)
		}
		if pat.needFlank && closeEnd < b.End {
			after := sp.src[closeEnd]
			if !isWhitespace(after) && !isPunct(after) {
				continue
			}
		}
		if sp.closeChain(pat, bi, off, closeEnd) {
			return closeEnd, true
		}
	}
	return 0, false
}

// closeChain walks the chain in reverse looking for the unsolved
// opener the closing token pairs with. Unsolved marks passed on the
// way are abandoned opens and are erased; solved marks are skipped
// unless the closer forbids nesting across them, which aborts the
// close entirely.
func (sp *spanParser) closeChain(pat *markPattern, bi, closeStart, closeEnd int) bool {
	found := -1
	for i := len(sp.chain) - 1; i >= 0; i-- {
		m := &sp.chain[i]
		if m.solved || m.closing {
			if m.flag&pat.disallowInside != 0 {
				return false
			}
			continue
		}
		if m.flag == pat.flag {
			found = i
			break
		}
	}
	if found < 0 {
		return false
	}

	// Erase the abandoned unsolved opens between the opener and the
	// end of the chain.
	keep := make([]bool, len(sp.chain))
	for i := range sp.chain {
		m := &sp.chain[i]
		keep[i] = i <= found || m.solved || m.closing
		if !keep[i] {
			sp.openCount[m.flag]--
		}
	}
	found = sp.compact(keep, found)

	sp.solve(found, bi, closeStart, closeEnd)
	return true
}

// solve marks the opener at index idx solved, records its true
// bounds, and appends the closing twin.
func (sp *spanParser) solve(idx, bi, closeStart, closeEnd int) {
	opener := &sp.chain[idx]
	opener.solved = true
	opener.closeStart = closeStart
	opener.closeEnd = closeEnd
	opener.trueBounds = sp.trueBoundsOf(opener, bi, closeStart, closeEnd)
	sp.openCount[opener.flag]--

	sp.chain = append(sp.chain, mark{
		pat:        opener.pat,
		flag:       opener.flag,
		line:       sp.bounds[bi].Line,
		bIdx:       bi,
		solved:     true,
		closing:    true,
		opener:     idx,
		closeStart: closeStart,
		closeEnd:   closeEnd,
	})
}

// trueBoundsOf reconstructs the boundary list of a span from its
// opener and the consumed close window, one record per line.
func (sp *spanParser) trueBoundsOf(opener *mark, closeBi, closeStart, closeEnd int) []Boundaries {
	if opener.bIdx == closeBi {
		return []Boundaries{{
			Line: opener.line,
			Pre:  opener.pre, Beg: opener.beg,
			End: closeStart, Post: closeEnd,
		}}
	}
	openLine := sp.bounds[opener.bIdx]
	bounds := []Boundaries{{
		Line: openLine.Line,
		Pre:  opener.pre, Beg: opener.beg,
		End: openLine.End, Post: openLine.End,
	}}
	for bi := opener.bIdx + 1; bi < closeBi; bi++ {
		mid := sp.bounds[bi]
		bounds = append(bounds, Boundaries{
			Line: mid.Line,
			Pre:  mid.Beg, Beg: mid.Beg,
			End: mid.End, Post: mid.End,
		})
	}
	closeLine := sp.bounds[closeBi]
	bounds = append(bounds, Boundaries{
		Line: closeLine.Line,
		Pre:  closeLine.Beg, Beg: closeLine.Beg,
		End: closeStart, Post: closeEnd,
	})
	return bounds
}

// tryAutolink recognizes a bare URL and pushes a pre-solved
// open/close pair spanning it. Autolinks carry no marker bytes:
// pre == beg and end == post.
func (sp *spanParser) tryAutolink(off int, b Boundaries, bi int) (int, bool) {
	const httpScheme = "http://"
	const httpsScheme = "https://"
	var scheme string
	switch {
	case sp.matchAt(httpsScheme, off, b.End):
		scheme = httpsScheme
	case sp.matchAt(httpScheme, off, b.End):
		scheme = httpScheme
	default:
		return 0, false
	}
	end := off + len(scheme)
	for end < b.End {
		c := sp.src[end]
		if isWhitespace(c) || c == '[' || c == ']' {
			break
		}
		end++
	}
	// Trailing punctuation right before whitespace or the end of the
	// line is not part of the URL.
	if end > off+len(scheme) && isPunct(sp.src[end-1]) {
		end--
	}
	if end == off+len(scheme) {
		return 0, false
	}

	idx := len(sp.chain)
	sp.chain = append(sp.chain, mark{
		flag: sAutolink,
		line: b.Line, bIdx: bi,
		pre: off, beg: off,
		solved:     true,
		closeStart: end, closeEnd: end,
		trueBounds: []Boundaries{{Line: b.Line, Pre: off, Beg: off, End: end, Post: end}},
	})
	sp.chain = append(sp.chain, mark{
		flag: sAutolink,
		line: b.Line, bIdx: bi,
		solved: true, closing: true,
		opener:     idx,
		closeStart: end, closeEnd: end,
	})
	return end, true
}

// compact rebuilds the chain keeping only the flagged marks and
// remaps the opener back-references. It returns the new index of
// track.
func (sp *spanParser) compact(keep []bool, track int) int {
	remap := make([]int, len(sp.chain))
	out := make([]mark, 0, len(sp.chain))
	for i := range sp.chain {
		if keep[i] {
			remap[i] = len(out)
			out = append(out, sp.chain[i])
		} else {
			remap[i] = -1
		}
	}
	for i := range out {
		if out[i].closing {
			out[i].opener = remap[out[i].opener]
		}
	}
	sp.chain = out
	if track >= 0 {
		return remap[track]
	}
	return -1
}

// reconcile drops unsolved marks and folds attribute spans into the
// mark they annotate.
func (sp *spanParser) reconcile() {
	keep := make([]bool, len(sp.chain))
	for i := range sp.chain {
		keep[i] = sp.chain[i].solved || sp.chain[i].closing
	}
	sp.compact(keep, -1)

	// Attach each solved attribute block to the immediately preceding
	// solved mark on the same line, then drop the attribute pair.
	keep = make([]bool, len(sp.chain))
	for i := range keep {
		keep[i] = true
	}
	for i := range sp.chain {
		m := &sp.chain[i]
		if m.flag != sAttribute || m.closing || !m.solved {
			continue
		}
		ci := sp.closerOf(i)
		keep[i] = false
		if ci >= 0 {
			keep[ci] = false
		}
		if i == 0 {
			continue
		}
		prev := &sp.chain[i-1]
		target := prev
		if prev.closing {
			target = &sp.chain[prev.opener]
		}
		prevEnd := prev.closeEnd
		if !prev.closing {
			prevEnd = prev.beg
		}
		if sp.bounds[prev.bIdx].Line != m.line || !sp.onlyWhitespaceBetween(prevEnd, m.pre) {
			continue
		}
		attrs, attrEnd := parseAttributes(sp.src, m.beg)
		if attrEnd < 0 {
			continue
		}
		target.attrs = attrs
		if last := len(target.trueBounds) - 1; m.closeEnd > target.trueBounds[last].Post {
			target.trueBounds[last].Post = m.closeEnd
		}
	}
	sp.compact(keep, -1)
}

// closerOf returns the chain index of the closing twin of the opener
// at idx, or -1.
func (sp *spanParser) closerOf(idx int) int {
	for i := idx + 1; i < len(sp.chain); i++ {
		if sp.chain[i].closing && sp.chain[i].opener == idx {
			return i
		}
	}
	return -1
}

func (sp *spanParser) onlyWhitespaceBetween(from, to int) bool {
	if from > to {
		return false
	}
	for ; from < to; from++ {
		if !isWhitespace(sp.src[from]) {
			return false
		}
	}
	return true
}

// spanDetail synthesizes the kind-specific payload of a solved opener
// from the unused portions of its open and close windows.
func (sp *spanParser) spanDetail(m *mark) SpanDetail {
	src := sp.src
	switch m.flag {
	case sLink:
		return &LinkDetail{Href: string(src[m.closeStart+2 : m.closeEnd-1])}
	case sLinkDef:
		return &LinkDetail{Href: string(src[m.closeStart+2 : m.closeEnd-1]), Alias: true}
	case sAutolink:
		return &LinkDetail{Href: string(src[m.pre:m.closeStart])}
	case sImg:
		return &ImageDetail{
			Src:   string(src[m.closeStart+2 : m.closeEnd-1]),
			Title: string(src[m.beg:m.closeStart]),
		}
	case sImgDef:
		return &ImageDetail{
			Src:   string(src[m.closeStart+2 : m.closeEnd-1]),
			Title: string(src[m.beg:m.closeStart]),
			Alias: true,
		}
	case sImgAlt:
		return &ImageDetail{Src: string(src[m.beg:m.closeStart]), Alias: true}
	case sRef:
		return &RefDetail{Name: string(src[m.beg:m.closeStart])}
	case sInsertedRef:
		return &RefDetail{Name: string(src[m.beg:m.closeStart]), Inserted: true}
	}
	return nil
}

// replay walks the resolved chain in order, interleaving text events
// with enter and leave span events.
func (sp *spanParser) replay() error {
	if len(sp.bounds) == 0 {
		return nil
	}
	cursorBi := 0
	cursorOff := sp.bounds[0].Beg
	textKind := TextNormal
	suppress := 0

	emitTo := func(targetBi, targetOff int) error {
		for cursorBi < targetBi {
			b := sp.bounds[cursorBi]
			if suppress == 0 && cursorOff < b.End {
				if err := sp.p.sink.Text(textKind, Boundaries{
					Line: b.Line, Pre: cursorOff, Beg: cursorOff, End: b.End, Post: b.End,
				}); err != nil {
					return err
				}
			}
			cursorBi++
			cursorOff = sp.bounds[cursorBi].Beg
		}
		if suppress == 0 && cursorOff < targetOff {
			b := sp.bounds[cursorBi]
			if err := sp.p.sink.Text(textKind, Boundaries{
				Line: b.Line, Pre: cursorOff, Beg: cursorOff, End: targetOff, Post: targetOff,
			}); err != nil {
				return err
			}
		}
		if cursorOff < targetOff {
			cursorOff = targetOff
		}
		return nil
	}

	for i := range sp.chain {
		m := &sp.chain[i]
		if !m.closing {
			if err := emitTo(m.bIdx, m.trueBounds[0].Pre); err != nil {
				return err
			}
			if err := sp.p.sink.EnterSpan(spanKindOf(m.flag), m.trueBounds, m.attrs, sp.spanDetail(m)); err != nil {
				return err
			}
			cursorBi = m.bIdx
			cursorOff = m.trueBounds[0].Beg
			switch {
			case m.flag == sVerbatim:
				textKind = TextCode
			case m.flag == sLatex:
				textKind = TextLatex
			case m.flag&refImgFamily != 0:
				suppress++
			}
			continue
		}

		opener := &sp.chain[m.opener]
		if err := emitTo(m.bIdx, m.closeStart); err != nil {
			return err
		}
		cursorBi = m.bIdx
		cursorOff = opener.trueBounds[len(opener.trueBounds)-1].Post
		if err := sp.p.sink.LeaveSpan(spanKindOf(m.flag)); err != nil {
			return err
		}
		switch {
		case m.flag == sVerbatim || m.flag == sLatex:
			textKind = TextNormal
		case m.flag&refImgFamily != 0:
			suppress--
		}
	}

	last := len(sp.bounds) - 1
	return emitTo(last, sp.bounds[last].End)
}
