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

// Byte classification. Code points above 127 are treated as opaque
// text bytes.

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\v' || c == '\f'
}

func isNewline(c byte) bool {
	return c == '\n' || c == '\r'
}

func isPunct(c byte) bool {
	return 33 <= c && c <= 47 ||
		58 <= c && c <= 64 ||
		91 <= c && c <= 96 ||
		123 <= c && c <= 126
}

func isASCIIDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isASCIILower(c byte) bool {
	return 'a' <= c && c <= 'z'
}

func isASCIIUpper(c byte) bool {
	return 'A' <= c && c <= 'Z'
}

// countMarks returns the length of the run of mark bytes starting at
// off, stopping at the end of the line.
func countMarks(source []byte, off int, mark byte) int {
	n := 0
	for off+n < len(source) && source[off+n] == mark {
		n++
	}
	return n
}

// skipLineWhitespace advances off past spaces and tabs,
// never crossing the end of the line.
func skipLineWhitespace(source []byte, off int) int {
	for off < len(source) && source[off] != '\n' && isWhitespace(source[off]) {
		off++
	}
	return off
}

// restIsBlank reports whether every byte in source[off:end] is
// whitespace.
func restIsBlank(source []byte, off, end int) bool {
	for ; off < end; off++ {
		if !isWhitespace(source[off]) && !isNewline(source[off]) {
			return false
		}
	}
	return true
}

// findOnLine returns the offset of the first unescaped occurrence of
// c at or after off on the current line, or -1. A backslash hides the
// byte that follows it.
func findOnLine(source []byte, off int, c byte) int {
	for ; off < len(source) && source[off] != '\n'; off++ {
		switch source[off] {
		case '\\':
			off++
		case c:
			return off
		}
	}
	return -1
}

// parseAttributes parses an attribute block starting just after the
// opening "{{". It returns the parsed attributes and the offset just
// past the closing "}}". If no closing brace is found before the end
// of the line, or the block is empty, the attributes are rejected:
// the map is nil and the end offset is -1.
//
// Whitespace in keys is discarded; whitespace in values is preserved.
// ',' separates entries; ':' or '=' separates key and value; a
// backslash escapes the byte after it. A key with no value maps to
// the empty string.
func parseAttributes(source []byte, off int) (Attributes, int) {
	attrs := make(Attributes)
	var acc []byte
	prevKey := ""
	isKey := true
	collected := false
	for ; off < len(source) && source[off] != '\n'; off++ {
		c := source[off]
		switch {
		case c == '\\':
			if off+1 < len(source) {
				acc = append(acc, source[off+1])
				off++
			}
		case c == '}':
			if isKey {
				attrs[string(acc)] = ""
			} else {
				attrs[prevKey] = string(acc)
			}
			if !collected {
				return nil, -1
			}
			if off+1 < len(source) && source[off+1] == '}' {
				off++
			}
			return attrs, off + 1
		case c == ',':
			if isKey {
				attrs[string(acc)] = ""
			} else {
				attrs[prevKey] = string(acc)
			}
			isKey = true
			prevKey = ""
			acc = acc[:0]
		case c == ':' || c == '=':
			if !isKey {
				acc = append(acc, c)
				continue
			}
			isKey = false
			prevKey = string(acc)
			attrs[prevKey] = ""
			acc = acc[:0]
		case isWhitespace(c) && isKey:
			// Discarded.
		default:
			collected = true
			acc = append(acc, c)
		}
	}
	return nil, -1
}

// isPositiveNumber reports whether s is a positive decimal integer
// without a leading zero.
func isPositiveNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isASCIIDigit(s[i]) || (i == 0 && s[i] == '0') {
			return false
		}
	}
	return true
}

var romanValues = []struct {
	sym string
	val int
}{
	{"M", 1000}, {"CM", 900}, {"D", 500}, {"CD", 400},
	{"C", 100}, {"XC", 90}, {"L", 50}, {"XL", 40},
	{"X", 10}, {"IX", 9}, {"V", 5}, {"IV", 4}, {"I", 1},
}

// romanToDecimal converts a roman numeral in classical subtractive
// form to its decimal value, or -1 if s is not such a numeral.
// The numeral must be uniformly upper or lower case.
func romanToDecimal(s string) int {
	if s == "" {
		return -1
	}
	upper := make([]byte, len(s))
	sawUpper, sawLower := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isASCIIUpper(c):
			sawUpper = true
		case isASCIILower(c):
			sawLower = true
			c -= 'a' - 'A'
		default:
			return -1
		}
		upper[i] = c
	}
	if sawUpper && sawLower {
		return -1
	}
	n := 0
	rest := string(upper)
	for _, rv := range romanValues {
		for len(rest) >= len(rv.sym) && rest[:len(rv.sym)] == rv.sym {
			rest = rest[len(rv.sym):]
			n += rv.val
		}
	}
	if rest != "" {
		return -1
	}
	// Reject non-canonical spellings such as "IIII" or "VIV" by
	// re-encoding and comparing.
	if encodeRoman(n) != string(upper) {
		return -1
	}
	return n
}

func encodeRoman(n int) string {
	var out []byte
	for _, rv := range romanValues {
		for n >= rv.val {
			out = append(out, rv.sym...)
			n -= rv.val
		}
	}
	return string(out)
}

// alphaToDecimal converts a base-26 alphabetic sequence
// (a=1 ... z=26, aa=27) to its decimal value, or -1 if s is not
// uniformly-cased ASCII letters.
func alphaToDecimal(s string) int {
	if s == "" {
		return -1
	}
	sawUpper, sawLower := false, false
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case isASCIIUpper(c):
			sawUpper = true
			c += 'a' - 'A'
		case isASCIILower(c):
			sawLower = true
		default:
			return -1
		}
		n = n*26 + int(c-'a') + 1
	}
	if sawUpper && sawLower {
		return -1
	}
	return n
}
