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
	"strings"

	"golang.org/x/text/cases"
)

// Definition is the data of one "[name]:" definition block.
type Definition struct {
	Kind DefKind
	// Content is the definition body with line breaks collapsed to
	// single spaces: a link destination, a citation, or footnote
	// text.
	Content string
}

// DefinitionMap maps normalized definition names to their data.
// "[text][name]" reference links and "![alt][name]" images resolve
// their destinations against it.
type DefinitionMap map[string]Definition

// NormalizeLabel puts a definition name into the form used as a
// DefinitionMap key: interior whitespace collapsed and Unicode case
// folded.
func NormalizeLabel(label string) string {
	return cases.Fold().String(strings.Join(strings.Fields(label), " "))
}

// MatchDefinition reports whether the label appears in the map.
func (m DefinitionMap) MatchDefinition(label string) bool {
	_, ok := m[NormalizeLabel(label)]
	return ok
}

// CollectDefinitions parses source and gathers its definition blocks.
// In case of duplicate names the first definition in source order
// wins.
func CollectDefinitions(source []byte) (DefinitionMap, error) {
	c := &defCollector{source: source, defs: make(DefinitionMap)}
	if err := Parse(source, c); err != nil {
		return nil, err
	}
	return c.defs, nil
}

// defCollector is a sink that records definition blocks and ignores
// everything else.
type defCollector struct {
	source []byte
	defs   DefinitionMap

	inDef   bool
	name    string
	kind    DefKind
	content []string
}

func (c *defCollector) EnterBlock(kind BlockKind, bounds []Boundaries, attrs Attributes, detail BlockDetail) error {
	if kind != DefinitionKind {
		return nil
	}
	d := detail.(*DefDetail)
	c.inDef = true
	c.name = d.Name
	c.kind = d.Kind
	c.content = c.content[:0]
	return nil
}

func (c *defCollector) LeaveBlock(kind BlockKind) error {
	if kind != DefinitionKind || !c.inDef {
		return nil
	}
	c.inDef = false
	key := NormalizeLabel(c.name)
	if _, exists := c.defs[key]; exists || key == "" {
		return nil
	}
	c.defs[key] = Definition{
		Kind:    c.kind,
		Content: strings.TrimSpace(strings.Join(c.content, " ")),
	}
	return nil
}

func (c *defCollector) EnterSpan(SpanKind, []Boundaries, Attributes, SpanDetail) error {
	return nil
}

func (c *defCollector) LeaveSpan(SpanKind) error {
	return nil
}

func (c *defCollector) Text(kind TextKind, b Boundaries) error {
	if c.inDef && b.Beg < b.End {
		c.content = append(c.content, string(c.source[b.Beg:b.End]))
	}
	return nil
}
