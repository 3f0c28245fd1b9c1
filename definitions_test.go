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

func TestCollectDefinitions(t *testing.T) {
	const input = "para\n" +
		"[site]: /url\n" +
		"[^note]: footnote text\n" +
		"[c:knuth84]: Knuth 1984\n" +
		"[site]: /other\n"
	got, err := CollectDefinitions([]byte(input))
	if err != nil {
		t.Fatal(err)
	}
	want := DefinitionMap{
		"site":      {Kind: DefLink, Content: "/url"},
		"^note":     {Kind: DefFootnote, Content: "footnote text"},
		"c:knuth84": {Kind: DefCitation, Content: "Knuth 1984"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CollectDefinitions (-want +got):\n%s", diff)
	}
}

func TestDefinitionMapMatch(t *testing.T) {
	m := DefinitionMap{NormalizeLabel("My Site"): {Kind: DefLink, Content: "/x"}}
	if !m.MatchDefinition("my site") {
		t.Error("MatchDefinition is case sensitive; want folded match")
	}
	if !m.MatchDefinition("MY  SITE") {
		t.Error("MatchDefinition does not collapse interior whitespace")
	}
	if m.MatchDefinition("other") {
		t.Error("MatchDefinition matched a missing label")
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Foo", "foo"},
		{"  a   b  ", "a b"},
		{"ÅNGSTRÖM", "ångström"},
	}
	for _, test := range tests {
		if got := NormalizeLabel(test.in); got != test.want {
			t.Errorf("NormalizeLabel(%q) = %q; want %q", test.in, got, test.want)
		}
	}
}
