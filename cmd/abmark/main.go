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

// abmark renders or inspects documents written in the abmark dialect.
package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/renameio"
	"github.com/spf13/cobra"
	"zombiezen.com/go/abmark"
)

func main() {
	var outputPath string
	root := &cobra.Command{
		Use:           "abmark",
		Short:         "parse abmark documents",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&outputPath, "output", "o", "", "write to `file` (atomically) instead of stdout")

	htmlCmd := &cobra.Command{
		Use:   "html [file]",
		Short: "render a document as HTML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, outputPath, func(source []byte, out io.Writer) error {
				return abmark.RenderHTML(out, source)
			})
		},
	}
	eventsCmd := &cobra.Command{
		Use:   "events [file]",
		Short: "dump the parser event stream",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args, outputPath, func(source []byte, out io.Writer) error {
				return abmark.Parse(source, newEventDumper(out, source))
			})
		},
	}
	root.AddCommand(htmlCmd, eventsCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "abmark:", err)
		os.Exit(1)
	}
}

func run(args []string, outputPath string, f func(source []byte, out io.Writer) error) error {
	var source []byte
	var err error
	if len(args) == 0 {
		source, err = io.ReadAll(os.Stdin)
	} else {
		source, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	if outputPath == "" {
		return f(source, os.Stdout)
	}
	buf := new(bytes.Buffer)
	if err := f(source, buf); err != nil {
		return err
	}
	return renameio.WriteFile(outputPath, buf.Bytes(), 0o666)
}

// eventDumper prints one line per event, indented by nesting depth.
type eventDumper struct {
	w      io.Writer
	source []byte
	depth  int
	err    error
}

func newEventDumper(w io.Writer, source []byte) *eventDumper {
	return &eventDumper{w: w, source: source}
}

func (d *eventDumper) printf(format string, args ...any) error {
	if d.err != nil {
		return d.err
	}
	for i := 0; i < d.depth; i++ {
		if _, d.err = io.WriteString(d.w, "  "); d.err != nil {
			return d.err
		}
	}
	_, d.err = fmt.Fprintf(d.w, format+"\n", args...)
	return d.err
}

func (d *eventDumper) EnterBlock(kind abmark.BlockKind, bounds []abmark.Boundaries, attrs abmark.Attributes, detail abmark.BlockDetail) error {
	err := d.printf("+%v%s%s", kind, formatDetail(detail), formatAttrs(attrs))
	d.depth++
	return err
}

func (d *eventDumper) LeaveBlock(kind abmark.BlockKind) error {
	d.depth--
	return d.printf("-%v", kind)
}

func (d *eventDumper) EnterSpan(kind abmark.SpanKind, bounds []abmark.Boundaries, attrs abmark.Attributes, detail abmark.SpanDetail) error {
	err := d.printf("+%v%s%s", kind, formatDetail(detail), formatAttrs(attrs))
	d.depth++
	return err
}

func (d *eventDumper) LeaveSpan(kind abmark.SpanKind) error {
	d.depth--
	return d.printf("-%v", kind)
}

func (d *eventDumper) Text(kind abmark.TextKind, b abmark.Boundaries) error {
	return d.printf("%v %q", kind, d.source[b.Beg:b.End])
}

func formatDetail(detail any) string {
	switch d := detail.(type) {
	case nil:
		return ""
	case *abmark.HeadingDetail:
		return fmt.Sprintf(" level=%d", d.Level)
	case *abmark.CodeDetail:
		return fmt.Sprintf(" lang=%q", d.Lang)
	case *abmark.UlDetail:
		return fmt.Sprintf(" marker=%q", d.Marker)
	case *abmark.OlDetail:
		return fmt.Sprintf(" style=%d post=%q", d.Style, d.PostMarker)
	case *abmark.LiDetail:
		if d.Number != "" {
			return fmt.Sprintf(" number=%q", d.Number)
		}
		return ""
	case *abmark.DefDetail:
		return fmt.Sprintf(" name=%q kind=%d", d.Name, d.Kind)
	case *abmark.DivDetail:
		return fmt.Sprintf(" name=%q", d.Name)
	case *abmark.LinkDetail:
		return fmt.Sprintf(" href=%q alias=%t", d.Href, d.Alias)
	case *abmark.ImageDetail:
		return fmt.Sprintf(" src=%q", d.Src)
	case *abmark.RefDetail:
		return fmt.Sprintf(" name=%q inserted=%t", d.Name, d.Inserted)
	}
	return ""
}

func formatAttrs(attrs abmark.Attributes) string {
	if len(attrs) == 0 {
		return ""
	}
	return fmt.Sprintf(" attrs=%v", map[string]string(attrs))
}
