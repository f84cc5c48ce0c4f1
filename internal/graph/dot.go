// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package graph

import (
	"bufio"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/kahmi-build/kahmi/internal/model"
)

var validUnquotedID = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func quoteForDot(s string) string {
	if validUnquotedID.MatchString(s) {
		return s
	}
	var buf strings.Builder
	buf.WriteByte('"')
	for _, c := range s {
		switch c {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		default:
			buf.WriteRune(c)
		}
	}
	buf.WriteByte('"')
	return buf.String()
}

// WriteDOT renders g as a Graphviz DOT digraph for visual inspection:
// one node per task, one edge per dependency/finalizer relationship,
// with selected tasks marked bold. Output is deterministic, sorted by
// task path, so it is stable across runs of the same graph.
func WriteDOT(g *BuildGraph, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString("digraph kahmi {\n"); err != nil {
		return err
	}

	tasks := g.Tasks()
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Path() < tasks[j].Path() })

	for _, task := range tasks {
		style := ""
		if g.IsSelected(task) {
			style = " [style=bold]"
		}
		if _, err := bw.WriteString("  " + quoteForDot(task.Path()) + style + ";\n"); err != nil {
			return err
		}
	}

	type edge struct{ from, to *model.Task }
	var edges []edge
	for _, task := range tasks {
		for to := range g.forward[task] {
			edges = append(edges, edge{from: task, to: to})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from.Path() != edges[j].from.Path() {
			return edges[i].from.Path() < edges[j].from.Path()
		}
		return edges[i].to.Path() < edges[j].to.Path()
	})

	for _, e := range edges {
		line := "  " + quoteForDot(e.from.Path()) + " -> " + quoteForDot(e.to.Path()) + ";\n"
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
	}

	if _, err := bw.WriteString("}\n"); err != nil {
		return err
	}
	return bw.Flush()
}
