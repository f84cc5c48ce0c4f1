// Copyright (c) The Kahmi Authors
// SPDX-License-Identifier: MPL-2.0

package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kahmi-build/kahmi/internal/graph"
)

func TestWriteDOTIncludesNodesAndEdges(t *testing.T) {
	p := newProject(t)
	a := mustTask(t, p, "a")
	b := mustTask(t, p, "b")
	b.DependsOn(a)

	g := graph.New()
	g.AddProject(p)
	g.Select(b)

	var buf strings.Builder
	require.NoError(t, graph.WriteDOT(g, &buf))

	out := buf.String()
	require.Contains(t, out, "digraph kahmi {")
	require.Contains(t, out, `"root:a" -> "root:b";`)
	require.Contains(t, out, `"root:b" [style=bold];`)
}
