// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package render

import (
	"hash/fnv"
	"math"
	"math/rand/v2"
	"sort"
	"strconv"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"gonum.org/v1/gonum/graph/layout"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r2"
)

// Seed derives a layout seed from the node and edge set. The same
// subgraph always produces the same seed regardless of slice order.
func Seed(sub datatypes.Subgraph) uint64 {
	nodes := append([]string(nil), sub.Nodes...)
	sort.Strings(nodes)

	edges := make([]string, len(sub.Edges))
	for i, e := range sub.Edges {
		a, b := e.Source, e.Target
		if b < a {
			a, b = b, a
		}
		edges[i] = a + "\x00" + b + "\x00" + strconv.FormatFloat(e.Weight, 'g', -1, 64)
	}
	sort.Strings(edges)

	h := fnv.New64a()
	for _, n := range nodes {
		h.Write([]byte(n))
		h.Write([]byte{0x1e})
	}
	h.Write([]byte{0x1d})
	for _, e := range edges {
		h.Write([]byte(e))
		h.Write([]byte{0x1e})
	}
	return h.Sum64()
}

// Layout computes force-directed positions for every node, keyed by name.
//
// # Description
//
// Uses the Eades spring embedder over an unweighted copy of the subgraph.
// Self-loops are ignored for placement. The result is deterministic for a
// given subgraph and iteration count.
func Layout(sub datatypes.Subgraph, iterations int) map[string]r2.Vec {
	pos := make(map[string]r2.Vec, len(sub.Nodes))
	if len(sub.Nodes) == 0 {
		return pos
	}
	if len(sub.Nodes) == 1 {
		pos[sub.Nodes[0]] = r2.Vec{}
		return pos
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}

	g := simple.NewUndirectedGraph()
	ids := make(map[string]int64, len(sub.Nodes))
	for i, name := range sub.Nodes {
		ids[name] = int64(i)
		g.AddNode(simple.Node(i))
	}
	for _, e := range sub.Edges {
		from, okF := ids[e.Source]
		to, okT := ids[e.Target]
		if !okF || !okT || from == to {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	seed := Seed(sub)
	eades := layout.EadesR2{
		Repulsion: 1,
		Rate:      0.05,
		Updates:   iterations,
		Theta:     0.2,
		Src:       rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
	}
	o := layout.NewOptimizerR2(g, eades.Update)
	for o.Update() {
	}

	for name, id := range ids {
		v := o.Coord2(id)
		if math.IsNaN(v.X) || math.IsNaN(v.Y) {
			v = r2.Vec{}
		}
		pos[name] = v
	}
	return pos
}
