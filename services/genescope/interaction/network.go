// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package interaction

import (
	"sort"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

const (
	// DefaultMinScore is the inclusive lower bound on kept edge scores.
	DefaultMinScore = 0.15

	// DefaultTopN is the number of degree-table rows that seed the subgraph.
	DefaultTopN = 20
)

// Network is the thresholded interaction graph keyed by NodeKey.
type Network struct {
	g     *simple.WeightedUndirectedGraph
	ids   map[datatypes.NodeKey]int64
	keys  []datatypes.NodeKey
	edges int

	// loops holds the self-loop weight per node ID. gonum simple graphs
	// reject self edges, so they are tracked beside the graph.
	loops map[int64]float64

	// SelfLoops counts nodes carrying a kept self-loop.
	SelfLoops int
}

// BuildNetwork adds every edge with score >= minScore.
//
// Nodes are created on first sight and reused afterwards. A pair seen
// again replaces the stored weight. A self-loop counts as one edge and
// adds two to its node's degree.
func BuildNetwork(raw []datatypes.InteractionEdge, minScore float64) *Network {
	n := &Network{
		g:     simple.NewWeightedUndirectedGraph(0, 0),
		ids:   make(map[datatypes.NodeKey]int64),
		loops: make(map[int64]float64),
	}
	for _, e := range raw {
		if e.Score < minScore {
			continue
		}
		if e.A == e.B {
			id := n.node(e.A).ID()
			if _, ok := n.loops[id]; !ok {
				n.edges++
				n.SelfLoops++
			}
			n.loops[id] = e.Score
			continue
		}
		a := n.node(e.A)
		b := n.node(e.B)
		if !n.g.HasEdgeBetween(a.ID(), b.ID()) {
			n.edges++
		}
		n.g.SetWeightedEdge(n.g.NewWeightedEdge(a, b, e.Score))
	}
	return n
}

func (n *Network) node(key datatypes.NodeKey) graph.Node {
	if id, ok := n.ids[key]; ok {
		return n.g.Node(id)
	}
	node := n.g.NewNode()
	n.g.AddNode(node)
	n.ids[key] = node.ID()
	n.keys = append(n.keys, key)
	return node
}

// NodeCount returns the number of distinct node keys.
func (n *Network) NodeCount() int {
	return len(n.keys)
}

// EdgeCount returns the number of distinct undirected edges.
func (n *Network) EdgeCount() int {
	return n.edges
}

// Degrees returns the degree of every node, highest first. Ties keep the
// order in which nodes were first added.
func (n *Network) Degrees() []datatypes.NodeDegree {
	out := make([]datatypes.NodeDegree, len(n.keys))
	for i, key := range n.keys {
		id := n.ids[key]
		degree := n.g.From(id).Len()
		if _, ok := n.loops[id]; ok {
			degree += 2
		}
		out[i] = datatypes.NodeDegree{
			Name:     key.Name,
			StringID: key.StringID,
			Degree:   degree,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Degree > out[j].Degree
	})
	return out
}

// TopNames returns the display names of the first n degree rows with
// duplicates removed, in row order.
func TopNames(degrees []datatypes.NodeDegree, n int) []string {
	if n > len(degrees) {
		n = len(degrees)
	}
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for _, d := range degrees[:n] {
		if seen[d.Name] {
			continue
		}
		seen[d.Name] = true
		names = append(names, d.Name)
	}
	return names
}

type namePair struct{ a, b string }

func pairOf(a, b string) namePair {
	if b < a {
		a, b = b, a
	}
	return namePair{a, b}
}

// InducedSubgraph selects raw edges whose two display names are both in
// names. The raw list is used as is, so edges below the network score
// threshold can appear. Every name becomes a node even without edges, and
// a repeated pair keeps the last score seen.
func InducedSubgraph(raw []datatypes.InteractionEdge, names []string) datatypes.Subgraph {
	set := make(map[string]bool, len(names))
	sub := datatypes.Subgraph{Nodes: make([]string, 0, len(names))}
	for _, name := range names {
		if set[name] {
			continue
		}
		set[name] = true
		sub.Nodes = append(sub.Nodes, name)
	}

	index := make(map[namePair]int)
	for _, e := range raw {
		if !set[e.A.Name] || !set[e.B.Name] {
			continue
		}
		p := pairOf(e.A.Name, e.B.Name)
		if i, ok := index[p]; ok {
			sub.Edges[i].Weight = e.Score
			continue
		}
		index[p] = len(sub.Edges)
		sub.Edges = append(sub.Edges, datatypes.SubgraphEdge{
			Source: e.A.Name,
			Target: e.B.Name,
			Weight: e.Score,
		})
	}
	return sub
}
