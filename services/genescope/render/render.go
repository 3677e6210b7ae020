// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package render turns the top-degree subgraph into an interactive HTML
// network view.
//
// The page embeds its node and edge data but loads the vis-network script
// from Options.ScriptURL when opened. The default is the pinned unpkg copy
// in VisNetworkURL, so viewing the page needs network access unless
// ScriptURL points at a locally served copy.
package render

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strconv"

	"github.com/AleutianAI/genescope/services/genescope/datatypes"
)

const (
	DefaultHeight     = "800px"
	DefaultWidth      = "100%"
	DefaultIterations = 100

	// VisNetworkURL is the pinned vis-network build loaded by default.
	VisNetworkURL = "https://unpkg.com/vis-network@9.1.9/standalone/umd/vis-network.min.js"

	// coordinateScale maps layout units to screen pixels.
	coordinateScale = 120.0
)

// Options configures the rendered view.
type Options struct {
	// Height of the network canvas as a CSS length.
	// Default: "800px"
	Height string

	// Width of the network canvas as a CSS length.
	// Default: "100%"
	Width string

	// Iterations is the number of layout updates before rendering.
	// Default: 100
	Iterations int

	// Title is shown in the page title.
	// Default: "Top 20 Nodes by Degree"
	Title string

	// ScriptURL is the vis-network script the page loads.
	// Default: VisNetworkURL
	ScriptURL string
}

// DefaultOptions returns the standard canvas settings.
func DefaultOptions() Options {
	return Options{
		Height:     DefaultHeight,
		Width:      DefaultWidth,
		Iterations: DefaultIterations,
		Title:      "Top 20 Nodes by Degree",
		ScriptURL:  VisNetworkURL,
	}
}

// Renderer produces HTML network views.
//
// # Thread Safety
//
// Safe for concurrent use.
type Renderer struct {
	options Options
}

// NewRenderer creates a renderer. Nil options use DefaultOptions and zero
// fields are filled from the defaults.
func NewRenderer(opts *Options) *Renderer {
	def := DefaultOptions()
	if opts == nil {
		return &Renderer{options: def}
	}
	o := *opts
	if o.Height == "" {
		o.Height = def.Height
	}
	if o.Width == "" {
		o.Width = def.Width
	}
	if o.Iterations <= 0 {
		o.Iterations = def.Iterations
	}
	if o.Title == "" {
		o.Title = def.Title
	}
	if o.ScriptURL == "" {
		o.ScriptURL = def.ScriptURL
	}
	return &Renderer{options: o}
}

type visNode struct {
	ID    int     `json:"id"`
	Label string  `json:"label"`
	Title string  `json:"title"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
}

type visEdge struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	Value float64 `json:"value"`
	Title string  `json:"title"`
}

type pageData struct {
	Title     string
	Height    string
	Width     string
	ScriptURL string
	Nodes     []visNode
	Edges     []visEdge
}

// Render lays out sub and returns a complete HTML document.
//
// # Inputs
//
//   - ctx: Context for cancellation.
//   - sub: The subgraph. Every node and edge is drawn, including isolated nodes.
//
// # Outputs
//
//   - []byte: The HTML document.
//   - error: Non-nil if the context is done or the template fails.
func (r *Renderer) Render(ctx context.Context, sub datatypes.Subgraph) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pos := Layout(sub, r.options.Iterations)
	data := pageData{
		Title:     r.options.Title,
		Height:    r.options.Height,
		Width:     r.options.Width,
		ScriptURL: r.options.ScriptURL,
		Nodes:     make([]visNode, 0, len(sub.Nodes)),
		Edges:     make([]visEdge, 0, len(sub.Edges)),
	}

	index := make(map[string]int, len(sub.Nodes))
	for i, name := range sub.Nodes {
		index[name] = i
		p := pos[name]
		data.Nodes = append(data.Nodes, visNode{
			ID:    i,
			Label: name,
			Title: name,
			X:     p.X * coordinateScale,
			Y:     p.Y * coordinateScale,
		})
	}
	for _, e := range sub.Edges {
		from, okF := index[e.Source]
		to, okT := index[e.Target]
		if !okF || !okT {
			continue
		}
		data.Edges = append(data.Edges, visEdge{
			From:  from,
			To:    to,
			Value: e.Weight,
			Title: "score " + strconv.FormatFloat(e.Weight, 'f', 3, 64),
		})
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render network: %w", err)
	}
	return buf.Bytes(), nil
}

var pageTemplate = template.Must(template.New("network").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<script src="{{.ScriptURL}}"></script>
<style>
  body { margin: 0; }
  #network { height: {{.Height}}; width: {{.Width}}; border: 1px solid #ddd; }
</style>
</head>
<body>
<div id="network"></div>
<script type="text/javascript">
  var nodes = new vis.DataSet({{.Nodes}});
  var edges = new vis.DataSet({{.Edges}});
  var options = {
    nodes: { shape: "dot", size: 16 },
    edges: { scaling: { min: 1, max: 6 } },
    physics: {
      solver: "forceAtlas2Based",
      forceAtlas2Based: { gravitationalConstant: -50, centralGravity: 0.01, springLength: 100, springConstant: 0.08 },
      stabilization: { iterations: 150 }
    },
    interaction: { hover: true }
  };
  new vis.Network(document.getElementById("network"), { nodes: nodes, edges: edges }, options);
</script>
</body>
</html>
`))
