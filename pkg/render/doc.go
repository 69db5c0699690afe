// Package render turns settled layouts into output artifacts.
//
// Renderers consume the read contract of the layout engine - a snapshot
// plus a position map - and never touch simulation state. Three sinks are
// provided: a JSON document for programmatic consumers, a self-contained
// SVG for direct viewing, and Graphviz DOT (with optional SVG/PNG
// rasterization through the graphviz library) for interop with graph
// tooling.
package render
