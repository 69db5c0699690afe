// Package graph builds knowledge-graph snapshots from environmental
// measurement records.
//
// The builder is a pure function from an ordered record sequence to an
// immutable snapshot of nodes and weighted edges. Regions and observed
// year-months become context nodes; measured parameters and biological
// indicators become attribute nodes drawn from fixed catalogs. Edges carry
// weights derived from per-region means, normalized into a common band so
// the drawing layer can map them directly to stroke thickness.
//
// Snapshots are plain values designed for serialization: the same structure
// round-trips through JSON for export and through BSON for persistence.
// Layout is a separate concern - see package layout for the force-directed
// engine that consumes snapshots.
package graph
