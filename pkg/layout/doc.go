// Package layout computes 2D positions for knowledge-graph snapshots with a
// force-directed simulation.
//
// An [Engine] is constructed from a graph snapshot and advanced one discrete
// tick at a time by an external scheduler (typically a render loop). Each
// tick applies four forces - link springs, many-body repulsion, centering,
// and collision resolution - scaled by a cooling factor (alpha) that decays
// geometrically until the simulation settles. User interaction reheats the
// simulation without resetting positions.
//
// The engine is the sole owner of all per-node layout state. Readers see
// positions only through the map returned by Step, and interaction arrives
// only through Pin, Unpin, Reheat, and Select. The engine is not safe for
// concurrent use: ticks and interaction calls must come from one logical
// thread of control, which is how a render loop naturally behaves.
//
// Pan and zoom live in a separate affine [Transform] applied at render time;
// they never touch simulated coordinates.
package layout
