// Package paper lays a block tree out as a structured-paper diagram.
//
// A structured paper is a nested block chart drawn on a grid. Every nesting
// level owns a lane of [LaneWidth] columns; a block draws a bracket on the
// last column of its lane and places its children in the next lane, one row
// per child slot. Conditions and loop predicates are written as labels
// under the block's action name.
//
// [Layout] draws a single tree; [Compose] draws the complete sheet with the
// title, the flat pseudocode transcription and the diagram below it.
package paper
