// Package io provides JSON and YAML serialization for block trees.
//
// The format mirrors [pseudocode.Node]:
//
//	{
//	  "size": 4,
//	  "nodes": [
//	    {"value": "SE x", "size": 0, "line": 1},
//	    {"value": "ALLORA", "size": 2, "line": 2, "content": [
//	      {"value": "azione", "size": 1, "line": 3}
//	    ]},
//	    {"value": "OR", "size": 1, "synthetic": true},
//	    ...
//	  ]
//	}
//
// A node with a "content" key is a block, even when the array is empty.
// "synthetic" marks nodes the parser inserted. [ReadJSON] checks every size
// against the parser's rules, so a decoded tree lays out exactly like a
// freshly parsed one. [WriteYAML] emits the same structure for reading.
//
// [pseudocode.Node]: github.com/matzehuels/cartastrutturata/pkg/pseudocode.Node
package io
