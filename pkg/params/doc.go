// Package params maps symmetry orbits of a wire network to thickness and
// offset fields.
//
// An orbit document groups vertex and edge indices into equivalence classes:
//
//	vertex_orbits: [[0, 1], [2]]
//	edge_orbits:   [[0, 1, 2]]
//
// A modifier document assigns values to orbits:
//
//	thickness:
//	  type: edge_orbit
//	  rules:
//	    - orbits: [0]
//	      op: add
//	      value: "0.1 * index"
//	vertex_offset:
//	  type: vertex_orbit
//	  rules:
//	    - orbits: [1]
//	      value: [0.05, 0, 0]
//
// Values are numbers or formula strings. Infix formulas support + - * / ^,
// parentheses and the functions sin cos tan sqrt abs min max pow. A formula
// starting with "(" is a Lisp expression run in a zygomys sandbox. Both see
// the variables base, index and orbit plus any caller supplied variables.
//
// JSON documents are accepted as well since they are valid YAML.
package params
