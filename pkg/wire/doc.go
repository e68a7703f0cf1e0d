// Package wire defines the periodic wire network: a graph of straight
// segments confined to a unit cell that tiles space. The network owns its
// connectivity and cell metadata; the inflation engine only reads it.
package wire
