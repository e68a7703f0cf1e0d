package wire

import "github.com/pkg/errors"

var (
	// ErrTopology indicates invalid connectivity: out-of-range endpoints,
	// zero-length or duplicate edges, or connectivity not yet computed.
	ErrTopology = errors.New("wire: invalid topology")
	// ErrGeometry indicates degenerate geometry such as a zero-extent
	// bounding box or a negative thickness.
	ErrGeometry = errors.New("wire: degenerate geometry")
	// ErrParse indicates a malformed .wire source.
	ErrParse = errors.New("wire: malformed wire source")
)
