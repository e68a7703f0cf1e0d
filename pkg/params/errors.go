package params

import "github.com/pkg/errors"

var (
	// ErrParse indicates a malformed orbit or modifier document or formula.
	ErrParse = errors.New("params: parse error")
	// ErrValidation indicates a document that parses but does not fit the
	// network, or variables a formula cannot be evaluated with.
	ErrValidation = errors.New("params: validation error")
)
