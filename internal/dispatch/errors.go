// Package dispatch builds alternate allele routes for structural variants.
package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrDispatch is returned when no route can be built for the variants.
	ErrDispatch = errors.New("dispatch failed")

	// ErrIntrachromosomalBreakend is returned for breakends whose mates lie on
	// the same contig. It wraps ErrDispatch.
	ErrIntrachromosomalBreakend = fmt.Errorf("%w: intrachromosomal breakend", ErrDispatch)
)

func dispatchErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrDispatch}, args...)...)
}
