package board

import (
	"errors"
	"fmt"
)

// ErrNoChange marks a request that is valid but would not change the board
// (same start and finish index, move within one column).
var ErrNoChange = errors.New("no change")

var ErrMissingTicketID = errors.New("ticket id required")

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func errColumnNotFound(id string) error { return NotFoundError{Kind: "column", ID: id} }

func errTicketNotFound(id string) error { return NotFoundError{Kind: "ticket", ID: id} }

type IndexError struct {
	What  string
	Index int
	Len   int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Len)
}

type DuplicateError struct {
	TicketID string
	ColumnID string
}

func (e DuplicateError) Error() string {
	return fmt.Sprintf("ticket %s already on the board (column %s)", e.TicketID, e.ColumnID)
}

// IsStale reports whether err came from a reference to something that no
// longer exists, the usual result of racing a remote update.
func IsStale(err error) bool {
	var nf NotFoundError
	var ie IndexError
	return errors.As(err, &nf) || errors.As(err, &ie)
}
