package geometry

import "fmt"

// ErrConfiguration indicates invalid geometry parameters: a non-positive
// radius or height, unusable cap margins, or an empty sensor table.
type ErrConfiguration struct {
	Reason string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("invalid configuration: %s", e.Reason)
}

// ErrShapeMismatch indicates mismatched lengths between parallel sequences,
// such as hit coordinate arrays or a tube-id list against a matrix order.
type ErrShapeMismatch struct {
	What string
	Want int
	Got  int
}

func (e *ErrShapeMismatch) Error() string {
	return fmt.Sprintf("shape mismatch: %s: want %d, got %d", e.What, e.Want, e.Got)
}
