package vote

import "fmt"

// InvalidRadiusRangeError is returned before any voting work when the radius
// sweep is empty or starts below one pixel.
type InvalidRadiusRangeError struct {
	Min int
	Max int
}

func (e *InvalidRadiusRangeError) Error() string {
	return fmt.Sprintf("invalid radius range [%d, %d]: need 1 <= min <= max", e.Min, e.Max)
}

// EmptyAccumulatorError signals that no edge pixel cast a valid vote: the
// edge mask was empty, every gradient was below epsilon, or every candidate
// center fell outside the grid.
type EmptyAccumulatorError struct{}

func (EmptyAccumulatorError) Error() string {
	return "accumulator is empty: no votes were cast"
}

// ErrEmptyAccumulator is the value returned by the peak locators.
var ErrEmptyAccumulator error = EmptyAccumulatorError{}
