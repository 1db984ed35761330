package memory

import "errors"

// ErrInsufficientStock is returned by DecrementStock when the requested
// quantity exceeds what is on hand.
var ErrInsufficientStock = errors.New("insufficient stock")
