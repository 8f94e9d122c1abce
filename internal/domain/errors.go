package domain

import "errors"

// Sentinel errors used throughout the application.
// The API layer translates these to HTTP status codes via a single
// mapError function.
var (
	ErrItemNotFound  = errors.New("content item not found")
	ErrNoJob         = errors.New("no job available")
	ErrQueueFull     = errors.New("queue is at capacity, try again later")
	ErrInvalidItemID = errors.New("item id must be a positive integer")
)
