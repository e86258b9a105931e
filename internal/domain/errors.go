package domain

import (
	"errors"
	"fmt"
)

// ErrRouteNotFound is matched by every RouteNotFoundError.
var ErrRouteNotFound = errors.New("no route found")

// NotFoundError reports a place query with no geocoding candidates.
type NotFoundError struct {
	Query string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("place %q not found", e.Query)
}

// RouteNotFoundError reports that the routing service returned zero routes.
type RouteNotFoundError struct {
	Provider string
}

func (e *RouteNotFoundError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, ErrRouteNotFound)
}

func (e *RouteNotFoundError) Is(target error) bool { return target == ErrRouteNotFound }

// NetworkError wraps transport failures, unexpected statuses and malformed replies.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError reports a truncated or malformed encoded polyline.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode polyline at offset %d: %s", e.Offset, e.Reason)
}
