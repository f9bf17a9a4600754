package router

import "fmt"

// ErrorKind classifies route-finding failures so callers can translate them
// into user-facing messages without string matching.
type ErrorKind string

const (
	UnsupportedToken ErrorKind = "unsupported_token"
	SameToken        ErrorKind = "same_token"
	InvalidAmount    ErrorKind = "invalid_amount"
	RouteNotFound    ErrorKind = "route_not_found"
	InternalError    ErrorKind = "internal_error"
)

// RoutingError is the structured failure returned by the route finder. It is
// always returned as a value, never raised as a panic across the package
// boundary.
type RoutingError struct {
	Kind    ErrorKind
	Message string
	// Optional hint for the caller, e.g. "try different tokens or a smaller amount".
	Suggestion string
	// Populated for UnsupportedToken so the caller can list valid symbols.
	SupportedTokens []string
}

func (e *RoutingError) Error() string {
	return e.Message
}

func errUnsupportedToken(fromToken, toToken string, supported []string) *RoutingError {
	return &RoutingError{
		Kind:            UnsupportedToken,
		Message:         fmt.Sprintf("unsupported token: %s or %s", fromToken, toToken),
		SupportedTokens: supported,
	}
}

func errSameToken() *RoutingError {
	return &RoutingError{
		Kind:    SameToken,
		Message: "source and target token cannot be the same",
	}
}

func errInvalidAmount() *RoutingError {
	return &RoutingError{
		Kind:    InvalidAmount,
		Message: "amount must be greater than 0",
	}
}

func errRouteNotFound() *RoutingError {
	return &RoutingError{
		Kind:       RouteNotFound,
		Message:    "no route found for this token pair",
		Suggestion: "try different tokens or a smaller amount",
	}
}

func errInternal(cause any) *RoutingError {
	return &RoutingError{
		Kind:       InternalError,
		Message:    fmt.Sprintf("route computation failed: %v", cause),
		Suggestion: "please try again",
	}
}
