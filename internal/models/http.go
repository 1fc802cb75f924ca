// Package models defines the request and response data structures exposed
// by the HTTP and gRPC transports.
package models

import "time"

// ResolveRequest asks to resolve a short code without following it.
type ResolveRequest struct {
	// Code is the short code, compared case-insensitively.
	Code string `json:"code"`
}

// ResolveResponse carries the target of a resolved short code.
type ResolveResponse struct {
	// TargetURL is the destination the short code points to.
	TargetURL string `json:"target_url"`
}

// ErrorResponse is returned by the JSON API for every failed call.
type ErrorResponse struct {
	// Error is a human readable message.
	Error string `json:"error"`

	// Reason is one of "not_found", "expired", "infrastructure" or "bad_request".
	Reason string `json:"reason"`
}

// LinkStats reports the click accounting state of a short link.
type LinkStats struct {
	Code        string     `json:"code"`
	TargetURL   string     `json:"target_url"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	TotalClicks int64      `json:"total_clicks"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
