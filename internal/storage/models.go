package storage

import "time"

// ShortLink is a registry entry mapping a short code to its target URL.
type ShortLink struct {
	ID          string     `json:"id"`
	Code        string     `json:"code"`
	TargetURL   string     `json:"target_url"`
	IsActive    bool       `json:"is_active"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	TotalClicks int64      `json:"total_clicks"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Resolvable reports whether the link may be followed at now.
// A link expiring exactly at now is no longer resolvable.
func (l *ShortLink) Resolvable(now time.Time) bool {
	if !l.IsActive {
		return false
	}
	return l.ExpiresAt == nil || l.ExpiresAt.After(now)
}

// Expired reports whether the link carries an expiry that is not in the future.
func (l *ShortLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && !l.ExpiresAt.After(now)
}

// Clone returns a deep copy, so callers never share pointers with a store.
func (l *ShortLink) Clone() *ShortLink {
	c := *l
	if l.ExpiresAt != nil {
		t := *l.ExpiresAt
		c.ExpiresAt = &t
	}
	if l.LastUsedAt != nil {
		t := *l.LastUsedAt
		c.LastUsedAt = &t
	}
	return &c
}
