package clientdata

import "time"

// TTL constants for cached values.
// These are added to time.Now() when storing to calculate expires_at.
const (
	TTLReport = 24 * time.Hour // 1 day - reports are deterministic per input, TTL bounds growth
)
