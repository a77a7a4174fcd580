package models

// User is a photographer account. Account management itself lives outside
// this service; we only read what moderation needs.
type User struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	License       License `json:"license"`
	EmailVerified bool    `json:"emailVerified"`
	Anonymous     bool    `json:"anonymous"`
}
