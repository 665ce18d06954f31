package domain

// User is a registered account. Users are created once and never mutated.
type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	HashedPassword string `json:"-"`
}
