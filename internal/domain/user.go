package domain

import "time"

// DefaultUserName is given to profiles created on first sign-in.
const DefaultUserName = "User"

// User is the local profile of a verified identity. ID is the identity
// provider's subject.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
