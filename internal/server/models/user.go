// Package models defines server-side data models persisted in the database
// and returned by the auth services.
package models

// User is a row of the users table. Password holds the hex digest, never
// the plaintext, and is never serialized.
type User struct {
	ID       int64  `json:"id"`
	Login    string `json:"login"`
	Password string `json:"-"`
	Title    string `json:"title"`
}
