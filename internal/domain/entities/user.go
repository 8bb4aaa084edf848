package entities

import "time"

// User is a users-collection document; AccountID links it to the backend
// account that signs in with emailed codes.
type User struct {
	ID        string    `json:"$id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar"`
	AccountID string    `json:"accountId"`
	CreatedAt time.Time `json:"$createdAt"`
	UpdatedAt time.Time `json:"$updatedAt"`
}

// Account is the backend identity behind a session.
type Account struct {
	ID    string
	Email string
	Name  string
}

// Session is an established account session. Secret is what the browser
// presents back in the session cookie.
type Session struct {
	ID        string
	AccountID string
	Secret    string
	Expire    time.Time
}
