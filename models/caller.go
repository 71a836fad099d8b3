package models

// Caller is the authenticated identity an operation runs on behalf of.
// It is resolved once per request and passed explicitly.
type Caller struct {
	UserID uint
	Email  string
	Role   Role
}

// CallerFromUser builds a caller from a user row
func CallerFromUser(u *User) Caller {
	return Caller{UserID: u.ID, Email: u.Email, Role: u.Role}
}
