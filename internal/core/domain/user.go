package domain

import "time"

// DefaultUserName is assigned when registration omits a name.
const DefaultUserName = "new user"

// User models a registered account. PasswordHash never leaves the process.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the outward view of a User.
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToPublicUser projects out the credential representation. Nil in, nil out.
func ToPublicUser(u *User) *PublicUser {
	if u == nil {
		return nil
	}
	return &PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// Identity is the subject resolved from a bearer token.
type Identity struct {
	UserID string
}

// Authenticated reports whether the identity names a subject.
func (i Identity) Authenticated() bool { return i.UserID != "" }
