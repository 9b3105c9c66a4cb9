package user

import (
	"time"
)

type User struct {
	ID               string     `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash     string     `json:"-"`
	Name             string     `json:"name"`
	Provider         string     `gorm:"not null;default:email" json:"provider"`
	EmailConfirmedAt *time.Time `json:"emailConfirmedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

func (u *User) Confirmed() bool {
	return u.EmailConfirmedAt != nil
}

// Session is what a successful sign-in hands back to the client.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired reports whether the access token is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUpResult carries no session when the email still has to be confirmed.
type SignUpResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session,omitempty"`
}

type EventType string

const (
	EventSignedIn       EventType = "SIGNED_IN"
	EventSignedOut      EventType = "SIGNED_OUT"
	EventTokenRefreshed EventType = "TOKEN_REFRESHED"
	EventUserUpdated    EventType = "USER_UPDATED"
)

// Event is published on the user's channel so every open dashboard of
// that user learns about it.
type Event struct {
	Type   EventType `json:"type"`
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}
