package models

import "time"

// User is a platform account. Profile data lives on Profile, keyed by UserID.
type User struct {
	ID            string    `bson:"id" json:"id"`
	Name          string    `bson:"name" json:"name,omitempty"`
	Email         string    `bson:"email" json:"email"`
	PasswordHash  string    `bson:"passwordHash" json:"-"`
	Password      string    `bson:"-" json:"password,omitempty"`
	Role          Role      `bson:"role" json:"role"`
	AuthProvider  string    `bson:"authProvider,omitempty" json:"authProvider,omitempty"` // "password", "google", "facebook"
	TokenHash     string    `bson:"tokenHash,omitempty" json:"-"`
	Token         string    `bson:"-" json:"token,omitempty"`
	EmailVerified bool      `bson:"emailVerified" json:"emailVerified,omitempty"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt,omitzero"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt,omitzero"`
}

// AuthResponse is returned on successful sign-in or registration.
type AuthResponse struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   Role   `json:"role"`
	Token  string `json:"token"`
}
