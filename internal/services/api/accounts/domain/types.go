// Package domain holds user accounts, their device token and alert inbox
package domain

import (
	"context"
	"time"

	"kydu/internal/core/notify"
)

// User is the public profile; the password hash never leaves the repo layer
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"name"`
	Email       string    `json:"email"`
	PushToken   string    `json:"push_token,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Credentials is what login checks against
type Credentials struct {
	User
	PasswordHash string
}

// NewUser is a validated signup ready to insert
type NewUser struct {
	DisplayName  string
	Email        string
	PasswordHash string
	PushToken    string
}

// Alert is one journaled notification
type Alert struct {
	ID         string      `json:"id"`
	Kind       notify.Kind `json:"type"`
	GigID      string      `json:"gig_id,omitempty"`
	FromUserID string      `json:"from_user_id,omitempty"`
	Title      string      `json:"title"`
	Body       string      `json:"body"`
	CreatedAt  time.Time   `json:"created_at"`
}

// SignupInput is the signup body
type SignupInput struct {
	Name      string `json:"name" validate:"notblank,max=80"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	PushToken string `json:"push_token" validate:"max=4096"`
}

// LoginInput is the login body
type LoginInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	PushToken string `json:"push_token" validate:"max=4096"`
}

// LoginOutput carries the bearer token
type LoginOutput struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// PushTokenInput replaces or clears the device token
type PushTokenInput struct {
	PushToken string `json:"push_token" validate:"max=4096"`
}

// Repo stores users and their alerts
type Repo interface {
	Create(ctx context.Context, in NewUser) (User, error)
	ByEmail(ctx context.Context, email string) (Credentials, error)
	ByID(ctx context.Context, id string) (User, error)
	SetPushToken(ctx context.Context, id, token string) error
	PushToken(ctx context.Context, id string) (string, error)
	AddAlert(ctx context.Context, userID string, p notify.Payload) error
	Alerts(ctx context.Context, userID string, limit int) ([]Alert, error)
}

// Issuer signs login tokens
type Issuer interface {
	Issue(userID string) (string, time.Time, error)
}
