// Package credentialv1 defines the credkeeper.v1.CredentialService gRPC
// contract: request and response messages, the service descriptor and a
// client stub. Messages travel with the JSON codec registered by this
// package.
package credentialv1

import "time"

type VerifyRequest struct {
	// CredentialType is one of "password", "api_token", "verify_token".
	// Empty means "password".
	CredentialType string `json:"credential_type,omitempty"`
	NameOrEmail    string `json:"name_or_email"`
	Secret         string `json:"secret"`
}

type User struct {
	ID          string     `json:"id"`
	LoginName   string     `json:"login_name"`
	Email       string     `json:"email"`
	Active      bool       `json:"active"`
	APIToken    string     `json:"api_token,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type VerifyResponse struct {
	User        *User  `json:"user"`
	AccessToken string `json:"access_token"`
}

type ChangePasswordRequest struct {
	UserID string `json:"user_id"`
	// OldPassword is omitted only when the user has no password yet.
	OldPassword *string `json:"old_password,omitempty"`
	NewPassword string  `json:"new_password"`
}

type ChangePasswordResponse struct{}

type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
