package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ID tolerates the backend emitting ids as numbers or strings.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*id = ID(n.String())
		return nil
	}
	return fmt.Errorf("unsupported id form %s", data)
}

// AuthPayload is the response of login and credential refresh.
type AuthPayload struct {
	ID        ID       `json:"id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	Roles     []string `json:"roles"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Token     string   `json:"token"`
	// Some backend paths spell the credential accessToken.
	AccessToken string `json:"accessToken"`
}

// Credential returns the bearer token regardless of which field the
// backend used.
func (p AuthPayload) Credential() string {
	if p.Token != "" {
		return p.Token
	}
	return p.AccessToken
}

// Profile is the authoritative user profile.
type Profile struct {
	ID          ID       `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Address     string   `json:"address"`
	PhoneNumber string   `json:"phoneNumber"`
}

// ProfileUpdate carries the editable profile fields; zero-valued
// fields are omitted and left untouched server-side.
type ProfileUpdate struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Address     string `json:"address,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Password    string `json:"password"`
}

// Login exchanges credentials for a bearer token. Rejections (400/401)
// come back as AuthError; the availability gate lives in the session
// manager, not here.
func (c *Client) Login(ctx context.Context, email, password string) (AuthPayload, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{Email: email, Password: password}

	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &out, false); err != nil {
		return AuthPayload{}, asCredentialRejection(err)
	}
	if out.Credential() == "" {
		return AuthPayload{}, &AuthError{StatusCode: http.StatusOK, Message: "login response carried no token"}
	}
	return out, nil
}

// Register creates a new account. Like Login, a 400/401 rejection is
// about the submitted details, never an expired session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, nil, false); err != nil {
		return asCredentialRejection(err)
	}
	return nil
}

// FetchProfile gets the authoritative profile for the current
// credential. Deliberately outside the refresh-and-retry wrapper: the
// session manager's own refresh path depends on it, and a 401 here
// must surface as an expired-credential AuthError for the manager to
// translate.
func (c *Client) FetchProfile(ctx context.Context) (Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, "/api/auth/profile", nil, &out, true); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// UpdateProfile sends partial profile fields and returns the accepted
// server copy.
func (c *Client) UpdateProfile(ctx context.Context, fields ProfileUpdate) (Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", fields, &out, true); err != nil {
		return Profile{}, err
	}
	return out, nil
}

// ChangePassword verifies the current password server-side and sets
// the new one. The current session credential stays valid.
func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}{CurrentPassword: current, NewPassword: next}

	if err := c.do(ctx, http.MethodPost, "/api/auth/change-password", body, nil, true); err != nil {
		return asCredentialRejection(err)
	}
	return nil
}

// RefreshCredentialToken asks the backend for a fresh token for the
// identified account, presenting the stale token for verification.
func (c *Client) RefreshCredentialToken(ctx context.Context, email, staleToken string) (AuthPayload, error) {
	body := struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}{Email: email, Token: staleToken}

	var out AuthPayload
	if err := c.do(ctx, http.MethodPost, "/api/auth/refresh", body, &out, false); err != nil {
		return AuthPayload{}, err
	}
	if out.Credential() == "" {
		return AuthPayload{}, &AuthError{StatusCode: http.StatusOK, Message: "refresh response carried no token"}
	}
	return out, nil
}

// asCredentialRejection folds 400/401 responses on credential
// operations into AuthError (the rejection is about the credentials
// supplied, not an expired session).
func asCredentialRejection(err error) error {
	var ae *AuthError
	if errors.As(err, &ae) {
		return &AuthError{StatusCode: ae.StatusCode, Message: ae.Message}
	}
	var ve *ValidationError
	if errors.As(err, &ve) && ve.StatusCode == http.StatusBadRequest {
		return &AuthError{StatusCode: ve.StatusCode, Message: ve.Message}
	}
	return err
}
