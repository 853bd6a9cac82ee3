package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	auth "github.com/supabase-community/auth-go"

	"roweditor/pkg/sheets"
)

// Authenticator resolves the caller behind an Authorization header.
type Authenticator interface {
	Authenticate(ctx context.Context, authorization string) (Identity, error)
}

// SupabaseAuthenticator verifies access tokens against a Supabase auth server.
type SupabaseAuthenticator struct {
	BaseURL    string
	AnonKey    string
	HTTPClient *http.Client
}

func (a *SupabaseAuthenticator) client(token string) auth.Client {
	c := auth.New("", a.AnonKey).
		WithCustomAuthURL(strings.TrimRight(a.BaseURL, "/") + "/auth/v1").
		WithToken(token)
	if a.HTTPClient != nil {
		c = c.WithClient(*a.HTTPClient)
	}
	return c
}

func (a *SupabaseAuthenticator) Authenticate(ctx context.Context, authorization string) (Identity, error) {
	token := strings.TrimSpace(authorization)
	if len(token) >= 6 && strings.EqualFold(token[:6], "bearer") {
		token = strings.TrimSpace(token[6:])
	}
	if token == "" {
		return Identity{}, sheets.NewError(sheets.KindAuth, "Unauthorized", nil)
	}
	if err := ctx.Err(); err != nil {
		return Identity{}, sheets.NewError(sheets.KindAuth, "Unauthorized", err)
	}

	user, err := a.client(token).GetUser()
	if err != nil {
		return Identity{}, sheets.NewError(sheets.KindAuth, "Unauthorized", err)
	}
	if strings.TrimSpace(user.Email) == "" {
		return Identity{}, sheets.NewError(sheets.KindAuth, "Unauthorized",
			fmt.Errorf("user %s has no email", user.ID))
	}
	return Identity{ID: user.ID.String(), Email: user.Email}, nil
}
