package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Aditya2073/agrisample/internal/auth"
	"github.com/Aditya2073/agrisample/internal/identity"
	"github.com/Aditya2073/agrisample/internal/profile"
	"github.com/gofrs/uuid"
)

type signUpResponse struct {
	Session *auth.Session    `json:"session"`
	Profile *profile.Profile `json:"profile"`
}

func (c *Client) SignUp(ctx context.Context, in auth.SignUpInput) (*profile.Profile, error) {
	var resp signUpResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", in, &resp); err != nil {
		return nil, err
	}
	if resp.Session == nil || resp.Profile == nil {
		return nil, fmt.Errorf("client: sign up: incomplete response")
	}
	if err := c.saveSession(ctx, resp.Session); err != nil {
		return nil, fmt.Errorf("client: store session: %w", err)
	}
	c.emit(identity.Event{Kind: identity.EventSignedIn, UserID: resp.Profile.ID})
	return resp.Profile, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*auth.Session, error) {
	var sess auth.Session
	if err := c.do(ctx, http.MethodPost, "/auth/signin", auth.SignInInput{Email: email, Password: password}, &sess); err != nil {
		return nil, err
	}
	if err := c.saveSession(ctx, &sess); err != nil {
		return nil, fmt.Errorf("client: store session: %w", err)
	}
	c.emit(identity.Event{Kind: identity.EventSignedIn, UserID: sess.UserID})
	return &sess, nil
}

// SignOut revokes the session remotely and always forgets it locally. A session the
// server already rejects is not an error.
func (c *Client) SignOut(ctx context.Context) error {
	sess, err := c.session(ctx)
	if err != nil {
		return fmt.Errorf("client: read session: %w", err)
	}
	if sess == nil {
		return nil
	}

	remoteErr := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil)
	if err := c.storage.Delete(ctx, SessionKey); err != nil {
		return fmt.Errorf("client: forget session: %w", err)
	}
	c.emit(identity.Event{Kind: identity.EventSignedOut, UserID: sess.UserID})

	if remoteErr != nil && !isUnauthorized(remoteErr) {
		return remoteErr
	}
	return nil
}

// CurrentSession implements identity.Remote.
func (c *Client) CurrentSession(ctx context.Context) (*identity.SessionInfo, error) {
	sess, err := c.session(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: read session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	var remote auth.Session
	if err := c.do(ctx, http.MethodGet, "/auth/session", nil, &remote); err != nil {
		if isUnauthorized(err) {
			_ = c.storage.Delete(ctx, SessionKey)
			return nil, nil
		}
		return nil, err
	}
	return &identity.SessionInfo{UserID: remote.UserID}, nil
}

// FetchProfile implements identity.Remote.
func (c *Client) FetchProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	var p profile.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/"+url.PathEscape(id.String()), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ identity.Remote = (*Client)(nil)
