package tidal

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// User carries whatever profile fields the backend sent. ID is the only field
// guaranteed to be set: playlist creators come with id and possibly a name,
// fetched users add the name and picture fields, and the logged-in user gets
// the account fields on top.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Picture      string `json:"picture"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Created      string `json:"created"`
	Newsletter   bool   `json:"newsletter"`
	AcceptedEULA bool   `json:"acceptedEULA"`
	Gender       string `json:"gender"`
	DateOfBirth  string `json:"dateOfBirth"`
}

// DisplayName picks the best available human-readable name. Playlists curated
// by the backend itself have creator id 0.
func (u *User) DisplayName() string {
	switch {
	case u.ID == 0:
		return "TIDAL"
	case u.Name != "":
		return u.Name
	case u.FirstName != "" || u.LastName != "":
		return strings.TrimSpace(u.FirstName + " " + u.LastName)
	case u.Username != "":
		return u.Username
	default:
		return "user"
	}
}

func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "users/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	var user User
	if err := unmarshal(resp.Body, &user); nil != err {
		return nil, err
	}

	return &user, nil
}

// CurrentUser fetches the logged-in user's profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	if c.userID == 0 {
		if err := c.ConnectSession(ctx); nil != err {
			return nil, err
		}
	}

	return c.User(ctx, c.userID)
}

// UserPlaylists lists the playlists created by the logged-in user.
func (c *Client) UserPlaylists(ctx context.Context) ([]Playlist, error) {
	path := fmt.Sprintf("users/%d/playlists", c.userID)
	playlists, err := listAll[Playlist](ctx, c, c.apiV1BaseURL, path, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list user playlists: %w", err)
	}

	return playlists, nil
}
