package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Playlist is a passive record mirroring the playlists endpoints' JSON. The
// ETag captured when the playlist was fetched guards edit operations against
// concurrent modification.
type Playlist struct {
	UUID            string   `json:"uuid"`
	Title           string   `json:"title"`
	NumberOfTracks  int      `json:"numberOfTracks"`
	NumberOfVideos  int      `json:"numberOfVideos"`
	Description     string   `json:"description"`
	Duration        int      `json:"duration"`
	LastUpdated     string   `json:"lastUpdated"`
	Created         string   `json:"created"`
	Type            string   `json:"type"`
	PublicPlaylist  bool     `json:"publicPlaylist"`
	Popularity      int      `json:"popularity"`
	Image           string   `json:"image"`
	SquareImage     string   `json:"squareImage"`
	PromotedArtists []Artist `json:"promotedArtists"`
	Creator         *User    `json:"creator"`

	etag string
}

// ETag returns the entity tag captured when the playlist was last fetched.
func (p *Playlist) ETag() string {
	return p.etag
}

var playlistImageSizes = []int{160, 320, 480, 640, 750, 1080}

// ImageURL returns a URL to the square playlist picture. Valid dimensions are
// 160, 320, 480, 640, 750, and 1080.
func (p *Playlist) ImageURL(dimensions int) (string, error) {
	if !slices.Contains(playlistImageSizes, dimensions) {
		return "", fmt.Errorf("invalid playlist image resolution %dx%d", dimensions, dimensions)
	}

	if p.SquareImage == "" {
		return "", fmt.Errorf("playlist %s has no square image", p.UUID)
	}

	return imageURL(p.SquareImage, dimensions, dimensions), nil
}

// WideImageURL returns a URL to the wide playlist picture. Valid resolutions
// are 160x107, 480x320, 750x500, and 1080x720.
func (p *Playlist) WideImageURL(width, height int) (string, error) {
	if !slices.Contains(wideImageSizes, [2]int{width, height}) {
		return "", fmt.Errorf("invalid playlist wide image resolution %dx%d", width, height)
	}

	if p.Image == "" {
		return "", fmt.Errorf("playlist %s has no wide image", p.UUID)
	}

	return imageURL(p.Image, width, height), nil
}

func (c *Client) Playlist(ctx context.Context, id string) (*Playlist, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "playlists/"+id, nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}

	var playlist Playlist
	if err := unmarshal(resp.Body, &playlist); nil != err {
		return nil, err
	}

	playlist.etag = resp.Header.Get("ETag")

	return &playlist, nil
}

func (c *Client) PlaylistTracks(ctx context.Context, id string) ([]Track, error) {
	tracks, err := listAll[Track](ctx, c, c.apiV1BaseURL, fmt.Sprintf("playlists/%s/tracks", id), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list playlist %s tracks: %w", id, err)
	}

	return tracks, nil
}

// PlaylistItems lists a slice of the playlist's tracks and videos.
func (c *Client) PlaylistItems(ctx context.Context, id string, limit, offset int) ([]Item, error) {
	items, err := listSlice[Item](ctx, c, c.apiV1BaseURL, fmt.Sprintf("playlists/%s/items", id), nil, limit, offset)
	if nil != err {
		return nil, fmt.Errorf("failed to list playlist %s items: %w", id, err)
	}

	return items, nil
}

// CreatePlaylist creates a playlist owned by the logged-in user.
func (c *Client) CreatePlaylist(ctx context.Context, title, description string) (*Playlist, error) {
	form := make(url.Values, 2)
	form.Set("title", title)
	form.Set("description", description)

	path := fmt.Sprintf("users/%d/playlists", c.userID)
	resp, err := c.editRequest(ctx, http.MethodPost, path, nil, form, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	var playlist Playlist
	if err := unmarshal(resp.Body, &playlist); nil != err {
		return nil, err
	}

	playlist.etag = resp.Header.Get("ETag")

	return &playlist, nil
}

// EditPlaylist renames a user playlist. Empty title or description keep the
// current value.
func (c *Client) EditPlaylist(ctx context.Context, p *Playlist, title, description string) error {
	if title == "" {
		title = p.Title
	}
	if description == "" {
		description = p.Description
	}

	form := make(url.Values, 2)
	form.Set("title", title)
	form.Set("description", description)

	if _, err := c.editRequest(ctx, http.MethodPost, "playlists/"+p.UUID, nil, form, nil); nil != err {
		return fmt.Errorf("failed to edit playlist %s: %w", p.UUID, err)
	}

	p.Title = title
	p.Description = description

	return nil
}

func (c *Client) DeletePlaylist(ctx context.Context, id string) error {
	if _, err := c.editRequest(ctx, http.MethodDelete, "playlists/"+id, nil, nil, nil); nil != err {
		return fmt.Errorf("failed to delete playlist %s: %w", id, err)
	}

	return nil
}

// AddPlaylistItems appends tracks or videos to a user playlist, skipping
// duplicates. The playlist's ETag is sent as If-None-Match and refreshed from
// the server afterwards.
func (c *Client) AddPlaylistItems(ctx context.Context, p *Playlist, mediaIDs []int64) error {
	form := make(url.Values, 2)
	form.Set("onDupes", "SKIP")
	form.Set("trackIds", strings.Join(lo.Map(mediaIDs, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	}), ","))

	params := make(url.Values, 1)
	params.Set("limit", strconv.Itoa(pageSize))

	headers := make(http.Header, 1)
	headers.Set("If-None-Match", p.etag)

	path := fmt.Sprintf("playlists/%s/items", p.UUID)
	if _, err := c.editRequest(ctx, http.MethodPost, path, params, form, headers); nil != err {
		return fmt.Errorf("failed to add items to playlist %s: %w", p.UUID, err)
	}

	return c.refreshPlaylist(ctx, p)
}

// RemovePlaylistItemByIndex removes the item at the given zero-based index.
func (c *Client) RemovePlaylistItemByIndex(ctx context.Context, p *Playlist, index int) error {
	headers := make(http.Header, 1)
	headers.Set("If-None-Match", p.etag)

	path := fmt.Sprintf("playlists/%s/items/%d", p.UUID, index)
	if _, err := c.editRequest(ctx, http.MethodDelete, path, nil, nil, headers); nil != err {
		return fmt.Errorf("failed to remove item %d from playlist %s: %w", index, p.UUID, err)
	}

	return c.refreshPlaylist(ctx, p)
}

// RemovePlaylistItemByID scans the playlist for the first item with the given
// media id and removes it.
func (c *Client) RemovePlaylistItemByID(ctx context.Context, p *Playlist, mediaID int64) error {
	index, err := c.playlistItemIndex(ctx, p, mediaID)
	if nil != err {
		return err
	}

	return c.RemovePlaylistItemByIndex(ctx, p, index)
}

func (c *Client) playlistItemIndex(ctx context.Context, p *Playlist, mediaID int64) (int, error) {
	for offset := 0; offset < p.NumberOfTracks+p.NumberOfVideos; offset += pageSize {
		items, err := c.PlaylistItems(ctx, p.UUID, pageSize, offset)
		if nil != err {
			return 0, err
		}

		for i, item := range items {
			switch {
			case item.Track != nil && item.Track.ID == mediaID:
				return offset + i, nil
			case item.Video != nil && item.Video.ID == mediaID:
				return offset + i, nil
			}
		}

		if len(items) < pageSize {
			break
		}
	}

	return 0, fmt.Errorf("media %d is not in playlist %s: %w", mediaID, p.UUID, ErrNotFound)
}

// refreshPlaylist re-fetches the playlist in place so its counters and ETag
// match the server after an edit.
func (c *Client) refreshPlaylist(ctx context.Context, p *Playlist) error {
	fresh, err := c.Playlist(ctx, p.UUID)
	if nil != err {
		return fmt.Errorf("failed to refresh playlist %s after edit: %w", p.UUID, err)
	}

	*p = *fresh

	return nil
}

func (c *Client) editRequest(
	ctx context.Context,
	method string,
	path string,
	params url.Values,
	form url.Values,
	headers http.Header,
) (*response, error) {
	timeout := time.Duration(c.conf.Timeouts.EditRequest) * time.Second

	return c.requestTimeout(ctx, timeout, method, c.apiV1BaseURL, path, params, form, headers)
}
