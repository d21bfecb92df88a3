package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
)

// Artist is a passive record mirroring the artists endpoints' JSON. Fields
// absent in a payload keep their zero value.
type Artist struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Types      []string `json:"artistTypes"`
	Picture    string   `json:"picture"`
	Popularity int      `json:"popularity"`
	DateAdded  string   `json:"dateAdded"`
}

var artistImageSizes = []int{160, 320, 480, 750}

// ImageURL returns a URL to the artist picture. Valid dimensions are 160,
// 320, 480, and 750.
func (a *Artist) ImageURL(dimensions int) (string, error) {
	if !slices.Contains(artistImageSizes, dimensions) {
		return "", fmt.Errorf("invalid artist image resolution %dx%d", dimensions, dimensions)
	}

	if a.Picture == "" {
		return "", fmt.Errorf("artist %d has no picture", a.ID)
	}

	return imageURL(a.Picture, dimensions, dimensions), nil
}

func (c *Client) Artist(ctx context.Context, id int64) (*Artist, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "artists/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get artist %d: %w", id, err)
	}

	var artist Artist
	if err := unmarshal(resp.Body, &artist); nil != err {
		return nil, err
	}

	return &artist, nil
}

// AlbumFilter narrows an artist's album listing.
type AlbumFilter string

const (
	AlbumFilterAll           AlbumFilter = ""
	AlbumFilterEPsAndSingles AlbumFilter = "EPSANDSINGLES"
	AlbumFilterCompilations  AlbumFilter = "COMPILATIONS"
)

func (c *Client) ArtistAlbums(ctx context.Context, id int64, filter AlbumFilter) ([]Album, error) {
	params := make(url.Values, 1)
	if filter != AlbumFilterAll {
		params.Set("filter", string(filter))
	}

	albums, err := listAll[Album](ctx, c, c.apiV1BaseURL, fmt.Sprintf("artists/%d/albums", id), params)
	if nil != err {
		return nil, fmt.Errorf("failed to list artist %d albums: %w", id, err)
	}

	return albums, nil
}

func (c *Client) ArtistTopTracks(ctx context.Context, id int64, limit, offset int) ([]Track, error) {
	tracks, err := listSlice[Track](ctx, c, c.apiV1BaseURL, fmt.Sprintf("artists/%d/toptracks", id), nil, limit, offset)
	if nil != err {
		return nil, fmt.Errorf("failed to list artist %d top tracks: %w", id, err)
	}

	return tracks, nil
}

func (c *Client) ArtistVideos(ctx context.Context, id int64, limit, offset int) ([]Video, error) {
	videos, err := listSlice[Video](ctx, c, c.apiV1BaseURL, fmt.Sprintf("artists/%d/videos", id), nil, limit, offset)
	if nil != err {
		return nil, fmt.Errorf("failed to list artist %d videos: %w", id, err)
	}

	return videos, nil
}

type ArtistBio struct {
	Source      string `json:"source"`
	LastUpdated string `json:"lastUpdated"`
	Text        string `json:"text"`
	Summary     string `json:"summary"`
}

func (c *Client) ArtistBio(ctx context.Context, id int64) (*ArtistBio, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, fmt.Sprintf("artists/%d/bio", id), nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get artist %d bio: %w", id, err)
	}

	var bio ArtistBio
	if err := unmarshal(resp.Body, &bio); nil != err {
		return nil, err
	}

	return &bio, nil
}

func (c *Client) SimilarArtists(ctx context.Context, id int64) ([]Artist, error) {
	artists, err := listAll[Artist](ctx, c, c.apiV1BaseURL, fmt.Sprintf("artists/%d/similar", id), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list artists similar to %d: %w", id, err)
	}

	return artists, nil
}

// ArtistRadio is a server-curated mix of tracks similar to what the artist
// makes.
func (c *Client) ArtistRadio(ctx context.Context, id int64) ([]Track, error) {
	tracks, err := listSlice[Track](ctx, c, c.apiV1BaseURL, fmt.Sprintf("artists/%d/radio", id), nil, pageSize, 0)
	if nil != err {
		return nil, fmt.Errorf("failed to get artist %d radio: %w", id, err)
	}

	return tracks, nil
}

// ArtistPage retrieves the artist page as rendered by the web player.
func (c *Client) ArtistPage(ctx context.Context, id int64) (*Page, error) {
	params := make(url.Values, 1)
	params.Set("artistId", strconv.FormatInt(id, 10))

	return c.Page(ctx, "pages/artist", params)
}
