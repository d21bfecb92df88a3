package tidal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/xeptore/tidewave/cache"
)

type Genre struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	HasPlaylists bool   `json:"hasPlaylists"`
	HasArtists   bool   `json:"hasArtists"`
	HasAlbums    bool   `json:"hasAlbums"`
	HasTracks    bool   `json:"hasTracks"`
	HasVideos    bool   `json:"hasVideos"`
	Image        string `json:"image"`
}

func (g Genre) ImageURL() string {
	return imageURL(g.Image, 460, 306)
}

// Genres lists the global genre taxonomy. The list changes rarely, so it is
// cached for a day.
func (c *Client) Genres(ctx context.Context) ([]Genre, error) {
	return c.genresCache.Fetch("genres", cache.DefaultGenresTTL, func() ([]Genre, error) {
		resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "genres", nil, nil, nil)
		if nil != err {
			return nil, fmt.Errorf("failed to list genres: %w", err)
		}

		var genres []Genre
		if err := unmarshal(resp.Body, &genres); nil != err {
			return nil, err
		}

		return genres, nil
	})
}

func (c *Client) GenreTracks(ctx context.Context, g Genre) ([]Track, error) {
	if !g.HasTracks {
		return nil, fmt.Errorf("genre %s has no tracks: %w", g.Path, ErrNotFound)
	}

	tracks, err := listAll[Track](ctx, c, c.apiV1BaseURL, fmt.Sprintf("genres/%s/tracks", g.Path), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list genre %s tracks: %w", g.Path, err)
	}

	return tracks, nil
}

func (c *Client) GenreAlbums(ctx context.Context, g Genre) ([]Album, error) {
	if !g.HasAlbums {
		return nil, fmt.Errorf("genre %s has no albums: %w", g.Path, ErrNotFound)
	}

	albums, err := listAll[Album](ctx, c, c.apiV1BaseURL, fmt.Sprintf("genres/%s/albums", g.Path), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list genre %s albums: %w", g.Path, err)
	}

	return albums, nil
}

func (c *Client) GenrePlaylists(ctx context.Context, g Genre) ([]Playlist, error) {
	if !g.HasPlaylists {
		return nil, fmt.Errorf("genre %s has no playlists: %w", g.Path, ErrNotFound)
	}

	playlists, err := listAll[Playlist](ctx, c, c.apiV1BaseURL, fmt.Sprintf("genres/%s/playlists", g.Path), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list genre %s playlists: %w", g.Path, err)
	}

	return playlists, nil
}

func (c *Client) GenreVideos(ctx context.Context, g Genre) ([]Video, error) {
	if !g.HasVideos {
		return nil, fmt.Errorf("genre %s has no videos: %w", g.Path, ErrNotFound)
	}

	videos, err := listAll[Video](ctx, c, c.apiV1BaseURL, fmt.Sprintf("genres/%s/videos", g.Path), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list genre %s videos: %w", g.Path, err)
	}

	return videos, nil
}
