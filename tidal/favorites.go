package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func (c *Client) favoritesPath(kind string) string {
	return fmt.Sprintf("users/%d/favorites/%s", c.userID, kind)
}

func (c *Client) addFavorite(ctx context.Context, kind, field, value string) error {
	form := make(url.Values, 1)
	form.Set(field, value)

	if _, err := c.editRequest(ctx, http.MethodPost, c.favoritesPath(kind), nil, form, nil); nil != err {
		return fmt.Errorf("failed to add favorite %s %s: %w", kind, value, err)
	}

	return nil
}

func (c *Client) removeFavorite(ctx context.Context, kind, id string) error {
	path := c.favoritesPath(kind) + "/" + id
	if _, err := c.editRequest(ctx, http.MethodDelete, path, nil, nil, nil); nil != err {
		return fmt.Errorf("failed to remove favorite %s %s: %w", kind, id, err)
	}

	return nil
}

func (c *Client) AddFavoriteArtist(ctx context.Context, id int64) error {
	return c.addFavorite(ctx, "artists", "artistId", strconv.FormatInt(id, 10))
}

func (c *Client) AddFavoriteAlbum(ctx context.Context, id int64) error {
	return c.addFavorite(ctx, "albums", "albumId", strconv.FormatInt(id, 10))
}

func (c *Client) AddFavoriteTrack(ctx context.Context, id int64) error {
	return c.addFavorite(ctx, "tracks", "trackId", strconv.FormatInt(id, 10))
}

func (c *Client) AddFavoriteVideo(ctx context.Context, id int64) error {
	return c.addFavorite(ctx, "videos", "videoIds", strconv.FormatInt(id, 10))
}

func (c *Client) AddFavoritePlaylist(ctx context.Context, id string) error {
	return c.addFavorite(ctx, "playlists", "uuids", id)
}

func (c *Client) RemoveFavoriteArtist(ctx context.Context, id int64) error {
	return c.removeFavorite(ctx, "artists", strconv.FormatInt(id, 10))
}

func (c *Client) RemoveFavoriteAlbum(ctx context.Context, id int64) error {
	return c.removeFavorite(ctx, "albums", strconv.FormatInt(id, 10))
}

func (c *Client) RemoveFavoriteTrack(ctx context.Context, id int64) error {
	return c.removeFavorite(ctx, "tracks", strconv.FormatInt(id, 10))
}

func (c *Client) RemoveFavoriteVideo(ctx context.Context, id int64) error {
	return c.removeFavorite(ctx, "videos", strconv.FormatInt(id, 10))
}

func (c *Client) RemoveFavoritePlaylist(ctx context.Context, id string) error {
	return c.removeFavorite(ctx, "playlists", id)
}

func (c *Client) FavoriteArtists(ctx context.Context) ([]Artist, error) {
	artists, err := listAllDated[Artist](ctx, c, c.apiV1BaseURL, c.favoritesPath("artists"), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list favorite artists: %w", err)
	}

	return artists, nil
}

func (c *Client) FavoriteAlbums(ctx context.Context) ([]Album, error) {
	albums, err := listAllDated[Album](ctx, c, c.apiV1BaseURL, c.favoritesPath("albums"), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list favorite albums: %w", err)
	}

	return albums, nil
}

func (c *Client) FavoriteTracks(ctx context.Context) ([]Track, error) {
	tracks, err := listAllDated[Track](ctx, c, c.apiV1BaseURL, c.favoritesPath("tracks"), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list favorite tracks: %w", err)
	}

	return tracks, nil
}

func (c *Client) FavoriteVideos(ctx context.Context) ([]Video, error) {
	videos, err := listAllDated[Video](ctx, c, c.apiV1BaseURL, c.favoritesPath("videos"), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list favorite videos: %w", err)
	}

	return videos, nil
}

func (c *Client) FavoritePlaylists(ctx context.Context) ([]Playlist, error) {
	playlists, err := listAllDated[Playlist](ctx, c, c.apiV1BaseURL, c.favoritesPath("playlists"), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list favorite playlists: %w", err)
	}

	return playlists, nil
}
