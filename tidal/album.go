package tidal

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/xeptore/tidewave/cache"
)

// Album is a passive record mirroring the albums endpoints' JSON. When an
// album arrives embedded in a track or video, the backend only fills the id,
// title, cover, and video cover fields.
type Album struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Cover           string   `json:"cover"`
	VideoCover      string   `json:"videoCover"`
	Duration        int      `json:"duration"`
	StreamReady     bool     `json:"streamReady"`
	NumberOfTracks  int      `json:"numberOfTracks"`
	NumberOfVideos  int      `json:"numberOfVideos"`
	NumberOfVolumes int      `json:"numberOfVolumes"`
	ReleaseDate     string   `json:"releaseDate"`
	StreamStartDate string   `json:"streamStartDate"`
	Copyright       string   `json:"copyright"`
	Version         *string  `json:"version"`
	Explicit        bool     `json:"explicit"`
	UPC             string   `json:"upc"`
	Popularity      int      `json:"popularity"`
	Artist          *Artist  `json:"artist"`
	Artists         []Artist `json:"artists"`
}

// LeadArtist resolves the album's main artist. The artist field is sometimes
// not filled by the backend, in which case the first credited artist wins.
func (a *Album) LeadArtist() *Artist {
	if a.Artist != nil {
		return a.Artist
	}

	if len(a.Artists) > 0 {
		return &a.Artists[0]
	}

	return nil
}

var coverImageSizes = []int{80, 160, 320, 640, 1280}

// ImageURL returns a URL to the album cover. Valid dimensions are 80, 160,
// 320, 640, and 1280.
func (a *Album) ImageURL(dimensions int) (string, error) {
	if !slices.Contains(coverImageSizes, dimensions) {
		return "", fmt.Errorf("invalid album cover resolution %dx%d", dimensions, dimensions)
	}

	if a.Cover == "" {
		return "", fmt.Errorf("album %d has no cover", a.ID)
	}

	return imageURL(a.Cover, dimensions, dimensions), nil
}

// VideoCoverURL returns a URL to an mp4 video cover for the album, for the
// albums that have one. Valid dimensions match ImageURL.
func (a *Album) VideoCoverURL(dimensions int) (string, error) {
	if a.VideoCover == "" {
		return "", fmt.Errorf("album %d has no video cover", a.ID)
	}

	if !slices.Contains(coverImageSizes, dimensions) {
		return "", fmt.Errorf("invalid album video cover resolution %dx%d", dimensions, dimensions)
	}

	return fmt.Sprintf(videoURLFormat, pathifyImageID(a.VideoCover), dimensions, dimensions), nil
}

// Album fetches album metadata. Results are cached for a while since album
// records are effectively immutable server-side.
func (c *Client) Album(ctx context.Context, id int64) (*Album, error) {
	key := strconv.FormatInt(id, 10)

	return c.albumsCache.Fetch(key, cache.DefaultAlbumTTL, func() (*Album, error) {
		resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "albums/"+key, nil, nil, nil)
		if nil != err {
			return nil, fmt.Errorf("failed to get album %d: %w", id, err)
		}

		var album Album
		if err := unmarshal(resp.Body, &album); nil != err {
			return nil, err
		}

		return &album, nil
	})
}

func (c *Client) AlbumTracks(ctx context.Context, id int64) ([]Track, error) {
	tracks, err := listAll[Track](ctx, c, c.apiV1BaseURL, fmt.Sprintf("albums/%d/tracks", id), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list album %d tracks: %w", id, err)
	}

	return tracks, nil
}

// AlbumItems lists the album's tracks and videos in release order.
func (c *Client) AlbumItems(ctx context.Context, id int64) ([]Item, error) {
	items, err := listAll[Item](ctx, c, c.apiV1BaseURL, fmt.Sprintf("albums/%d/items", id), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list album %d items: %w", id, err)
	}

	return items, nil
}

// AlbumsByBarcode looks up albums by their UPC barcode (e.g. "196589525444")
// through the openapi v2 catalogue and resolves each hit to a full album.
func (c *Client) AlbumsByBarcode(ctx context.Context, barcode string) ([]Album, error) {
	ids, err := c.openAPILookup(ctx, "albums", "filter[barcodeId]", barcode)
	if nil != err {
		return nil, fmt.Errorf("failed to look up albums by barcode %q: %w", barcode, err)
	}

	albums := make([]Album, 0, len(ids))
	for _, id := range ids {
		album, err := c.Album(ctx, id)
		if nil != err {
			return nil, err
		}

		albums = append(albums, *album)
	}

	return albums, nil
}
