package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"github.com/tidwall/gjson"
)

// SearchType selects which models a search should cover.
type SearchType string

const (
	SearchTypeArtists   SearchType = "ARTISTS"
	SearchTypeAlbums    SearchType = "ALBUMS"
	SearchTypeTracks    SearchType = "TRACKS"
	SearchTypeVideos    SearchType = "VIDEOS"
	SearchTypePlaylists SearchType = "PLAYLISTS"
)

// AllSearchTypes is the default search coverage.
var AllSearchTypes = []SearchType{
	SearchTypeArtists,
	SearchTypeAlbums,
	SearchTypeTracks,
	SearchTypeVideos,
	SearchTypePlaylists,
}

// TopHit is the most relevant search result across the requested types.
// Exactly one of the entity fields is set, matching Type.
type TopHit struct {
	Type     SearchType
	Artist   *Artist
	Album    *Album
	Track    *Track
	Video    *Video
	Playlist *Playlist
}

type SearchResults struct {
	Artists   []Artist
	Albums    []Album
	Tracks    []Track
	Videos    []Video
	Playlists []Playlist
	TopHit    *TopHit
}

// Search queries the catalogue. The backend serves at most 300 results per
// type regardless of offset. A nil or empty types slice searches everything.
func (c *Client) Search(
	ctx context.Context,
	query string,
	types []SearchType,
	limit int,
	offset int,
) (*SearchResults, error) {
	if len(types) == 0 {
		types = AllSearchTypes
	}

	params := make(url.Values, 4)
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	params.Set("types", strings.Join(lo.Map(types, func(t SearchType, _ int) string {
		return string(t)
	}), ","))

	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "search", params, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to search for %q: %w", query, err)
	}

	var body struct {
		Artists   page[Artist]   `json:"artists"`
		Albums    page[Album]    `json:"albums"`
		Tracks    page[Track]    `json:"tracks"`
		Videos    page[Video]    `json:"videos"`
		Playlists page[Playlist] `json:"playlists"`
	}
	if err := unmarshal(resp.Body, &body); nil != err {
		return nil, err
	}

	topHit, err := parseTopHit(resp.Body)
	if nil != err {
		return nil, err
	}

	return &SearchResults{
		Artists:   body.Artists.Items,
		Albums:    body.Albums.Items,
		Tracks:    body.Tracks.Items,
		Videos:    body.Videos.Items,
		Playlists: body.Playlists.Items,
		TopHit:    topHit,
	}, nil
}

func parseTopHit(b []byte) (*TopHit, error) {
	top := gjson.GetBytes(b, "topHit")
	if !top.Exists() || top.Type == gjson.Null {
		return nil, nil //nolint:nilnil
	}

	value := []byte(top.Get("value").Raw)
	hit := &TopHit{} //nolint:exhaustruct

	switch typ := SearchType(top.Get("type").String()); typ {
	case SearchTypeArtists:
		hit.Type = typ
		hit.Artist = &Artist{} //nolint:exhaustruct
		if err := json.Unmarshal(value, hit.Artist); nil != err {
			return nil, fmt.Errorf("failed to decode top hit artist: %v", err)
		}
	case SearchTypeAlbums:
		hit.Type = typ
		hit.Album = &Album{} //nolint:exhaustruct
		if err := json.Unmarshal(value, hit.Album); nil != err {
			return nil, fmt.Errorf("failed to decode top hit album: %v", err)
		}
	case SearchTypeTracks:
		hit.Type = typ
		hit.Track = &Track{} //nolint:exhaustruct
		if err := json.Unmarshal(value, hit.Track); nil != err {
			return nil, fmt.Errorf("failed to decode top hit track: %v", err)
		}
	case SearchTypeVideos:
		hit.Type = typ
		hit.Video = &Video{} //nolint:exhaustruct
		if err := json.Unmarshal(value, hit.Video); nil != err {
			return nil, fmt.Errorf("failed to decode top hit video: %v", err)
		}
	case SearchTypePlaylists:
		hit.Type = typ
		hit.Playlist = &Playlist{} //nolint:exhaustruct
		if err := json.Unmarshal(value, hit.Playlist); nil != err {
			return nil, fmt.Errorf("failed to decode top hit playlist: %v", err)
		}
	default:
		return nil, fmt.Errorf("unexpected top hit type: %s", typ)
	}

	return hit, nil
}
