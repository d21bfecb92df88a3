package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Track is a passive record mirroring the tracks endpoints' JSON. Tracks
// coming from the pages endpoints might not carry peak, isrc, or copyright.
type Track struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Duration        int      `json:"duration"`
	ReplayGain      float64  `json:"replayGain"`
	Peak            float64  `json:"peak"`
	TrackNumber     int      `json:"trackNumber"`
	VolumeNumber    int      `json:"volumeNumber"`
	Version         *string  `json:"version"`
	Popularity      int      `json:"popularity"`
	Copyright       string   `json:"copyright"`
	ISRC            string   `json:"isrc"`
	Explicit        bool     `json:"explicit"`
	StreamReady     bool     `json:"streamReady"`
	StreamStartDate string   `json:"streamStartDate"`
	DateAdded       string   `json:"dateAdded"`
	AudioQuality    string   `json:"audioQuality"`
	AudioModes      []string `json:"audioModes"`
	Artist          *Artist  `json:"artist"`
	Artists         []Artist `json:"artists"`
	Album           *Album   `json:"album"`
}

// LeadArtist resolves the track's main artist, falling back to the first
// credited artist when the artist field is not filled.
func (t *Track) LeadArtist() *Artist {
	if t.Artist != nil {
		return t.Artist
	}

	if len(t.Artists) > 0 {
		return &t.Artists[0]
	}

	return nil
}

func (c *Client) Track(ctx context.Context, id int64) (*Track, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "tracks/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get track %d: %w", id, err)
	}

	var track Track
	if err := unmarshal(resp.Body, &track); nil != err {
		return nil, err
	}

	return &track, nil
}

type Lyrics struct {
	TrackID          int64  `json:"trackId"`
	Provider         string `json:"lyricsProvider"`
	ProviderTrackID  int64  `json:"providerCommontrackId"`
	ProviderLyricsID int64  `json:"providerLyricsId"`
	Text             string `json:"lyrics"`
	Subtitles        string `json:"subtitles"`
	IsRightToLeft    bool   `json:"isRightToLeft"`
}

// TrackLyrics returns ErrNotFound when the backend has no lyrics for the
// track.
func (c *Client) TrackLyrics(ctx context.Context, id int64) (*Lyrics, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, fmt.Sprintf("tracks/%d/lyrics", id), nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get track %d lyrics: %w", id, err)
	}

	var lyrics Lyrics
	if err := unmarshal(resp.Body, &lyrics); nil != err {
		return nil, err
	}

	return &lyrics, nil
}

// TrackRadio is a server-curated mix of tracks similar to this one.
func (c *Client) TrackRadio(ctx context.Context, id int64) ([]Track, error) {
	tracks, err := listSlice[Track](ctx, c, c.apiV1BaseURL, fmt.Sprintf("tracks/%d/radio", id), nil, pageSize, 0)
	if nil != err {
		return nil, fmt.Errorf("failed to get track %d radio: %w", id, err)
	}

	return tracks, nil
}

// TrackURL resolves a direct stream URL for the track at the configured audio
// quality, without going through a manifest.
func (c *Client) TrackURL(ctx context.Context, id int64) (string, error) {
	params := make(url.Values, 3)
	params.Set("urlusagemode", "STREAM")
	params.Set("audioquality", c.conf.Quality)
	params.Set("assetpresentation", "FULL")

	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, fmt.Sprintf("tracks/%d/urlpostpaywall", id), params, nil, nil)
	if nil != err {
		return "", fmt.Errorf("failed to get track %d URL: %w", id, err)
	}

	var body struct {
		URLs []string `json:"urls"`
	}
	if err := unmarshal(resp.Body, &body); nil != err {
		return "", err
	}

	if len(body.URLs) == 0 {
		return "", fmt.Errorf("track %d URL response carries no URLs", id)
	}

	return body.URLs[0], nil
}

// TracksByISRC looks up tracks by ISRC (e.g. "USSM12209515") through the
// openapi v2 catalogue and resolves each hit to a full track.
func (c *Client) TracksByISRC(ctx context.Context, isrc string) ([]Track, error) {
	ids, err := c.openAPILookup(ctx, "tracks", "filter[isrc]", isrc)
	if nil != err {
		return nil, fmt.Errorf("failed to look up tracks by ISRC %q: %w", isrc, err)
	}

	tracks := make([]Track, 0, len(ids))
	for _, id := range ids {
		track, err := c.Track(ctx, id)
		if nil != err {
			return nil, err
		}

		tracks = append(tracks, *track)
	}

	return tracks, nil
}

// openAPILookup runs a filtered openapi v2 catalogue query and returns the
// matched resource ids. The v2 API speaks JSON:API, so ids arrive as strings.
func (c *Client) openAPILookup(ctx context.Context, resource, filter, value string) ([]int64, error) {
	params := make(url.Values, 1)
	params.Set(filter, value)

	resp, err := c.request(ctx, http.MethodGet, c.openAPIBaseURL, resource, params, nil, nil)
	if nil != err {
		return nil, err
	}

	var body struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := unmarshal(resp.Body, &body); nil != err {
		return nil, err
	}

	ids := make([]int64, 0, len(body.Data))
	for _, d := range body.Data {
		id, err := strconv.ParseInt(d.ID, 10, 64)
		if nil != err {
			return nil, fmt.Errorf("unexpected non-numeric %s id %q: %v", resource, d.ID, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}
