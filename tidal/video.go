package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Video is a passive record mirroring the videos endpoints' JSON. Videos
// coming from the pages endpoints don't carry a quality.
type Video struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Duration        int      `json:"duration"`
	ImageID         string   `json:"imageId"`
	Quality         string   `json:"quality"`
	StreamReady     bool     `json:"streamReady"`
	StreamStartDate string   `json:"streamStartDate"`
	ReleaseDate     string   `json:"releaseDate"`
	TrackNumber     int      `json:"trackNumber"`
	VolumeNumber    int      `json:"volumeNumber"`
	Explicit        bool     `json:"explicit"`
	Popularity      int      `json:"popularity"`
	Type            string   `json:"type"`
	DateAdded       string   `json:"dateAdded"`
	Artist          *Artist  `json:"artist"`
	Artists         []Artist `json:"artists"`
	Album           *Album   `json:"album"`
}

var wideImageSizes = [][2]int{{160, 107}, {480, 320}, {750, 500}, {1080, 720}}

// ImageURL returns a URL to the video still. Valid resolutions are 160x107,
// 480x320, 750x500, and 1080x720.
func (v *Video) ImageURL(width, height int) (string, error) {
	if !slices.Contains(wideImageSizes, [2]int{width, height}) {
		return "", fmt.Errorf("invalid video image resolution %dx%d", width, height)
	}

	if v.ImageID == "" {
		return "", fmt.Errorf("video %d has no image", v.ID)
	}

	return imageURL(v.ImageID, width, height), nil
}

func (c *Client) Video(ctx context.Context, id int64) (*Video, error) {
	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, "videos/"+strconv.FormatInt(id, 10), nil, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get video %d: %w", id, err)
	}

	var video Video
	if err := unmarshal(resp.Body, &video); nil != err {
		return nil, err
	}

	return &video, nil
}

// VideoURL resolves a direct stream URL for the video at the configured video
// quality, without going through a manifest.
func (c *Client) VideoURL(ctx context.Context, id int64) (string, error) {
	params := make(url.Values, 3)
	params.Set("urlusagemode", "STREAM")
	params.Set("videoquality", c.conf.VideoQuality)
	params.Set("assetpresentation", "FULL")

	resp, err := c.request(ctx, http.MethodGet, c.apiV1BaseURL, fmt.Sprintf("videos/%d/urlpostpaywall", id), params, nil, nil)
	if nil != err {
		return "", fmt.Errorf("failed to get video %d URL: %w", id, err)
	}

	var body struct {
		URLs []string `json:"urls"`
	}
	if err := unmarshal(resp.Body, &body); nil != err {
		return "", err
	}

	if len(body.URLs) == 0 {
		return "", fmt.Errorf("video %d URL response carries no URLs", id)
	}

	return body.URLs[0], nil
}

// Item is one entry of a mixed tracks-and-videos listing (album items,
// playlist items, mix items). Exactly one of Track and Video is set.
type Item struct {
	Type  string
	Track *Track
	Video *Video
}

func (i *Item) UnmarshalJSON(b []byte) error {
	typ := gjson.GetBytes(b, "type").String()
	raw := b
	if item := gjson.GetBytes(b, "item"); item.Exists() {
		raw = []byte(item.Raw)
	}

	switch typ {
	case "", "track", "Track", "TRACK":
		var t Track
		if err := json.Unmarshal(raw, &t); nil != err {
			return fmt.Errorf("failed to decode track item: %v", err)
		}

		*i = Item{Type: "track", Track: &t, Video: nil}
	default:
		// Anything else (Video, Live, Event) renders as a video in the web
		// player.
		var v Video
		if err := json.Unmarshal(raw, &v); nil != err {
			return fmt.Errorf("failed to decode video item: %v", err)
		}

		*i = Item{Type: "video", Video: &v, Track: nil}
	}

	return nil
}
