package tidal

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/xeptore/tidewave/mpd"
)

// ErrEncryptedManifest is returned for manifests whose payload the backend
// protects with an encryption scheme this client does not implement.
var ErrEncryptedManifest = errors.New("manifest is encrypted")

// PlaybackInfo is the raw playbackinfo response. Manifest is base64; use
// Stream to get it decoded.
type PlaybackInfo struct {
	TrackID            int64   `json:"trackId"`
	VideoID            int64   `json:"videoId"`
	AssetPresentation  string  `json:"assetPresentation"`
	AudioQuality       string  `json:"audioQuality"`
	AudioMode          string  `json:"audioMode"`
	VideoQuality       string  `json:"videoQuality"`
	ManifestMimeType   string  `json:"manifestMimeType"`
	ManifestHash       string  `json:"manifestHash"`
	Manifest           string  `json:"manifest"`
	AlbumReplayGain    float64 `json:"albumReplayGain"`
	AlbumPeakAmplitude float64 `json:"albumPeakAmplitude"`
	TrackReplayGain    float64 `json:"trackReplayGain"`
	TrackPeakAmplitude float64 `json:"trackPeakAmplitude"`
}

// Stream is a decoded, playable manifest. For DASH manifests DASH is set and
// URLs is the expanded segment list; for the other manifest kinds URLs holds
// the direct or variant stream URLs.
type Stream struct {
	MimeType string
	Codec    string
	Ext      string
	URLs     []string
	DASH     *mpd.StreamInfo
}

// TrackStream resolves the track's manifest at the configured audio quality.
func (c *Client) TrackStream(ctx context.Context, id int64) (*Stream, error) {
	params := make(url.Values, 3)
	params.Set("audioquality", c.conf.Quality)
	params.Set("playbackmode", "STREAM")
	params.Set("assetpresentation", "FULL")

	info, err := c.playbackInfo(ctx, fmt.Sprintf("tracks/%d/playbackinfo", id), params)
	if nil != err {
		return nil, fmt.Errorf("failed to get track %d playback info: %w", id, err)
	}

	return decodeManifest(info, false)
}

// VideoStream resolves the video's manifest at the configured video quality.
func (c *Client) VideoStream(ctx context.Context, id int64) (*Stream, error) {
	params := make(url.Values, 3)
	params.Set("videoquality", c.conf.VideoQuality)
	params.Set("playbackmode", "STREAM")
	params.Set("assetpresentation", "FULL")

	info, err := c.playbackInfo(ctx, fmt.Sprintf("videos/%d/playbackinfo", id), params)
	if nil != err {
		return nil, fmt.Errorf("failed to get video %d playback info: %w", id, err)
	}

	return decodeManifest(info, true)
}

func (c *Client) playbackInfo(ctx context.Context, path string, params url.Values) (*PlaybackInfo, error) {
	timeout := time.Duration(c.conf.Timeouts.GetStream) * time.Second
	resp, err := c.requestTimeout(ctx, timeout, http.MethodGet, c.apiV1BaseURL, path, params, nil, nil)
	if nil != err {
		return nil, err
	}

	var info PlaybackInfo
	if err := unmarshal(resp.Body, &info); nil != err {
		return nil, err
	}

	return &info, nil
}

// btsManifest is the JSON body of a vnd.tidal.bts manifest.
type btsManifest struct {
	MimeType       string   `json:"mimeType"`
	Codec          string   `json:"codecs"`
	EncryptionType string   `json:"encryptionType"`
	KeyID          string   `json:"keyId"`
	URLs           []string `json:"urls"`
}

func decodeManifest(info *PlaybackInfo, video bool) (*Stream, error) {
	raw, err := base64.StdEncoding.DecodeString(info.Manifest)
	if nil != err {
		return nil, fmt.Errorf("failed to decode base64 manifest: %v", err)
	}

	switch mimeType := info.ManifestMimeType; mimeType {
	case "application/dash+xml", "dash+xml":
		streamInfo, err := mpd.Parse(strings.NewReader(string(raw)))
		if nil != err {
			return nil, fmt.Errorf("failed to parse DASH manifest: %v", err)
		}

		ext, err := inferExt(streamInfo.MimeType, streamInfo.Codec, video)
		if nil != err {
			return nil, err
		}

		return &Stream{
			MimeType: streamInfo.MimeType,
			Codec:    streamInfo.Codec,
			Ext:      ext,
			URLs:     streamInfo.SegmentURLs(),
			DASH:     streamInfo,
		}, nil
	case "application/vnd.tidal.bts", "vnd.tidal.bt":
		var manifest btsManifest
		if err := json.Unmarshal(raw, &manifest); nil != err {
			return nil, fmt.Errorf("failed to decode BTS manifest: %v", err)
		}

		if manifest.EncryptionType != "" && manifest.EncryptionType != "NONE" {
			return nil, fmt.Errorf("%w with type %s", ErrEncryptedManifest, manifest.EncryptionType)
		}

		if len(manifest.URLs) == 0 {
			return nil, errors.New("BTS manifest carries no URLs")
		}

		ext, err := inferExt(manifest.MimeType, manifest.Codec, video)
		if nil != err {
			return nil, err
		}

		return &Stream{
			MimeType: manifest.MimeType,
			Codec:    manifest.Codec,
			Ext:      ext,
			URLs:     manifest.URLs,
			DASH:     nil,
		}, nil
	case "application/vnd.tidal.emu":
		// An emu manifest is a thin JSON wrapper pointing at HLS playlists.
		var manifest struct {
			MimeType string   `json:"mimeType"`
			URLs     []string `json:"urls"`
		}
		if err := json.Unmarshal(raw, &manifest); nil != err {
			return nil, fmt.Errorf("failed to decode EMU manifest: %v", err)
		}

		if len(manifest.URLs) == 0 {
			return nil, errors.New("EMU manifest carries no URLs")
		}

		return &Stream{
			MimeType: manifest.MimeType,
			Codec:    "",
			Ext:      "mp4",
			URLs:     manifest.URLs,
			DASH:     nil,
		}, nil
	case "application/vnd.apple.mpegurl":
		variants := parseHLSVariants(string(raw))
		if len(variants) == 0 {
			return nil, errors.New("HLS playlist carries no variant URIs")
		}

		return &Stream{
			MimeType: mimeType,
			Codec:    "",
			Ext:      "mp4",
			URLs:     variants,
			DASH:     nil,
		}, nil
	default:
		return nil, fmt.Errorf("unexpected manifest mime type: %s", mimeType)
	}
}

// parseHLSVariants extracts the variant URIs of an #EXTM3U master playlist.
func parseHLSVariants(playlist string) []string {
	if !strings.HasPrefix(strings.TrimSpace(playlist), "#EXTM3U") {
		return nil
	}

	var variants []string
	for line := range strings.Lines(playlist) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		variants = append(variants, line)
	}

	return variants
}
