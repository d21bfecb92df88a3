package tidal

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/xeptore/tidewave/must"
)

type LinkKind string

const (
	LinkKindTrack    LinkKind = "track"
	LinkKindAlbum    LinkKind = "album"
	LinkKindArtist   LinkKind = "artist"
	LinkKindVideo    LinkKind = "video"
	LinkKindPlaylist LinkKind = "playlist"
	LinkKindMix      LinkKind = "mix"
)

// Link identifies a catalogue entity extracted from a share URL. ID is numeric
// for tracks, albums, artists, and videos, a UUID for playlists, and an opaque
// hex string for mixes.
type Link struct {
	Kind LinkKind
	ID   string
}

// WebURL returns the canonical browse URL for the entity.
func (l Link) WebURL() string {
	return must.OK(url.JoinPath("https://tidal.com/browse", string(l.Kind), l.ID))
}

// ParseLink recognizes tidal.com and listen.tidal.com share URLs in both the
// /browse/<kind>/<id> and bare /<kind>/<id> forms.
func ParseLink(link string) (Link, error) {
	u, err := url.Parse(link)
	if nil != err {
		return Link{}, fmt.Errorf("failed to parse link %q: %v", link, err)
	}

	switch u.Hostname() {
	case "tidal.com", "www.tidal.com", "listen.tidal.com":
	default:
		return Link{}, fmt.Errorf("link %q points outside tidal.com", link)
	}

	parts := strings.SplitN(strings.Trim(u.Path, "/"), "/", 3)
	if parts[0] == "browse" {
		parts = parts[1:]
	}
	if len(parts) != 2 || parts[1] == "" {
		return Link{}, fmt.Errorf("link %q carries no entity path", link)
	}

	switch kind := LinkKind(parts[0]); kind {
	case LinkKindTrack, LinkKindAlbum, LinkKindArtist, LinkKindVideo, LinkKindPlaylist, LinkKindMix:
		return Link{Kind: kind, ID: parts[1]}, nil
	default:
		return Link{}, fmt.Errorf("unexpected link media type: %s", parts[0])
	}
}
