package tidal

import (
	"context"
	"fmt"
	"net/url"
)

// MixType tags the flavor of a server-generated mix.
type MixType string

const (
	MixTypeVideoDaily     MixType = "VIDEO_DAILY_MIX"
	MixTypeDaily          MixType = "DAILY_MIX"
	MixTypeDiscovery      MixType = "DISCOVERY_MIX"
	MixTypeNewRelease     MixType = "NEW_RELEASE_MIX"
	MixTypeTrack          MixType = "TRACK_MIX"
	MixTypeArtist         MixType = "ARTIST_MIX"
	MixTypeSongwriter     MixType = "SONGWRITER_MIX"
	MixTypeProducer       MixType = "PRODUCER_MIX"
	MixTypeHistoryAlltime MixType = "HISTORY_ALLTIME_MIX"
	MixTypeHistoryMonthly MixType = "HISTORY_MONTHLY_MIX"
	MixTypeHistoryYearly  MixType = "HISTORY_YEARLY_MIX"
)

type MixImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Mix is a server-generated collection: artist/track radios, daily mixes,
// recommendations, and historical plays.
type Mix struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	SubTitle        string              `json:"subTitle"`
	ShortSubtitle   string              `json:"shortSubtitle"`
	MixType         MixType             `json:"mixType"`
	ContentBehavior string              `json:"contentBehavior"`
	Images          map[string]MixImage `json:"images"`
}

// Mix fetches mix metadata through the pages/mix endpoint, which is the only
// place the backend serves it.
func (c *Client) Mix(ctx context.Context, id string) (*Mix, error) {
	params := make(url.Values, 1)
	params.Set("mixId", id)

	p, err := c.Page(ctx, "pages/mix", params)
	if nil != err {
		return nil, fmt.Errorf("failed to get mix %s page: %w", id, err)
	}

	for _, cat := range p.Categories {
		if cat.Mix != nil {
			return cat.Mix, nil
		}
	}

	return nil, fmt.Errorf("mix %s page carries no mix header: %w", id, ErrNotFound)
}

// MixItems lists the mix's tracks and videos.
func (c *Client) MixItems(ctx context.Context, id string) ([]Item, error) {
	items, err := listAll[Item](ctx, c, c.listenBaseURL, fmt.Sprintf("mixes/%s/items", id), nil)
	if nil != err {
		return nil, fmt.Errorf("failed to list mix %s items: %w", id, err)
	}

	return items, nil
}
