package tidal

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Page is a parsed browse page (home, explore, genre pages, artist pages...)
// from the pages endpoints. Pages are rows of loosely-typed modules; each row
// becomes one PageCategory.
type Page struct {
	Title      string
	Categories []PageCategory
}

// PageCategory is one module of a page. Which fields are set depends on Type:
// header modules fill exactly one of Artist/Album/Mix, link modules fill
// Links, text blocks fill Text and Icon, social modules fill Social, and the
// various list modules fill Items.
type PageCategory struct {
	Type        string
	Title       string
	Description string

	// ShowMoreAPIPath, when set, points at a follow-up page with the full
	// listing of this category.
	ShowMoreTitle   string
	ShowMoreAPIPath string

	Artist *Artist
	Bio    string
	Album  *Album
	Mix    *Mix

	Text string
	Icon string

	Links    []PageLink
	Featured []PageItem
	Items    []PageEntry
	Social   []string
}

// PageLink points to another page.
type PageLink struct {
	Title   string
	Icon    string
	APIPath string
	ImageID string
}

// PageItem is a featured promotion; ArtifactID identifies the promoted entity
// of kind Type (PLAYLIST, VIDEO, TRACK, ARTIST...).
type PageItem struct {
	Header         string
	ShortHeader    string
	ShortSubHeader string
	ImageID        string
	Type           string
	ArtifactID     string
	Text           string
	Featured       bool
}

// PageEntry is one entity of a page listing. Exactly one of the entity fields
// is set, matching Type. Roles is only filled by credit listings.
type PageEntry struct {
	Type     string
	Artist   *Artist
	Album    *Album
	Track    *Track
	Video    *Video
	Playlist *Playlist
	Mix      *Mix
	Roles    []string
}

// Page fetches and parses a pages endpoint. deviceType=BROWSER is injected
// unless the caller overrides it.
func (c *Client) Page(ctx context.Context, path string, params url.Values) (*Page, error) {
	reqParams := make(url.Values, 1+len(params))
	reqParams.Set("deviceType", "BROWSER")
	for k, vs := range params {
		reqParams[k] = vs
	}

	timeout := time.Duration(c.conf.Timeouts.GetPage) * time.Second
	resp, err := c.requestTimeout(ctx, timeout, http.MethodGet, c.apiV1BaseURL, path, reqParams, nil, nil)
	if nil != err {
		return nil, fmt.Errorf("failed to get page %s: %w", path, err)
	}

	p, err := parsePage(resp.Body)
	if nil != err {
		return nil, fmt.Errorf("failed to parse page %s: %w", path, err)
	}

	return p, nil
}

// CategoryShowMore follows a category's show-more link to the page with the
// category's full listing. Returns ErrNotFound when the category has none.
func (c *Client) CategoryShowMore(ctx context.Context, cat PageCategory) (*Page, error) {
	if cat.ShowMoreAPIPath == "" {
		return nil, fmt.Errorf("category %q has no show-more page: %w", cat.Title, ErrNotFound)
	}

	return c.Page(ctx, cat.ShowMoreAPIPath, nil)
}

func (c *Client) HomePage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/home", nil)
}

func (c *Client) ExplorePage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/explore", nil)
}

func (c *Client) HiResPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/hires", nil)
}

func (c *Client) ForYouPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/for_you", nil)
}

func (c *Client) VideosPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/videos", nil)
}

func (c *Client) GenresPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/genre_page", nil)
}

func (c *Client) LocalGenresPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/genre_page_local", nil)
}

func (c *Client) MoodsPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/moods", nil)
}

// MyMixesPage lists the logged-in user's mixes.
func (c *Client) MyMixesPage(ctx context.Context) (*Page, error) {
	return c.Page(ctx, "pages/my_collection_my_mixes", nil)
}

func parsePage(b []byte) (*Page, error) {
	root := gjson.ParseBytes(b)

	p := &Page{
		Title:      root.Get("title").String(),
		Categories: nil,
	}

	var parseErr error
	root.Get("rows").ForEach(func(_, row gjson.Result) bool {
		module := row.Get("modules.0")
		if !module.Exists() {
			return true
		}

		cat, err := parseCategory(module)
		if nil != err {
			parseErr = err

			return false
		}

		p.Categories = append(p.Categories, *cat)

		return true
	})
	if nil != parseErr {
		return nil, parseErr
	}

	return p, nil
}

//nolint:funlen
func parseCategory(module gjson.Result) (*PageCategory, error) {
	//nolint:exhaustruct
	cat := &PageCategory{
		Type:            module.Get("type").String(),
		Title:           module.Get("title").String(),
		Description:     module.Get("description").String(),
		ShowMoreTitle:   module.Get("showMore.title").String(),
		ShowMoreAPIPath: module.Get("showMore.apiPath").String(),
	}

	var err error
	switch cat.Type {
	case "PAGE_LINKS", "PAGE_LINKS_CLOUD":
		module.Get("pagedList.items").ForEach(func(_, item gjson.Result) bool {
			cat.Links = append(cat.Links, parsePageLink(item))

			return true
		})
	case "FEATURED_PROMOTIONS", "MULTIPLE_TOP_PROMOTIONS":
		module.Get("items").ForEach(func(_, item gjson.Result) bool {
			cat.Featured = append(cat.Featured, PageItem{
				Header:         item.Get("header").String(),
				ShortHeader:    item.Get("shortHeader").String(),
				ShortSubHeader: item.Get("shortSubHeader").String(),
				ImageID:        item.Get("imageId").String(),
				Type:           item.Get("type").String(),
				ArtifactID:     item.Get("artifactId").String(),
				Text:           item.Get("text").String(),
				Featured:       item.Get("featured").Bool(),
			})

			return true
		})
	case "ALBUM_LIST", "ARTIST_LIST", "TRACK_LIST", "PLAYLIST_LIST", "VIDEO_LIST", "MIX_LIST":
		kind := cat.Type[:len(cat.Type)-len("_LIST")]
		err = forEachListItem(module, "pagedList.items", func(item gjson.Result) error {
			entry, entryErr := parsePageEntry(kind, item)
			if nil != entryErr {
				return entryErr
			}

			cat.Items = append(cat.Items, *entry)

			return nil
		})
	case "MIXED_TYPES_LIST", "ALBUM_ITEMS":
		err = forEachListItem(module, "pagedList.items", func(item gjson.Result) error {
			entry, entryErr := parseWrappedPageEntry(item)
			if nil != entryErr {
				return entryErr
			}

			cat.Items = append(cat.Items, *entry)

			return nil
		})
	case "HIGHLIGHT_MODULE":
		err = forEachListItem(module, "highlights", func(item gjson.Result) error {
			entry, entryErr := parseWrappedPageEntry(item.Get("item"))
			if nil != entryErr {
				return entryErr
			}

			cat.Items = append(cat.Items, *entry)

			return nil
		})
	case "ITEM_LIST_WITH_ROLES":
		err = forEachListItem(module, "pagedList.items", func(item gjson.Result) error {
			entry, entryErr := parseWrappedPageEntry(item)
			if nil != entryErr {
				return entryErr
			}

			item.Get("roles").ForEach(func(_, role gjson.Result) bool {
				entry.Roles = append(entry.Roles, role.String())

				return true
			})
			cat.Items = append(cat.Items, *entry)

			return nil
		})
	case "MIX_HEADER":
		cat.Mix = &Mix{} //nolint:exhaustruct
		if decodeErr := json.Unmarshal([]byte(module.Get("mix").Raw), cat.Mix); nil != decodeErr {
			err = fmt.Errorf("failed to decode mix header: %v", decodeErr)
		}
	case "ARTIST_HEADER":
		cat.Artist = &Artist{} //nolint:exhaustruct
		if decodeErr := json.Unmarshal([]byte(module.Get("artist").Raw), cat.Artist); nil != decodeErr {
			err = fmt.Errorf("failed to decode artist header: %v", decodeErr)

			break
		}

		if bio := module.Get("bio"); bio.IsObject() {
			cat.Bio = bio.Get("text").String()
		} else {
			cat.Bio = bio.String()
		}
	case "ALBUM_HEADER":
		cat.Album = &Album{} //nolint:exhaustruct
		if decodeErr := json.Unmarshal([]byte(module.Get("album").Raw), cat.Album); nil != decodeErr {
			err = fmt.Errorf("failed to decode album header: %v", decodeErr)
		}
	case "TEXT_BLOCK":
		cat.Text = module.Get("text").String()
		cat.Icon = module.Get("icon").String()
	case "ARTICLE_LIST":
		module.Get("pagedList.items").ForEach(func(_, item gjson.Result) bool {
			cat.Links = append(cat.Links, parsePageLink(item))

			return true
		})
	case "SOCIAL":
		module.Get("socialProfiles").ForEach(func(_, profile gjson.Result) bool {
			cat.Social = append(cat.Social, profile.Get("url").String())

			return true
		})
	default:
		// Unknown module types parse to bare categories rather than failing
		// the whole page; the backend adds new ones without notice.
	}
	if nil != err {
		return nil, err
	}

	return cat, nil
}

func forEachListItem(module gjson.Result, path string, fn func(gjson.Result) error) error {
	var err error
	module.Get(path).ForEach(func(_, item gjson.Result) bool {
		err = fn(item)

		return err == nil
	})

	return err
}

func parsePageLink(item gjson.Result) PageLink {
	return PageLink{
		Title:   item.Get("title").String(),
		Icon:    item.Get("icon").String(),
		APIPath: item.Get("apiPath").String(),
		ImageID: item.Get("imageId").String(),
	}
}

// parseWrappedPageEntry handles entries of the {type, item} shape used by
// mixed-type listings.
func parseWrappedPageEntry(item gjson.Result) (*PageEntry, error) {
	raw := item
	if inner := item.Get("item"); inner.Exists() {
		raw = inner
	}

	return parsePageEntry(item.Get("type").String(), raw)
}

func parsePageEntry(kind string, item gjson.Result) (*PageEntry, error) {
	// Album item listings tag entries in lowercase, and credit listings leave
	// the type out entirely for tracks.
	kind = strings.ToUpper(kind)
	if kind == "" {
		kind = "TRACK"
	}

	entry := &PageEntry{Type: kind} //nolint:exhaustruct
	raw := []byte(item.Raw)

	var err error
	switch kind {
	case "ALBUM":
		entry.Album = &Album{} //nolint:exhaustruct
		err = json.Unmarshal(raw, entry.Album)
	case "ARTIST":
		entry.Artist = &Artist{} //nolint:exhaustruct
		err = json.Unmarshal(raw, entry.Artist)
	case "TRACK":
		entry.Track = &Track{} //nolint:exhaustruct
		err = json.Unmarshal(raw, entry.Track)
	case "VIDEO":
		entry.Video = &Video{} //nolint:exhaustruct
		err = json.Unmarshal(raw, entry.Video)
	case "PLAYLIST":
		entry.Playlist = &Playlist{} //nolint:exhaustruct
		err = json.Unmarshal(raw, entry.Playlist)
	case "MIX":
		entry.Mix = &Mix{} //nolint:exhaustruct
		err = json.Unmarshal(raw, entry.Mix)
	default:
		return nil, fmt.Errorf("unexpected page entry type: %s", kind)
	}
	if nil != err {
		return nil, fmt.Errorf("failed to decode %s page entry: %v", kind, err)
	}

	return entry, nil
}
