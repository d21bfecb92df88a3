package tidal

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionBody = `{"sessionId":"4e99e4eb-0f60-4e49-b772-e23f4a7099ce","userId":421337,"countryCode":"NL"}`

func TestConnectSession(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sessionBody))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	require.NoError(t, c.ConnectSession(t.Context()))
	assert.Equal(t, "4e99e4eb-0f60-4e49-b772-e23f4a7099ce", c.SessionID())
	assert.EqualValues(t, 421337, c.UserID())
	assert.Equal(t, "NL", c.CountryCode())

	// The storefront country must stick with the persisted credentials.
	assert.Equal(t, "NL", c.auth.Credentials().CountryCode)
}

func TestConnectSessionRejectsMalformedSessionID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"sessionId":"not-a-uuid","userId":1,"countryCode":"US"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	assert.Error(t, c.ConnectSession(t.Context()))
}

func TestCheckLogin(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sessions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sessionBody))
	})
	mux.HandleFunc("GET /users/421337/subscription", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ACTIVE"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	assert.True(t, c.CheckLogin(t.Context()))
}

func TestTrackURL(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tracks/77646170/urlpostpaywall", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "STREAM", q.Get("urlusagemode"))
		assert.Equal(t, "LOSSLESS", q.Get("audioquality"))
		assert.Equal(t, "FULL", q.Get("assetpresentation"))
		_, _ = w.Write([]byte(`{"urls":["https://cdn.example.com/track.flac"]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	got, err := c.TrackURL(t.Context(), 77646170)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/track.flac", got)
}

func TestTracksByISRC(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tracks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "USSM12209515", r.URL.Query().Get("filter[isrc]"))
		_, _ = w.Write([]byte(`{"data":[{"id":"251380837","type":"tracks"}]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	v1mux := http.NewServeMux()
	v1mux.HandleFunc("GET /tracks/251380837", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":251380837,"title":"Found Track","isrc":"USSM12209515"}`))
	})
	v1srv := httptest.NewServer(v1mux)
	defer v1srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.openAPIBaseURL = srv.URL
	c.apiV1BaseURL = v1srv.URL

	tracks, err := c.TracksByISRC(t.Context(), "USSM12209515")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Found Track", tracks[0].Title)
}

func TestPlaylistEditSendsETag(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /playlists/uuid-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("ETag", `"etag-2"`)
		_, _ = w.Write([]byte(`{"uuid":"uuid-1","title":"Mine","numberOfTracks":3}`))
	})
	var gotETag string
	mux.HandleFunc("POST /playlists/uuid-1/items", func(w http.ResponseWriter, r *http.Request) {
		gotETag = r.Header.Get("If-None-Match")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "SKIP", r.PostForm.Get("onDupes"))
		assert.Equal(t, "1,2,3", r.PostForm.Get("trackIds"))
		_, _ = w.Write([]byte(`{"lastUpdated":1}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	p := &Playlist{UUID: "uuid-1", Title: "Mine", etag: `"etag-1"`} //nolint:exhaustruct
	require.NoError(t, c.AddPlaylistItems(t.Context(), p, []int64{1, 2, 3}))

	assert.Equal(t, `"etag-1"`, gotETag)
	// The playlist must be refreshed from the server after the edit.
	assert.Equal(t, `"etag-2"`, p.ETag())
	assert.Equal(t, 3, p.NumberOfTracks)
}

func TestPlaylistCapturesETag(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /playlists/uuid-1", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("ETag", `"abc"`)
		_, _ = w.Write([]byte(`{"uuid":"uuid-1","title":"Mine"}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	p, err := c.Playlist(t.Context(), "uuid-1")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, p.ETag())
}

func TestAddFavoriteFormFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		path  string
		field string
		value string
		call  func(c *Client) error
	}{
		{
			name: "artist", path: "/users/421337/favorites/artists", field: "artistId", value: "10665",
			call: func(c *Client) error { return c.AddFavoriteArtist(t.Context(), 10665) },
		},
		{
			name: "album", path: "/users/421337/favorites/albums", field: "albumId", value: "77646169",
			call: func(c *Client) error { return c.AddFavoriteAlbum(t.Context(), 77646169) },
		},
		{
			name: "track", path: "/users/421337/favorites/tracks", field: "trackId", value: "77646170",
			call: func(c *Client) error { return c.AddFavoriteTrack(t.Context(), 77646170) },
		},
		{
			name: "video", path: "/users/421337/favorites/videos", field: "videoIds", value: "59727844",
			call: func(c *Client) error { return c.AddFavoriteVideo(t.Context(), 59727844) },
		},
		{
			name: "playlist", path: "/users/421337/favorites/playlists", field: "uuids", value: "uuid-1",
			call: func(c *Client) error { return c.AddFavoritePlaylist(t.Context(), "uuid-1") },
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			mux := http.NewServeMux()
			mux.HandleFunc("POST "+test.path, func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseForm())
				assert.Equal(t, test.value, r.PostForm.Get(test.field))
				w.WriteHeader(http.StatusOK)
			})
			srv := httptest.NewServer(mux)
			defer srv.Close()

			c := newTestClient(t, validCredentials("token"))
			c.apiV1BaseURL = srv.URL
			c.userID = 421337

			require.NoError(t, test.call(c))
		})
	}
}

func TestFavoriteTracksUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/421337/favorites/tracks", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "0" {
			fmt.Fprint(w, `{"limit":100,"offset":100,"totalNumberOfItems":1,"items":[]}`)

			return
		}

		fmt.Fprint(w, `{"limit":100,"offset":0,"totalNumberOfItems":1,"items":[
			{"created":"2024-05-01T10:00:00.000+0000","item":{"id":77646170,"title":"Alive"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL
	c.userID = 421337

	tracks, err := c.FavoriteTracks(t.Context())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "Alive", tracks[0].Title)
}

func TestGenresAreCached(t *testing.T) {
	t.Parallel()

	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /genres", func(w http.ResponseWriter, _ *http.Request) {
		hits++
		_, _ = w.Write([]byte(`[{"name":"Jazz","path":"Jazz","hasAlbums":true,"image":"11-22-33"}]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	for range 3 {
		genres, err := c.Genres(t.Context())
		require.NoError(t, err)
		require.Len(t, genres, 1)
		assert.Equal(t, "Jazz", genres[0].Name)
	}
	assert.Equal(t, 1, hits)
}

func TestGenreListingRequiresContent(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, validCredentials("token"))

	g := Genre{Name: "Jazz", Path: "Jazz"} //nolint:exhaustruct
	_, err := c.GenreTracks(t.Context(), g)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "daft punk", q.Get("query"))
		assert.Equal(t, "ARTISTS,ALBUMS,TRACKS,VIDEOS,PLAYLISTS", q.Get("types"))
		assert.Equal(t, "10", q.Get("limit"))
		fmt.Fprint(w, `{
			"artists": {"limit":10,"offset":0,"totalNumberOfItems":1,"items":[{"id":10665,"name":"Daft Punk"}]},
			"albums": {"limit":10,"offset":0,"totalNumberOfItems":0,"items":[]},
			"tracks": {"limit":10,"offset":0,"totalNumberOfItems":1,"items":[{"id":77646170,"title":"Alive"}]},
			"videos": {"limit":10,"offset":0,"totalNumberOfItems":0,"items":[]},
			"playlists": {"limit":10,"offset":0,"totalNumberOfItems":0,"items":[]},
			"topHit": {"type":"ARTISTS","value":{"id":10665,"name":"Daft Punk"}}
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	results, err := c.Search(t.Context(), "daft punk", nil, 10, 0)
	require.NoError(t, err)
	require.Len(t, results.Artists, 1)
	require.Len(t, results.Tracks, 1)
	require.NotNil(t, results.TopHit)
	assert.Equal(t, SearchTypeArtists, results.TopHit.Type)
}

func TestMixResolvedFromPageHeader(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /pages/mix", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mix1", r.URL.Query().Get("mixId"))
		assert.Equal(t, "BROWSER", r.URL.Query().Get("deviceType"))
		fmt.Fprint(w, `{
			"title": "My Daily Discovery",
			"rows": [{"modules": [{
				"type": "MIX_HEADER",
				"mix": {"id":"mix1","title":"My Daily Discovery","mixType":"DISCOVERY_MIX"}
			}]}]
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.apiV1BaseURL = srv.URL

	mix, err := c.Mix(t.Context(), "mix1")
	require.NoError(t, err)
	assert.Equal(t, MixTypeDiscovery, mix.MixType)
}

func TestMixItems(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /mixes/mix1/items", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("offset") != "0" {
			fmt.Fprint(w, `{"limit":100,"offset":100,"totalNumberOfItems":2,"items":[]}`)

			return
		}

		fmt.Fprint(w, `{"limit":100,"offset":0,"totalNumberOfItems":2,"items":[
			{"type":"track","item":{"id":1,"title":"A"}},
			{"type":"video","item":{"id":2,"title":"B"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newTestClient(t, validCredentials("token"))
	c.listenBaseURL = srv.URL

	items, err := c.MixItems(t.Context(), "mix1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.NotNil(t, items[0].Track)
	assert.NotNil(t, items[1].Video)
}
