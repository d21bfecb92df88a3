package tidal

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackFixture = `{
	"id": 77646170,
	"title": "Alive",
	"duration": 338,
	"replayGain": -10.62,
	"peak": 0.988,
	"trackNumber": 5,
	"volumeNumber": 1,
	"version": null,
	"popularity": 42,
	"copyright": "(P) 2013 Daft Life Limited",
	"isrc": "USQX91300108",
	"explicit": false,
	"streamReady": true,
	"streamStartDate": "2017-07-14T00:00:00.000+0000",
	"audioQuality": "LOSSLESS",
	"audioModes": ["STEREO"],
	"artist": {"id": 10665, "name": "Daft Punk", "picture": "aa-bb-cc"},
	"artists": [{"id": 10665, "name": "Daft Punk"}],
	"album": {"id": 77646169, "title": "Random Access Memories", "cover": "dd-ee-ff"}
}`

func TestTrackUnmarshal(t *testing.T) {
	t.Parallel()

	var track Track
	require.NoError(t, json.Unmarshal([]byte(trackFixture), &track))

	assert.EqualValues(t, 77646170, track.ID)
	assert.Equal(t, "Alive", track.Title)
	assert.Equal(t, 338, track.Duration)
	assert.InDelta(t, -10.62, track.ReplayGain, 1e-9)
	assert.InDelta(t, 0.988, track.Peak, 1e-9)
	assert.Equal(t, "USQX91300108", track.ISRC)
	assert.Equal(t, "LOSSLESS", track.AudioQuality)
	assert.Equal(t, []string{"STEREO"}, track.AudioModes)
	assert.Nil(t, track.Version)
	assert.True(t, track.StreamReady)

	lead := track.LeadArtist()
	require.NotNil(t, lead)
	assert.Equal(t, "Daft Punk", lead.Name)

	require.NotNil(t, track.Album)
	assert.EqualValues(t, 77646169, track.Album.ID)
}

func TestTrackLeadArtistFallsBackToCredits(t *testing.T) {
	t.Parallel()

	track := Track{ //nolint:exhaustruct
		Artists: []Artist{{ID: 1, Name: "First"}, {ID: 2, Name: "Second"}}, //nolint:exhaustruct
	}
	lead := track.LeadArtist()
	require.NotNil(t, lead)
	assert.Equal(t, "First", lead.Name)

	var bare Track
	assert.Nil(t, bare.LeadArtist())
}

func TestAlbumUnmarshal(t *testing.T) {
	t.Parallel()

	fixture := `{
		"id": 77646169,
		"title": "Random Access Memories",
		"cover": "aa-bb-cc",
		"videoCover": null,
		"duration": 4478,
		"streamReady": true,
		"numberOfTracks": 13,
		"numberOfVideos": 0,
		"numberOfVolumes": 1,
		"releaseDate": "2013-05-17",
		"copyright": "(P) 2013 Daft Life Limited",
		"version": "Special Edition",
		"explicit": false,
		"upc": "886443927087",
		"popularity": 53,
		"artist": {"id": 10665, "name": "Daft Punk"}
	}`

	var album Album
	require.NoError(t, json.Unmarshal([]byte(fixture), &album))

	assert.EqualValues(t, 77646169, album.ID)
	assert.Equal(t, 13, album.NumberOfTracks)
	assert.Equal(t, "886443927087", album.UPC)
	require.NotNil(t, album.Version)
	assert.Equal(t, "Special Edition", *album.Version)
	require.NotNil(t, album.LeadArtist())
	assert.EqualValues(t, 10665, album.LeadArtist().ID)
}

func TestAlbumImageURL(t *testing.T) {
	t.Parallel()

	album := Album{ID: 1, Cover: "aa-bb-cc"} //nolint:exhaustruct

	got, err := album.ImageURL(640)
	require.NoError(t, err)
	assert.Equal(t, "https://resources.tidal.com/images/aa/bb/cc/640x640.jpg", got)

	_, err = album.ImageURL(100)
	assert.Error(t, err)

	var bare Album
	_, err = bare.ImageURL(640)
	assert.Error(t, err)
}

func TestArtistImageURL(t *testing.T) {
	t.Parallel()

	artist := Artist{ID: 1, Picture: "11-22-33"} //nolint:exhaustruct

	got, err := artist.ImageURL(750)
	require.NoError(t, err)
	assert.Equal(t, "https://resources.tidal.com/images/11/22/33/750x750.jpg", got)

	_, err = artist.ImageURL(640)
	assert.Error(t, err)
}

func TestVideoImageURL(t *testing.T) {
	t.Parallel()

	video := Video{ID: 1, ImageID: "11-22-33"} //nolint:exhaustruct

	got, err := video.ImageURL(1080, 720)
	require.NoError(t, err)
	assert.Equal(t, "https://resources.tidal.com/images/11/22/33/1080x720.jpg", got)

	_, err = video.ImageURL(720, 1080)
	assert.Error(t, err)
}

func TestPlaylistUnmarshal(t *testing.T) {
	t.Parallel()

	fixture := `{
		"uuid": "7ce7df4f-4b06-4b96-b1a0-5cc1b9f7a8e7",
		"title": "Morning Coffee",
		"numberOfTracks": 48,
		"numberOfVideos": 2,
		"description": "Wake up slowly.",
		"duration": 11323,
		"lastUpdated": "2024-03-01T09:00:00.000+0000",
		"created": "2020-01-15T12:00:00.000+0000",
		"type": "EDITORIAL",
		"publicPlaylist": true,
		"popularity": 70,
		"squareImage": "44-55-66",
		"creator": {"id": 0}
	}`

	var playlist Playlist
	require.NoError(t, json.Unmarshal([]byte(fixture), &playlist))

	assert.Equal(t, "7ce7df4f-4b06-4b96-b1a0-5cc1b9f7a8e7", playlist.UUID)
	assert.Equal(t, 48, playlist.NumberOfTracks)
	assert.Equal(t, "EDITORIAL", playlist.Type)
	require.NotNil(t, playlist.Creator)
	assert.Equal(t, "TIDAL", playlist.Creator.DisplayName())

	got, err := playlist.ImageURL(1080)
	require.NoError(t, err)
	assert.Equal(t, "https://resources.tidal.com/images/44/55/66/1080x1080.jpg", got)
}

func TestItemUnmarshalDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		track bool
	}{
		{name: "plain track", body: `{"id":1,"title":"A"}`, track: true},
		{name: "tagged track", body: `{"type":"track","item":{"id":1,"title":"A"}}`, track: true},
		{name: "video", body: `{"type":"video","item":{"id":2,"title":"B"}}`, track: false},
		{name: "live renders as video", body: `{"type":"Live","item":{"id":3,"title":"C"}}`, track: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			var item Item
			require.NoError(t, json.Unmarshal([]byte(test.body), &item))

			if test.track {
				assert.Equal(t, "track", item.Type)
				require.NotNil(t, item.Track)
				assert.Nil(t, item.Video)
			} else {
				assert.Equal(t, "video", item.Type)
				require.NotNil(t, item.Video)
				assert.Nil(t, item.Track)
			}
		})
	}
}

func TestMixUnmarshal(t *testing.T) {
	t.Parallel()

	fixture := `{
		"id": "000ec0b01da1ddd752ec5dee553d48",
		"title": "My Daily Discovery",
		"subTitle": "Handpicked for you",
		"mixType": "DISCOVERY_MIX",
		"contentBehavior": "UNRESTRICTED",
		"images": {
			"SMALL": {"width": 320, "height": 320, "url": "https://resources.tidal.com/images/mix/320x320.jpg"}
		}
	}`

	var mix Mix
	require.NoError(t, json.Unmarshal([]byte(fixture), &mix))

	assert.Equal(t, "000ec0b01da1ddd752ec5dee553d48", mix.ID)
	assert.Equal(t, MixTypeDiscovery, mix.MixType)
	require.Contains(t, mix.Images, "SMALL")
	assert.Equal(t, 320, mix.Images["SMALL"].Width)
}

func TestUserDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		user User
		want string
	}{
		{name: "editorial", user: User{}, want: "TIDAL"},                                                   //nolint:exhaustruct
		{name: "full name", user: User{ID: 5, FirstName: "Jo", LastName: "Doe"}, want: "Jo Doe"},           //nolint:exhaustruct
		{name: "nickname only", user: User{ID: 5, Name: "jdoe"}, want: "jdoe"},                             //nolint:exhaustruct
		{name: "username fallback", user: User{ID: 5, Username: "jo@example.com"}, want: "jo@example.com"}, //nolint:exhaustruct
		{name: "first name only", user: User{ID: 5, FirstName: "Jo"}, want: "Jo"},                          //nolint:exhaustruct
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, test.want, test.user.DisplayName())
		})
	}
}

func TestParseTopHit(t *testing.T) {
	t.Parallel()

	body := `{"topHit":{"type":"ARTISTS","value":{"id":10665,"name":"Daft Punk"}}}`
	hit, err := parseTopHit([]byte(body))
	require.NoError(t, err)
	require.NotNil(t, hit)
	assert.Equal(t, SearchTypeArtists, hit.Type)
	require.NotNil(t, hit.Artist)
	assert.Equal(t, "Daft Punk", hit.Artist.Name)

	hit, err = parseTopHit([]byte(`{"topHit":null}`))
	require.NoError(t, err)
	assert.Nil(t, hit)

	_, err = parseTopHit([]byte(`{"topHit":{"type":"PODCASTS","value":{}}}`))
	assert.Error(t, err)
}
