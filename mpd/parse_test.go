package mpd_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xeptore/tidewave/mpd"
)

const document = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" profiles="urn:mpeg:dash:profile:isoff-main:2011" type="static" minBufferTime="PT2S" mediaPresentationDuration="PT212S">
  <Period id="0">
    <AdaptationSet id="0" contentType="audio" mimeType="audio/mp4" segmentAlignment="true">
      <Representation id="0" codecs="mp4a.40.2" bandwidth="320000" audioSamplingRate="44100">
        <SegmentTemplate timescale="44100" initialization="https://cdn.example.com/init.mp4" media="https://cdn.example.com/seg_$Number$.mp4" startNumber="1">
          <SegmentTimeline>
            <S d="176128" r="50"/>
            <S d="92160"/>
          </SegmentTimeline>
        </SegmentTemplate>
      </Representation>
    </AdaptationSet>
  </Period>
</MPD>`

func TestParse(t *testing.T) {
	t.Parallel()

	info, err := mpd.Parse(strings.NewReader(document))
	require.NoError(t, err)

	assert.Equal(t, "audio/mp4", info.MimeType)
	assert.Equal(t, "mp4a.40.2", info.Codec)
	assert.Equal(t, "https://cdn.example.com/init.mp4", info.Initialization)
	assert.Equal(t, 1, info.StartNumber)
	assert.Equal(t, 44100, info.SampleRate)
	assert.Equal(t, 320000, info.Bandwidth)
	// 51 segments from the repeated S element plus the final one.
	assert.Equal(t, 52, info.SegmentCount)
}

func TestSegmentURLs(t *testing.T) {
	t.Parallel()

	info := &mpd.StreamInfo{
		MimeType:       "audio/mp4",
		Codec:          "flac",
		Initialization: "https://cdn.example.com/init.mp4",
		MediaTemplate:  "https://cdn.example.com/seg_$Number$.mp4",
		StartNumber:    1,
		SegmentCount:   3,
		SampleRate:     44100,
		Bandwidth:      1411000,
	}

	urls := info.SegmentURLs()
	assert.Equal(t, []string{
		"https://cdn.example.com/init.mp4",
		"https://cdn.example.com/seg_1.mp4",
		"https://cdn.example.com/seg_2.mp4",
		"https://cdn.example.com/seg_3.mp4",
	}, urls)
}

func TestSegmentURLsWithoutInitialization(t *testing.T) {
	t.Parallel()

	//nolint:exhaustruct
	info := &mpd.StreamInfo{
		MediaTemplate: "seg_$Number$.mp4",
		StartNumber:   4,
		SegmentCount:  2,
	}

	urls := info.SegmentURLs()
	assert.Equal(t, []string{"seg_4.mp4", "seg_5.mp4"}, urls)
}

func TestParseDefaultsStartNumber(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(document, ` startNumber="1"`, "", 1)
	info, err := mpd.Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 1, info.StartNumber)
}

func TestParseRejectsNonAudio(t *testing.T) {
	t.Parallel()

	doc := strings.Replace(document, `contentType="audio"`, `contentType="video"`, 1)
	_, err := mpd.Parse(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestParseRejectsEmptyTimeline(t *testing.T) {
	t.Parallel()

	doc := `<?xml version="1.0" encoding="UTF-8"?>
<MPD>
  <Period>
    <AdaptationSet contentType="audio" mimeType="audio/mp4">
      <Representation codecs="flac">
        <SegmentTemplate media="seg_$Number$.mp4"><SegmentTimeline/></SegmentTemplate>
      </Representation>
    </AdaptationSet>
  </Period>
</MPD>`
	_, err := mpd.Parse(strings.NewReader(doc))
	assert.Error(t, err)
}

func TestParseMalformedDocument(t *testing.T) {
	t.Parallel()

	_, err := mpd.Parse(strings.NewReader("<MPD><Period>"))
	assert.Error(t, err)
}
