// Package mpd parses the MPEG-DASH media presentation descriptions the
// playbackinfo endpoint serves, reduced to the single-period, single-audio
// adaptation set shape the backend emits.
package mpd

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type MPD struct {
	XMLName                   xml.Name `xml:"MPD"`
	Profiles                  string   `xml:"profiles,attr"`
	Type                      string   `xml:"type,attr"`
	MinBufferTime             string   `xml:"minBufferTime,attr"`
	MediaPresentationDuration string   `xml:"mediaPresentationDuration,attr"`
	Period                    Period   `xml:"Period"`
}

type Period struct {
	ID            string        `xml:"id,attr"`
	AdaptationSet AdaptationSet `xml:"AdaptationSet"`
}

type AdaptationSet struct {
	ID               string         `xml:"id,attr"`
	ContentType      string         `xml:"contentType,attr"`
	MimeType         string         `xml:"mimeType,attr"`
	SegmentAlignment bool           `xml:"segmentAlignment,attr"`
	Representation   Representation `xml:"Representation"`
}

type Representation struct {
	ID                string          `xml:"id,attr"`
	Codecs            string          `xml:"codecs,attr"`
	Bandwidth         int             `xml:"bandwidth,attr"`
	AudioSamplingRate int             `xml:"audioSamplingRate,attr"`
	SegmentTemplate   SegmentTemplate `xml:"SegmentTemplate"`
}

type SegmentTemplate struct {
	Timescale       int             `xml:"timescale,attr"`
	Initialization  string          `xml:"initialization,attr"`
	Media           string          `xml:"media,attr"`
	StartNumber     int             `xml:"startNumber,attr"`
	SegmentTimeline SegmentTimeline `xml:"SegmentTimeline"`
}

type SegmentTimeline struct {
	S []S `xml:"S"`
}

type S struct {
	D int `xml:"d,attr"`
	R int `xml:"r,attr,omitempty"`
}

// StreamInfo is the part of a parsed MPD a caller needs to fetch the stream:
// the codec/container pair and the segment URL layout.
type StreamInfo struct {
	MimeType       string
	Codec          string
	Initialization string
	MediaTemplate  string
	StartNumber    int
	SegmentCount   int
	SampleRate     int
	Bandwidth      int
}

// SegmentURLs expands the media template into the URL of every segment, the
// initialization segment first when the manifest names one.
func (s *StreamInfo) SegmentURLs() []string {
	urls := make([]string, 0, s.SegmentCount+1)
	if s.Initialization != "" {
		urls = append(urls, s.Initialization)
	}

	for n := s.StartNumber; n < s.StartNumber+s.SegmentCount; n++ {
		urls = append(urls, strings.ReplaceAll(s.MediaTemplate, "$Number$", strconv.Itoa(n)))
	}

	return urls
}

// Parse reads a single-period audio MPD and extracts its stream layout.
func Parse(r io.Reader) (*StreamInfo, error) {
	var doc MPD
	dec := xml.NewDecoder(r)
	dec.Strict = true
	if err := dec.Decode(&doc); nil != err {
		return nil, fmt.Errorf("failed to parse MPD document: %v", err)
	}

	set := doc.Period.AdaptationSet
	if set.ContentType != "audio" {
		return nil, fmt.Errorf("unexpected MPD content type: %s", set.ContentType)
	}

	tmpl := set.Representation.SegmentTemplate

	// Each S element describes one segment plus R repeats of it.
	segments := 0
	for _, s := range tmpl.SegmentTimeline.S {
		segments += 1 + s.R
	}
	if segments == 0 {
		return nil, fmt.Errorf("MPD segment timeline is empty")
	}

	startNumber := tmpl.StartNumber
	if startNumber == 0 {
		startNumber = 1
	}

	return &StreamInfo{
		MimeType:       set.MimeType,
		Codec:          set.Representation.Codecs,
		Initialization: tmpl.Initialization,
		MediaTemplate:  tmpl.Media,
		StartNumber:    startNumber,
		SegmentCount:   segments,
		SampleRate:     set.Representation.AudioSamplingRate,
		Bandwidth:      set.Representation.Bandwidth,
	}, nil
}
