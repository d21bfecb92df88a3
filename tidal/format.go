package tidal

import (
	"fmt"
	"strings"
)

// inferExt maps a manifest's mime type and codec to a container file
// extension.
func inferExt(mimeType, codec string, video bool) (string, error) {
	switch mimeType {
	case "audio/mp4":
		switch strings.ToLower(codec) {
		case "flac":
			return "flac", nil
		case "eac3", "aac", "alac", "mp4a.40.2", "mp4a.40.5":
			return "m4a", nil
		default:
			return "", fmt.Errorf("unsupported codec %q for audio/mp4 mime type", codec)
		}
	case "audio/flac":
		return "flac", nil
	case "audio/mpeg":
		return "mp3", nil
	case "video/mp4":
		return "mp4", nil
	default:
		if video {
			return "mp4", nil
		}

		return "", fmt.Errorf("unsupported mime type %q", mimeType)
	}
}
