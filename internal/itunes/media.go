package itunes

import (
	"fmt"
	"slices"
)

// Media is an iTunes Search API media type.
type Media string

// Media types accepted by the search endpoint.
const (
	MediaMovie      Media = "movie"
	MediaPodcast    Media = "podcast"
	MediaMusic      Media = "music"
	MediaMusicVideo Media = "musicVideo"
	MediaAudiobook  Media = "audiobook"
	MediaShortFilm  Media = "shortFilm"
	MediaTVShow     Media = "tvShow"
	MediaSoftware   Media = "software"
	MediaEbook      Media = "ebook"
	MediaAll        Media = "all"
)

// DefaultMedia is used when a search names no media type.
const DefaultMedia = MediaMusic

var mediaTypes = []Media{
	MediaMovie,
	MediaPodcast,
	MediaMusic,
	MediaMusicVideo,
	MediaAudiobook,
	MediaShortFilm,
	MediaTVShow,
	MediaSoftware,
	MediaEbook,
	MediaAll,
}

// MediaTypes returns every accepted media type.
func MediaTypes() []Media {
	return slices.Clone(mediaTypes)
}

// ParseMedia converts s to a Media. An empty string yields DefaultMedia.
func ParseMedia(s string) (Media, error) {
	if s == "" {
		return DefaultMedia, nil
	}
	m := Media(s)
	if !slices.Contains(mediaTypes, m) {
		return "", fmt.Errorf("%w: %q", ErrUnknownMedia, s)
	}
	return m, nil
}
