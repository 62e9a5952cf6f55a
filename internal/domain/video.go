package domain

import (
	"fmt"
	"strings"
)

// Format is the media variant a user asks the resolver for.
type Format string

const (
	FormatVideo Format = "video"
	FormatAudio Format = "audio"
)

// String returns the string representation of the Format.
func (f Format) String() string {
	return string(f)
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f == FormatVideo || f == FormatAudio
}

// ParseFormat maps user input to a Format. The backend spelling "mp4" is
// accepted as an alias for video.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video", "mp4", "":
		return FormatVideo, nil
	case "audio":
		return FormatAudio, nil
	default:
		return "", fmt.Errorf("unknown format %q", s)
	}
}

// VideoInfo is the metadata record returned by a successful resolution.
// Values are treated as read-only once produced.
type VideoInfo struct {
	Title       string `json:"title"`
	Thumbnail   string `json:"thumbnail"`
	Duration    int    `json:"duration"`
	Uploader    string `json:"uploader"`
	DownloadURL string `json:"download_url"`
	Ext         string `json:"ext"`
	Filesize    *int64 `json:"filesize"`
}

// HasDownloadURL reports whether the record carries a usable download link.
func (v *VideoInfo) HasDownloadURL() bool {
	return v != nil && strings.TrimSpace(v.DownloadURL) != ""
}

// Size returns the file size in bytes, or 0 when the backend did not know it.
func (v *VideoInfo) Size() int64 {
	if v == nil || v.Filesize == nil {
		return 0
	}
	return *v.Filesize
}
