// Package linkcheck classifies user input as a resolvable YouTube video link.
//
// Only the shape of the link is checked. Whether the id refers to a real,
// public video is left to the resolution endpoint.
package linkcheck

import (
	"regexp"
	"strings"

	"github.com/iconidentify/ytgrab/internal/domain"
)

// Scheme and www prefix are case-insensitive; the id group is captured.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^(?:(?i:https?)://)?(?i:www\.)?youtube\.com/watch\?v=([\w-]+)`),
	regexp.MustCompile(`^(?:(?i:https?)://)?youtu\.be/([\w-]+)`),
	regexp.MustCompile(`^(?:(?i:https?)://)?(?i:www\.)?youtube\.com/shorts/([\w-]+)`),
}

// IsResolvable reports whether raw, after trimming, is a watch, short or
// shorts link.
func IsResolvable(raw string) bool {
	_, ok := VideoID(raw)
	return ok
}

// VideoID extracts the video id from a resolvable link.
func VideoID(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	for _, p := range patterns {
		if m := p.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Check distinguishes empty input from malformed input.
func Check(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return domain.ErrEmptyInput
	}
	if !IsResolvable(raw) {
		return domain.ErrInvalidURL
	}
	return nil
}
