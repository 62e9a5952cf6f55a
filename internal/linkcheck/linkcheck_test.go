package linkcheck

import (
	"errors"
	"testing"

	"github.com/iconidentify/ytgrab/internal/domain"
)

func TestIsResolvable_Accepts(t *testing.T) {
	tests := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"http://youtube.com/watch?v=dQw4w9WgXcQ",
		"youtube.com/watch?v=dQw4w9WgXcQ",
		"www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s",
		"HTTPS://WWW.youtube.com/watch?v=dQw4w9WgXcQ",
		"Https://Www.youtube.com/watch?v=a-b_c",
		"https://youtu.be/dQw4w9WgXcQ",
		"youtu.be/dQw4w9WgXcQ?si=abc",
		"HTTP://youtu.be/x",
		"https://www.youtube.com/shorts/abc123DEF45",
		"https://youtube.com/shorts/abc-123",
		"wWw.youtube.com/shorts/abc",
		"   https://www.youtube.com/watch?v=dQw4w9WgXcQ  \n",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			if !IsResolvable(raw) {
				t.Errorf("IsResolvable(%q) = false, want true", raw)
			}
		})
	}
}

func TestIsResolvable_Rejects(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"not a url",
		"https://vimeo.com/123456",
		"https://www.youtube.com/",
		"https://www.youtube.com/watch?v=",
		"https://www.youtube.com/watch?list=PL123",
		"https://youtu.be/",
		"https://www.youtube.com/shorts/",
		"ftp://youtube.com/watch?v=abc",
		"https://m.youtube.com/watch?v=abc",
		"https://www.youtube.com/channel/UC123",
		"watch?v=abc",
		"prefix https://youtu.be/abc",
	}

	for _, raw := range tests {
		t.Run(raw, func(t *testing.T) {
			if IsResolvable(raw) {
				t.Errorf("IsResolvable(%q) = true, want false", raw)
			}
		})
	}
}

func TestVideoID(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=1", "dQw4w9WgXcQ", true},
		{"https://youtu.be/abc-DEF_1", "abc-DEF_1", true},
		{"youtube.com/shorts/xyz", "xyz", true},
		{"not a url", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := VideoID(tt.raw)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("VideoID(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", domain.ErrEmptyInput},
		{"whitespace", " \t\n", domain.ErrEmptyInput},
		{"malformed", "not a url", domain.ErrInvalidURL},
		{"valid", "https://youtu.be/dQw4w9WgXcQ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Check(tt.raw); !errors.Is(err, tt.want) {
				t.Errorf("Check(%q) = %v, want %v", tt.raw, err, tt.want)
			}
		})
	}
}
