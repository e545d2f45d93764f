package render

import (
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nerrad567/ulc-deck/internal/protocol"
)

func TestActiveTitle(t *testing.T) {
	if got := ActiveTitle("STAGE 1", true); got != "● STAGE 1" {
		t.Errorf("ActiveTitle(active) = %q", got)
	}
	if got := ActiveTitle("STAGE 1", false); got != "STAGE 1" {
		t.Errorf("ActiveTitle(inactive) = %q", got)
	}
}

func TestToneTitle(t *testing.T) {
	tests := []struct {
		name string
		tone protocol.SirenTone
		want string
	}{
		{"plain", protocol.SirenTone{Name: "WAIL"}, "WAIL"},
		{"main", protocol.SirenTone{Name: "WAIL", IsMain: true}, "● WAIL"},
		{"aux", protocol.SirenTone{Name: "YELP", IsAux: true}, "○ YELP\n(AUX)"},
		{"dual", protocol.SirenTone{Name: "PRTY", IsMain: true, IsAux: true}, "● PRTY\n(DUAL)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToneTitle(tt.tone); got != tt.want {
				t.Errorf("ToneTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapColor(t *testing.T) {
	tests := map[string]ButtonColor{
		"red":    ColorRed,
		"RED":    ColorRed,
		"amber":  ColorAmber,
		"yellow": ColorAmber,
		"Orange": ColorAmber,
		"blue":   ColorBlue,
		"green":  ColorGreen,
		"purple": ColorBlue,
		"":       ColorBlue,
	}
	for in, want := range tests {
		if got := MapColor(in); got != want {
			t.Errorf("MapColor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestImagePaths(t *testing.T) {
	if got := ULCImagePath(ColorRed, true); got != "ulc/button_on_red.png" {
		t.Errorf("ULCImagePath(red, on) = %q", got)
	}
	if got := ULCImagePath(ColorRed, false); got != "ulc/button_off.png" {
		t.Errorf("ULCImagePath(red, off) = %q", got)
	}
	if got := LVCImagePath(SirenOnImage); got != "lvc/slide_on.png" {
		t.Errorf("LVCImagePath() = %q", got)
	}
}

func TestImages_LoadAndCache(t *testing.T) {
	fsys := fstest.MapFS{
		"ulc/button_on_amber.png": {Data: []byte("png-amber")},
		"lvc/slide_off.png":       {Data: []byte("png-off")},
	}
	im := NewImages(fsys)

	uri, err := im.ULCButton("yellow", true)
	if err != nil {
		t.Fatalf("ULCButton() error = %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Errorf("uri = %q, want data URI", uri)
	}

	delete(fsys, "ulc/button_on_amber.png")
	again, err := im.ULCButton("amber", true)
	if err != nil || again != uri {
		t.Errorf("cached load = (%q, %v), want cached uri", again, err)
	}

	if _, err := im.Siren(false); err != nil {
		t.Errorf("Siren(false) error = %v", err)
	}
	if _, err := im.Siren(true); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Siren(true) error = %v, want ErrImageNotFound", err)
	}
	if im.Cached() != 2 {
		t.Errorf("Cached() = %d, want 2", im.Cached())
	}
}

func TestImages_NilFS(t *testing.T) {
	im := NewImages(nil)
	if _, err := im.ULCButton("red", false); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("error = %v, want ErrImageNotFound", err)
	}
}
