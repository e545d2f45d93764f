package render

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
)

// ErrImageNotFound is returned when an image file is missing.
var ErrImageNotFound = errors.New("render: image not found")

// ButtonColor is the palette of shipped ULC key images.
type ButtonColor string

// Palette.
const (
	ColorRed   ButtonColor = "red"
	ColorAmber ButtonColor = "amber"
	ColorBlue  ButtonColor = "blue"
	ColorGreen ButtonColor = "green"
)

// LVC siren key images.
const (
	SirenOnImage  = "slide_on.png"
	SirenOffImage = "slide_off.png"
)

// MapColor folds a controller color name onto the palette. Unknown colors
// render blue.
func MapColor(color string) ButtonColor {
	switch strings.ToLower(color) {
	case "red":
		return ColorRed
	case "amber", "yellow", "orange":
		return ColorAmber
	case "green":
		return ColorGreen
	default:
		return ColorBlue
	}
}

// ULCImagePath returns the image path for a ULC key, relative to the
// images root.
func ULCImagePath(color ButtonColor, active bool) string {
	if !active {
		return path.Join("ulc", "button_off.png")
	}
	return path.Join("ulc", "button_on_"+string(color)+".png")
}

// LVCImagePath returns the image path for an LVC key image.
func LVCImagePath(name string) string {
	return path.Join("lvc", name)
}

// Images loads PNG files from an fs.FS and caches them as data URIs.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Images struct {
	fsys  fs.FS
	mu    sync.Mutex
	cache map[string]string
}

// NewImages creates a loader over fsys. A nil fsys makes every lookup
// fail with ErrImageNotFound, so keys fall back to titles.
func NewImages(fsys fs.FS) *Images {
	return &Images{
		fsys:  fsys,
		cache: make(map[string]string),
	}
}

// Load returns the data URI for name. Successful loads are cached; misses
// are retried on the next call.
func (im *Images) Load(name string) (string, error) {
	im.mu.Lock()
	defer im.mu.Unlock()

	if uri, ok := im.cache[name]; ok {
		return uri, nil
	}
	if im.fsys == nil {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}

	data, err := fs.ReadFile(im.fsys, name)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrImageNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("reading image %s: %w", name, err)
	}

	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	im.cache[name] = uri
	return uri, nil
}

// ULCButton loads the image for a ULC key.
func (im *Images) ULCButton(color string, active bool) (string, error) {
	return im.Load(ULCImagePath(MapColor(color), active))
}

// Siren loads the siren key image for the given light state.
func (im *Images) Siren(on bool) (string, error) {
	if on {
		return im.Load(LVCImagePath(SirenOnImage))
	}
	return im.Load(LVCImagePath(SirenOffImage))
}

// Cached returns the number of cached images.
func (im *Images) Cached() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return len(im.cache)
}
