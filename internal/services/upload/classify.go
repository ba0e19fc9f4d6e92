package upload

import (
	"path/filepath"
	"strings"

	"github.com/GnandeepVenigalla/gd25th-backend/internal/types/media"
)

// Recognized extensions. Anything else is stored but never cataloged.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".heic": {},
	".webp": {},
	".avif": {},
	".heif": {},
}

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".move": {},
	".m4v":  {},
	".qt":   {},
}

// Classify maps a filename to a media kind by its extension,
// case-insensitively. ok is false for unrecognized extensions.
func Classify(filename string) (media.Kind, bool) {
	ext := strings.ToLower(filepath.Ext(filename))

	if _, found := imageExtensions[ext]; found {
		return media.KindImage, true
	}
	if _, found := videoExtensions[ext]; found {
		return media.KindVideo, true
	}

	return "", false
}
