package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Store persists fetched media bytes and returns the location a message's
// attach field should point at.
type Store interface {
	Save(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

var extByMIME = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",

	"audio/mpeg": "mp3",
	"audio/ogg":  "ogg",
	"audio/wav":  "wav",

	"video/mp4":  "mp4",
	"video/webm": "webm",

	"application/pdf": "pdf",
}

// Filename derives a stored filename from a fresh random identifier and the
// MIME subtype: "<uuid>.<ext>". Parameters after ";" are stripped; MIME
// types without a mapped extension fall back to the raw subtype.
func Filename(mimeType string) (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}

	return u.String() + "." + extForMIME(mimeType), nil
}

func extForMIME(mimeType string) string {
	mimeType = strings.TrimSpace(strings.Split(mimeType, ";")[0])

	if ext, ok := extByMIME[mimeType]; ok {
		return ext
	}

	if _, subtype, ok := strings.Cut(mimeType, "/"); ok && subtype != "" {
		return subtype
	}

	return "bin"
}
