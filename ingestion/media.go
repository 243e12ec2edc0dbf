package ingestion

import (
	"path/filepath"
	"strings"

	"github.com/poiesic/evidex/core"
)

// mediaItemFor builds a media metadata record for an archive file.
func mediaItemFor(path string) *core.MediaItem {
	return &core.MediaItem{
		Path:     path,
		Filename: filepath.Base(path),
		Type:     mediaTypeFor(path),
	}
}

func mediaTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".heic":
		return "image"
	case ".mp4", ".mov", ".avi", ".mkv", ".3gp", ".webm":
		return "video"
	case ".mp3", ".wav", ".m4a", ".ogg", ".amr", ".opus", ".aac":
		return "audio"
	default:
		return "file"
	}
}
