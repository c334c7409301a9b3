package media

import (
	"path/filepath"
	"strings"
	"time"
)

// File is a handle to one source video with the duration metadata the
// selector needs.
type File struct {
	ID       string
	Name     string
	Size     int64
	MIMEType string
	Duration time.Duration
}

// videoExtensions are the container formats accepted from source folders.
var videoExtensions = map[string]struct{}{
	".mp4": {},
	".avi": {},
	".mov": {},
	".mkv": {},
	".wmv": {},
}

// IsVideoPath reports whether the path carries a supported video extension.
func IsVideoPath(path string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// IsVideoMIME reports whether the MIME type names a video format.
func IsVideoMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mimeType)), "video/")
}
