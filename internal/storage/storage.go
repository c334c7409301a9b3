package storage

import (
	"context"

	"github.com/arexur/video-combiner/internal/media"
)

// Backend abstracts the folders holding source and output videos. Folder
// identifiers are opaque: cloud file IDs for the drive backend, directory
// paths for the local one.
type Backend interface {
	// ListFolder returns the video files in a folder with duration metadata.
	ListFolder(ctx context.Context, folderID string) ([]media.File, error)

	// Fetch downloads a file into destDir and returns the local path.
	Fetch(ctx context.Context, file media.File, destDir string) (string, error)

	// Store uploads a local file into a folder under the given name and
	// returns a retrievable URL.
	Store(ctx context.Context, localPath, folderID, name string) (string, error)
}
