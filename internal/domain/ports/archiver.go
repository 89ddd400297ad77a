package ports

import "context"

// Archiver compresses a directory into a single archive file.
type Archiver interface {
	Archive(ctx context.Context, srcDir, dstPath string) error
}
