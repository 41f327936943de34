package driven

import "context"

// DocumentStorage persists uploaded files under a single directory.
// Filenames are sanitised to their base name before use.
type DocumentStorage interface {
	// Init creates the storage directory if needed.
	Init(ctx context.Context) error

	// Save writes content under the sanitised name and returns that name.
	// An existing file with the same name is overwritten.
	Save(ctx context.Context, filename string, content []byte) (string, error)

	// List returns stored filenames sorted ascending. Placeholder files are skipped.
	List(ctx context.Context) ([]string, error)

	// Read returns the file's bytes. Missing files return domain.ErrNotFound.
	Read(ctx context.Context, filename string) ([]byte, error)

	// Delete removes the file and reports whether it existed.
	Delete(ctx context.Context, filename string) (bool, error)
}
