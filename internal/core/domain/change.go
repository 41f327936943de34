package domain

// ChangeType represents the type of change seen in the uploads directory.
type ChangeType int

const (
	// ChangeCreated indicates a new file.
	ChangeCreated ChangeType = iota

	// ChangeUpdated indicates a modified file.
	ChangeUpdated

	// ChangeDeleted indicates a removed or renamed-away file.
	ChangeDeleted
)

// String returns the change name.
func (c ChangeType) String() string {
	switch c {
	case ChangeCreated:
		return "created"
	case ChangeUpdated:
		return "updated"
	case ChangeDeleted:
		return "deleted"
	default:
		return unknownDescription
	}
}

// UploadChange is a change event from the uploads directory watcher.
type UploadChange struct {
	// Type is the kind of change.
	Type ChangeType

	// Filename is the base name, as used for ChunkMetadata.Source.
	Filename string

	// Path is the full path reported by the filesystem.
	Path string
}

// NeedsIngest reports whether the file should be (re)indexed.
func (c UploadChange) NeedsIngest() bool {
	return c.Type == ChangeCreated || c.Type == ChangeUpdated
}
