package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

func TestUploadCmd_RequiresArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute(t, "upload")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestUploadCmd_UploadsBaseName(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	path := filepath.Join(dir, "bail.txt")
	require.NoError(t, os.WriteFile(path, []byte("Le préavis est de trois mois."), 0o600))

	out, _, err := execute(t, "upload", path)

	require.NoError(t, err)
	assert.Equal(t, []byte("Le préavis est de trois mois."), ts.document.uploads["bail.txt"])
	assert.Contains(t, out, "Uploaded bail.txt: 1 chunks indexed")
}

func TestUploadCmd_EmptyDocumentWarns(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "vide.txt")
	require.NoError(t, os.WriteFile(path, []byte("   "), 0o600))

	out, _, err := execute(t, "upload", path)

	require.NoError(t, err)
	assert.Contains(t, out, "contains no text; nothing was indexed")
}

func TestUploadCmd_ContinuesPastFailures(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	dir := t.TempDir()
	good := filepath.Join(dir, "bail.txt")
	require.NoError(t, os.WriteFile(good, []byte("clause"), 0o600))
	missing := filepath.Join(dir, "absent.txt")

	out, errOut, err := execute(t, "upload", missing, good)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 uploads failed")
	assert.Contains(t, errOut, "Failed to read")
	assert.Contains(t, out, "Uploaded bail.txt")
	assert.Contains(t, ts.document.uploads, "bail.txt")
}

func TestUploadCmd_ServiceError(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.document.uploadErr = &domain.UnsupportedFormatError{Extension: ".pdf"}

	path := filepath.Join(t.TempDir(), "scan.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o600))

	_, errOut, err := execute(t, "upload", path)

	require.Error(t, err)
	assert.Contains(t, errOut, "Failed to upload")
}
