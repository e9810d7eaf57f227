package validation

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	_, header, err := req.FormFile("file")
	require.NoError(t, err)
	return header
}

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestValidateFile(t *testing.T) {
	header := uploadHeader(t, "photo.png", pngBytes)
	assert.NoError(t, ValidateFile(header, EvidenceConstraints))
}

func TestValidateFile_SniffsContent(t *testing.T) {
	// A text file renamed to .png fails content sniffing
	header := uploadHeader(t, "fake.png", []byte("plain text pretending"))
	err := ValidateFile(header, EvidenceConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file type")
}

func TestValidateFile_Extension(t *testing.T) {
	// Real PNG bytes but a disallowed extension
	header := uploadHeader(t, "photo.webp", pngBytes)
	err := ValidateFile(header, EvidenceConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file extension")
}

func TestValidateFile_TooLarge(t *testing.T) {
	big := make([]byte, 6<<20)
	copy(big, pngBytes)
	header := uploadHeader(t, "photo.png", big)

	err := ValidateFile(header, EvidenceConstraints)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file too large")
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.Error(t, ValidateUsername(""))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("password123"))
	assert.Error(t, ValidatePassword("short"))
}
