package plaintext

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Metadata(t *testing.T) {
	e := New()
	assert.Equal(t, "plaintext", e.Name())
	assert.Contains(t, e.SupportedMIMETypes(), "text/plain")
	assert.Contains(t, e.SupportedExtensions(), ".txt")

	pages, err := e.PageCount(context.Background(), "any")
	require.NoError(t, err)
	assert.Zero(t, pages)

	images, err := e.ExtractPageImages(context.Background(), "any", 0)
	require.NoError(t, err)
	assert.Nil(t, images)
}

func TestExtractor_ExtractText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("Alpha physics notes\r\nمرحبا"), 0600))

	text, err := New().ExtractText(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Alpha physics notes\nمرحبا", text)
}

func TestExtractor_MissingFile(t *testing.T) {
	_, err := New().ExtractText(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    string
		wantErr bool
	}{
		{"utf8", []byte("hello"), "hello", false},
		{"utf8 bom", []byte("\xef\xbb\xbfhello"), "hello", false},
		{"utf16 le bom", []byte{0xFF, 0xFE, 'h', 0, 'i', 0}, "hi", false},
		{"utf16 be bom", []byte{0xFE, 0xFF, 0, 'h', 0, 'i'}, "hi", false},
		{"old mac line endings", []byte("a\rb"), "a\nb", false},
		{"invalid utf8", []byte{0xC3, 0x28}, "", true},
		{"empty", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedEncoding)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
