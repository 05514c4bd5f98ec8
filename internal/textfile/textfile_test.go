package textfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		encoding Encoding
		want     string
	}{
		{"utf-16 big endian", []byte{0xFE, 0xFF, 0x00, 0x41}, UTF16BigEnd, "A"},
		{"utf-16 little endian", []byte{0xFF, 0xFE, 0x41, 0x00}, UTF16LitEnd, "A"},
		{"utf-8 with marker", []byte{0xEF, 0xBB, 0xBF, 0x41}, UTF8BOM, "A"},
		{"plain utf-8", []byte{0x41}, UTF8, "A"},
		{"empty", nil, UTF8, ""},
		{"utf-16 big endian multi", []byte{0xFE, 0xFF, 0x00, 0x68, 0x00, 0xE9}, UTF16BigEnd, "hé"},
		{"utf-16 little endian surrogate pair", []byte{0xFF, 0xFE, 0x3D, 0xD8, 0x00, 0xDE}, UTF16LitEnd, "\U0001F600"},
		{"utf-16 dangling byte dropped", []byte{0xFF, 0xFE, 0x41, 0x00, 0x42}, UTF16LitEnd, "A"},
		{"bare utf-16 marker", []byte{0xFE, 0xFF}, UTF16BigEnd, ""},
		{"truncated utf-8 marker", []byte{0xEF, 0xBB}, UTF8BOM, ""},
		{"multibyte utf-8 without marker", []byte("héllo"), UTF8, "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.encoding, DetectEncoding(tt.input))
			got := Decode(tt.input)
			require.Equal(t, tt.want, got)
			require.NotContains(t, got, "\uFEFF")
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.tmpl")
	require.NoError(t, os.WriteFile(path, []byte{0xEF, 0xBB, 0xBF, '<', 'p', '>'}, 0o600))

	got, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "<p>", got)

	_, err = ReadFile(filepath.Join(dir, "missing.tmpl"))
	require.Error(t, err)
}
