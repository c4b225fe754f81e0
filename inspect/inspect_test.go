package inspect

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/pdflayer/internal/pdffixture"
	"github.com/tsawler/pdflayer/model"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{PDF, "PDF"},
		{ZIP, "ZIP"},
		{HTML, "HTML"},
		{PNG, "PNG"},
		{JPEG, "JPEG"},
		{Unknown, "Unknown"},
		{Kind(99), "Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String())
	}
}

func TestSniff(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Kind
	}{
		{"pdf", []byte("%PDF-1.7\n"), PDF},
		{"pdf after junk", append([]byte("garbage\r\n"), []byte("%PDF-1.4")...), PDF},
		{"pdf too far in", append(bytes.Repeat([]byte{' '}, 2000), []byte("%PDF-1.4")...), Unknown},
		{"zip", []byte{0x50, 0x4B, 0x03, 0x04, 0x00}, ZIP},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D}, PNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, JPEG},
		{"html", []byte("  <!DOCTYPE html><html>"), HTML},
		{"xhtml", []byte(`<?xml version="1.0"?><html>`), HTML},
		{"short", []byte("%P"), Unknown},
		{"text", []byte("hello world"), Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sniff(tt.data))
		})
	}
}

func TestInspect_RejectsNonPDF(t *testing.T) {
	info, err := Inspect([]byte("<html><body>Not found</body></html>"), "")
	assert.ErrorIs(t, err, model.ErrNotPDF)
	require.NotNil(t, info)
	assert.Equal(t, HTML, info.Kind)
}

func TestInspect_Document(t *testing.T) {
	data := pdffixture.MustBuild([]string{"one", "two", "three"}, pdffixture.Options{})

	info, err := Inspect(data, "")
	require.NoError(t, err)
	assert.Equal(t, PDF, info.Kind)
	assert.Equal(t, 0, info.HeaderOffset)
	require.NoError(t, info.ParseErr)
	assert.Equal(t, 3, info.PageCount)
	assert.False(t, info.Encrypted)
	assert.NotEmpty(t, info.Version)
}

func TestInspect_Encrypted(t *testing.T) {
	data := pdffixture.MustBuild([]string{"secret"}, pdffixture.Options{Password: "hunter2"})

	info, err := Inspect(data, "hunter2")
	require.NoError(t, err)
	assert.True(t, info.Encrypted)
}

func TestInspect_Corrupt(t *testing.T) {
	info, err := Inspect([]byte("%PDF-1.4\nthis is not a real document"), "")
	require.NoError(t, err)
	assert.Error(t, info.ParseErr)
	assert.Equal(t, 0, info.PageCount)
}
