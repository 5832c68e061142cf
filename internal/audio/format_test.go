package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want Format
	}{
		{"wav", []byte("RIFF\x24\x08\x00\x00WAVEfmt "), FormatWAV},
		{"flac", []byte("fLaC\x00\x00\x00\x22more"), FormatFLAC},
		{"mp3 id3", []byte("ID3\x04\x00\x00\x00\x00\x00\x00pad"), FormatMP3},
		{"mp3 frame sync", []byte{0xFF, 0xFB, 0x90, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}, FormatMP3},
		{"m4a ftyp", []byte("\x00\x00\x00\x20ftypM4A \x00\x00\x00\x00"), FormatM4A},
		{"m4a mdat", []byte("mdat\x00\x00\x00\x00\x00\x00\x00\x00"), FormatM4A},
		{"m4a moov", []byte("moov\x00\x00\x00\x00\x00\x00\x00\x00"), FormatM4A},
		{"m4a wide", []byte("wide\x00\x00\x00\x00\x00\x00\x00\x00"), FormatM4A},
		{"unknown", []byte("not audio at all"), FormatUnknown},
		{"too short", []byte("RIFF"), FormatUnknown},
		{"empty", nil, FormatUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.data))
		})
	}
}

func TestFormatExtension(t *testing.T) {
	assert.Equal(t, ".wav", FormatWAV.Extension())
	assert.Equal(t, ".flac", FormatFLAC.Extension())
	assert.Equal(t, ".mp3", FormatMP3.Extension())
	assert.Equal(t, ".m4a", FormatM4A.Extension())
}
