package audio

// Format identifies a supported audio container.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatFLAC    Format = "flac"
	FormatMP3     Format = "mp3"
	FormatM4A     Format = "m4a"
	FormatUnknown Format = "unknown"
)

// Extension returns the file extension for the format, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatWAV:
		return ".wav"
	case FormatFLAC:
		return ".flac"
	case FormatMP3:
		return ".mp3"
	case FormatM4A:
		return ".m4a"
	default:
		return ""
	}
}

// DetectFormat identifies the container from the leading header bytes.
// Buffers shorter than 12 bytes are unidentifiable.
func DetectFormat(data []byte) Format {
	if len(data) < 12 {
		return FormatUnknown
	}
	if string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE" {
		return FormatWAV
	}
	if string(data[:4]) == "fLaC" {
		return FormatFLAC
	}
	// ID3 tag or a raw MPEG frame sync word.
	if string(data[:3]) == "ID3" || (data[0] == 0xFF && data[1]&0xE0 == 0xE0) {
		return FormatMP3
	}
	// ISO-BMFF: an 'ftyp' box at offset 4 covers .m4a/.mp4 audio from
	// mobile recorders.
	if string(data[4:8]) == "ftyp" {
		return FormatM4A
	}
	// Some encoders emit a 'wide', 'mdat' or 'moov' atom first.
	switch string(data[:4]) {
	case "wide", "mdat", "moov":
		return FormatM4A
	}
	return FormatUnknown
}
