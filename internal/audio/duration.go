package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/tcolgate/mp3"
)

// Duration measures the playing time of the staged file in seconds and
// reports its sample rate.
func Duration(path string, format Format) (float64, int, error) {
	switch format {
	case FormatWAV:
		return wavFileDuration(path)
	case FormatFLAC:
		return flacDuration(path)
	case FormatMP3:
		return mp3Duration(path)
	default:
		return 0, 0, fmt.Errorf("cannot measure duration of %q", format)
	}
}

// WAVStats reads duration and sample rate from an in-memory WAV buffer,
// such as audio returned by the inference runtime.
func WAVStats(data []byte) (float64, int, error) {
	return wavDuration(bytes.NewReader(data))
}

func wavFileDuration(path string) (float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	return wavDuration(f)
}

func wavDuration(r io.ReadSeeker) (float64, int, error) {
	dec := wav.NewDecoder(r)
	dec.ReadInfo()
	if dec.Err() != nil {
		return 0, 0, fmt.Errorf("parse wav: %w", dec.Err())
	}
	d, err := dec.Duration()
	if err != nil {
		return 0, 0, fmt.Errorf("parse wav: %w", err)
	}
	return d.Seconds(), int(dec.SampleRate), nil
}

func flacDuration(path string) (float64, int, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("parse flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	if info.SampleRate == 0 {
		return 0, 0, fmt.Errorf("parse flac: zero sample rate")
	}
	return float64(info.NSamples) / float64(info.SampleRate), int(info.SampleRate), nil
}

// mp3Duration walks every frame; MP3 carries no length header, so the sum
// of frame durations is the only reliable measure.
func mp3Duration(path string) (float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	dec := mp3.NewDecoder(f)
	var (
		frame   mp3.Frame
		skipped int
		total   float64
		rate    int
	)
	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			// Tolerate trailing garbage once at least one frame parsed.
			if total > 0 {
				break
			}
			return 0, 0, fmt.Errorf("parse mp3: %w", err)
		}
		total += frame.Duration().Seconds()
		if rate == 0 {
			rate = int(frame.Header().SampleRate())
		}
	}
	if total == 0 {
		return 0, 0, fmt.Errorf("parse mp3: no frames")
	}
	return total, rate, nil
}
