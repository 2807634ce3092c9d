package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DecodeFile decodes WAV or MP3 by extension, resampled to sampleRate.
func DecodeFile(name string, data []byte, sampleRate int) ([]float32, error) {
	var (
		stream io.Reader
		err    error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".wav":
		stream, err = wav.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(sampleRate, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported audio format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(stream)
	if err != nil {
		return nil, err
	}
	return int16ToFloat(raw), nil
}

// int16ToFloat converts interleaved signed 16-bit LE PCM to float32.
func int16ToFloat(raw []byte) []float32 {
	out := make([]float32, len(raw)/2)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		out[i] = float32(v) / 32768
	}
	return out
}
