package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

/*
Synthesized speech arrives as 16-bit signed little-endian mono PCM at
24000 Hz. Samples are normalized into [-1, 1) by dividing by 32768.
*/
const (
	SampleRate = 24000
	Channels   = 1
)

/*
DecodePCM16 converts a raw PCM payload into normalized float32 samples.
*/
func DecodePCM16(payload []byte) ([]float32, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}

	if len(payload)%2 != 0 {
		return nil, fmt.Errorf("truncated audio payload: %d bytes", len(payload))
	}

	samples := make([]float32, len(payload)/2)

	for i := range samples {
		raw := int16(binary.LittleEndian.Uint16(payload[i*2:]))
		samples[i] = float32(raw) / 32768
	}

	return samples, nil
}

/*
encodeFloat32LE packs normalized samples into the little-endian float stream
the platform player consumes.
*/
func encodeFloat32LE(samples []float32) []byte {
	buf := make([]byte, len(samples)*4)

	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(s))
	}

	return buf
}
