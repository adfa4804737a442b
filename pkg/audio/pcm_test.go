package audio

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pcmBytes(samples ...int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	return buf
}

func TestDecodePCM16Normalizes(t *testing.T) {
	samples, err := DecodePCM16(pcmBytes(0, 16384, -16384, 32767, -32768))
	require.NoError(t, err)

	assert.InDelta(t, 0.0, samples[0], 1e-6)
	assert.InDelta(t, 0.5, samples[1], 1e-6)
	assert.InDelta(t, -0.5, samples[2], 1e-6)
	assert.InDelta(t, 32767.0/32768, samples[3], 1e-6)
	assert.InDelta(t, -1.0, samples[4], 1e-6)
}

func TestDecodePCM16RejectsEmptyPayload(t *testing.T) {
	_, err := DecodePCM16(nil)
	assert.Error(t, err)
}

func TestDecodePCM16RejectsOddLength(t *testing.T) {
	_, err := DecodePCM16([]byte{0x01, 0x02, 0x03})
	assert.Error(t, err)
}

func TestEncodeFloat32LERoundTrip(t *testing.T) {
	in := []float32{0, 0.25, -0.25, 1, -1}
	buf := encodeFloat32LE(in)
	require.Len(t, buf, len(in)*4)

	for i, want := range in {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		assert.Equal(t, want, got)
	}
}
