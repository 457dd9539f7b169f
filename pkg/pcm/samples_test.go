package pcm

import (
	"fmt"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSamples(t *testing.T) {
	t.Run("s16le", func(t *testing.T) {
		samples, err := DecodeSamples(PCMFormatS16LE, []byte{
			0x00, 0x00, // 0
			0x00, 0x40, // 16384
			0x00, 0xC0, // -16384
			0x00, 0x80, // -32768
		})
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0.5, -0.5, -1}, samples)
	})

	t.Run("u8", func(t *testing.T) {
		samples, err := DecodeSamples(PCMFormatU8, []byte{128, 192, 64, 0})
		require.NoError(t, err)
		assert.Equal(t, []float32{0, 0.5, -0.5, -1}, samples)
	})

	t.Run("s16be", func(t *testing.T) {
		samples, err := DecodeSamples(PCMFormatS16BE, []byte{0x40, 0x00})
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5}, samples)
	})

	t.Run("truncated buffer", func(t *testing.T) {
		_, err := DecodeSamples(PCMFormatS16LE, []byte{0x00, 0x40, 0x00})
		assert.Error(t, err)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := DecodeSamples(PCMFormatUndefined, []byte{0x00})
		assert.Error(t, err)
	})
}

func TestEncodeSamples(t *testing.T) {
	t.Run("s16le", func(t *testing.T) {
		data, err := EncodeSamples(PCMFormatS16LE, []float32{0, 0.5, -0.5, -1})
		require.NoError(t, err)
		assert.Equal(t, []byte{
			0x00, 0x00,
			0x00, 0x40,
			0x00, 0xC0,
			0x00, 0x80,
		}, data)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := EncodeSamples(PCMFormatUndefined, []float32{0})
		assert.Error(t, err)
	})
}

func TestRoundtrip(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.984375, -1}
	for _, format := range []PCMFormat{
		PCMFormatS16LE, PCMFormatS16BE,
		PCMFormatS24LE, PCMFormatS24BE,
		PCMFormatS32LE, PCMFormatS32BE,
		PCMFormatFloat32LE, PCMFormatFloat32BE,
		PCMFormatFloat64LE, PCMFormatFloat64BE,
	} {
		t.Run(format.String(), func(t *testing.T) {
			data, err := EncodeSamples(format, samples)
			require.NoError(t, err)
			decoded, err := DecodeSamples(format, data)
			require.NoError(t, err)
			require.Len(t, decoded, len(samples))
			for i := range samples {
				assert.InDelta(t, samples[i], decoded[i], 1e-4,
					"sample %d of %s", i, spew.Sdump(decoded))
			}
		})
	}
}

func TestDownmix(t *testing.T) {
	t.Run("mono is a copy", func(t *testing.T) {
		in := []float32{0.1, 0.2, 0.3}
		out, err := Downmix(in, 1)
		require.NoError(t, err)
		assert.Equal(t, in, out)
		out[0] = 42
		assert.Equal(t, float32(0.1), in[0])
	})

	t.Run("stereo averages", func(t *testing.T) {
		out, err := Downmix([]float32{0, 1, 0.5, -0.5, -1, -1}, 2)
		require.NoError(t, err)
		assert.Equal(t, []float32{0.5, 0, -1}, out)
	})

	t.Run("channel mismatch", func(t *testing.T) {
		_, err := Downmix([]float32{0, 1, 0.5}, 2)
		assert.Error(t, err)
	})

	t.Run("invalid channel count", func(t *testing.T) {
		_, err := Downmix([]float32{0, 1}, 0)
		assert.Error(t, err)
	})
}

func TestPCMFormat(t *testing.T) {
	t.Run("parse roundtrip", func(t *testing.T) {
		for f := PCMFormatU8; f <= PCMFormatFloat64BE; f++ {
			parsed, err := ParsePCMFormat(f.String())
			require.NoError(t, err)
			assert.Equal(t, f, parsed)
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := ParsePCMFormat("pdp11")
		assert.Error(t, err)
	})

	t.Run("sizes", func(t *testing.T) {
		for f := PCMFormatU8; f <= PCMFormatFloat64BE; f++ {
			assert.NotZero(t, f.Size(), fmt.Sprintf("format %v", f))
		}
		assert.Zero(t, PCMFormatUndefined.Size())
	})

	t.Run("flag value", func(t *testing.T) {
		var f PCMFormat
		require.NoError(t, f.Set("f32le"))
		assert.Equal(t, PCMFormatFloat32LE, f)
		assert.Error(t, f.Set("mp3"))
		assert.Equal(t, "pcm-format", f.Type())
	})
}
