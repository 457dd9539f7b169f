package pcm

import (
	"encoding/binary"
	"fmt"
	"math"
)

// DecodeSamples converts a raw PCM byte stream to normalized float32
// samples in [-1, 1]. Channel interleaving is preserved; use Downmix to
// flatten a multi-channel buffer afterwards.
func DecodeSamples(format PCMFormat, data []byte) ([]float32, error) {
	size := int(format.Size())
	if size == 0 {
		return nil, fmt.Errorf("unknown PCM format: %v", format)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("expected a data length that is a multiple of the sample size %d, but received %d", size, len(data))
	}

	samples := make([]float32, len(data)/size)
	for i := range samples {
		samples[i] = float32(sampleToFloat(format, data[i*size:]))
	}
	return samples, nil
}

// EncodeSamples converts normalized float32 samples to a raw PCM byte
// stream of the given format.
func EncodeSamples(format PCMFormat, samples []float32) ([]byte, error) {
	size := int(format.Size())
	if size == 0 {
		return nil, fmt.Errorf("unknown PCM format: %v", format)
	}

	data := make([]byte, len(samples)*size)
	for i, v := range samples {
		floatToSample(format, data[i*size:], float64(v))
	}
	return data, nil
}

// Downmix averages the channels of an interleaved sample buffer into a
// single flat channel.
func Downmix(samples []float32, channels Channel) ([]float32, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("channels must be greater than 0: got %d", channels)
	}
	if channels == 1 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out, nil
	}
	if len(samples)%int(channels) != 0 {
		return nil, fmt.Errorf("expected a sample count that is a multiple of %d channels, but received %d", channels, len(samples))
	}

	out := make([]float32, len(samples)/int(channels))
	for i := range out {
		var sum float64
		for ch := 0; ch < int(channels); ch++ {
			sum += float64(samples[i*int(channels)+ch])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out, nil
}

func sampleToFloat(f PCMFormat, p []byte) float64 {
	switch f {
	case PCMFormatU8:
		return (float64(p[0]) - 128) / 128
	case PCMFormatS16LE:
		return float64(int16(binary.LittleEndian.Uint16(p))) / 32768
	case PCMFormatS16BE:
		return float64(int16(binary.BigEndian.Uint16(p))) / 32768
	case PCMFormatS24LE:
		val := int32(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16)
		if val&0x800000 != 0 {
			val |= -16777216
		}
		return float64(val) / 8388608
	case PCMFormatS24BE:
		val := int32(uint32(p[2]) | uint32(p[1])<<8 | uint32(p[0])<<16)
		if val&0x800000 != 0 {
			val |= -16777216
		}
		return float64(val) / 8388608
	case PCMFormatS32LE:
		return float64(int32(binary.LittleEndian.Uint32(p))) / 2147483648
	case PCMFormatS32BE:
		return float64(int32(binary.BigEndian.Uint32(p))) / 2147483648
	case PCMFormatS64LE:
		return float64(int64(binary.LittleEndian.Uint64(p))) / 9223372036854775808
	case PCMFormatS64BE:
		return float64(int64(binary.BigEndian.Uint64(p))) / 9223372036854775808
	case PCMFormatFloat32LE:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(p)))
	case PCMFormatFloat32BE:
		return float64(math.Float32frombits(binary.BigEndian.Uint32(p)))
	case PCMFormatFloat64LE:
		return math.Float64frombits(binary.LittleEndian.Uint64(p))
	case PCMFormatFloat64BE:
		return math.Float64frombits(binary.BigEndian.Uint64(p))
	}
	panic(fmt.Sprintf("unknown format: %v", f))
}

func floatToSample(f PCMFormat, p []byte, v float64) {
	switch f {
	case PCMFormatU8:
		p[0] = byte(math.Round(v*128 + 128))
	case PCMFormatS16LE:
		binary.LittleEndian.PutUint16(p, uint16(int16(math.Round(v*32768))))
	case PCMFormatS16BE:
		binary.BigEndian.PutUint16(p, uint16(int16(math.Round(v*32768))))
	case PCMFormatS24LE:
		val := clamp24(math.Round(v * 8388608))
		p[0] = byte(val)
		p[1] = byte(val >> 8)
		p[2] = byte(val >> 16)
	case PCMFormatS24BE:
		val := clamp24(math.Round(v * 8388608))
		p[0] = byte(val >> 16)
		p[1] = byte(val >> 8)
		p[2] = byte(val)
	case PCMFormatS32LE:
		binary.LittleEndian.PutUint32(p, uint32(int32(math.Round(v*2147483648))))
	case PCMFormatS32BE:
		binary.BigEndian.PutUint32(p, uint32(int32(math.Round(v*2147483648))))
	case PCMFormatS64LE:
		binary.LittleEndian.PutUint64(p, uint64(int64(math.Round(v*9223372036854775808))))
	case PCMFormatS64BE:
		binary.BigEndian.PutUint64(p, uint64(int64(math.Round(v*9223372036854775808))))
	case PCMFormatFloat32LE:
		binary.LittleEndian.PutUint32(p, math.Float32bits(float32(v)))
	case PCMFormatFloat32BE:
		binary.BigEndian.PutUint32(p, math.Float32bits(float32(v)))
	case PCMFormatFloat64LE:
		binary.LittleEndian.PutUint64(p, math.Float64bits(v))
	case PCMFormatFloat64BE:
		binary.BigEndian.PutUint64(p, math.Float64bits(v))
	default:
		panic(fmt.Sprintf("unknown format: %v", f))
	}
}

func clamp24(v float64) int32 {
	if v > 8388607 {
		return 8388607
	}
	if v < -8388608 {
		return -8388608
	}
	return int32(v)
}
