// Package audio converts browser-recorded answer uploads into the 16 kHz
// mono 16-bit PCM that the STT providers consume.
//
// Two container formats are accepted: RIFF/WAV with PCM payload, and Ogg
// Opus as produced by MediaRecorder. Decoding is lossy-tolerant — trailing
// garbage and truncated final frames are dropped rather than rejected.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// TargetSampleRate is the sample rate expected by the STT providers.
const TargetSampleRate = 16000

// ErrUnknownFormat is returned by Decode when the payload is neither WAV
// nor Ogg Opus.
var ErrUnknownFormat = errors.New("audio: unknown container format")

// Decode converts an uploaded recording to 16 kHz mono 16-bit PCM.
// The container is sniffed from the payload's magic bytes.
func Decode(data []byte) ([]byte, error) {
	switch {
	case len(data) >= 4 && string(data[:4]) == "RIFF":
		pcm, rate, channels, err := DecodeWAV(data)
		if err != nil {
			return nil, err
		}
		return normalize(pcm, rate, channels), nil
	case len(data) >= 4 && string(data[:4]) == "OggS":
		pcm, err := DecodeOggOpus(data)
		if err != nil {
			return nil, err
		}
		return pcm, nil
	default:
		return nil, ErrUnknownFormat
	}
}

// normalize downmixes and resamples PCM to [TargetSampleRate] mono.
func normalize(pcm []byte, rate, channels int) []byte {
	if channels == 2 {
		pcm = StereoToMono(pcm)
	}
	return ResampleMono16(pcm, rate, TargetSampleRate)
}

// DecodeWAV extracts the raw PCM payload from a RIFF/WAV container.
// Only uncompressed 16-bit PCM (format tag 1) is supported.
func DecodeWAV(data []byte) (pcm []byte, sampleRate, channels int, err error) {
	if len(data) < 44 || string(data[:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, 0, 0, errors.New("audio: not a RIFF/WAVE file")
	}

	// Walk chunks; fmt must precede data.
	pos := 12
	var haveFmt bool
	for pos+8 <= len(data) {
		id := string(data[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		body := pos + 8
		if body+size > len(data) {
			size = len(data) - body // tolerate truncated final chunk
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, 0, 0, errors.New("audio: malformed fmt chunk")
			}
			format := binary.LittleEndian.Uint16(data[body : body+2])
			if format != 1 {
				return nil, 0, 0, fmt.Errorf("audio: unsupported WAV format tag %d (want PCM)", format)
			}
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if bits != 16 {
				return nil, 0, 0, fmt.Errorf("audio: unsupported WAV bit depth %d (want 16)", bits)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, 0, 0, errors.New("audio: data chunk before fmt chunk")
			}
			if channels < 1 || channels > 2 || sampleRate <= 0 {
				return nil, 0, 0, fmt.Errorf("audio: unsupported WAV layout (%d ch, %d Hz)", channels, sampleRate)
			}
			return data[body : body+size], sampleRate, channels, nil
		}

		// Chunks are word-aligned.
		pos = body + size
		if size%2 == 1 {
			pos++
		}
	}
	return nil, 0, 0, errors.New("audio: no data chunk found")
}

// EncodeWAV wraps 16-bit signed little-endian PCM in a RIFF/WAV container.
// Used when handing audio to HTTP-based STT backends.
func EncodeWAV(pcm []byte, sampleRate, channels int) []byte {
	const bps = 16
	byteRate := sampleRate * channels * bps / 8
	blockAlign := channels * bps / 8
	dataSize := len(pcm)

	buf := make([]byte, 44+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(36+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1)
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(buf[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(buf[34:36], uint16(bps))
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	copy(buf[44:], pcm)
	return buf
}

// StereoToMono averages L+R per stereo frame (4 bytes) to produce mono.
// Uses int32 arithmetic to prevent overflow and clamps to int16 range.
func StereoToMono(pcm []byte) []byte {
	frames := len(pcm) / 4
	out := make([]byte, frames*2)
	for i := range frames {
		l := int32(int16(pcm[i*4]) | int16(pcm[i*4+1])<<8)
		r := int32(int16(pcm[i*4+2]) | int16(pcm[i*4+3])<<8)
		avg := (l + r) / 2
		if avg > 32767 {
			avg = 32767
		} else if avg < -32768 {
			avg = -32768
		}
		out[i*2] = byte(avg)
		out[i*2+1] = byte(avg >> 8)
	}
	return out
}

// ResampleMono16 resamples 16-bit mono PCM from srcRate to dstRate using
// linear interpolation. If srcRate == dstRate the input is returned
// unchanged.
func ResampleMono16(pcm []byte, srcRate, dstRate int) []byte {
	if srcRate <= 0 || dstRate <= 0 {
		return pcm
	}
	if srcRate == dstRate || len(pcm) < 2 {
		return pcm
	}
	srcSamples := len(pcm) / 2
	dstSamples := int(int64(srcSamples) * int64(dstRate) / int64(srcRate))
	if dstSamples == 0 {
		return nil
	}

	out := make([]byte, dstSamples*2)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstSamples {
		srcPos := float64(i) * ratio
		srcIdx := int(srcPos)
		frac := srcPos - float64(srcIdx)

		s0 := int16(pcm[srcIdx*2]) | int16(pcm[srcIdx*2+1])<<8
		s1 := s0
		if srcIdx+1 < srcSamples {
			s1 = int16(pcm[(srcIdx+1)*2]) | int16(pcm[(srcIdx+1)*2+1])<<8
		}

		v := int16(float64(s0)*(1-frac) + float64(s1)*frac)
		out[i*2] = byte(v)
		out[i*2+1] = byte(v >> 8)
	}
	return out
}

// DurationSeconds returns the play time of a 16 kHz mono 16-bit PCM buffer.
func DurationSeconds(pcm []byte) float64 {
	return float64(len(pcm)/2) / TargetSampleRate
}
