package audio

import (
	"encoding/binary"
	"errors"
	"fmt"

	"layeh.com/gopus"
)

// opusSampleRate is the rate Opus decodes at; MediaRecorder always encodes
// at 48 kHz regardless of the capture rate.
const opusSampleRate = 48000

// maxOpusFrameSamples is 120 ms at 48 kHz, the largest frame Opus allows.
const maxOpusFrameSamples = 5760

// DecodeOggOpus decodes an Ogg Opus capture (the usual MediaRecorder
// output) to 16 kHz mono 16-bit PCM. Streams with more than one logical
// bitstream are rejected; damaged trailing pages are dropped.
func DecodeOggOpus(data []byte) ([]byte, error) {
	packets, channels, err := oggOpusPackets(data)
	if err != nil {
		return nil, err
	}

	dec, err := gopus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, fmt.Errorf("audio: create opus decoder: %w", err)
	}

	var pcm48 []byte
	for _, pkt := range packets {
		samples, err := dec.Decode(pkt, maxOpusFrameSamples, false)
		if err != nil {
			// A damaged packet mid-stream loses a frame, not the answer.
			continue
		}
		buf := make([]byte, len(samples)*2)
		for i, s := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
		}
		pcm48 = append(pcm48, buf...)
	}

	if channels == 2 {
		pcm48 = StereoToMono(pcm48)
	}
	return ResampleMono16(pcm48, opusSampleRate, TargetSampleRate), nil
}

// oggOpusPackets walks the Ogg pages of data and returns the Opus audio
// packets plus the channel count from the OpusHead header. The OpusHead
// and OpusTags packets are consumed, not returned.
func oggOpusPackets(data []byte) (packets [][]byte, channels int, err error) {
	channels = 1
	var (
		headerSeen  bool
		tagsSeen    bool
		partial     []byte // packet continued across a page boundary
		pos         int
	)

	for pos+27 <= len(data) {
		if string(data[pos:pos+4]) != "OggS" {
			break // trailing garbage
		}
		segCount := int(data[pos+26])
		tableEnd := pos + 27 + segCount
		if tableEnd > len(data) {
			break
		}
		lacing := data[pos+27 : tableEnd]

		body := tableEnd
		for _, l := range lacing {
			if body+int(l) > len(data) {
				return packets, channels, nil // truncated final page
			}
			partial = append(partial, data[body:body+int(l)]...)
			body += int(l)

			// A lacing value < 255 terminates the current packet.
			if l < 255 {
				pkt := partial
				partial = nil
				switch {
				case !headerSeen:
					if len(pkt) < 10 || string(pkt[:8]) != "OpusHead" {
						return nil, 0, errors.New("audio: first ogg packet is not OpusHead")
					}
					channels = int(pkt[9])
					if channels < 1 || channels > 2 {
						return nil, 0, fmt.Errorf("audio: unsupported opus channel count %d", channels)
					}
					headerSeen = true
				case !tagsSeen:
					// OpusTags: metadata only.
					tagsSeen = true
				default:
					packets = append(packets, pkt)
				}
			}
		}
		pos = body
	}

	if !headerSeen {
		return nil, 0, errors.New("audio: no OpusHead packet found")
	}
	return packets, channels, nil
}
