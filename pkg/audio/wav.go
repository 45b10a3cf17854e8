// Package audio holds the WAV container helper used by the external ASR
// adapters. The core pipeline itself only ever deals in raw f32 PCM; WAV
// is purely a wire format for handing that PCM to an HTTP collaborator.
package audio

import (
	"bytes"
	"encoding/binary"
)

// FloatMonoSampleRate is the sample rate every []float32 buffer produced
// by the core pipeline is implicitly at.
const FloatMonoSampleRate = 16000

// EncodeFloat32Mono16k converts a mono f32 PCM buffer in [-1.0, 1.0] at
// 16 kHz into a 16-bit little-endian WAV container, the format every
// external ASR adapter in this module uploads.
func EncodeFloat32Mono16k(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		v := int16(s * 32767)
		pcm[2*i] = byte(v)
		pcm[2*i+1] = byte(v >> 8)
	}

	buf := new(bytes.Buffer)
	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint16(1))
	binary.Write(buf, binary.LittleEndian, uint32(FloatMonoSampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(FloatMonoSampleRate*2))
	binary.Write(buf, binary.LittleEndian, uint16(2))
	binary.Write(buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
