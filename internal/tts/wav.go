package tts

import (
	"bytes"
	"encoding/binary"
	"errors"
)

// Output format: 24kHz 16-bit mono PCM.
const (
	sampleRate  = 24000
	sampleWidth = 2
	numChannels = 1
)

// silencePCM returns durationMS of silent PCM.
func silencePCM(durationMS int) []byte {
	samples := sampleRate * durationMS / 1000
	return make([]byte, samples*sampleWidth*numChannels)
}

// encodeWAV wraps raw PCM in a RIFF/WAVE header.
func encodeWAV(pcm []byte) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(pcm))
	byteRate := uint32(sampleRate * numChannels * sampleWidth)
	blockAlign := uint16(numChannels * sampleWidth)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, blockAlign)
	binary.Write(&buf, binary.LittleEndian, uint16(8*sampleWidth))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	buf.Write(pcm)
	return buf.Bytes()
}

// extractPCM returns the data chunk of a WAV byte stream. Input that is not
// RIFF is assumed to already be raw PCM.
func extractPCM(data []byte) []byte {
	if len(data) < 12 || !bytes.HasPrefix(data, []byte("RIFF")) || string(data[8:12]) != "WAVE" {
		return data
	}
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkLen := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if chunkID == "data" {
			end := body + chunkLen
			if end > len(data) {
				end = len(data)
			}
			return data[body:end]
		}
		offset = body + chunkLen
		if chunkLen%2 == 1 {
			offset++
		}
	}
	return data
}

var errNoAudio = errors.New("response contained no audio data")
