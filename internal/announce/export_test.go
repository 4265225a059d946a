package announce

import "github.com/alnah/podcut/internal/audio"

// Exports for testing. These allow black-box tests to inject a fake speech
// client without a real OpenAI client.

// SpeechClient exports speechClient for testing.
type SpeechClient = speechClient

// NewTestSynthesizer creates an OpenAISynthesizer around a fake client.
func NewTestSynthesizer(client SpeechClient, decoder audio.BytesDecoder, opts ...SynthesizerOption) *OpenAISynthesizer {
	return newSynthesizer(client, decoder, opts...)
}

// MaxInputChars exports maxInputChars for testing.
const MaxInputChars = maxInputChars
