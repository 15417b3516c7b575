package app

import (
	"github.com/bytedance/sonic"
)

// Envelope types exchanged on the interview audio channel
const (
	EnvelopeSessionStart  = "session_start"
	EnvelopeAudio         = "audio"
	EnvelopeTranscription = "transcription"
	EnvelopeError         = "error"
	EnvelopeStatus        = "status"
)

// Envelope 音频通道 JSON 消息
// client -> server: session_start{sessionId,candidateName}, audio{data,sessionId}
// server -> client: audio{text,data}, transcription{text}, error{message}, status{message}
type Envelope struct {
	Type          string `json:"type"`
	SessionID     string `json:"sessionId,omitempty"`
	CandidateName string `json:"candidateName,omitempty"`
	// Data base64 encoded audio chunk
	Data    string `json:"data,omitempty"`
	Text    string `json:"text,omitempty"`
	Message string `json:"message,omitempty"`
}

// EncodeEnvelope 编码消息
func EncodeEnvelope(e Envelope) ([]byte, error) {
	return sonic.Marshal(e)
}

// DecodeEnvelope 解码消息
func DecodeEnvelope(b []byte) (Envelope, error) {
	var e Envelope
	err := sonic.Unmarshal(b, &e)
	return e, err
}

// ErrorEnvelope builds an error message for the candidate
func ErrorEnvelope(message string) Envelope {
	return Envelope{Type: EnvelopeError, Message: message}
}
