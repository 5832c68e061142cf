package backend

import "context"

// Client defines the interface for communicating with the inference
// runtime that hosts the GPU-resident models.
type Client interface {
	Health(ctx context.Context) error
	Device(ctx context.Context) (*DeviceInfo, error)
	LoadModel(ctx context.Context, req *LoadModelRequest) error
	CustomVoice(ctx context.Context, req *CustomVoiceRequest) (*TTSResult, error)
	CloneVoice(ctx context.Context, req *CloneVoiceRequest) (*TTSResult, error)
	XTTS(ctx context.Context, req *XTTSRequest) (*TTSResult, error)
	Transcribe(ctx context.Context, req *TranscribeRequest) (*TranscribeResult, error)
}

// Ensure RuntimeClient implements Client.
var _ Client = (*RuntimeClient)(nil)

// DeviceInfo reports the runtime's inference device, fixed at its start.
type DeviceInfo struct {
	Device           string  `json:"device" msgpack:"device"`
	BFloat16         bool    `json:"bfloat16" msgpack:"bfloat16"`
	FlashAttention   bool    `json:"flash_attention" msgpack:"flash_attention"`
	GPUAvailable     bool    `json:"gpu_available" msgpack:"gpu_available"`
	GPUMemoryUsedMB  float64 `json:"gpu_memory_used_mb" msgpack:"gpu_memory_used_mb"`
	GPUMemoryTotalMB float64 `json:"gpu_memory_total_mb" msgpack:"gpu_memory_total_mb"`
}

// LoadModelRequest asks the runtime to materialize a model into a named
// slot. Path is either a local directory or a registry identifier the
// runtime's loader resolves itself.
type LoadModelRequest struct {
	Model              string `json:"model" msgpack:"model"`
	Path               string `json:"path" msgpack:"path"`
	DeviceMap          string `json:"device_map,omitempty" msgpack:"device_map,omitempty"`
	Dtype              string `json:"dtype,omitempty" msgpack:"dtype,omitempty"`
	AttnImplementation string `json:"attn_implementation,omitempty" msgpack:"attn_implementation,omitempty"`
}

// CustomVoiceRequest generates speech with a preset timbre.
type CustomVoiceRequest struct {
	Text        string `json:"text" msgpack:"text"`
	Speaker     string `json:"speaker" msgpack:"speaker"`
	Language    string `json:"language" msgpack:"language"`
	Instruction string `json:"instruction,omitempty" msgpack:"instruction,omitempty"`
}

// CloneVoiceRequest generates speech in the voice of the reference sample.
// XVectorOnly selects the cheaper embedding-only mode used when no
// reference transcript is available.
type CloneVoiceRequest struct {
	Text        string `json:"text" msgpack:"text"`
	RefAudio    []byte `json:"ref_audio" msgpack:"ref_audio"`
	RefText     string `json:"ref_text,omitempty" msgpack:"ref_text,omitempty"`
	XVectorOnly bool   `json:"x_vector_only" msgpack:"x_vector_only"`
	Language    string `json:"language" msgpack:"language"`
}

// XTTSRequest generates speech with the cross-lingual model.
type XTTSRequest struct {
	Text       string  `json:"text" msgpack:"text"`
	Language   string  `json:"language" msgpack:"language"`
	SpeakerWav []byte  `json:"speaker_wav,omitempty" msgpack:"speaker_wav,omitempty"`
	Speed      float64 `json:"speed" msgpack:"speed"`
}

// TTSResult carries generated audio as WAV bytes.
type TTSResult struct {
	Audio      []byte `json:"audio" msgpack:"audio"`
	SampleRate int    `json:"sample_rate" msgpack:"sample_rate"`
}

// TranscribeRequest runs ASR over the supplied audio.
type TranscribeRequest struct {
	Audio    []byte `json:"audio" msgpack:"audio"`
	BeamSize int    `json:"beam_size,omitempty" msgpack:"beam_size,omitempty"`
}

// TranscribeResult is the ASR output plus the detected source language.
type TranscribeResult struct {
	Language string `json:"language" msgpack:"language"`
	Text     string `json:"text" msgpack:"text"`
}
