package schema

// ErrorResponse represents a standard error payload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse represents the health check response payload. The health
// endpoint always answers 200; Status carries the load state instead.
type HealthResponse struct {
	Status                 string   `json:"status"`
	Device                 string   `json:"device"`
	Platform               string   `json:"platform"`
	CustomVoiceModelLoaded bool     `json:"custom_voice_model_loaded"`
	BaseModelLoaded        bool     `json:"base_model_loaded"`
	GPUAvailable           bool     `json:"gpu_available"`
	GPUMemoryUsedMB        *float64 `json:"gpu_memory_used_mb,omitempty"`
	GPUMemoryTotalMB       *float64 `json:"gpu_memory_total_mb,omitempty"`
}

// ReadyResponse is returned by the readiness endpoint once both models are
// loaded.
type ReadyResponse struct {
	Status string `json:"status"`
}

// LanguageInfo is one entry of the /languages reference list.
type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SpeakerInfo is one entry of the /speakers reference list.
type SpeakerInfo struct {
	Name string `json:"name"`
}
