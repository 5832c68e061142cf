package tts

import (
	"context"
	"runtime"

	"github.com/qwen-tts-go/qwen-tts-go/internal/models"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// Health assembles the liveness report. The endpoint answers 200 even
// while models are still coming up; Status carries the load state.
func (s *Service) Health(ctx context.Context) *schema.HealthResponse {
	resp := &schema.HealthResponse{
		Status:                 "healthy",
		Device:                 "unknown",
		Platform:               runtime.GOOS,
		CustomVoiceModelLoaded: s.manager.IsLoaded(ModelCustomVoice),
		BaseModelLoaded:        s.manager.IsLoaded(ModelBase),
	}

	if !resp.CustomVoiceModelLoaded || !resp.BaseModelLoaded {
		resp.Status = "initializing"
	}
	for _, name := range []string{ModelCustomVoice, ModelBase} {
		if state, _ := s.manager.StateOf(name); state == models.Failed {
			resp.Status = "degraded"
		}
	}

	// Query the runtime directly so GPU memory numbers are live.
	device, err := s.client.Device(ctx)
	if err != nil || device == nil {
		return resp
	}

	resp.Device = device.Device
	resp.GPUAvailable = device.GPUAvailable
	if device.GPUAvailable {
		used, total := device.GPUMemoryUsedMB, device.GPUMemoryTotalMB
		resp.GPUMemoryUsedMB = &used
		resp.GPUMemoryTotalMB = &total
	}
	return resp
}

// Ready reports whether both synthesis models are loaded.
func (s *Service) Ready() bool {
	return s.manager.IsLoaded(ModelCustomVoice) && s.manager.IsLoaded(ModelBase)
}
