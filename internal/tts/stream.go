package tts

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// SynthesizeStream splits the text into sentences and synthesizes them
// one at a time, passing each finished chunk to emit in order. Sequence
// numbers start at zero and the final chunk carries is_last. A synthesis
// failure is reported in-band as an error chunk, since the response
// status is already committed when chunks start flowing.
func (s *Service) SynthesizeStream(ctx context.Context, req *schema.SynthesizeRequest, emit func(schema.StreamChunk) error) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.manager.EnsureLoaded(ctx, ModelCustomVoice); err != nil {
		return err
	}

	return s.gate.Stream(ctx, func(ctx context.Context) error {
		sentences := SplitSentences(req.Text)
		if len(sentences) == 0 {
			return emit(schema.StreamChunk{SequenceNumber: 0, IsLast: true})
		}

		for i, sentence := range sentences {
			result, err := s.customVoice(ctx, sentence, req.Speaker, req.Language, req.Instruction)
			if err != nil {
				s.logger.Error().Err(err).Int("sequence", i).Msg("stream synthesis failed")
				emitErr := emit(schema.StreamChunk{
					SequenceNumber: i,
					IsLast:         true,
					Error:          err.Error(),
				})
				if emitErr != nil {
					return emitErr
				}
				return err
			}

			chunk := schema.StreamChunk{
				Chunk:          base64.StdEncoding.EncodeToString(result.Audio),
				SequenceNumber: i,
				IsLast:         i == len(sentences)-1,
			}
			if err := emit(chunk); err != nil {
				return err
			}
			s.metrics.AddChunks(1)
		}
		return nil
	})
}
