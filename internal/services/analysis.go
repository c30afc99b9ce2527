package services

import (
	"context"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/types"
)

// Transcriber is the narrow view of speech-to-text the analysis pipeline
// needs. SpeechProviderService satisfies it; tests substitute a stub.
type Transcriber interface {
	TranscribeAudioBytes(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type AnalysisService interface {
	AnalyzeReading(ctx context.Context, audio []byte, mimeType string, expectedText string) (*types.ReadingAnalysis, error)
}

type analysisService struct {
	log    *logger.Logger
	speech Transcriber
}

func NewAnalysisService(log *logger.Logger, speech Transcriber) AnalysisService {
	return &analysisService{
		log:    log.With("service", "AnalysisService"),
		speech: speech,
	}
}

func (as *analysisService) AnalyzeReading(ctx context.Context, audio []byte, mimeType string, expectedText string) (*types.ReadingAnalysis, error) {
	spoken := ""
	if as.speech != nil {
		text, err := as.speech.TranscribeAudioBytes(ctx, audio, mimeType)
		if err != nil {
			// transcription failure scores as silence: every expected word stumbles
			as.log.Warn("Transcription failed, scoring against empty speech", "error", err)
		} else {
			spoken = text
		}
	} else {
		as.log.Warn("No transcriber configured, scoring against empty speech")
	}

	return CompareTexts(expectedText, spoken), nil
}
