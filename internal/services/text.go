package services

import (
	"context"
	"strings"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/types"
)

// readingSecondsPerWord matches the client's pacing estimate for dyslexic
// readers: roughly 100 words per minute.
const readingSecondsPerWord = 0.6

type TextService interface {
	SimplifyForStudent(ctx context.Context, text, level string) (*types.SimplifiedText, error)
}

type textService struct {
	log    *logger.Logger
	gemini GeminiClient
}

func NewTextService(log *logger.Logger, gemini GeminiClient) TextService {
	return &textService{
		log:    log.With("service", "TextService"),
		gemini: gemini,
	}
}

func (ts *textService) SimplifyForStudent(ctx context.Context, text, level string) (*types.SimplifiedText, error) {
	simplified, err := ts.gemini.SimplifyText(ctx, text, level)
	if err != nil {
		return nil, err
	}
	syllables, err := ts.gemini.BreakIntoSyllables(ctx, text)
	if err != nil {
		return nil, err
	}

	return &types.SimplifiedText{
		Original:            text,
		Simplified:          simplified,
		Syllables:           syllables,
		ReadingTimeEstimate: float64(len(strings.Fields(text))) * readingSecondsPerWord,
	}, nil
}
