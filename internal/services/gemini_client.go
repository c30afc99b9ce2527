package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dyslexifriend/backend/internal/logger"
	"github.com/dyslexifriend/backend/internal/types"
	"github.com/dyslexifriend/backend/internal/utils"
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

// GeminiClient is the text-generation oracle: simplification, syllable
// breakdowns, exercise generation and encouragement. The reading-analysis
// pipeline never touches it.
type GeminiClient interface {
	SimplifyText(ctx context.Context, text, level string) (string, error)
	BreakIntoSyllables(ctx context.Context, text string) ([]types.SyllableBreakdown, error)
	GenerateExercise(ctx context.Context, difficulty, topic string) (*types.ReadingExercise, error)
	GenerateEncouragement(score float64) string
}

type geminiClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewGeminiClient(log *logger.Logger) (GeminiClient, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}

	baseURL := os.Getenv("GEMINI_BASE_URL")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := os.Getenv("GEMINI_MODEL")
	if model == "" {
		model = "gemini-1.5-flash"
	}

	timeoutSec := utils.GetEnvAsInt("GEMINI_TIMEOUT_SECONDS", 60, log)
	maxRetries := utils.GetEnvAsInt("GEMINI_MAX_RETRIES", 4, log)

	return &geminiClient{
		log:        log.With("service", "GeminiClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type geminiHTTPError struct {
	StatusCode int
	Body       string
}

func (e *geminiHTTPError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func isRetryableHTTP(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	if code >= 500 && code <= 599 {
		return true
	}
	return false
}

func isRetryableErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var httpErr *geminiHTTPError
	if errors.As(err, &httpErr) {
		return isRetryableHTTP(httpErr.StatusCode)
	}
	return false
}

func jitterSleep(base time.Duration) time.Duration {
	// +/- 20%
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *geminiClient) doOnce(ctx context.Context, prompt string) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		return "", &geminiHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("gemini decode: %w", err)
	}
	if len(out.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range out.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty text")
	}
	return text, nil
}

func (c *geminiClient) generateText(ctx context.Context, prompt string) (string, error) {
	backoff := 500 * time.Millisecond
	var last error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(jitterSleep(backoff)):
			}
			backoff *= 2
		}

		text, err := c.doOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		last = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryableErr(err) {
			return "", err
		}
		c.log.Warn("Gemini call failed, retrying", "attempt", attempt, "error", err)
	}
	return "", last
}

func (c *geminiClient) SimplifyText(ctx context.Context, text, level string) (string, error) {
	prompt := fmt.Sprintf(`You are an expert reading specialist for dyslexic students.

Original text: %q

Rewrite this text for a %s reading level with these rules:
1. Use short, simple sentences (max 10 words)
2. Avoid complex words - use common alternatives
3. Break long words into smaller chunks with hyphens
4. Use active voice only
5. Add line breaks every 2 sentences
6. Replace difficult words with easier synonyms

Return ONLY the simplified text, nothing else.`, text, level)

	return c.generateText(ctx, prompt)
}

func (c *geminiClient) BreakIntoSyllables(ctx context.Context, text string) ([]types.SyllableBreakdown, error) {
	prompt := fmt.Sprintf(`Break these words into syllables with • separators:
%s

Format: word: syl•la•bles

Example:
difficulty: dif•fi•cul•ty
reading: read•ing`, text)

	resp, err := c.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var breakdown []types.SyllableBreakdown
	for _, line := range strings.Split(strings.TrimSpace(resp), "\n") {
		if !strings.Contains(line, ":") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		word := strings.TrimSpace(parts[0])
		syllables := strings.TrimSpace(parts[1])
		if word == "" || syllables == "" {
			continue
		}
		breakdown = append(breakdown, types.SyllableBreakdown{
			Word:      word,
			Syllables: syllables,
			Count:     strings.Count(syllables, "•") + 1,
		})
	}
	return breakdown, nil
}

var exerciseDifficulties = map[string]string{
	"easy":   "Grade 1-2 (50-100 words)",
	"medium": "Grade 3-4 (100-150 words)",
	"hard":   "Grade 5-6 (150-200 words)",
}

func (c *geminiClient) GenerateExercise(ctx context.Context, difficulty, topic string) (*types.ReadingExercise, error) {
	gradeBand, ok := exerciseDifficulties[difficulty]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}

	prompt := fmt.Sprintf(`Create a fun, dyslexia-friendly reading exercise:

Topic: %s
Difficulty: %s

Requirements:
1. Write a short, engaging story
2. Use dyslexia-friendly formatting:
   - Short sentences (max 10 words)
   - Simple, common words
   - Active voice
   - Clear paragraph breaks
3. After the story, create 3 interactive questions:
   - 1 multiple choice
   - 1 true/false
   - 1 fill-in-the-blank

Return JSON format:
{
  "story": "text here",
  "questions": [
    {"type": "mcq", "question": "", "options": [], "answer": ""},
    {"type": "truefalse", "question": "", "answer": true},
    {"type": "fillblank", "question": "", "answer": ""}
  ],
  "fun_fact": "encouraging message"
}`, topic, gradeBand)

	resp, err := c.generateText(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var exercise types.ReadingExercise
	if err := json.Unmarshal([]byte(stripJSONFences(resp)), &exercise); err != nil {
		return nil, fmt.Errorf("gemini exercise decode: %w", err)
	}
	return &exercise, nil
}

func stripJSONFences(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}

// GenerateEncouragement picks a canned message by score band; no API call.
func (c *geminiClient) GenerateEncouragement(score float64) string {
	var messages []string
	switch {
	case score >= 80:
		messages = []string{
			"🌟 Amazing! You're becoming a reading superstar!",
			"🎉 Fantastic work! Keep up the great reading!",
			"⭐ You're crushing it! Your hard work is paying off!",
		}
	case score >= 60:
		messages = []string{
			"💪 Good effort! You're making progress!",
			"📚 Nice job! Practice makes perfect!",
			"🎯 You're getting better every day!",
		}
	default:
		messages = []string{
			"🌱 Great start! Every expert was once a beginner!",
			"💫 Keep trying! You're learning something new!",
			"🚀 Don't give up! You're on the right path!",
		}
	}
	return messages[rand.Intn(len(messages))]
}
