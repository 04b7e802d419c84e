// Package advisory asks an OpenAI-compatible chat endpoint for a one-line
// play suggestion. It is strictly best-effort: every failure path degrades
// to canned advice and the match never waits on it beyond the caller's
// context deadline.
package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fantan/internal/domain"
)

// FallbackAdvice is returned whenever the model is unreachable or unhelpful.
const FallbackAdvice = "Shed your sevens early and keep your hand total under the knock line."

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
)

// Snapshot is the advice request: the asking player's private view plus the
// public table state.
type Snapshot struct {
	Hand        []domain.Card
	Board       domain.Board
	TopDiscard  *domain.Card
	HandPoints  int
	DeckRemain  int
	PlayerCount int
}

// Client talks to one chat-completions endpoint.
type Client struct {
	http    *http.Client
	log     *zap.Logger
	apiKey  string
	baseURL string
	model   string
}

// NewClient builds a client with explicit settings; empty baseURL and model
// fall back to the OpenAI defaults.
func NewClient(log *zap.Logger, apiKey, baseURL, model string) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	return &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

// NewClientFromEnv loads .env if present and reads FANTAN_ADVISOR_API_KEY
// (falling back to OPENAI_API_KEY, then to well-known key files). A missing
// key is not an error; the client just serves fallback advice.
func NewClientFromEnv(log *zap.Logger) *Client {
	_ = godotenv.Load()
	key := os.Getenv("FANTAN_ADVISOR_API_KEY")
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		key = keyFromFile()
	}
	return NewClient(
		log,
		key,
		os.Getenv("FANTAN_ADVISOR_BASE_URL"),
		os.Getenv("FANTAN_ADVISOR_MODEL"),
	)
}

// Enabled reports whether the client has credentials to call out with.
func (c *Client) Enabled() bool { return c.apiKey != "" }

// Suggest returns one line of advice for the snapshot. It never returns an
// error: any transport, auth or decode failure logs a warning and yields
// FallbackAdvice instead.
func (c *Client) Suggest(ctx context.Context, snap Snapshot) string {
	if !c.Enabled() {
		return FallbackAdvice
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: renderSnapshot(snap)},
		},
		MaxTokens: 120,
	})
	if err != nil {
		c.log.Warn("advisory: encode request", zap.Error(err))
		return FallbackAdvice
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		c.log.Warn("advisory: build request", zap.Error(err))
		return FallbackAdvice
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("advisory: call failed", zap.Error(err))
		return FallbackAdvice
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("advisory: non-200 response", zap.Int("status", resp.StatusCode))
		return FallbackAdvice
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.log.Warn("advisory: decode response", zap.Error(err))
		return FallbackAdvice
	}
	if len(out.Choices) == 0 {
		return FallbackAdvice
	}
	advice := strings.TrimSpace(out.Choices[0].Message.Content)
	if advice == "" {
		return FallbackAdvice
	}
	return advice
}

const systemPrompt = "You are a card game coach for a sequence-building game. " +
	"Players build per-suit runs outward from the 7, meld three of a kind, and knock when their hand is cheap. " +
	"Jokers are wild but cost 30 points in hand and their declared identity can penalize holders of the real card. " +
	"Give exactly one short sentence of advice for the hand you are shown."

func renderSnapshot(s Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Players: %d. Deck remaining: %d. Hand points: %d.\n", s.PlayerCount, s.DeckRemain, s.HandPoints)
	b.WriteString("Hand:")
	for _, c := range s.Hand {
		b.WriteString(" " + c.String())
	}
	b.WriteString("\nBoard:")
	for suit := domain.Suit(0); suit < domain.NumSuits; suit++ {
		seq := s.Board[suit]
		if !seq.HasSeven {
			fmt.Fprintf(&b, " %s:closed", suit)
			continue
		}
		fmt.Fprintf(&b, " %s:%d-%d", suit, seq.Low, seq.High)
	}
	if s.TopDiscard != nil {
		fmt.Fprintf(&b, "\nTop discard: %s", s.TopDiscard)
	}
	return b.String()
}

// keyFromFile checks the conventional secret file locations.
func keyFromFile() string {
	candidates := []string{
		os.Getenv("FANTAN_ADVISOR_API_KEY_FILE"),
		"./secrets/advisor_api_key.txt",
		"/run/secrets/advisor_api_key",
	}
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if b, err := os.ReadFile(path); err == nil {
			if key := strings.TrimSpace(string(b)); key != "" {
				return key
			}
		}
	}
	return ""
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
