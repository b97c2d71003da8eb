package xai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/illsk1lls/Grokory/internal/domain"
)

const systemPrompt = "You are Grok, a helpful AI assistant."

// CannedReply is returned when no API key is configured. Demo mode is a
// deliberate degraded-but-functional state, not an error.
const CannedReply = "I am running in demo mode without an API key, so this is all you get from me. Set XAI_API_KEY to talk to Grok."

type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithURL(apiKey, model, "https://api.x.ai/v1")
}

func NewClientWithURL(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = "grok-beta"
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Temperature is pinned to 0 for deterministic replies, so it must not be
// omitted when zero.
type request struct {
	Messages    []message `json:"messages"`
	Model       string    `json:"model"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ask sends one utterance to the chat completions endpoint and returns the
// reply text. There are no retries: a failed call surfaces immediately as a
// classified *domain.AssistantError and the session loop decides what to say.
func (c *Client) Ask(ctx context.Context, utterance string) (string, error) {
	if c.apiKey == "" {
		return CannedReply, nil
	}

	reqBody := request{
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: utterance},
		},
		Model:       c.model,
		Stream:      false,
		Temperature: 0,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", domain.OtherFailure(fmt.Sprintf("marshaling request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", domain.OtherFailure(fmt.Sprintf("creating request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", classifyAPIError(resp.StatusCode, respBody)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", domain.OtherFailure(fmt.Sprintf("decoding response: %v", err))
	}

	if len(result.Choices) == 0 {
		return "", domain.OtherFailure("empty choices in response")
	}

	return result.Choices[0].Message.Content, nil
}

// classifyTransportError maps dial-level failures to the network kind via
// structured inspection of the error chain.
func classifyTransportError(err error) *domain.AssistantError {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.NetworkUnreachable(fmt.Sprintf("resolving host: %v", dnsErr))
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return domain.NetworkUnreachable(fmt.Sprintf("connecting: %v", opErr))
	}

	return domain.OtherFailure(fmt.Sprintf("sending request: %v", err))
}

// classifyAPIError inspects the status first and falls back to matching the
// body against known credit-exhaustion phrasing. The pattern match is
// best-effort: the API reports exhaustion in prose, not in a machine field.
func classifyAPIError(status int, body []byte) *domain.AssistantError {
	text := strings.ToLower(string(body))

	if status == http.StatusPaymentRequired || status == http.StatusTooManyRequests {
		return domain.QuotaExceeded(fmt.Sprintf("API error %d: %s", status, body))
	}
	if strings.Contains(text, "credits") || strings.Contains(text, "quota") {
		return domain.QuotaExceeded(fmt.Sprintf("API error %d: %s", status, body))
	}

	return domain.OtherFailure(fmt.Sprintf("API error %d: %s", status, body))
}
