package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pracare/backend/internal/domain"
)

// Sampling parameters for the two operations. Replies are short and
// conversational, analyses longer and more deterministic.
const (
	replyHistoryLimit = 10
	replyMaxTokens    = 500
	replyTemperature  = 0.7

	analysisHistoryLimit = 20
	analysisMaxTokens    = 800
	analysisTemperature  = 0.3
)

// DefaultSystemPrompt is the persona instruction prepended to every
// conversational request.
const DefaultSystemPrompt = `Since this is conversation give short response
You are Pracare, a compassionate and professional mental health chat assistant.
Your role is to provide empathetic, supportive responses to users seeking mental health guidance.

Guidelines:
- Always be empathetic, non-judgmental, and supportive
- Provide practical coping strategies and techniques
- Encourage professional help when appropriate
- Never diagnose or provide medical advice
- Keep responses concise but thorough
- Ask follow-up questions to better understand the user's situation
- Maintain confidentiality and respect privacy

Remember: You are not a replacement for professional therapy or medical treatment.`

const analysisPromptFormat = `As a mental health professional, analyze the following conversation messages and provide insights:

Messages: %s

Provide analysis in the following JSON format:
{
    "mood_indicators": ["list of detected moods"],
    "key_concerns": ["list of main concerns"],
    "coping_mechanisms": ["observed coping strategies"],
    "risk_factors": ["any concerning patterns"],
    "recommendations": ["professional recommendations"],
    "session_summary": "brief summary of the session"
}`

const (
	fallbackReply = "I apologize, but I'm experiencing technical difficulties. " +
		"Please try again in a moment, or consider reaching out to a mental health professional if you need immediate support."
	emptyReply = "No response from model."
)

// ErrNoUserMessages indicates an analysis was requested for a session with
// no user-authored messages.
var ErrNoUserMessages = errors.New("no user messages to analyze")

// ErrUnparsableAnalysis indicates the analysis response held no valid JSON.
// The returned Analysis still carries the raw text in its summary, so the
// caller may accept the degraded result.
var ErrUnparsableAnalysis = errors.New("analysis response is not valid JSON")

// Gateway translates conversation state into completion requests and
// completion responses back into typed data.
type Gateway struct {
	client Completer
	model  string

	// SystemPrompt is the conversational persona instruction. Deployments
	// may override it after construction.
	SystemPrompt string
}

// NewGateway creates a gateway using the given client and model name.
func NewGateway(client Completer, model string) *Gateway {
	return &Gateway{
		client:       client,
		model:        model,
		SystemPrompt: DefaultSystemPrompt,
	}
}

// Reply is the tagged result of a conversational turn. Degraded is set when
// the completion endpoint failed and Content holds the fallback text;
// Reason then records the underlying failure.
type Reply struct {
	Content  string
	Degraded bool
	Reason   string
}

// GenerateReply produces the assistant's answer for the given history. It
// never fails: endpoint errors become a degraded Reply so the chat stays
// usable.
func (g *Gateway) GenerateReply(ctx context.Context, history []domain.Message) Reply {
	recent := history
	if len(recent) > replyHistoryLimit {
		recent = recent[len(recent)-replyHistoryLimit:]
	}

	messages := make([]ChatMessage, 0, len(recent)+1)
	messages = append(messages, ChatMessage{Role: "system", Content: g.SystemPrompt})
	for _, msg := range recent {
		role := "assistant"
		if msg.Role == domain.RoleUser {
			role = "user"
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Content})
	}

	resp, err := g.client.ChatCompletion(ctx, &ChatRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   replyMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return Reply{Content: fallbackReply, Degraded: true, Reason: err.Error()}
	}

	content := ""
	if resp.Message != nil {
		content = strings.TrimSpace(resp.Message.Content)
	}
	if content == "" {
		content = emptyReply
	}
	return Reply{Content: content}
}

// Analysis is the structured result of analyzing one session.
type Analysis struct {
	MoodIndicators   []string `json:"mood_indicators"`
	KeyConcerns      []string `json:"key_concerns"`
	CopingMechanisms []string `json:"coping_mechanisms"`
	RiskFactors      []string `json:"risk_factors"`
	Recommendations  []string `json:"recommendations"`
	SessionSummary   string   `json:"session_summary"`
}

// AnalyzeSession analyzes the user-authored half of a session's history.
// Endpoint failures return a plain error. An unparsable response returns a
// degraded Analysis together with ErrUnparsableAnalysis.
func (g *Gateway) AnalyzeSession(ctx context.Context, history []domain.Message) (*Analysis, error) {
	var userMessages []string
	for _, msg := range history {
		if msg.Role == domain.RoleUser {
			userMessages = append(userMessages, msg.Content)
		}
	}
	if len(userMessages) == 0 {
		return nil, ErrNoUserMessages
	}
	if len(userMessages) > analysisHistoryLimit {
		userMessages = userMessages[len(userMessages)-analysisHistoryLimit:]
	}

	prompt := fmt.Sprintf(analysisPromptFormat, strings.Join(userMessages, " | "))

	resp, err := g.client.ChatCompletion(ctx, &ChatRequest{
		Model:       g.model,
		Messages:    []ChatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   analysisMaxTokens,
		Temperature: analysisTemperature,
		Format:      "json",
	})
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}

	raw := ""
	if resp.Message != nil {
		raw = resp.Message.Content
	}

	analysis, ok := parseAnalysis(raw)
	if !ok {
		return &Analysis{
			MoodIndicators:   []string{"Unable to parse"},
			KeyConcerns:      []string{"Analysis error"},
			CopingMechanisms: []string{},
			RiskFactors:      []string{},
			Recommendations:  []string{},
			SessionSummary:   raw,
		}, ErrUnparsableAnalysis
	}
	return analysis, nil
}

// parseAnalysis extracts the JSON object embedded in raw and decodes it.
// Responses often wrap the object in prose, so it scans from the first '{'
// to the last '}'.
func parseAnalysis(raw string) (*Analysis, bool) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var analysis Analysis
	if err := json.Unmarshal([]byte(raw[start:end+1]), &analysis); err != nil {
		return nil, false
	}

	// Missing fields default to empty rather than nil.
	if analysis.MoodIndicators == nil {
		analysis.MoodIndicators = []string{}
	}
	if analysis.KeyConcerns == nil {
		analysis.KeyConcerns = []string{}
	}
	if analysis.CopingMechanisms == nil {
		analysis.CopingMechanisms = []string{}
	}
	if analysis.RiskFactors == nil {
		analysis.RiskFactors = []string{}
	}
	if analysis.Recommendations == nil {
		analysis.Recommendations = []string{}
	}
	return &analysis, true
}
