package util

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/llmcomms/llmcomms/llm"
)

// canonicalMessage and canonicalRequest fix the property order used for
// hashing: struct field declaration order, with omitempty dropping null/
// zero fields so two semantically-identical requests serialize identically
// regardless of how their zero values were produced.
type canonicalMessage struct {
	Role    llm.MessageRole `json:"role"`
	Content string          `json:"content"`
}

type canonicalToolDef struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  llm.ToolSchema `json:"parameters,omitempty"`
}

type canonicalRequest struct {
	Messages        []canonicalMessage `json:"messages"`
	Tools           []canonicalToolDef `json:"tools,omitempty"`
	Temperature     *float64           `json:"temperature,omitempty"`
	TopP            *float64           `json:"top_p,omitempty"`
	MaxOutputTokens *int               `json:"max_output_tokens,omitempty"`
	ResponseFormat  llm.ResponseFormat `json:"response_format,omitempty"`
}

// Normalize returns a copy of req with volatile, non-semantic fields
// stripped: ProviderHints is always nil in the result. Every other field is
// preserved exactly. Normalize is idempotent: normalizing an already-
// normalized request returns an equivalent request.
func Normalize(req *llm.Request) *llm.Request {
	clone := req.Clone()
	clone.ProviderHints = nil
	return clone
}

// toCanonical converts a normalized Request into its canonical form for
// hashing.
func toCanonical(req *llm.Request) canonicalRequest {
	c := canonicalRequest{
		Temperature:     req.Temperature,
		TopP:            req.TopP,
		MaxOutputTokens: req.MaxOutputTokens,
		ResponseFormat:  req.ResponseFormat,
	}

	c.Messages = make([]canonicalMessage, len(req.Messages))
	for i, m := range req.Messages {
		c.Messages[i] = canonicalMessage{Role: m.Role, Content: m.Content}
	}

	if len(req.Tools) > 0 {
		c.Tools = make([]canonicalToolDef, len(req.Tools))
		for i, t := range req.Tools {
			c.Tools[i] = canonicalToolDef{Name: t.Name, Description: t.Description, Parameters: t.Parameters}
		}
	}

	return c
}

// Hash returns the lowercase hex SHA-256 digest of the canonical JSON
// encoding of the normalized request (spec §4.9). Hashing a Request first
// through Normalize means two requests differing only in ProviderHints
// hash identically (invariant I3).
func Hash(req *llm.Request) (string, error) {
	normalized := Normalize(req)
	canonical := toCanonical(normalized)

	encoded, err := json.Marshal(canonical)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:]), nil
}
