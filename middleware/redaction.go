package middleware

import (
	"regexp"
	"strings"

	"github.com/llmcomms/llmcomms/llm"
)

const (
	emailSentinel      = "***@***"
	phoneMaskSentinel  = "[phone-redacted]"
	credentialSentinel = "[credential-redacted]"
	previewMaxLen      = 160
)

var (
	emailPattern      = regexp.MustCompile(`[\w.+-]+@[\w-]+\.[\w.-]+`)
	longDigitRun      = regexp.MustCompile(`\d{7,}`)
	credentialPattern = regexp.MustCompile(`(?i)(sk-[a-z0-9]{10,}|(?:api[_-]?key|secret|token|password)\s*[:=]\s*\S+)`)
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// maskContent runs content through the ordered masking rules (spec §4.3):
// email addresses, then long digit runs, then credential-like patterns.
func maskContent(content string) string {
	masked := emailPattern.ReplaceAllString(content, emailSentinel)
	masked = longDigitRun.ReplaceAllString(masked, phoneMaskSentinel)
	masked = credentialPattern.ReplaceAllString(masked, credentialSentinel)
	return masked
}

func normalizeWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// buildPreview concatenates the last one-or-two message contents, each
// whitespace-normalized, joined by " | ", trimmed to previewMaxLen.
func buildPreview(messages []llm.Message) string {
	n := len(messages)
	if n == 0 {
		return ""
	}
	start := n - 2
	if start < 0 {
		start = 0
	}

	parts := make([]string, 0, 2)
	for _, msg := range messages[start:n] {
		parts = append(parts, normalizeWhitespace(msg.Content))
	}
	return truncate(strings.Join(parts, " | "), previewMaxLen)
}

// RedactionMiddleware implements spec §4.3: it never mutates the original
// Request, always publishes a redaction preview, and (when enabled)
// publishes a masked copy of the message list for downstream content
// logging.
type RedactionMiddleware struct{}

// NewRedactionMiddleware constructs a RedactionMiddleware.
func NewRedactionMiddleware() *RedactionMiddleware {
	return &RedactionMiddleware{}
}

func (m *RedactionMiddleware) redact(ctx *llm.ExecutionContext) {
	if ctx.Request == nil || ctx.CallContext == nil {
		return
	}

	ctx.CallContext.SetItem(llm.ItemRedactedPreview, buildPreview(ctx.Request.Messages))

	if !ctx.Options.EnableRedaction {
		return
	}

	masked := make([]llm.Message, len(ctx.Request.Messages))
	for i, msg := range ctx.Request.Messages {
		masked[i] = llm.Message{Role: msg.Role, Content: maskContent(msg.Content)}
	}
	ctx.CallContext.SetItem(llm.ItemRedactedMessages, masked)
}

// Handle implements Middleware.
func (m *RedactionMiddleware) Handle(ctx *llm.ExecutionContext, next Next) (*llm.Response, error) {
	m.redact(ctx)
	return next(ctx)
}

// HandleStream implements Middleware.
func (m *RedactionMiddleware) HandleStream(ctx *llm.ExecutionContext, next StreamNext) (llm.Stream, error) {
	m.redact(ctx)
	return next(ctx)
}
