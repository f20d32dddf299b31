package llm

// MessageRole identifies who produced a Message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleFunction  MessageRole = "function"
)

// Message is a single turn in a conversation: a role and its text content.
// Messages are immutable after construction; two messages are equivalent
// iff both fields are equal.
type Message struct {
	Role    MessageRole
	Content string
}

// NewMessage constructs a Message with the given role and content.
func NewMessage(role MessageRole, content string) Message {
	return Message{Role: role, Content: content}
}

// ToolSchema is a JSON-schema-like descriptor for a tool's parameters.
// It typically contains at least "type" and optionally "properties" and
// "required" (a []string of property names).
type ToolSchema map[string]interface{}

// RequiredProperties returns the schema's "required" list as a []string,
// accepting both []string and []interface{} encodings (the latter is what
// round-trips through encoding/json). Duplicate names collapse to one.
func (s ToolSchema) RequiredProperties() []string {
	raw, ok := s["required"]
	if !ok {
		return nil
	}

	seen := make(map[string]bool)
	var out []string
	add := func(v interface{}) {
		name, ok := v.(string)
		if !ok || name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	switch v := raw.(type) {
	case []string:
		for _, name := range v {
			add(name)
		}
	case []interface{}:
		for _, item := range v {
			add(item)
		}
	}
	return out
}

// ToolDefinition describes a tool that may be offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  ToolSchema
}

// ToolCollection is an ordered set of ToolDefinitions with unique,
// case-sensitive names.
type ToolCollection []ToolDefinition

// Find returns the definition with the given name (case-sensitive) and
// whether it was found.
func (c ToolCollection) Find(name string) (ToolDefinition, bool) {
	for _, def := range c {
		if def.Name == name {
			return def, true
		}
	}
	return ToolDefinition{}, false
}

// Names returns the collection's tool names in order.
func (c ToolCollection) Names() []string {
	names := make([]string, len(c))
	for i, def := range c {
		names[i] = def.Name
	}
	return names
}

// ToolCall is a tool invocation emitted by the model: a tool name and the
// raw JSON string holding its arguments. Never constructed by the caller.
type ToolCall struct {
	Name          string
	ArgumentsJSON string
}
