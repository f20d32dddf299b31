package util

import (
	"github.com/llmcomms/llmcomms/llm"
	"github.com/samber/lo"
)

// FunctionToolDescriptor is the shared "{type: function, function:
// {name, description, parameters}}" shape every OpenAI-style adapter emits
// for tools, per spec §4.11.
type FunctionToolDescriptor struct {
	Type     string                 `json:"type"`
	Function FunctionToolDefinition `json:"function"`
}

// FunctionToolDefinition is the nested "function" object of a
// FunctionToolDescriptor.
type FunctionToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  llm.ToolSchema `json:"parameters,omitempty"`
}

// ExtractFunctionTools converts a ToolCollection into the vendor-neutral
// function-tool descriptor shape that OpenAI-style, Azure, and (with a
// thin extra wrapper) Ollama adapters all serialize the same way.
func ExtractFunctionTools(tools llm.ToolCollection) []FunctionToolDescriptor {
	return lo.Map(tools, func(def llm.ToolDefinition, _ int) FunctionToolDescriptor {
		return FunctionToolDescriptor{
			Type: "function",
			Function: FunctionToolDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		}
	})
}

// UniqueToolNames reports whether every tool name in the collection is
// distinct (case-sensitive), using lo.Uniq to dedupe and comparing
// lengths — the same "dedupe then compare" idiom the teacher's config
// loader uses for server-name dedup.
func UniqueToolNames(tools llm.ToolCollection) bool {
	names := tools.Names()
	unique := lo.Uniq(names)
	return len(unique) == len(names)
}
