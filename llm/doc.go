// Package llm defines the provider-neutral data contracts for the request
// execution engine: messages, tools, requests, responses, streaming events,
// the per-invocation context, client options, and the error taxonomy.
//
// # Core Concepts
//
//  1. Messages: Message is a role plus a content string. Immutable after
//     construction.
//
//  2. Tools: ToolDefinition describes a callable tool; ToolCall is an
//     invocation emitted by the model.
//
//  3. Request/Response: Request carries messages, tools, and generation
//     options. Response carries the assistant message, usage, finish
//     reason, and any tool calls.
//
//  4. Streaming: StreamEvent is a tagged union (delta/tool_call/reasoning/
//     complete/error) delivered in provider order via the Stream interface.
//
//  5. Context: ProviderCallContext carries the request id and a sideband
//     item bag; ExecutionContext threads provider/model/request/options/
//     cancellation through the middleware chain.
//
//  6. Errors: Error provides a nine-kind taxonomy with correlation fields
//     (request id, status code, provider code, retry-after).
package llm
