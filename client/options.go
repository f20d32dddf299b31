package client

import (
	"dario.cat/mergo"

	"github.com/llmcomms/llmcomms/llm"
)

// Option mutates the ClientOptions snapshot assembled at construction time
// (spec §4.13: "snapshots ClientOptions"). Applied in registration order
// over llm.DefaultClientOptions(), mirroring config.go's
// defaults-then-override merge without inheriting its nested-struct
// machinery, since ClientOptions is a single flat struct.
type Option func(*llm.ClientOptions)

// WithThrowOnInvalidJSON sets whether JSON-mode/tool validation failures are
// fatal (true) or merely annotated (false).
func WithThrowOnInvalidJSON(v bool) Option {
	return func(o *llm.ClientOptions) { o.ThrowOnInvalidJSON = v }
}

// WithRedaction enables or disables publishing the masked message list
// alongside the always-on preview.
func WithRedaction(v bool) Option {
	return func(o *llm.ClientOptions) { o.EnableRedaction = v }
}

// WithTokenUsageEvents enables or disables the metrics middleware's token
// histograms.
func WithTokenUsageEvents(v bool) Option {
	return func(o *llm.ClientOptions) { o.EnableTokenUsageEvents = v }
}

// WithCoalesceFinalStreamText enables concatenating every delta into the
// terminal stream event's text.
func WithCoalesceFinalStreamText(v bool) Option {
	return func(o *llm.ClientOptions) { o.CoalesceFinalStreamText = v }
}

// WithDefaultMaxOutputTokens sets the value the client applies to a Request
// that omits MaxOutputTokens.
func WithDefaultMaxOutputTokens(n int) Option {
	return func(o *llm.ClientOptions) { o.DefaultMaxOutputTokens = n }
}

// WithOptionsOverlay merges partial onto the options snapshot with
// mergo.Merge(..., mergo.WithOverride), the same call config.go uses to
// layer AgentsConfig onto its defaults. Because ClientOptions is made of
// plain bools and ints, mergo can't distinguish "explicitly set to false/0"
// from "left zero" in partial: a caller wanting to force
// ThrowOnInvalidJSON=false or DefaultMaxOutputTokens=0 onto a true/nonzero
// default must use WithThrowOnInvalidJSON/WithDefaultMaxOutputTokens instead,
// which assign unconditionally. This is the identical sharp edge config.go
// accepts for its own bool-typed fields; WithOptionsOverlay exists for bulk
// partial-struct scenarios (e.g. a profile loaded from an external config
// blob) where that caveat is acceptable.
func WithOptionsOverlay(partial llm.ClientOptions) Option {
	return func(o *llm.ClientOptions) {
		_ = mergo.Merge(o, partial, mergo.WithOverride)
	}
}

func buildOptions(opts []Option) llm.ClientOptions {
	options := llm.DefaultClientOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
