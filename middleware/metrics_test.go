package middleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/llmcomms/llmcomms/llm"
)

func requestLabels(outcome, finishReason, errorType string) prometheus.Labels {
	return prometheus.Labels{
		"provider":      "fake",
		"model":         "fake-model",
		"streaming":     "false",
		"outcome":       outcome,
		"finish_reason": finishReason,
		"error_type":    errorType,
	}
}

func TestMetricsRecordsExactlyOneRequestAndDuration(t *testing.T) {
	metrics := NewMetrics()
	mw := NewMetricsMiddleware(metrics)

	ctx := testCtx()
	ctx.Options.EnableTokenUsageEvents = true
	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{
			FinishReason: llm.FinishReasonStop,
			Usage:        llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}, nil
	})

	if _, err := mw.Handle(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labels := requestLabels("success", "stop", "")
	if got := testutil.ToFloat64(metrics.requestsTotal.With(labels)); got != 1 {
		t.Errorf("expected exactly 1 request recorded, got %v", got)
	}

	durationCount, err := testutil.GatherAndCount(metrics.Registry(), "llmcomms_request_duration_ms")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if durationCount != 1 {
		t.Errorf("expected exactly 1 duration series, got %d", durationCount)
	}
}

func TestMetricsSkipsTokenHistogramsWhenZero(t *testing.T) {
	metrics := NewMetrics()
	mw := NewMetricsMiddleware(metrics)

	ctx := testCtx()
	ctx.Options.EnableTokenUsageEvents = true
	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return &llm.Response{FinishReason: llm.FinishReasonStop}, nil
	})

	if _, err := mw.Handle(ctx, next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	promptCount, err := testutil.GatherAndCount(metrics.Registry(), "llmcomms_tokens_prompt")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if promptCount != 0 {
		t.Errorf("expected no prompt token series when count is zero, got %d", promptCount)
	}
}

func TestMetricsRecordsFailureOutcome(t *testing.T) {
	metrics := NewMetrics()
	mw := NewMetricsMiddleware(metrics)

	ctx := testCtx()
	next := Next(func(ctx *llm.ExecutionContext) (*llm.Response, error) {
		return nil, llm.NewValidationError("bad", nil)
	})

	if _, err := mw.Handle(ctx, next); err == nil {
		t.Fatal("expected error to propagate")
	}

	labels := requestLabels("failure", "", string(llm.ErrorKindValidation))
	if got := testutil.ToFloat64(metrics.requestsTotal.With(labels)); got != 1 {
		t.Errorf("expected exactly 1 failure recorded, got %v", got)
	}
}
