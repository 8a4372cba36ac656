package types

import "testing"

func TestNewUsageRecord_TotalTokensInvariant(t *testing.T) {
	t.Parallel()

	rec := NewUsageRecord("cerebras", "llama-3.3-70b", 40, 12, true, "")
	if rec.TotalTokens != rec.RequestTokens+rec.ResponseTokens {
		t.Fatalf("total_tokens %d != request %d + response %d", rec.TotalTokens, rec.RequestTokens, rec.ResponseTokens)
	}
}

func TestNewUsageRecord_FailedAttemptZeroTokens(t *testing.T) {
	t.Parallel()

	rec := NewUsageRecord("mistral", "mistral-small", 0, 0, false, string(ErrRateLimited))
	if rec.TotalTokens != 0 {
		t.Fatalf("expected zero tokens on failed attempt, got %d", rec.TotalTokens)
	}
	if rec.Success {
		t.Fatalf("expected Success=false")
	}
}
