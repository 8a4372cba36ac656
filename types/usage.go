package types

import "time"

// UsageRecord is one immutable row describing a single attempted upstream
// call. total_tokens is always request_tokens + response_tokens; failed
// attempts record zero tokens on both sides.
type UsageRecord struct {
	Timestamp       time.Time `bson:"ts" json:"timestamp"`
	Provider        string    `bson:"provider" json:"provider"`
	Model           string    `bson:"model" json:"model"`
	RequestTokens   int       `bson:"request_tokens" json:"request_tokens"`
	ResponseTokens  int       `bson:"response_tokens" json:"response_tokens"`
	TotalTokens     int       `bson:"total_tokens" json:"total_tokens"`
	Success         bool      `bson:"success" json:"success"`
	ErrorCode       string    `bson:"error_code,omitempty" json:"error_code,omitempty"`
}

// NewUsageRecord builds a row with total_tokens derived from the two
// components, enforcing the invariant at construction time.
func NewUsageRecord(provider, model string, requestTokens, responseTokens int, success bool, errorCode string) UsageRecord {
	return UsageRecord{
		Timestamp:      time.Now().UTC(),
		Provider:       provider,
		Model:          model,
		RequestTokens:  requestTokens,
		ResponseTokens: responseTokens,
		TotalTokens:    requestTokens + responseTokens,
		Success:        success,
		ErrorCode:      errorCode,
	}
}

// WindowStats is the count+token aggregation over one sliding window.
type WindowStats struct {
	Requests int64
	Tokens   int64
}

// UsageStats bundles the minute and day aggregations for one provider/model.
type UsageStats struct {
	Minute WindowStats
	Day    WindowStats
}
