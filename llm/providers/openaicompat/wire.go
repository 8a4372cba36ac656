package openaicompat

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/quotapilot/gateway/types"
)

// wireMessage is the OpenAI wire shape for one chat message.
type wireMessage struct {
	Role       string          `json:"role"`
	Content    string          `json:"content,omitempty"`
	Name       string          `json:"name,omitempty"`
	ToolCalls  []wireToolCall  `json:"tool_calls,omitempty"`
	ToolCallID string          `json:"tool_call_id,omitempty"`
}

type wireToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

// wireRequest is the request body posted to the upstream's
// /chat/completions endpoint.
type wireRequest struct {
	Model          string         `json:"model"`
	Messages       []wireMessage  `json:"messages"`
	Stream         bool           `json:"stream,omitempty"`
	Tools          []any          `json:"tools,omitempty"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
	MaxTokens      *int           `json:"max_tokens,omitempty"`

	// Extra carries passthrough scalar fields (temperature, top_p, ...)
	// flattened into the wire object at marshal time.
	Extra map[string]any `json:"-"`
}

func (r wireRequest) MarshalJSON() ([]byte, error) {
	type alias wireRequest
	base, err := json.Marshal(alias(r))
	if err != nil {
		return nil, err
	}
	if len(r.Extra) == 0 {
		return base, nil
	}
	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Extra {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// wireResponse is the response body returned by the upstream's
// /chat/completions endpoint.
type wireResponse struct {
	ID      string `json:"id"`
	Created int64  `json:"created"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// wireModelList is the response body returned by the upstream's
// /models endpoint.
type wireModelList struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// wireErrorBody is the conventional OpenAI error envelope.
type wireErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// buildWireRequest translates a normalized ChatRequest to the upstream wire
// shape, applying the response_format override rule from the component
// design: request.JSON forces json_object, overriding any client-supplied
// response_format; otherwise response_format passes through verbatim.
func buildWireRequest(req *types.ChatRequest) wireRequest {
	out := wireRequest{
		Model:     req.Model,
		Stream:    req.Stream,
		Tools:     req.Tools,
		MaxTokens: req.MaxTokens,
		Extra:     req.Extra,
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, toWireMessage(m))
	}
	if req.RequiresJSON() {
		out.ResponseFormat = map[string]any{"type": "json_object"}
	} else if req.ResponseFormat != nil {
		out.ResponseFormat = req.ResponseFormat
	}
	return out
}

func toWireMessage(m types.Message) wireMessage {
	wm := wireMessage{
		Role:       string(m.Role),
		Content:    m.Content,
		Name:       m.Name,
		ToolCallID: m.ToolCallID,
	}
	for _, tc := range m.ToolCalls {
		wtc := wireToolCall{ID: tc.ID, Type: "function"}
		wtc.Function.Name = tc.Name
		wtc.Function.Arguments = tc.Arguments
		wm.ToolCalls = append(wm.ToolCalls, wtc)
	}
	return wm
}

// toChatResponse maps the upstream wire response back to the normalized
// shape. modelUsed is the adapter-reported model name (wire.Model when
// present, else the model the request asked for), since usage rows must
// record the adapter-reported name, not the client-supplied one.
func toChatResponse(wr wireResponse, requestedModel string) *types.ChatResponse {
	model := wr.Model
	if model == "" {
		model = requestedModel
	}
	resp := &types.ChatResponse{
		ID:      wr.ID,
		Created: wr.Created,
		Model:   model,
		Usage: types.ChatUsage{
			PromptTokens:     wr.Usage.PromptTokens,
			CompletionTokens: wr.Usage.CompletionTokens,
			TotalTokens:      wr.Usage.TotalTokens,
		},
	}
	for _, c := range wr.Choices {
		msg := types.Message{Role: types.Role(c.Message.Role), Content: c.Message.Content}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
		resp.Choices = append(resp.Choices, types.ChatChoice{
			Index:        c.Index,
			Message:      msg,
			FinishReason: c.FinishReason,
		})
	}
	return resp
}

// readErrorMessage extracts a human-readable message from an upstream error
// body: the conventional {"error":{"message":...}} envelope if present,
// else the raw body text.
func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 64*1024))
	if err != nil {
		return ""
	}
	var envelope wireErrorBody
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return string(raw)
}

func parseHeaderInt64(v string) *int64 {
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
