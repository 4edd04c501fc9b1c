package assistant

import "encoding/json"

// Wire types for the Azure OpenAI Assistants API. Field sets are trimmed to
// what the gateway reads or writes; unknown upstream fields are ignored.

type Assistant struct {
	ID           string `json:"id"`
	Object       string `json:"object"`
	CreatedAt    int64  `json:"created_at"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Model        string `json:"model"`
	Instructions string `json:"instructions"`
	Tools        []Tool `json:"tools"`
}

type AssistantRequest struct {
	Model        string `json:"model"`
	Name         string `json:"name,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Tools        []Tool `json:"tools,omitempty"`
}

// Tool declares a capability on an assistant. Only type "function" is used
// by this gateway.
type Tool struct {
	Type     string    `json:"type"`
	Function *Function `json:"function,omitempty"`
}

type Function struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Parameters  any    `json:"parameters,omitempty"`
}

type Thread struct {
	ID        string `json:"id"`
	Object    string `json:"object"`
	CreatedAt int64  `json:"created_at"`
}

type MessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type RunRequest struct {
	AssistantID string `json:"assistant_id"`
	Stream      bool   `json:"stream"`
}

// Run is the server-side execution of one conversation turn. Status moves
// through queued/in_progress/requires_action/completed upstream; the gateway
// only inspects RequiredAction.
type Run struct {
	ID             string          `json:"id"`
	Object         string          `json:"object"`
	ThreadID       string          `json:"thread_id"`
	AssistantID    string          `json:"assistant_id"`
	Status         string          `json:"status"`
	RequiredAction *RequiredAction `json:"required_action,omitempty"`
}

type RequiredAction struct {
	Type              string             `json:"type"`
	SubmitToolOutputs *SubmitToolOutputs `json:"submit_tool_outputs,omitempty"`
}

type SubmitToolOutputs struct {
	ToolCalls []ToolCall `json:"tool_calls"`
}

// ToolCall asks the caller to execute named external logic. Arguments is a
// JSON-encoded string as delivered upstream.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCalls returns the calls requested by a requires-action run, or nil.
func (r *Run) ToolCalls() []ToolCall {
	if r == nil || r.RequiredAction == nil || r.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

type ToolOutputsRequest struct {
	ToolOutputs []ToolOutput `json:"tool_outputs"`
	Stream      bool         `json:"stream"`
}

// MessageDelta is the payload of a thread.message.delta event.
type MessageDelta struct {
	ID     string `json:"id"`
	Object string `json:"object"`
	Delta  struct {
		Content []DeltaContent `json:"content"`
	} `json:"delta"`
}

type DeltaContent struct {
	Index int        `json:"index"`
	Type  string     `json:"type"`
	Text  *DeltaText `json:"text,omitempty"`
}

type DeltaText struct {
	Value string `json:"value"`
}

// FirstTextValue extracts the first content block's text value, defaulting
// to the empty string when the block or its text is absent.
func (d *MessageDelta) FirstTextValue() string {
	if d == nil || len(d.Delta.Content) == 0 {
		return ""
	}
	if text := d.Delta.Content[0].Text; text != nil {
		return text.Value
	}
	return ""
}

// Error is the upstream error envelope.
type Error struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code,omitempty"`
}

type errorResponse struct {
	Error *Error `json:"error"`
}

func parseErrorResponse(body []byte) *Error {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	return resp.Error
}
