package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Laisky/errors/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/fuchsia74/assistant-gateway/common/config"
)

// assistantCache keeps retrieved assistant definitions across requests. The
// definition is immutable upstream, so a short TTL is only a safety valve.
var assistantCache = gocache.New(config.AssistantCacheTTL, 30*time.Minute)

// Client talks to the Azure OpenAI Assistants REST API. It holds no
// per-request state and is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	apiVersion string
	httpClient *http.Client
}

// NewClient builds a client from the process configuration.
func NewClient() *Client {
	httpClient := &http.Client{}
	if config.RelayTimeout > 0 {
		httpClient.Timeout = time.Duration(config.RelayTimeout) * time.Second
	}
	return New(config.AzureEndpoint, config.AzureAPIKey, config.AzureAPIVersion, httpClient)
}

// New builds a client against an explicit endpoint. Tests use this to point
// the gateway at a scripted upstream.
func New(baseURL, apiKey, apiVersion string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		apiVersion: apiVersion,
		httpClient: httpClient,
	}
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/openai%s?api-version=%s", c.baseURL, path, c.apiVersion)
}

func (c *Client) newRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request payload")
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, errors.Wrap(err, "build upstream request")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("api-key", c.apiKey)
	}
	return req, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "request %s %s", method, path)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read upstream response")
	}
	if resp.StatusCode >= http.StatusBadRequest {
		if apiErr := parseErrorResponse(data); apiErr != nil {
			return errors.Errorf("upstream %s %s: status %d: %s (%s)",
				method, path, resp.StatusCode, apiErr.Message, apiErr.Type)
		}
		return errors.Errorf("upstream %s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "decode upstream response")
	}
	return nil
}

func (c *Client) doStream(ctx context.Context, method, path string, payload any) (*RunStream, error) {
	req, err := c.newRequest(ctx, method, path, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "request %s %s", method, path)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		data, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if readErr != nil {
			return nil, errors.Wrapf(readErr, "read error body for %s %s", method, path)
		}
		if apiErr := parseErrorResponse(data); apiErr != nil {
			return nil, errors.Errorf("upstream %s %s: status %d: %s (%s)",
				method, path, resp.StatusCode, apiErr.Message, apiErr.Type)
		}
		return nil, errors.Errorf("upstream %s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}
	return NewRunStream(resp.Body), nil
}

// RetrieveAssistant fetches an assistant definition by id, serving repeat
// lookups from the in-process cache.
func (c *Client) RetrieveAssistant(ctx context.Context, id string) (*Assistant, error) {
	if cached, ok := assistantCache.Get(id); ok {
		if asst, ok := cached.(*Assistant); ok {
			return asst, nil
		}
	}
	var asst Assistant
	if err := c.doJSON(ctx, http.MethodGet, "/assistants/"+id, nil, &asst); err != nil {
		return nil, errors.Wrapf(err, "retrieve assistant %s", id)
	}
	assistantCache.SetDefault(id, &asst)
	return &asst, nil
}

// CreateAssistant registers a new assistant from the given definition.
func (c *Client) CreateAssistant(ctx context.Context, req AssistantRequest) (*Assistant, error) {
	var asst Assistant
	if err := c.doJSON(ctx, http.MethodPost, "/assistants", req, &asst); err != nil {
		return nil, errors.Wrap(err, "create assistant")
	}
	return &asst, nil
}

// CreateThread opens a fresh conversation thread.
func (c *Client) CreateThread(ctx context.Context) (*Thread, error) {
	var thread Thread
	if err := c.doJSON(ctx, http.MethodPost, "/threads", struct{}{}, &thread); err != nil {
		return nil, errors.Wrap(err, "create thread")
	}
	return &thread, nil
}

// CreateMessage appends a message to a thread.
func (c *Client) CreateMessage(ctx context.Context, threadID string, req MessageRequest) error {
	if err := c.doJSON(ctx, http.MethodPost, "/threads/"+threadID+"/messages", req, nil); err != nil {
		return errors.Wrapf(err, "create message on thread %s", threadID)
	}
	return nil
}

// CreateRunStream starts a run on the thread in streaming mode.
func (c *Client) CreateRunStream(ctx context.Context, threadID, assistantID string) (*RunStream, error) {
	stream, err := c.doStream(ctx, http.MethodPost, "/threads/"+threadID+"/runs", RunRequest{
		AssistantID: assistantID,
		Stream:      true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "create run on thread %s", threadID)
	}
	return stream, nil
}

// SubmitToolOutputsStream resumes a requires-action run with the computed
// tool outputs, opening a new event stream.
func (c *Client) SubmitToolOutputsStream(ctx context.Context, threadID, runID string, outputs []ToolOutput) (*RunStream, error) {
	path := "/threads/" + threadID + "/runs/" + runID + "/submit_tool_outputs"
	stream, err := c.doStream(ctx, http.MethodPost, path, ToolOutputsRequest{
		ToolOutputs: outputs,
		Stream:      true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "submit tool outputs for run %s", runID)
	}
	return stream, nil
}
