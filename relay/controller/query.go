package controller

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"

	"github.com/fuchsia74/assistant-gateway/common/config"
	"github.com/fuchsia74/assistant-gateway/monitor"
	"github.com/fuchsia74/assistant-gateway/relay/assistant"
)

// EmitFunc receives text fragments in delivery order. A returned error stops
// the stream; the consumer sees no further fragments.
type EmitFunc func(fragment string) error

// QueryProcessor turns one user query into an ordered stream of text
// fragments from a streaming assistant run, resolving tool calls along the
// way. One instance serves all requests; per-request state lives on the
// stack.
type QueryProcessor struct {
	client *assistant.Client
}

func NewQueryProcessor(client *assistant.Client) *QueryProcessor {
	return &QueryProcessor{client: client}
}

// StreamQuery opens a conversation for the query and writes every produced
// fragment to emit. Setup failures (assistant resolution, thread creation,
// starting the run) are returned to the caller; failures after streaming has
// begun are logged and end the stream without an error, so the client only
// observes a truncated body.
func (p *QueryProcessor) StreamQuery(ctx context.Context, lg glog.Logger, query string, emit EmitFunc) error {
	asst, err := p.resolveAssistant(ctx)
	if err != nil {
		return errors.Wrap(err, "resolve assistant")
	}

	thread, err := p.client.CreateThread(ctx)
	if err != nil {
		return errors.Wrap(err, "create thread")
	}
	lg = lg.With(
		zap.String("assistant_id", asst.ID),
		zap.String("thread_id", thread.ID),
	)

	if err := p.client.CreateMessage(ctx, thread.ID, assistant.MessageRequest{
		Role:    "user",
		Content: query,
	}); err != nil {
		return errors.Wrap(err, "append user message")
	}

	stream, err := p.client.CreateRunStream(ctx, thread.ID, asst.ID)
	if err != nil {
		return errors.Wrap(err, "start streaming run")
	}
	defer stream.Close()

	if err := p.consumeRun(ctx, lg, stream, thread.ID, emit, 0); err != nil {
		// Streaming already started: swallow so the caller closes the
		// partial body instead of reporting a structured error.
		lg.Error("run stream ended early", zap.Error(err))
	}
	return nil
}

// resolveAssistant fetches the pinned assistant when one is configured,
// otherwise registers a fresh one from the static definition.
func (p *QueryProcessor) resolveAssistant(ctx context.Context) (*assistant.Assistant, error) {
	if config.AssistantID != "" {
		return p.client.RetrieveAssistant(ctx, config.AssistantID)
	}
	def := config.DefaultAssistant()
	return p.client.CreateAssistant(ctx, assistant.AssistantRequest{
		Model:        def.Model,
		Name:         def.Name,
		Instructions: def.Instructions,
		Tools: []assistant.Tool{
			{
				Type: "function",
				Function: &assistant.Function{
					Name:        toolGetStockPrice,
					Description: "Fetch the current stock price for a given company symbol",
					Parameters: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"symbol": map[string]any{
								"type":        "string",
								"description": "The stock symbol, e.g. AAPL",
							},
						},
						"required": []string{"symbol"},
					},
				},
			},
		},
	})
}

// consumeRun demultiplexes one run event stream: text deltas become emitted
// fragments, requires-action events dispatch tool calls and splice the
// resumed stream's fragments in place, everything else is skipped. round
// counts requires-action hops already taken for this request.
func (p *QueryProcessor) consumeRun(ctx context.Context, lg glog.Logger, stream *assistant.RunStream, threadID string, emit EmitFunc, round int) error {
	for {
		ev, err := stream.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "receive run event")
		}

		switch ev.Event {
		case assistant.EventThreadMessageDelta:
			var delta assistant.MessageDelta
			if err := json.Unmarshal(ev.Data, &delta); err != nil {
				lg.Warn("skip malformed message delta", zap.Error(err))
				continue
			}
			if err := emit(delta.FirstTextValue()); err != nil {
				return errors.Wrap(err, "emit fragment")
			}
			monitor.RecordFragment()

		case assistant.EventThreadRunRequiresAction:
			var run assistant.Run
			if err := json.Unmarshal(ev.Data, &run); err != nil {
				return errors.Wrap(err, "parse requires-action run")
			}
			if round >= config.MaxToolRounds {
				lg.Warn("tool round limit reached, ending stream",
					zap.Int("max_tool_rounds", config.MaxToolRounds),
					zap.String("run_id", run.ID))
				return nil
			}
			if err := p.dispatchAndResume(ctx, lg, &run, threadID, emit, round+1); err != nil {
				// Dispatch failures are logged, never surfaced: the
				// produced sequence just ends here.
				lg.Error("tool dispatch failed",
					zap.String("run_id", run.ID),
					zap.Error(err))
				return nil
			}

		case assistant.EventThreadRunFailed:
			lg.Error("run reported failure", zap.ByteString("payload", ev.Data))
			return nil

		default:
			// other event kinds are deliberately ignored
		}
	}
}

// dispatchAndResume computes one output per requested tool call, resumes the
// run with them, and forwards the resumed stream through the same consume
// loop so a further requires-action round is handled identically.
func (p *QueryProcessor) dispatchAndResume(ctx context.Context, lg glog.Logger, run *assistant.Run, threadID string, emit EmitFunc, round int) error {
	calls := run.ToolCalls()
	if len(calls) == 0 {
		return errors.Errorf("requires-action run %s carries no tool calls", run.ID)
	}

	outputs, err := dispatchToolCalls(ctx, lg, calls)
	if err != nil {
		return errors.Wrap(err, "compute tool outputs")
	}

	resumed, err := p.client.SubmitToolOutputsStream(ctx, threadID, run.ID, outputs)
	if err != nil {
		return errors.Wrap(err, "submit tool outputs")
	}
	defer resumed.Close()

	monitor.RecordToolRound()
	return p.consumeRun(ctx, lg, resumed, threadID, emit, round)
}
