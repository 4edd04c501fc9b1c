package controller

import (
	"context"
	"encoding/json"
	"math/rand/v2"
	"strconv"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/Laisky/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fuchsia74/assistant-gateway/monitor"
	"github.com/fuchsia74/assistant-gateway/relay/assistant"
)

const toolGetStockPrice = "getStockPrice"

// stockPriceLookup stands in for a market-data call. Swapped out in tests.
var stockPriceLookup = lookupStockPrice

// dispatchToolCalls resolves every requested tool call concurrently and
// joins before returning. Output order matches input call order.
func dispatchToolCalls(ctx context.Context, lg glog.Logger, calls []assistant.ToolCall) ([]assistant.ToolOutput, error) {
	outputs := make([]assistant.ToolOutput, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		g.Go(func() error {
			out, err := resolveToolCall(gctx, lg, call)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

// resolveToolCall computes one Tool Output. Unrecognized tool names pass the
// original call through unchanged rather than failing the run.
func resolveToolCall(ctx context.Context, lg glog.Logger, call assistant.ToolCall) (assistant.ToolOutput, error) {
	monitor.RecordToolCall(call.Function.Name)

	switch call.Function.Name {
	case toolGetStockPrice:
		var args struct {
			Symbol string `json:"symbol"`
		}
		if err := json.Unmarshal([]byte(call.Function.Arguments), &args); err != nil {
			return assistant.ToolOutput{}, errors.Wrapf(err, "parse arguments for tool call %s", call.ID)
		}
		price, err := stockPriceLookup(ctx, args.Symbol)
		if err != nil {
			return assistant.ToolOutput{}, errors.Wrapf(err, "look up stock price for %q", args.Symbol)
		}
		lg.Debug("resolved stock price",
			zap.String("tool_call_id", call.ID),
			zap.String("symbol", args.Symbol),
			zap.String("price", price))
		return assistant.ToolOutput{ToolCallID: call.ID, Output: price}, nil

	default:
		lg.Warn("unknown tool requested, passing call through",
			zap.String("tool_call_id", call.ID),
			zap.String("tool", call.Function.Name))
		raw, err := json.Marshal(call)
		if err != nil {
			return assistant.ToolOutput{}, errors.Wrapf(err, "serialize pass-through for tool call %s", call.ID)
		}
		return assistant.ToolOutput{ToolCallID: call.ID, Output: string(raw)}, nil
	}
}

// lookupStockPrice simulates the external market-data dependency: a
// pseudo-random quote scaled to three figures, as a numeric string.
func lookupStockPrice(_ context.Context, _ string) (string, error) {
	return strconv.FormatFloat(rand.Float64()*1000, 'f', 2, 64), nil
}
