package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"testing"

	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuchsia74/assistant-gateway/relay/assistant"
)

func testLogger(t *testing.T) glog.Logger {
	t.Helper()
	lg, err := glog.NewConsoleWithName("test", glog.LevelDebug)
	require.NoError(t, err)
	return lg
}

func TestDispatchStockPrice(t *testing.T) {
	calls := []assistant.ToolCall{
		{
			ID:   "call_1",
			Type: "function",
			Function: assistant.FunctionCall{
				Name:      toolGetStockPrice,
				Arguments: `{"symbol":"AAPL"}`,
			},
		},
	}

	outputs, err := dispatchToolCalls(context.Background(), testLogger(t), calls)
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "call_1", outputs[0].ToolCallID)

	_, err = strconv.ParseFloat(outputs[0].Output, 64)
	assert.NoError(t, err, "stock price output must be a numeric string, got %q", outputs[0].Output)
}

func TestDispatchUnknownToolPassThrough(t *testing.T) {
	call := assistant.ToolCall{
		ID:   "call_2",
		Type: "function",
		Function: assistant.FunctionCall{
			Name:      "getWeather",
			Arguments: `{"city":"Berlin"}`,
		},
	}

	outputs, err := dispatchToolCalls(context.Background(), testLogger(t), []assistant.ToolCall{call})
	require.NoError(t, err)
	require.Len(t, outputs, 1)
	assert.Equal(t, "call_2", outputs[0].ToolCallID)

	var echoed assistant.ToolCall
	require.NoError(t, json.Unmarshal([]byte(outputs[0].Output), &echoed))
	assert.Equal(t, call, echoed, "unknown tool calls pass through unchanged")
}

func TestDispatchPreservesCallOrder(t *testing.T) {
	original := stockPriceLookup
	stockPriceLookup = func(_ context.Context, symbol string) (string, error) {
		return "price-" + symbol, nil
	}
	t.Cleanup(func() { stockPriceLookup = original })

	symbols := []string{"AAPL", "MSFT", "GOOG", "AMZN", "META"}
	calls := make([]assistant.ToolCall, len(symbols))
	for i, symbol := range symbols {
		calls[i] = assistant.ToolCall{
			ID:   fmt.Sprintf("call_%d", i),
			Type: "function",
			Function: assistant.FunctionCall{
				Name:      toolGetStockPrice,
				Arguments: fmt.Sprintf(`{"symbol":%q}`, symbol),
			},
		}
	}

	outputs, err := dispatchToolCalls(context.Background(), testLogger(t), calls)
	require.NoError(t, err)
	require.Len(t, outputs, len(calls))
	for i, symbol := range symbols {
		assert.Equal(t, fmt.Sprintf("call_%d", i), outputs[i].ToolCallID)
		assert.Equal(t, "price-"+symbol, outputs[i].Output)
	}
}

func TestDispatchMalformedArguments(t *testing.T) {
	calls := []assistant.ToolCall{
		{
			ID:   "call_bad",
			Type: "function",
			Function: assistant.FunctionCall{
				Name:      toolGetStockPrice,
				Arguments: `{"symbol":`,
			},
		},
	}

	_, err := dispatchToolCalls(context.Background(), testLogger(t), calls)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "call_bad")
}
