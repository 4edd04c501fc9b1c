package controller

import (
	"sync"

	"github.com/Laisky/zap"
	"github.com/pkoukk/tiktoken-go"

	"github.com/fuchsia74/assistant-gateway/common/config"
	"github.com/fuchsia74/assistant-gateway/common/logger"
)

var (
	tokenEncoderOnce sync.Once
	tokenEncoder     *tiktoken.Tiktoken
)

// getTokenEncoder lazily resolves the encoder for the configured deployment.
// Offline environments fall back to the approximate count (set
// TIKTOKEN_CACHE_DIR to use pre-downloaded encodings).
func getTokenEncoder() *tiktoken.Tiktoken {
	tokenEncoderOnce.Do(func() {
		encoder, err := tiktoken.EncodingForModel(config.DeploymentName)
		if err != nil {
			logger.Logger.Warn("token encoder unavailable, using approximate counting",
				zap.String("model", config.DeploymentName),
				zap.Error(err))
			return
		}
		tokenEncoder = encoder
	})
	return tokenEncoder
}

// CountTokenText estimates the token count of streamed completion text. Used
// for the end-of-request log line only, never for control flow.
func CountTokenText(text string) int {
	if config.ApproximateTokenEnabled {
		return int(float64(len(text)) * 0.38)
	}
	encoder := getTokenEncoder()
	if encoder == nil {
		return int(float64(len(text)) * 0.38)
	}
	return len(encoder.Encode(text, nil, nil))
}
