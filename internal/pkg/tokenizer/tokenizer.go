// Package tokenizer wraps the cl100k_base BPE codec for prompt budgeting.
package tokenizer

import (
	"fmt"
	"sync"

	"github.com/tiktoken-go/tokenizer"
	"go.uber.org/zap"
)

var (
	once  sync.Once
	codec tokenizer.Codec
	initE error
)

// Init loads the codec. Safe to call more than once; CountTokens calls it
// lazily when needed.
func Init(log *zap.Logger) error {
	once.Do(func() {
		c, err := tokenizer.Get(tokenizer.Cl100kBase)
		if err != nil {
			initE = fmt.Errorf("load cl100k_base codec: %w", err)
			return
		}
		codec = c
		if log != nil {
			log.Debug("tokenizer initialized", zap.String("codec", "cl100k_base"))
		}
	})
	return initE
}

// CountTokens returns the BPE token count of text. Counts are approximate
// for non-OpenAI models but close enough for budget trimming.
func CountTokens(text string) (int, error) {
	if err := Init(nil); err != nil {
		return 0, err
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
