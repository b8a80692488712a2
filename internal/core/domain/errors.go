package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmbeddingBackend  = errors.New("embedding backend failure")
	ErrRerankBackend     = errors.New("rerank backend failure")
	ErrGenerationBackend = errors.New("generation backend failure")
	ErrStore             = errors.New("store failure")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
