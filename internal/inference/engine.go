package inference

import "context"

// Engine scores one fixed-width encoded row and returns the model's
// per-class scores. Implementations must be safe for concurrent callers with
// independent inputs.
type Engine interface {
	Infer(ctx context.Context, row []int64) ([]float32, error)
	Close() error
}
