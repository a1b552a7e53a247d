package inference

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/sync/semaphore"
)

const numClasses = 2

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Safe to call multiple
// times; only the first call has any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNXEngine runs the claim classification model through ONNX Runtime. It
// expects a model with a single [batch, rowWidth] float32 input and a single
// [batch, 2] float32 output of class scores.
//
// ONNX sessions allow concurrent Run calls, but in-flight inference is
// additionally bounded by a weighted semaphore and each call is wrapped in a
// timeout so a stuck runtime cannot pile up request goroutines.
type ONNXEngine struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	rowWidth   int64

	inflight *semaphore.Weighted
	timeout  time.Duration
}

// NewONNXEngine loads the model at modelPath and creates an inference
// session. rowWidth is the fixed encoded-row width the model was trained
// with; maxInflight bounds concurrent Run calls and timeout caps each
// invocation. The ONNX Runtime shared library is expected alongside the
// model file.
func NewONNXEngine(modelPath string, rowWidth int, maxInflight int64, timeout time.Duration) (*ONNXEngine, error) {
	libPath := filepath.Join(filepath.Dir(modelPath), "libonnxruntime.so")
	if err := initORT(libPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	// Inspect the model to discover tensor names and validate shapes.
	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to read model info: %w", err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("onnx: expected 1 input tensor, got %d", len(inputs))
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("onnx: model has no outputs")
	}

	inDims := inputs[0].Dimensions
	if len(inDims) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D input tensor, got %v", inDims)
	}
	if inDims[1] > 0 && inDims[1] != int64(rowWidth) {
		return nil, fmt.Errorf("onnx: model input width %d != encoder row width %d",
			inDims[1], rowWidth)
	}

	outDims := outputs[0].Dimensions
	if len(outDims) != 2 {
		return nil, fmt.Errorf("onnx: expected 2D output tensor, got %v", outDims)
	}
	if outDims[1] > 0 && outDims[1] != numClasses {
		return nil, fmt.Errorf("onnx: expected %d output classes, got %d",
			numClasses, outDims[1])
	}

	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer opts.Destroy()
	opts.SetIntraOpNumThreads(4)
	opts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{inputs[0].Name},
		[]string{outputs[0].Name},
		opts,
	)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	if maxInflight < 1 {
		maxInflight = 1
	}
	return &ONNXEngine{
		session:    session,
		inputName:  inputs[0].Name,
		outputName: outputs[0].Name,
		rowWidth:   int64(rowWidth),
		inflight:   semaphore.NewWeighted(maxInflight),
		timeout:    timeout,
	}, nil
}

// Infer scores a single encoded row and returns the two class scores.
func (e *ONNXEngine) Infer(ctx context.Context, row []int64) ([]float32, error) {
	if int64(len(row)) != e.rowWidth {
		return nil, fmt.Errorf("onnx: row has %d entries, want %d", len(row), e.rowWidth)
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	if err := e.inflight.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("onnx: waiting for inference slot: %w", err)
	}
	defer e.inflight.Release(1)

	// The converted model takes the index row as float32; Keras embedding
	// inputs survive ONNX conversion with a float input tensor.
	data := make([]float32, len(row))
	for i, v := range row {
		data[i] = float32(v)
	}

	tIn, err := ort.NewTensor(ort.NewShape(1, e.rowWidth), data)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, numClasses))
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := e.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return nil, fmt.Errorf("onnx: inference failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("onnx: inference deadline: %w", err)
	}

	// Copy data out before the tensor is destroyed.
	scores := make([]float32, numClasses)
	copy(scores, tOut.GetData())
	return scores, nil
}

// Close releases the ONNX session resources.
func (e *ONNXEngine) Close() error {
	return e.session.Destroy()
}
