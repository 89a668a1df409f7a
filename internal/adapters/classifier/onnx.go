package classifier

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/okian/propensity/internal/domain/features"
)

// ortEnv manages global ONNX Runtime initialization (process-wide singleton).
var ortEnv struct {
	once sync.Once
	err  error
}

// initORT initializes the ONNX Runtime environment. Only the first call has
// any effect.
func initORT(libPath string) error {
	ortEnv.once.Do(func() {
		ort.SetSharedLibraryPath(libPath)
		ortEnv.err = ort.InitializeEnvironment()
	})
	return ortEnv.err
}

// ONNX runs a binary classifier graph exported with probabilities as a
// float tensor of shape [batch, 2].
type ONNX struct {
	session    *ort.DynamicAdvancedSession
	inputName  string
	outputName string
	width      int
	version    string
}

func loadONNX(data []byte, schema features.ModelSchema, o options) (*ONNX, error) {
	if err := initORT(o.libraryPath); err != nil {
		return nil, fmt.Errorf("onnx: failed to initialize runtime: %w", err)
	}

	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return nil, fmt.Errorf("%w: onnx: %w", ErrInvalidModel, err)
	}
	if len(inputs) != 1 {
		return nil, fmt.Errorf("%w: onnx: expected one input, got %d", ErrInvalidModel, len(inputs))
	}
	in := inputs[0]
	if in.DataType != ort.TensorElementDataTypeFloat {
		return nil, fmt.Errorf("%w: onnx: input %q is not float", ErrInvalidModel, in.Name)
	}
	width := len(schema.Columns)
	if dims := in.Dimensions; len(dims) != 2 || (dims[1] > 0 && int(dims[1]) != width) {
		return nil, fmt.Errorf("%w: onnx input shape %v, schema has %d columns", ErrSchemaDrift, dims, width)
	}

	outputName, err := pickOutput(outputs, o.outputName)
	if err != nil {
		return nil, err
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session options: %w", err)
	}
	defer sessOpts.Destroy()
	_ = sessOpts.SetIntraOpNumThreads(o.intraThreads)
	_ = sessOpts.SetInterOpNumThreads(1)

	session, err := ort.NewDynamicAdvancedSessionWithONNXData(data, []string{in.Name}, []string{outputName}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("onnx: failed to create session: %w", err)
	}

	return &ONNX{
		session:    session,
		inputName:  in.Name,
		outputName: outputName,
		width:      width,
		version:    schema.Version,
	}, nil
}

// pickOutput returns the preferred output if present, else the last float
// tensor output.
func pickOutput(outputs []ort.InputOutputInfo, preferred string) (string, error) {
	var last string
	for _, out := range outputs {
		if out.OrtValueType != ort.ONNXTypeTensor || out.DataType != ort.TensorElementDataTypeFloat {
			continue
		}
		if out.Name == preferred {
			return out.Name, nil
		}
		last = out.Name
	}
	if last == "" {
		return "", fmt.Errorf("%w: onnx: no float tensor output; export with zipmap disabled", ErrInvalidModel)
	}
	return last, nil
}

// PredictProba implements Classifier.
func (m *ONNX) PredictProba(ctx context.Context, v features.Vector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := checkWidth(v, m.width); err != nil {
		return 0, err
	}

	x := make([]float32, len(v))
	for i, f := range v {
		x[i] = float32(f)
	}
	tIn, err := ort.NewTensor(ort.NewShape(1, int64(m.width)), x)
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create input tensor: %w", err)
	}
	defer tIn.Destroy()

	tOut, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		return 0, fmt.Errorf("onnx: failed to create output tensor: %w", err)
	}
	defer tOut.Destroy()

	if err := m.session.Run([]ort.Value{tIn}, []ort.Value{tOut}); err != nil {
		return 0, fmt.Errorf("onnx: inference failed: %w", err)
	}
	probs := tOut.GetData()
	return float64(probs[1]), nil
}

// Info implements Classifier.
func (m *ONNX) Info() Info {
	return Info{Format: FormatONNX, Version: m.version, Features: m.width}
}

// Close releases the ONNX session resources.
func (m *ONNX) Close() error {
	return m.session.Destroy()
}
