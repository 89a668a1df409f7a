package classifier

// Default classifier configuration constants.
const (
	defaultLibraryPath  = "libonnxruntime.so"
	defaultIntraThreads = 1
	defaultOutputName   = "probabilities"
)

type options struct {
	libraryPath  string
	intraThreads int
	outputName   string
}

func newOptions(opts []Option) options {
	o := options{libraryPath: defaultLibraryPath, intraThreads: defaultIntraThreads, outputName: defaultOutputName}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option applies a configuration option to model loading.
type Option func(*options)

// WithONNXLibraryPath sets the onnxruntime shared library. Only the first
// ONNX load in a process applies it.
func WithONNXLibraryPath(p string) Option {
	return func(o *options) {
		if p != "" {
			o.libraryPath = p
		}
	}
}

// WithIntraOpThreads sets the onnxruntime intra-op thread count.
func WithIntraOpThreads(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.intraThreads = n
		}
	}
}

// WithOutputName selects the probability output of an ONNX graph.
func WithOutputName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.outputName = name
		}
	}
}
