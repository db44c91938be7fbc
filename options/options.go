package options

const (
	// DefaultRowsPerStep is the number of output rows each vertical step produces.
	DefaultRowsPerStep = 2
)

type ConvolveOptions struct {
	// RowsPerStep is 1 or 2. Both produce identical output.
	RowsPerStep int

	// Vector selects the hwy engine. It runs on go-highway's portable
	// fallback, which allocates per operation, so scalar is the default.
	Vector bool
}

func NewConvolveOptions(options *ConvolveOptions) *ConvolveOptions {

	opt := &ConvolveOptions{RowsPerStep: DefaultRowsPerStep}
	if options != nil {
		if options.RowsPerStep == 1 || options.RowsPerStep == 2 {
			opt.RowsPerStep = options.RowsPerStep
		}
		opt.Vector = options.Vector
	}
	return opt
}

type PredictOptions struct {
	Debug bool

	// Workers is the size of the block worker pool. 0 means one per CPU.
	Workers int

	Convolve ConvolveOptions
}

func NewPredictOptions(options *PredictOptions) *PredictOptions {

	opt := &PredictOptions{Convolve: *NewConvolveOptions(nil)}
	if options != nil {
		opt.Debug = options.Debug
		if options.Workers > 0 {
			opt.Workers = options.Workers
		}
		opt.Convolve = *NewConvolveOptions(&options.Convolve)
	}
	return opt
}
