package predict

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
	"github.com/kpfaulkner/subpel-go/convolve"
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/options"
	"github.com/kpfaulkner/subpel-go/picture"
	log "github.com/sirupsen/logrus"
)

var (
	ErrOutsideMargin = errors.New("prediction window outside reference margin")
	ErrOverlap       = errors.New("overlapping destination blocks")
	ErrClosed        = errors.New("predictor closed")
	ErrInvalidBlock  = errors.New("invalid prediction block")
)

type Option func(p *Predictor) error

func WithWorkers(n int) Option {
	return func(p *Predictor) error {
		if n < 0 {
			return fmt.Errorf("invalid worker count %d", n)
		}
		p.opts.Workers = n
		return nil
	}
}

func WithDebug(debug bool) Option {
	return func(p *Predictor) error {
		p.opts.Debug = debug
		return nil
	}
}

func WithConvolver(c *convolve.Convolver) Option {
	return func(p *Predictor) error {
		if c == nil {
			return errors.New("nil convolver")
		}
		p.conv = c
		return nil
	}
}

func WithOptions(opts *options.PredictOptions) Option {
	return func(p *Predictor) error {
		p.opts = *options.NewPredictOptions(opts)
		return nil
	}
}

// Predictor builds motion-compensated predictions from reference
// pictures. It validates requests before they reach the convolution
// kernels and runs independent blocks on a worker pool.
type Predictor struct {
	opts   options.PredictOptions
	conv   *convolve.Convolver
	pool   *workerpool.Pool
	closed atomic.Bool
}

func New(opts ...Option) (*Predictor, error) {
	p := &Predictor{opts: *options.NewPredictOptions(nil)}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.opts.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if p.conv == nil {
		p.conv = convolve.New(convolve.WithOptions(&p.opts.Convolve))
	}
	p.pool = workerpool.New(p.opts.Workers)

	log.Debugf("predictor: %d workers, %s engine (simd %s), %d rows per step",
		p.pool.NumWorkers(), p.conv.Engine(), hwy.CurrentName(), p.conv.RowsPerStep())
	return p, nil
}

func (p *Predictor) Close() {
	if p.closed.CompareAndSwap(false, true) {
		p.pool.Close()
	}
}

// kernels returns the horizontal and vertical kernels for req along with
// the whole-sample source position of the block.
func kernels(req Request) (fx, fy kernel.Kernel, x, y int) {
	dx, px := Position(req.MV.Col, req.SubX)
	dy, py := Position(req.MV.Row, req.SubY)
	return kernel.Lookup(req.FilterX, px), kernel.Lookup(req.FilterY, py), req.X + dx, req.Y + dy
}

func validate(dst, ref *picture.Buffer, req Request) error {
	if req.Width <= 0 || req.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidBlock, req.Width, req.Height)
	}
	if req.X < 0 || req.Y < 0 || req.X+req.Width > dst.Width || req.Y+req.Height > dst.Height {
		return fmt.Errorf("%w: %dx%d at (%d,%d) outside destination", ErrInvalidBlock, req.Width, req.Height, req.X, req.Y)
	}
	if dst.BitDepth != ref.BitDepth {
		return fmt.Errorf("%w: bit depth %d predicted from %d", ErrInvalidBlock, dst.BitDepth, ref.BitDepth)
	}
	_, _, x, y := kernels(req)
	if !ref.Contains(x, y, req.Width, req.Height, picture.InterpExtend) {
		return fmt.Errorf("%w: block at (%d,%d) mv %+v", ErrOutsideMargin, req.X, req.Y, req.MV)
	}
	return nil
}

func (p *Predictor) predict(dst, ref *picture.Buffer, req Request, average bool) {
	fx, fy, x, y := kernels(req)
	d, s := dst.Plane(req.X, req.Y), ref.Plane(x, y)
	if average {
		p.conv.PredictAvg(d, s, fx, fy, req.Width, req.Height, dst.BitDepth)
		return
	}
	p.conv.Predict(d, s, fx, fy, req.Width, req.Height, dst.BitDepth)
}

// PredictBlock writes the prediction for req into dst.
func (p *Predictor) PredictBlock(dst, ref *picture.Buffer, req Request) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if err := validate(dst, ref, req); err != nil {
		log.Errorf("rejecting block: %v", err)
		return err
	}
	p.predict(dst, ref, req, false)
	return nil
}

// PredictCompound writes the average of the predictions r0 from ref0 and
// r1 from ref1. Both requests must cover the same destination block.
func (p *Predictor) PredictCompound(dst, ref0, ref1 *picture.Buffer, r0, r1 Request) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if r0.X != r1.X || r0.Y != r1.Y || r0.Width != r1.Width || r0.Height != r1.Height {
		return fmt.Errorf("%w: compound halves cover different blocks", ErrInvalidBlock)
	}
	if err := validate(dst, ref0, r0); err != nil {
		log.Errorf("rejecting compound block: %v", err)
		return err
	}
	if err := validate(dst, ref1, r1); err != nil {
		log.Errorf("rejecting compound block: %v", err)
		return err
	}

	p.predict(dst, ref0, r0, false)
	p.predict(dst, ref1, r1, true)
	return nil
}

// PredictBlocks predicts every request from ref into dst in parallel.
// The destination blocks must not overlap. Nothing is written unless every
// request is valid.
func (p *Predictor) PredictBlocks(dst, ref *picture.Buffer, reqs []Request) error {
	if p.closed.Load() {
		return ErrClosed
	}
	for i, req := range reqs {
		if err := validate(dst, ref, req); err != nil {
			log.Errorf("rejecting request %d: %v", i, err)
			return err
		}
	}
	if err := checkOverlap(dst, reqs); err != nil {
		log.Errorf("rejecting %d requests: %v", len(reqs), err)
		return err
	}

	log.Debugf("predicting %d blocks on %d workers", len(reqs), p.pool.NumWorkers())
	p.pool.ParallelForAtomic(len(reqs), func(i int) {
		p.predict(dst, ref, reqs[i], false)
	})
	return nil
}

// checkOverlap marks each destination block in an occupancy map of the
// picture. Requests have already been validated to lie inside it.
func checkOverlap(dst *picture.Buffer, reqs []Request) error {
	used := make([]bool, dst.Width*dst.Height)
	for i, req := range reqs {
		for y := req.Y; y < req.Y+req.Height; y++ {
			row := used[y*dst.Width+req.X : y*dst.Width+req.X+req.Width]
			for x := range row {
				if row[x] {
					return fmt.Errorf("%w: request %d at (%d,%d)", ErrOverlap, i, req.X+x, y)
				}
				row[x] = true
			}
		}
	}
	return nil
}
