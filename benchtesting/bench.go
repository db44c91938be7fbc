package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kpfaulkner/subpel-go/convolve"
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/picture"
	"github.com/kpfaulkner/subpel-go/predict"
	"github.com/kpfaulkner/subpel-go/util"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
)

const (
	frameWidth  = 1920
	frameHeight = 1088
	bitDepth    = 12
	iterations  = 4
)

func main() {

	//p := profile.Start(profile.MemProfileHeap, profile.ProfilePath("."))
	p := profile.Start(profile.CPUProfile, profile.ProfilePath("."))
	defer p.Stop()

	ref, err := picture.New(frameWidth, frameHeight, picture.DefaultBorder, bitDepth)
	if err != nil {
		log.Fatalf("boomage %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	for i := range ref.Pix {
		ref.Pix[i] = uint16(rng.Intn(1 << bitDepth))
	}
	ref.ExtendBorders()

	dst, err := picture.New(frameWidth, frameHeight, 0, bitDepth)
	if err != nil {
		log.Fatalf("boomage %v", err)
	}

	engines := map[string]*convolve.Convolver{
		"scalar": convolve.New(),
		"hwy":    convolve.New(convolve.WithVectorEngine()),
	}

	for name, conv := range engines {
		predictor, err := predict.New(predict.WithConvolver(conv))
		if err != nil {
			log.Fatalf("boomage %v", err)
		}

		for _, size := range []int{4, 8, 16} {
			for f := kernel.Regular; f < kernel.NumFilters; f++ {
				reqs := randomRequests(rng, ref, size, f)
				start := time.Now()
				for count := 0; count < iterations; count++ {
					if err := predictor.PredictBlocks(dst, ref, reqs); err != nil {
						log.Fatalf("boomage %v", err)
					}
				}
				fmt.Printf("%s %dx%d %s: %d ms per frame\n", name, size, size, f, time.Since(start).Milliseconds()/iterations)
			}
		}
		predictor.Close()
	}

	fmt.Printf("pool metrics %v\n", util.GetPoolMetrics())
}

func randomRequests(rng *rand.Rand, ref *picture.Buffer, size int, filter kernel.InterpFilter) []predict.Request {
	var reqs []predict.Request
	for y := 0; y+size <= ref.Height; y += size {
		for x := 0; x+size <= ref.Width; x += size {
			req := predict.Request{
				X: x, Y: y, Width: size, Height: size,
				MV:      predict.MotionVector{Row: int16(rng.Intn(129) - 64), Col: int16(rng.Intn(129) - 64)},
				FilterX: filter,
				FilterY: filter,
			}
			req.MV = predict.ClampMV(req, ref)
			reqs = append(reqs, req)
		}
	}
	return reqs
}
