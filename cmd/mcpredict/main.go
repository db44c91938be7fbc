package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/kpfaulkner/subpel-go/imageformats"
	"github.com/kpfaulkner/subpel-go/kernel"
	"github.com/kpfaulkner/subpel-go/options"
	"github.com/kpfaulkner/subpel-go/picture"
	"github.com/kpfaulkner/subpel-go/predict"
	"github.com/pkg/profile"
	log "github.com/sirupsen/logrus"
)

func main() {
	infile := flag.String("i", "", "input png file")
	outfile := flag.String("o", "", "output png file")
	pgmfile := flag.String("pgm", "", "optional output pgm file")
	mvx := flag.Int("mvx", 0, "horizontal motion in 1/8 samples")
	mvy := flag.Int("mvy", 0, "vertical motion in 1/8 samples")
	filter := flag.String("filter", "regular", "interpolation filter: regular, smooth, sharp or bilinear")
	bitDepth := flag.Int("bd", 8, "working bit depth: 8, 10 or 12")
	blockSize := flag.Int("block", 16, "prediction block size")
	workers := flag.Int("workers", 0, "worker count, 0 for one per CPU")
	vector := flag.Bool("vector", false, "use the hwy vector engine")
	debug := flag.Bool("debug", false, "debug logging")
	doProfile := flag.Bool("profile", false, "write a CPU profile to the current directory")
	flag.Parse()

	if *infile == "" || *outfile == "" {
		fmt.Printf("both input and output files must be specified\n")
		os.Exit(1)
	}
	if *blockSize <= 0 {
		fmt.Printf("block size must be positive\n")
		os.Exit(1)
	}

	interp, err := kernel.ParseInterpFilter(*filter)
	if err != nil {
		log.Fatalf("bad filter: %v", err)
	}

	if *doProfile {
		p := profile.Start(profile.CPUProfile, profile.ProfilePath("."))
		defer p.Stop()
	}

	f, err := os.ReadFile(*infile)
	if err != nil {
		log.Errorf("Error opening file: %v\n", err)
		return
	}
	img, err := png.Decode(bytes.NewReader(f))
	if err != nil {
		log.Errorf("Error decoding png: %v\n", err)
		return
	}

	ref, err := picture.FromImage(img, picture.DefaultBorder, *bitDepth)
	if err != nil {
		log.Errorf("Error converting image: %v\n", err)
		return
	}
	dst, err := picture.New(ref.Width, ref.Height, 0, *bitDepth)
	if err != nil {
		log.Errorf("Error allocating prediction: %v\n", err)
		return
	}

	predictor, err := predict.New(predict.WithOptions(&options.PredictOptions{
		Debug:    *debug,
		Workers:  *workers,
		Convolve: options.ConvolveOptions{Vector: *vector},
	}))
	if err != nil {
		log.Fatalf("boomage %v", err)
	}
	defer predictor.Close()

	reqs := frameRequests(ref, *blockSize, predict.MotionVector{Row: int16(*mvy), Col: int16(*mvx)}, interp)

	start := time.Now()
	if err := predictor.PredictBlocks(dst, ref, reqs); err != nil {
		log.Errorf("Error predicting: %v\n", err)
		return
	}
	fmt.Printf("predicting %d blocks took %d ms\n", len(reqs), time.Since(start).Milliseconds())

	var out image.Image = dst.ToGray()
	if *bitDepth > 8 {
		out = dst.ToGray16()
	}
	buf := new(bytes.Buffer)
	if err := png.Encode(buf, out); err != nil {
		log.Fatalf("boomage %v", err)
	}
	if err := os.WriteFile(*outfile, buf.Bytes(), 0666); err != nil {
		log.Fatalf("boomage %v", err)
	}

	if *pgmfile != "" {
		pf, err := os.Create(*pgmfile)
		if err != nil {
			log.Fatalf("boomage %v", err)
		}
		defer pf.Close()
		if err := imageformats.WritePGM(dst, pf); err != nil {
			log.Fatalf("boomage %v", err)
		}
	}
}

// frameRequests tiles the frame with blocks that all use mv, clipped per
// block so that each stays inside the reference border.
func frameRequests(ref *picture.Buffer, size int, mv predict.MotionVector, filter kernel.InterpFilter) []predict.Request {
	var reqs []predict.Request
	for y := 0; y < ref.Height; y += size {
		for x := 0; x < ref.Width; x += size {
			req := predict.Request{
				X:       x,
				Y:       y,
				Width:   min(size, ref.Width-x),
				Height:  min(size, ref.Height-y),
				MV:      mv,
				FilterX: filter,
				FilterY: filter,
			}
			req.MV = predict.ClampMV(req, ref)
			reqs = append(reqs, req)
		}
	}
	return reqs
}
