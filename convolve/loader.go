package convolve

// contextBefore is the number of samples a kernel of the given length reads
// before the output position: 3 for 8 taps, 0 for 2 taps.
func contextBefore(taps int) int {
	return taps/2 - 1
}

// loadRow widens the width+taps-1 samples that a horizontal kernel touches in
// the source row starting at off. Tap t of output x is dst[x+t].
// The margin is the caller's responsibility; reading outside Pix panics.
func loadRow(dst []int32, src Plane, off, width, taps int) {
	start := off - contextBefore(taps)
	widen(dst, src.Pix[start:start+width+taps-1])
}

// loadBlockRow widens the width samples of block row y, used when the rows
// themselves are the vertical context.
func loadBlockRow(dst []int32, src Plane, y, width int) {
	off := src.Row(y)
	widen(dst, src.Pix[off:off+width])
}

func widen(dst []int32, s []uint16) {
	dst = dst[:len(s)]
	for i, v := range s {
		dst[i] = int32(v)
	}
}
