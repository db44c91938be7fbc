package convolve

// Copy transfers the w x h block of src to dst unchanged. The strides of
// src and dst may differ.
func Copy(dst, src Plane, w, h int) {
	for y := 0; y < h; y++ {
		s, d := src.Row(y), dst.Row(y)
		copy(dst.Pix[d:d+w], src.Pix[s:s+w])
	}
}

// CopyAvg stores the rounded-up average of src and the existing dst.
func CopyAvg(dst, src Plane, w, h int) {
	for y := 0; y < h; y++ {
		s, d := src.Row(y), dst.Row(y)
		srow, drow := src.Pix[s:s+w], dst.Pix[d:d+w]
		for x, v := range srow {
			drow[x] = uint16((uint32(v) + uint32(drow[x]) + 1) >> 1)
		}
	}
}
