package imageformats

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/kpfaulkner/subpel-go/picture"
)

// WritePGM writes the picture area of buf as a binary PGM. Samples deeper
// than 8 bits are written as 16-bit big-endian values.
func WritePGM(buf *picture.Buffer, output io.Writer) error {

	w := bufio.NewWriter(output)
	header := fmt.Sprintf("P5\n%d %d\n%d\n", buf.Width, buf.Height, buf.Max())
	if _, err := w.WriteString(header); err != nil {
		return err
	}

	wide := buf.BitDepth > 8
	var sample [2]byte
	for y := 0; y < buf.Height; y++ {
		for _, v := range buf.Row(y) {
			if wide {
				binary.BigEndian.PutUint16(sample[:], v)
				if _, err := w.Write(sample[:]); err != nil {
					return err
				}
				continue
			}
			if err := w.WriteByte(byte(v)); err != nil {
				return err
			}
		}
	}
	return w.Flush()
}
