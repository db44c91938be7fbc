package kernel

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Taps is the storage length of every kernel.
	Taps = 8

	// RoundingBits is the post-filter right shift. Kernels sum to 1<<RoundingBits.
	RoundingBits = 7
	Unit         = 1 << RoundingBits

	// SubpelBits is the precision of a kernel phase (1/16 pel).
	SubpelBits   = 4
	SubpelShifts = 1 << SubpelBits
	SubpelMask   = SubpelShifts - 1
)

var ErrUnknownFilter = errors.New("unknown interpolation filter")

// Kernel is an ordered sequence of signed filter taps. Tap 3 weights the
// sample at the output position, tap 4 its right (or lower) neighbour.
type Kernel [Taps]int16

// IsTwoTap reports whether only the two centre taps are non-zero.
func (k Kernel) IsTwoTap() bool {
	return k[0]|k[1]|k[2]|k[5]|k[6]|k[7] == 0
}

// IsIdentity reports whether the kernel passes the centre sample through unchanged.
func (k Kernel) IsIdentity() bool {
	return k[3] == Unit && k[4] == 0 && k.IsTwoTap()
}

// Length is the effective support of the kernel, 2 or 8.
func (k Kernel) Length() int {
	if k.IsTwoTap() {
		return 2
	}
	return Taps
}

func (k Kernel) Sum() int32 {
	var s int32
	for _, t := range k {
		s += int32(t)
	}
	return s
}

// InterpFilter names one of the codec's interpolation filter families.
type InterpFilter int

const (
	Regular InterpFilter = iota
	Smooth
	Sharp
	Bilinear
	NumFilters
)

func (f InterpFilter) String() string {
	switch f {
	case Regular:
		return "regular"
	case Smooth:
		return "smooth"
	case Sharp:
		return "sharp"
	case Bilinear:
		return "bilinear"
	default:
		return fmt.Sprintf("InterpFilter(%d)", int(f))
	}
}

func ParseInterpFilter(s string) (InterpFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "regular", "eighttap":
		return Regular, nil
	case "smooth":
		return Smooth, nil
	case "sharp":
		return Sharp, nil
	case "bilinear":
		return Bilinear, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Lookup returns the kernel of filter f at the given 1/16-pel phase.
// Phases outside [0, 16) are reduced modulo 16.
func Lookup(f InterpFilter, phase int) Kernel {
	if f < 0 || f >= NumFilters {
		f = Regular
	}
	return filterTables[f][phase&SubpelMask]
}

// Identity is the pass-through kernel, phase 0 of every table.
var Identity = Kernel{0, 0, 0, Unit, 0, 0, 0, 0}
