package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"

	"github.com/avdva/binfloat"
)

// formatValue is a pflag.Value for binfloat formats.
type formatValue struct {
	f *binfloat.Format
}

var _ pflag.Value = formatValue{}

func newFormatValue(f *binfloat.Format, def binfloat.Format) formatValue {
	*f = def
	return formatValue{f: f}
}

func (fv formatValue) String() string {
	if fv.f == nil || !fv.f.Valid() {
		return ""
	}
	return fv.f.String()
}

func (fv formatValue) Set(s string) error {
	f, err := binfloat.ParseFormat(s)
	if err != nil {
		return err
	}
	*fv.f = f
	return nil
}

func (fv formatValue) Type() string {
	return "format"
}

// parseBits parses a bit pattern of the format f. Accepts any base prefix strconv does.
func parseBits(s string, f binfloat.Format) (uint64, error) {
	bits, err := strconv.ParseUint(strings.ReplaceAll(s, "_", ""), 0, 64)
	if err != nil {
		return 0, err
	}
	if f.Bits() < 64 && bits>>uint(f.Bits()) != 0 {
		return 0, fmt.Errorf("%s does not fit %d bits", s, f.Bits())
	}
	return bits, nil
}

func formatBits(f binfloat.Format, bits uint64) string {
	return fmt.Sprintf("%#0*x", f.Bytes()*2, bits)
}
