package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/avdva/binfloat"
	"github.com/avdva/binfloat/cbor"
)

type inspection struct {
	Format binfloat.Format `json:"format"`
	Bits   string          `json:"bits"`
	Neg    bool            `json:"neg"`
	Exp    int             `json:"exp"`
	Frac   string          `json:"frac"`
	Inf    bool            `json:"inf,omitempty"`
	NaN    bool            `json:"nan,omitempty"`
	Value  string          `json:"value"`
}

func newInspectCmd() *cobra.Command {
	var (
		format binfloat.Format
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "inspect BITS...",
		Short: "Decompose bit patterns into sign, exponent and fraction",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, arg := range args {
				bits, err := parseBits(arg, format)
				if err != nil {
					log.WithField("arg", arg).Warn(err)
					errs = multierr.Append(errs, err)
					continue
				}
				v := binfloat.Decompose(format, bits)
				log.WithFields(log.Fields{"arg": arg, "format": format}).Debugf("decomposed: %#v", v)
				res := inspection{
					Format: format,
					Bits:   formatBits(format, bits),
					Neg:    v.Neg,
					Exp:    v.Exp,
					Frac:   fmt.Sprintf("%#016x", v.Frac),
					Inf:    v.Inf,
					NaN:    v.NaN,
					Value:  v.String(),
				}
				if asJSON {
					if err := enc.Encode(res); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: neg=%v exp=%d frac=%s inf=%v nan=%v value=%s\n",
					res.Format, res.Bits, res.Neg, res.Exp, res.Frac, res.Inf, res.NaN, res.Value)
			}
			return errs
		},
	}
	cmd.Flags().VarP(newFormatValue(&format, binfloat.Double), "format", "f", "Format of the bit patterns (half, single, double)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print one JSON object per pattern")
	return cmd
}

func newConvertCmd() *cobra.Command {
	var from, to binfloat.Format
	cmd := &cobra.Command{
		Use:   "convert BITS...",
		Short: "Convert bit patterns between formats, failing instead of rounding",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			for _, arg := range args {
				fields := log.Fields{"arg": arg, "from": from, "to": to}
				bits, err := parseBits(arg, from)
				if err != nil {
					log.WithFields(fields).Warn(err)
					errs = multierr.Append(errs, err)
					continue
				}
				res, err := binfloat.Recompose(to, binfloat.Decompose(from, bits))
				if err != nil {
					err = fmt.Errorf("%s %s to %s: %w", from, arg, to, err)
					log.WithFields(fields).Warn(err)
					errs = multierr.Append(errs, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s %s\n", from, formatBits(from, bits), to, formatBits(to, res))
			}
			return errs
		},
	}
	cmd.Flags().Var(newFormatValue(&from, binfloat.Double), "from", "Source format")
	cmd.Flags().Var(newFormatValue(&to, binfloat.Half), "to", "Target format")
	return cmd
}

func newEncodeCmd() *cobra.Command {
	var width binfloat.Format
	cmd := &cobra.Command{
		Use:   "encode FLOAT...",
		Short: "Encode numbers as CBOR floats in the narrowest exact width",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var errs error
			for _, arg := range args {
				f, err := strconv.ParseFloat(arg, 64)
				if err != nil {
					log.WithField("arg", arg).Warn(err)
					errs = multierr.Append(errs, err)
					continue
				}
				var data []byte
				if width.Valid() {
					if data, err = cbor.AppendFloatWidth(nil, width, f); err != nil {
						log.WithFields(log.Fields{"arg": arg, "width": width}).Warn(err)
						errs = multierr.Append(errs, err)
						continue
					}
				} else {
					data = cbor.AppendFloat(nil, f)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %x\n", arg, data)
			}
			return errs
		},
	}
	cmd.Flags().VarP(newFormatValue(&width, 0), "width", "w", "Force the width (half, single, double)")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode HEX",
		Short: "Decode a sequence of CBOR heads",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := strings.NewReplacer(" ", "", "0x", "", "_", "").Replace(strings.Join(args, ""))
			data, err := hex.DecodeString(s)
			if err != nil {
				return fmt.Errorf("bad input: %w", err)
			}
			for pos := 0; pos < len(data); {
				it, next, err := cbor.Decode(data, pos)
				if err != nil {
					return err
				}
				log.WithField("pos", pos).Debugf("decoded %+v", it)
				fmt.Fprintln(cmd.OutOrStdout(), describe(it))
				pos = next
			}
			return nil
		},
	}
}

func describe(it cbor.Item) string {
	switch {
	case it.IsBreak():
		return "break"
	case it.Indefinite:
		return it.Major.String() + " indefinite"
	case it.IsFloat():
		fm, _ := it.FloatFormat()
		return fmt.Sprintf("float %s %s %v", fm, formatBits(fm, it.Value), it.Float)
	case it.Major == cbor.Nint:
		return fmt.Sprintf("%s -1-%d", it.Major, it.Value)
	}
	return fmt.Sprintf("%s %d", it.Major, it.Value)
}
