// Copyright 2020 Aleksandr Demakin. All rights reserved.

// Command binfloat inspects and converts IEEE-754 half, single and double bit patterns,
// and encodes and decodes CBOR floats.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:           "binfloat",
		Short:         "Exact conversions between IEEE-754 half, single and double formats",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetOutput(cmd.ErrOrStderr())
			log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
			log.SetLevel(log.InfoLevel)
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.AddCommand(
		newInspectCmd(),
		newConvertCmd(),
		newEncodeCmd(),
		newDecodeCmd(),
	)
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
