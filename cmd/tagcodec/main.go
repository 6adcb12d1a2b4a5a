// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command tagcodec wires the schema registry, binary codec and
// migration engine into three functional modes: single-file decode
// (with an optional JSON dump sidecar), single-file encode from a
// JSON dump, and a tree-walk decode+encode pass with byte-diff
// logging. A cobra root command holds one subcommand per mode, with
// the shared boolean flags bound once at the root.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/internal/tlog"
)

// flags holds the process-wide preserve_*/convert_radians/
// generate_checksum/dump_json booleans, bound once on the root
// command and read by every subcommand; each run threads them into
// an explicit codec.Context rather than mutating shared state.
type flags struct {
	gen1Dir          string
	gen2Dir          string
	bigEndian        bool
	preserveVersion  bool
	preserveStrings  bool
	preservePadding  bool
	convertRadians   bool
	generateChecksum bool
	dumpJSON         bool
	concurrency      int
}

func (f *flags) context() codec.Context {
	return codec.Context{
		BigEndian:        f.bigEndian,
		PreserveVersion:  f.preserveVersion,
		PreserveStrings:  f.preserveStrings,
		PreservePadding:  f.preservePadding,
		ConvertRadians:   f.convertRadians,
		GenerateChecksum: f.generateChecksum,
	}
}

func main() {
	var f flags
	logger := tlog.NewHelper(tlog.NewFilter(tlog.NewStdLogger(os.Stderr), tlog.FilterLevel(tlog.LevelInfo)))

	root := &cobra.Command{
		Use:           "tagcodec",
		Short:         "Decode, encode and migrate tag-data files",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&f.gen1Dir, "gen1-defs", "", "directory of Gen1 JSON tag definitions")
	root.PersistentFlags().StringVar(&f.gen2Dir, "gen2-defs", "", "directory of Gen2 XML tag definitions")
	root.PersistentFlags().BoolVar(&f.bigEndian, "big-endian", false, "treat files as console (big-endian) byte order")
	root.PersistentFlags().BoolVar(&f.preserveVersion, "preserve_version", true, "keep each Block/Struct header's version as read")
	root.PersistentFlags().BoolVar(&f.preserveStrings, "preserve_strings", true, "keep raw string bytes instead of renormalizing")
	root.PersistentFlags().BoolVar(&f.preservePadding, "preserve_padding", true, "keep legacy struct padding bytes")
	root.PersistentFlags().BoolVar(&f.convertRadians, "convert_radians", true, "expose Angle fields in degrees")
	root.PersistentFlags().BoolVar(&f.generateChecksum, "generate_checksum", true, "recompute the header CRC32 on encode")
	root.PersistentFlags().BoolVar(&f.dumpJSON, "dump_json", false, "write a .json sidecar alongside each decode")
	root.PersistentFlags().IntVar(&f.concurrency, "concurrency", 4, "bounded walk-mode concurrency")

	root.AddCommand(newDecodeCmd(&f, logger))
	root.AddCommand(newEncodeCmd(&f, logger))
	root.AddCommand(newWalkCmd(&f, logger))
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
