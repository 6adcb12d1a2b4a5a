// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/internal/tlog"
	"github.com/tagforge/tagcodec/migrate"
	"github.com/tagforge/tagcodec/schema"
	"github.com/tagforge/tagcodec/tag"
)

// newWalkCmd recurses a directory tree, decodes and (optionally)
// migrates and re-encodes every file found, and logs a warning for
// each file whose re-encoded bytes differ from its source. Failures
// are per-file: a bad file is logged and the walk
// continues. The walk runs as an errgroup-bounded pool so no more
// than --concurrency files are in flight at once.
func newWalkCmd(f *flags, logger *tlog.Helper) *cobra.Command {
	var migrateFlag bool
	var outDir string

	cmd := &cobra.Command{
		Use:   "walk <dir>",
		Short: "Decode, optionally migrate, and re-encode every tag file under dir",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := loadSchema(f.gen1Dir, f.gen2Dir, logger)
			if err != nil {
				return err
			}

			var paths []string
			root := args[0]
			walkErr := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				paths = append(paths, path)
				return nil
			})
			if walkErr != nil {
				return fmt.Errorf("tagcodec: walking %s: %w", root, walkErr)
			}

			var mismatched, errored int64

			g, _ := errgroup.WithContext(context.Background())
			g.SetLimit(maxInt(1, f.concurrency))

			for _, p := range paths {
				p := p
				g.Go(func() error {
					match, err := processOne(p, outDir, groups, f, migrateFlag)
					if err != nil {
						atomic.AddInt64(&errored, 1)
						logger.Errorf("%s: %v", p, err)
						return nil // per-file errors don't abort the walk
					}
					if !match {
						atomic.AddInt64(&mismatched, 1)
						logger.Warnf("%s: re-encoded bytes differ from source", p)
					}
					return nil
				})
			}
			_ = g.Wait()

			logger.Infof("walked %d files: %d mismatched, %d errored", len(paths), mismatched, errored)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrateFlag, "migrate", false, "run each group's migrator before re-encoding")
	cmd.Flags().StringVar(&outDir, "out", "", "directory to write re-encoded files to (default: don't write, just diff)")
	return cmd
}

// processOne decodes one file, optionally migrates it, re-encodes it,
// and reports whether the re-encoded bytes match the source. A
// mismatch is expected and not an error whenever migrateOn is set, or
// whenever any preserve_* flag is off, since either deliberately
// changes the output; the exit code stays 0 either way, a mismatch
// is logged, not fatal.
func processOne(path, outDir string, groups map[string]*schema.TagGroupDef, f *flags, migrateOn bool) (bool, error) {
	mf, err := codec.OpenFile(path)
	if err != nil {
		return false, fmt.Errorf("opening: %w", err)
	}
	defer mf.Close()
	original := append([]byte(nil), mf.Bytes()...)

	t, err := tag.Decode(original, groups, f.context())
	if err != nil {
		return false, fmt.Errorf("decoding: %w", err)
	}

	if f.dumpJSON {
		if err := dumpJSON(path+".json", t); err != nil {
			return false, err
		}
	}

	if migrateOn {
		migrate.Migrate(t)
	}

	encoded, err := tag.Encode(t, f.context())
	if err != nil {
		return false, fmt.Errorf("encoding: %w", err)
	}

	if outDir != "" {
		rel := filepath.Base(path)
		if err := os.WriteFile(filepath.Join(outDir, rel), encoded, 0o644); err != nil {
			return false, fmt.Errorf("writing: %w", err)
		}
	}

	return bytes.Equal(original, encoded), nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
