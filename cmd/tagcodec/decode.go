// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/internal/tlog"
	"github.com/tagforge/tagcodec/migrate"
	"github.com/tagforge/tagcodec/tag"
)

// newDecodeCmd decodes a single file, with an optional JSON dump
// sidecar and an optional migration pass before the (optional)
// re-encode.
func newDecodeCmd(f *flags, logger *tlog.Helper) *cobra.Command {
	var out string
	var migrateFlag bool

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a tag file, optionally migrating and re-encoding it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := loadSchema(f.gen1Dir, f.gen2Dir, logger)
			if err != nil {
				return err
			}

			path := args[0]
			mf, err := codec.OpenFile(path)
			if err != nil {
				return fmt.Errorf("tagcodec: opening %s: %w", path, err)
			}
			defer mf.Close()

			t, err := tag.Decode(mf.Bytes(), groups, f.context())
			if err != nil {
				logger.Errorf("%s: %v", path, err)
				return err
			}

			if f.dumpJSON {
				if err := dumpJSON(path+".json", t); err != nil {
					return err
				}
			}

			if migrateFlag {
				migrate.Migrate(t)
			}

			if out != "" {
				encoded, err := tag.Encode(t, f.context())
				if err != nil {
					return fmt.Errorf("tagcodec: encoding %s: %w", path, err)
				}
				if err := os.WriteFile(out, encoded, 0o644); err != nil {
					return fmt.Errorf("tagcodec: writing %s: %w", out, err)
				}
			}

			logger.Infof("decoded %s: group=%s engine=%s fields=%d", path, t.Header.TagGroup, t.Header.Engine, len(t.Fields))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "re-encode the decoded tag to this path")
	cmd.Flags().BoolVar(&migrateFlag, "migrate", false, "run the group's migrator before re-encoding")
	return cmd
}

// dumpJSON writes t as an indented JSON debugging artifact; the
// codec itself never reads these, but the encode subcommand can
// rebuild a tag file from one.
func dumpJSON(path string, t *tag.Tag) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("tagcodec: marshaling dump for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("tagcodec: writing dump %s: %w", path, err)
	}
	return nil
}

func trimExt(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}
