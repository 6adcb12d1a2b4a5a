// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tagforge/tagcodec/codec"
	"github.com/tagforge/tagcodec/internal/tlog"
	"github.com/tagforge/tagcodec/tag"
)

// dumpDoc is the on-disk shape newDecodeCmd's dumpJSON writes: enough
// of a Tag to rebuild one for re-encoding (the header verbatim, the
// group fourcc, and the decoded field tree).
type dumpDoc struct {
	Header codec.FileHeader
	Group  struct {
		Fourcc string
	}
	Fields tag.Fields
}

// newEncodeCmd builds a Tag from a JSON dump (the sidecar newDecodeCmd's --dump_json writes)
// and serialize it back to a tag file.
func newEncodeCmd(f *flags, logger *tlog.Helper) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "encode <dump.json>",
		Short: "Encode a tag file from a JSON dump produced by decode --dump_json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := loadSchema(f.gen1Dir, f.gen2Dir, logger)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("tagcodec: reading %s: %w", path, err)
			}

			var dump dumpDoc
			if err := json.Unmarshal(data, &dump); err != nil {
				return fmt.Errorf("tagcodec: parsing %s: %w", path, err)
			}

			group, ok := groups[dump.Header.TagGroup]
			if !ok {
				return fmt.Errorf("tagcodec: unknown tag group %q", dump.Header.TagGroup)
			}

			t := &tag.Tag{
				Header: dump.Header,
				Group:  group,
				Fields: dump.Fields,
			}

			if out == "" {
				out = trimExt(path)
			}
			encoded, err := tag.Encode(t, f.context())
			if err != nil {
				return fmt.Errorf("tagcodec: encoding %s: %w", path, err)
			}
			if err := os.WriteFile(out, encoded, 0o644); err != nil {
				return fmt.Errorf("tagcodec: writing %s: %w", out, err)
			}
			logger.Infof("encoded %s -> %s", path, out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output tag file path (defaults to the dump path with .json stripped)")
	return cmd
}
