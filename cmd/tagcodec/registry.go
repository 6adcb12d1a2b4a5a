// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/tagforge/tagcodec/internal/tlog"
	"github.com/tagforge/tagcodec/schema"
)

// loadSchema builds the canonical schema once, merging the Gen1 JSON
// catalog and the Gen2 XML catalog into one fourcc-keyed registry
// before any file is touched. An unset directory flag is
// tolerated (its half of the registry is simply empty) since a caller
// working only with one engine generation's files has no need for the
// other's definitions; a directory that is set but cannot be read is
// an error.
func loadSchema(gen1Dir, gen2Dir string, logger *tlog.Helper) (map[string]*schema.TagGroupDef, error) {
	schema.SetLogger(logger)
	groups := map[string]*schema.TagGroupDef{}

	if gen1Dir != "" {
		g1, err := schema.LoadGen1(os.DirFS(gen1Dir))
		if err != nil {
			return nil, fmt.Errorf("tagcodec: loading gen1 definitions: %w", err)
		}
		for fourcc, def := range g1 {
			groups[fourcc] = def
		}
	}
	if gen2Dir != "" {
		g2, err := schema.LoadGen2(os.DirFS(gen2Dir))
		if err != nil {
			return nil, fmt.Errorf("tagcodec: loading gen2 definitions: %w", err)
		}
		for fourcc, def := range g2 {
			groups[fourcc] = def
		}
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("tagcodec: no tag group definitions loaded (set --gen1-defs and/or --gen2-defs)")
	}
	for _, def := range groups {
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("tagcodec: schema validation: %w", err)
		}
	}
	return groups, nil
}
