// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package schema

import (
	"io"

	"github.com/tagforge/tagcodec/internal/tlog"
)

// logger receives the registry's non-fatal complaints: a field whose
// struct reference cannot be found, an inheritance target that does
// not exist, a legacy kind key with no canonical translation. All of
// them are warn-and-continue conditions; only structural failures
// (no field sets, duplicate names) surface as errors.
var logger = tlog.NewHelper(tlog.NewStdLogger(io.Discard))

// SetLogger routes the registry's load-time warnings to h. The
// default discards them.
func SetLogger(h *tlog.Helper) {
	if h != nil {
		logger = h
	}
}
