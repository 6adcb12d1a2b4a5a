// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import "math"

// IsNegativeZero reports whether f is the IEEE-754 negative-zero bit
// pattern. float64 preserves the sign bit of zero through ordinary
// arithmetic, and encoding/json renders -0 and +0 distinctly, so
// Decode/Encode and the JSON dump carry the value through untouched;
// this helper exists for callers that need to tell the two zeros
// apart explicitly, and for the tests that pin the behavior.
func IsNegativeZero(f float64) bool {
	return f == 0 && math.Signbit(f)
}
