// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

// Color holds an RGB or ARGB field's components as raw 8-bit or
// float32 channels, both represented as float64 here so one struct
// serves ArgbColor (byte channels) and RealRgbColor/RealArgbColor
// (float channels) alike.
type Color struct {
	A, R, G, B float64
	HasAlpha   bool
}

// Bounds holds a *Bounds field's inclusive [Min, Max] pair.
type Bounds struct {
	Min, Max float64
}

// EnumValue holds a *Enum field's raw integer plus, once resolved
// against the schema's EnumOptions, the matching option label.
type EnumValue struct {
	Value     int64
	ValueName string
}
