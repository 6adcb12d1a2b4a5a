// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import "hash/crc32"

// checksumTable is the reflected CRC-32 table (polynomial 0xEDB88320,
// the same polynomial hash/crc32.IEEETable uses) the trailing file
// checksum is computed with.
var checksumTable = crc32.IEEETable

// Checksum computes the file header's checksum over the whole body
// (framing plus content, the 64-byte header excluded): a reflected
// CRC-32 seeded with 0xFFFFFFFF and returned WITHOUT the customary
// final complement. hash/crc32 applies that complement, so it is
// undone here rather than re-deriving the table by hand.
func Checksum(data []byte) uint32 {
	return ^crc32.Checksum(data, checksumTable)
}
