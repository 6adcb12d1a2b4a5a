// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package codec

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// MappedFile is a read-only memory-mapped tag file: the whole file's
// bytes are addressable without a read() syscall per access, which
// matters for the tree-walk driver mode where thousands of small
// files are opened in sequence.
type MappedFile struct {
	f    *os.File
	data mmap.MMap
}

// OpenFile memory-maps name for reading.
func OpenFile(name string) (*MappedFile, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &MappedFile{f: f, data: data}, nil
}

// Bytes returns the file's full mapped contents.
func (m *MappedFile) Bytes() []byte {
	return m.data
}

// Close unmaps and closes the underlying file.
func (m *MappedFile) Close() error {
	unmapErr := m.data.Unmap()
	closeErr := m.f.Close()
	if unmapErr != nil {
		return unmapErr
	}
	return closeErr
}
