package fdb

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// PageReader reads fixed-size pages from a database file. It never writes.
// One reader owns the file handle for its whole lifetime; callers must not
// read through another handle while a scan is active.
type PageReader struct {
	f        *os.File
	size     int64
	pageSize int
}

func OpenPageReader(path string, pageSize int) (*PageReader, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database file: %w", err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat database file: %w", err)
	}
	return &PageReader{f: f, size: stat.Size(), pageSize: pageSize}, nil
}

func (r *PageReader) Size() int64   { return r.size }
func (r *PageReader) PageSize() int { return r.pageSize }

// PageCount reports how many pages the file spans, counting a trailing
// partial page as one page.
func (r *PageReader) PageCount() int {
	ps := int64(r.pageSize)
	return int((r.size + ps - 1) / ps)
}

// ReadPage returns exactly pageSize bytes starting at offset. When fewer
// bytes remain in the file, the shortfall is zero-filled; an offset at or
// past end-of-file yields an all-zero page. Only real I/O errors propagate.
func (r *PageReader) ReadPage(offset int64) ([]byte, error) {
	buf := make([]byte, r.pageSize)
	_, err := r.f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read page at offset 0x%X: %w", offset, err)
	}
	return buf, nil
}

// ReadBytes reads up to length bytes at offset for on-demand inspection.
// Unlike ReadPage it truncates at end-of-file instead of zero-padding, so a
// hex dump shows only bytes that exist.
func (r *PageReader) ReadBytes(offset int64, length int) ([]byte, error) {
	if length <= 0 || offset >= r.size {
		return nil, nil
	}
	if remain := r.size - offset; int64(length) > remain {
		length = int(remain)
	}
	buf := make([]byte, length)
	n, err := r.f.ReadAt(buf, offset)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read %d bytes at offset 0x%X: %w", length, offset, err)
	}
	return buf[:n], nil
}

func (r *PageReader) Close() error {
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	return err
}
