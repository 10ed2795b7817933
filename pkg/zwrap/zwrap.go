// Package zwrap takes a reader and optionally wraps it so upon
// calling Close, the decompressor will be closed, followed by the
// underlying source.
// Assay files may be stored gzipped. Callers do not have to care.
package zwrap

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"errors"
	"io"
)

var gzipMagic = []byte{0x1f, 0x8b}

// Reader is what we return.
type Reader struct {
	src  io.ReadCloser
	rdr  io.Reader    // where Read goes, src or zrdr
	zrdr *gzip.Reader // nil if src was not compressed
}

// Close closes the decompressor, then the underlying source.
func (r *Reader) Close() error {
	var zerr error
	if r.zrdr != nil {
		zerr = r.zrdr.Close()
	}
	return errors.Join(zerr, r.src.Close())
}

// Read makes sure we read from the compressed stream and
// not the underlying stream.
func (r *Reader) Read(p []byte) (int, error) { return r.rdr.Read(p) }

// Compressed is true if we are decompressing.
func (r *Reader) Compressed() bool { return r.zrdr != nil }

// IsGzip looks at the first bytes of some data.
func IsGzip(b []byte) bool { return bytes.HasPrefix(b, gzipMagic) }

// Wrap takes a source which must be gzipped.
func Wrap(src io.ReadCloser) (*Reader, error) {
	zrdr, err := gzip.NewReader(src)
	if err != nil {
		return nil, err
	}
	return &Reader{src: src, rdr: zrdr, zrdr: zrdr}, nil
}

// WrapMaybe peeks at the source to decide if it is compressed. It does
// not need to seek, so it works on pipes and standard input.
func WrapMaybe(src io.ReadCloser) (*Reader, error) {
	br := bufio.NewReader(src)
	head, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if !IsGzip(head) {
		return &Reader{src: src, rdr: br}, nil
	}
	zrdr, err := gzip.NewReader(br)
	if err != nil {
		return nil, err
	}
	return &Reader{src: src, rdr: zrdr, zrdr: zrdr}, nil
}
