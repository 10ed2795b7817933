// Package brokenio is a wrapper around an io.ReadCloser. It allows us
// to set rates of failed read operations.
// Typical use: You get a file pointer, a reader from a compressed
// source or an http source. You write
// reader = brokenio.NewReader(reader, seed) to wrap the old reader.
// Everything then functions as before, but with artificial errors.
// When we introduce an error, we return an error.
// When we introduce a failure on the first read, we return io.EOF and
// no data. This is what one often sees on a zero length file.
package brokenio

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
)

// A Reader is modelled on the various Readers in the standard library,
// but with variables controlling the frequency of errors.
// These values are the fraction of time an error will take place,
// so a value of 0.05 means failure in 5% of the cases.
type Reader struct {
	orig         io.ReadCloser // Wrapped reader
	rng          *rand.Rand
	probZeroFile float64 // Probability of returning a zero length file
	probFail     float64
	fracFail     float64
	nCalled      int
	nByte        int
	logger       *slog.Logger
}

// NewReader returns a new Reader, a wrapper around the old one.
// The seed makes failures repeatable.
func NewReader(rIn io.ReadCloser, seed int64) *Reader {
	return &Reader{
		orig:     rIn,
		rng:      rand.New(rand.NewSource(seed)),
		fracFail: 0.5,
	}
}

// SetFracFail sets the amount of the bytes which will be trashed
func (r *Reader) SetFracFail(frac float64) { r.fracFail = frac }

// SetProbZeroFile sets the rate at which we simply return 0 bytes on the
// first read. It must be a value from 0 to 1. We do not check if the
// argument is valid.
func (r *Reader) SetProbZeroFile(prob float64) { r.probZeroFile = prob }

// SetProbFail set the probability of a file reading failure.
// It must be between zero and 1.
func (r *Reader) SetProbFail(prob float64) { r.probFail = prob }

// SetLogger gets the reader to log its totals on Close.
func (r *Reader) SetLogger(lg *slog.Logger) { r.logger = lg }

// Counts returns the number of reads and the bytes read so far.
func (r *Reader) Counts() (calls, nbyte int) { return r.nCalled, r.nByte }

// trashSlice wipes out the second part of a slice.
// The amount to wipe out is given by a fraction, so 0.3
// will wipe out the second 30 % of a slice
func trashSlice(p []byte, frac float64) (int, error) {
	nkeep := int(float64(len(p)) * (1. - frac))
	if nkeep == len(p) {
		return nkeep, nil
	}
	clear(p[nkeep:])
	return nkeep, fmt.Errorf("brokenio: wiped out last %d of %d bytes", len(p)-nkeep, len(p))
}

// Read wraps the original reader and sums up the amount of data that
// has gone through. It generates an error with a probability given by probFail.
// On the first call, we might return zero data to simulate a zero length file.
func (r *Reader) Read(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if r.nCalled == 0 && r.probZeroFile > 0 && r.rng.Float64() < r.probZeroFile {
		return 0, io.EOF
	}
	n, err = r.orig.Read(p)
	r.nCalled++
	r.nByte += n
	if r.rng.Float64() < r.probFail && r.fracFail > 0 {
		return trashSlice(p[:n], r.fracFail)
	}
	return n, err
}

// Close wraps the original Close method.
func (r *Reader) Close() error {
	if r.logger != nil {
		r.logger.Debug("closing broken reader", "calls", r.nCalled, "bytes", r.nByte)
	}
	return r.orig.Close()
}
