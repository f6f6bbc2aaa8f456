//go:build linux || darwin || freebsd || netbsd || openbsd

package storage

import (
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/yaoyutaoTom/diplib/errors"
)

// MmapProvider maps large blocks as anonymous private memory. Requests
// smaller than MinBytes are declined.
type MmapProvider struct {
	Registry *Registry
	MinBytes int
}

// Allocate implements Provider.
func (p *MmapProvider) Allocate(req *Request) (*Block, error) {
	size, _, err := req.Layout()
	if err != nil {
		return nil, err
	}
	n := size * req.DataType.Size()
	if n < p.MinBytes {
		Logger().Debug("mmap provider declined", zap.Int("bytes", n), zap.Int("min_bytes", p.MinBytes))
		return nil, nil
	}

	data, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseProvider, n, err)
	}
	blk := NewBlock(data, unix.Munmap)
	if p.Registry != nil {
		if err := p.Registry.Track(blk); err != nil {
			_ = blk.Release()
			return nil, err
		}
	}
	Logger().Debug("block mapped", zap.Uint64("block", blk.ID()), zap.Int("bytes", n))
	return blk, nil
}
