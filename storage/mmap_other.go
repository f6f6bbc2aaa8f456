//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package storage

import "go.uber.org/zap"

// MmapProvider maps large blocks as anonymous private memory. On this
// platform it declines every request.
type MmapProvider struct {
	Registry *Registry
	MinBytes int
}

// Allocate implements Provider.
func (p *MmapProvider) Allocate(req *Request) (*Block, error) {
	Logger().Debug("mmap provider unavailable", zap.Int("min_bytes", p.MinBytes))
	return nil, nil
}
