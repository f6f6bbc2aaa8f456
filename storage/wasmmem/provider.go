package wasmmem

import (
	"context"
	"fmt"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/storage"
)

// PageSize is the size of a WebAssembly memory page in bytes.
const PageSize = 65536

// Config holds configuration for provider creation.
type Config struct {
	// Registry, if set, tracks every block the provider hands out.
	Registry *storage.Registry

	// InitialPages is the memory size at creation. Defaults to 1.
	InitialPages uint32

	// MaxPages bounds the memory; requests beyond it are declined.
	// Defaults to 256 (16MB). At most 65536.
	MaxPages uint32

	// Alignment of block guest offsets. Must be a power of two; defaults
	// to storage.CacheLineSize.
	Alignment uint32
}

type span struct {
	off  uint32
	size uint32
}

// Provider allocates blocks from a wazero linear memory.
type Provider struct {
	runtime   wazero.Runtime
	module    api.Module
	mem       api.Memory
	registry  *storage.Registry
	offsets   map[uint64]uint32
	free      []span
	mu        sync.Mutex
	top       uint32
	limit     uint32
	alignment uint32
	closed    bool
}

// New creates a provider with its own wazero runtime. A nil config uses
// the defaults.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	c := Config{InitialPages: 1, MaxPages: 256, Alignment: uint32(storage.CacheLineSize)}
	if cfg != nil {
		if cfg.InitialPages > 0 {
			c.InitialPages = cfg.InitialPages
		}
		if cfg.MaxPages > 0 {
			c.MaxPages = cfg.MaxPages
		}
		if a := cfg.Alignment; a > 0 && a&(a-1) == 0 {
			c.Alignment = a
		}
		c.Registry = cfg.Registry
	}
	if c.MaxPages > 65536 {
		return nil, errors.InvalidInput(errors.PhaseProvider, "max pages %d exceeds 65536", c.MaxPages)
	}
	if c.InitialPages > c.MaxPages {
		return nil, errors.InvalidInput(errors.PhaseProvider, "initial pages %d exceed max pages %d", c.InitialPages, c.MaxPages)
	}

	runtimeCfg := wazero.NewRuntimeConfig().
		WithMemoryLimitPages(c.MaxPages).
		WithMemoryCapacityFromMax(true)
	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	mod, err := runtime.Instantiate(ctx, memoryModule(c.InitialPages, c.MaxPages))
	if err != nil {
		return nil, multierr.Append(
			errors.Wrap(errors.PhaseProvider, errors.KindAllocation, err, "instantiate memory module"),
			runtime.Close(ctx),
		)
	}
	mem := mod.ExportedMemory(memoryExport)
	if mem == nil {
		return nil, multierr.Append(
			errors.Unsupported(errors.PhaseProvider, "module exports no memory"),
			runtime.Close(ctx),
		)
	}

	limit := uint32(0xFFFFFFFF)
	if c.MaxPages < 65536 {
		limit = c.MaxPages * PageSize
	}

	Logger().Debug("wasm memory provider created",
		zap.Uint32("initial_pages", c.InitialPages),
		zap.Uint32("max_pages", c.MaxPages),
		zap.Uint32("alignment", c.Alignment),
	)
	return &Provider{
		runtime:   runtime,
		module:    mod,
		mem:       mem,
		registry:  c.Registry,
		offsets:   make(map[uint64]uint32),
		limit:     limit,
		alignment: c.Alignment,
	}, nil
}

// Memory returns the linear memory holding the blocks.
func (p *Provider) Memory() api.Memory {
	return p.mem
}

// Module returns the instantiated module that exports the memory.
func (p *Provider) Module() api.Module {
	return p.module
}

// GuestOffset returns the address of blk's first byte in the linear memory.
func (p *Provider) GuestOffset(blk *storage.Block) (uint32, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	off, ok := p.offsets[blk.ID()]
	return off, ok
}

// InUse returns the number of bytes handed out and not yet released.
func (p *Provider) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := int(p.top)
	for _, s := range p.free {
		n -= int(s.size)
	}
	return n
}

// Allocate implements storage.Provider.
func (p *Provider) Allocate(req *storage.Request) (*storage.Block, error) {
	size, _, err := req.Layout()
	if err != nil {
		return nil, err
	}
	want := uint64(size) * uint64(req.DataType.Size())
	n := (want + uint64(p.alignment) - 1) &^ uint64(p.alignment-1)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, errors.Closed(errors.PhaseProvider, "wasm memory provider")
	}
	if n > uint64(p.limit) {
		Logger().Debug("wasm memory provider declined", zap.Uint64("bytes", want))
		return nil, nil
	}

	off, ok := p.takeFree(uint32(n))
	if !ok {
		off, ok = p.bump(uint32(n))
		if !ok {
			Logger().Debug("wasm memory provider declined", zap.Uint64("bytes", want), zap.Uint32("top", p.top))
			return nil, nil
		}
	}

	data, ok := p.mem.Read(off, uint32(want))
	if !ok {
		p.putFree(span{off: off, size: uint32(n)})
		return nil, errors.AllocationFailed(errors.PhaseProvider, int(want), fmt.Errorf("memory read out of bounds: offset=%d, length=%d", off, want))
	}
	clear(data)

	sp := span{off: off, size: uint32(n)}
	var blk *storage.Block
	blk = storage.NewBlock(data[:want:want], func([]byte) error {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.closed {
			return nil
		}
		delete(p.offsets, blk.ID())
		p.putFree(sp)
		return nil
	})
	p.offsets[blk.ID()] = off

	if p.registry != nil {
		if err := p.registry.Track(blk); err != nil {
			delete(p.offsets, blk.ID())
			p.putFree(sp)
			return nil, err
		}
	}
	return blk, nil
}

// bump carves n bytes from the end of the used region, growing the memory
// when needed.
func (p *Provider) bump(n uint32) (uint32, bool) {
	end := uint64(p.top) + uint64(n)
	if end > uint64(p.limit) {
		return 0, false
	}
	if size := uint64(p.mem.Size()); end > size {
		pages := uint32((end - size + PageSize - 1) / PageSize)
		prev, ok := p.mem.Grow(pages)
		if !ok {
			return 0, false
		}
		Logger().Debug("wasm memory grown",
			zap.Uint32("from_pages", prev),
			zap.Uint32("to_pages", prev+pages),
		)
	}
	off := p.top
	p.top = uint32(end)
	return off, true
}

// takeFree returns the first free span that fits n bytes.
func (p *Provider) takeFree(n uint32) (uint32, bool) {
	for i, s := range p.free {
		if s.size < n {
			continue
		}
		if s.size == n {
			p.free = append(p.free[:i], p.free[i+1:]...)
		} else {
			p.free[i] = span{off: s.off + n, size: s.size - n}
		}
		return s.off, true
	}
	return 0, false
}

// putFree returns a span to the free list, merging neighbours and
// trimming the bump pointer when the span is at the end.
func (p *Provider) putFree(s span) {
	i := 0
	for i < len(p.free) && p.free[i].off < s.off {
		i++
	}
	p.free = append(p.free, span{})
	copy(p.free[i+1:], p.free[i:])
	p.free[i] = s

	if i+1 < len(p.free) && p.free[i].off+p.free[i].size == p.free[i+1].off {
		p.free[i].size += p.free[i+1].size
		p.free = append(p.free[:i+1], p.free[i+2:]...)
	}
	if i > 0 && p.free[i-1].off+p.free[i-1].size == p.free[i].off {
		p.free[i-1].size += p.free[i].size
		p.free = append(p.free[:i], p.free[i+1:]...)
	}
	if last := p.free[len(p.free)-1]; last.off+last.size == p.top {
		p.top = last.off
		p.free = p.free[:len(p.free)-1]
	}
}

// Close releases the wazero runtime. Blocks still referenced by views stay
// readable but are no longer returned to the provider.
func (p *Provider) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.offsets = nil
	p.free = nil
	p.mu.Unlock()

	return multierr.Combine(
		p.module.Close(ctx),
		p.runtime.Close(ctx),
	)
}
