package view

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/yaoyutaoTom/diplib/dtype"
	"github.com/yaoyutaoTom/diplib/errors"
	"github.com/yaoyutaoTom/diplib/layout"
	"github.com/yaoyutaoTom/diplib/storage"
	"github.com/yaoyutaoTom/diplib/storage/wasmmem"
)

// fakeProvider serves requests from a fixed function and counts calls.
type fakeProvider struct {
	fn    func(req *storage.Request) (*storage.Block, error)
	calls int
}

func (p *fakeProvider) Allocate(req *storage.Request) (*storage.Block, error) {
	p.calls++
	return p.fn(req)
}

func TestForge_ProviderDecline(t *testing.T) {
	heap, reg, obs := trackedHeap()
	p := &fakeProvider{fn: func(*storage.Request) (*storage.Block, error) { return nil, nil }}

	v := mustForge(t, layout.Shape{8, 8}, 1, dtype.UInt16, WithProvider(p), WithHeap(heap))
	if p.calls != 1 {
		t.Fatalf("provider called %d times, want 1", p.calls)
	}
	if obs.allocated != 1 || reg.Len() != 1 {
		t.Fatal("declined request should fall back to the heap")
	}
	if v.Provider() != p {
		t.Fatal("provider not kept")
	}
}

func TestForge_ProviderLayout(t *testing.T) {
	var served *storage.Block
	p := &fakeProvider{fn: func(req *storage.Request) (*storage.Block, error) {
		// Row-major with padded rows.
		req.Strides = layout.Strides{6, 1}
		req.TensorStride = 1
		served = storage.NewBlock(make([]byte, 6*4), nil)
		return served, nil
	}}

	v := mustForge(t, layout.Shape{4, 5}, 1, dtype.UInt8, WithProvider(p))
	if v.Block() != served {
		t.Fatal("provider block not used")
	}
	if s := v.Strides(); s[0] != 6 || s[1] != 1 {
		t.Fatalf("provider strides not kept: %v", s)
	}
	if v.HasContiguousData() {
		t.Fatal("padded layout is not contiguous")
	}
	off, err := v.ByteOffset([]int{3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if off != 22 {
		t.Fatalf("ByteOffset = %d, want 22", off)
	}
}

func TestForge_ProviderDefaultLayout(t *testing.T) {
	p := &fakeProvider{fn: func(req *storage.Request) (*storage.Block, error) {
		return storage.NewBlock(make([]byte, 2*3*4), nil), nil
	}}
	v := mustForge(t, layout.Shape{2, 3}, 1, dtype.SFloat, WithProvider(p))
	if !v.HasNormalStrides() {
		t.Fatalf("provider without strides should get normal strides, got %v", v.Strides())
	}
}

func TestForge_ProviderErrors(t *testing.T) {
	cause := stderrors.New("out of guest memory")
	var small *storage.Block

	tests := []struct {
		name string
		fn   func(req *storage.Request) (*storage.Block, error)
	}{
		{"error", func(*storage.Request) (*storage.Block, error) { return nil, cause }},
		{"block too small", func(req *storage.Request) (*storage.Block, error) {
			small = storage.NewBlock(make([]byte, 3), nil)
			return small, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New(layout.Shape{4}, 1, dtype.UInt8, WithProvider(&fakeProvider{fn: tt.fn}))
			err := v.Forge()
			if !stderrors.Is(err, errors.ErrAllocation) {
				t.Fatalf("Forge error = %v, want allocation", err)
			}
			if v.IsForged() {
				t.Fatal("failed Forge attached storage")
			}
		})
	}
	if small.RefCount() != 0 {
		t.Fatal("undersized provider block was not released")
	}
}

func TestForge_WasmProvider(t *testing.T) {
	ctx := context.Background()
	p, err := wasmmem.New(ctx, &wasmmem.Config{MaxPages: 2})
	if err != nil {
		t.Fatal(err)
	}
	defer p.Close(ctx)

	v := mustForge(t, layout.Shape{16, 16}, 3, dtype.UInt8, WithProvider(p))
	addr, ok := p.GuestOffset(v.Block())
	if !ok {
		t.Fatal("view block not served by the wasm provider")
	}

	off, err := v.ByteOffset([]int{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	v.Bytes()[off] = 200
	if b, ok := p.Memory().ReadByte(addr + uint32(off)); !ok || b != 200 {
		t.Fatalf("guest memory byte = %d, %v; want 200", b, ok)
	}

	// Too large for two pages: falls back to the heap.
	big := mustForge(t, layout.Shape{512, 512}, 1, dtype.UInt8, WithProvider(p))
	if _, ok := p.GuestOffset(big.Block()); ok {
		t.Fatal("oversized view should not be served by the wasm provider")
	}

	if err := v.Strip(); err != nil {
		t.Fatal(err)
	}
	if p.InUse() != 0 {
		t.Fatalf("InUse after Strip = %d, want 0", p.InUse())
	}
}

func TestForge_MmapProvider(t *testing.T) {
	reg := storage.NewRegistry()
	p := &storage.MmapProvider{MinBytes: 1 << 16, Registry: reg}

	small := mustForge(t, layout.Shape{16, 16}, 1, dtype.UInt8, WithProvider(p))
	large := mustForge(t, layout.Shape{256, 256}, 1, dtype.SFloat, WithProvider(p))
	if small.Block() == nil || large.Block() == nil {
		t.Fatal("views not forged")
	}
	if len(large.Bytes()) != 256*256*4 {
		t.Fatalf("large block has %d bytes", len(large.Bytes()))
	}
	large.Bytes()[len(large.Bytes())-1] = 1
	_ = large.Release()
	_ = small.Release()
	if reg.Len() != 0 {
		t.Fatalf("registry still tracks %d blocks", reg.Len())
	}
}

func TestReforge_Identity(t *testing.T) {
	heap, _, obs := trackedHeap()
	v := mustForge(t, layout.Shape{10, 12}, 2, dtype.SFloat, WithHeap(heap))
	blk := v.Block()

	if err := v.Reforge(layout.Shape{10, 12}, 2, dtype.SFloat, DisallowDataTypeChange); err != nil {
		t.Fatal(err)
	}
	if v.Block() != blk || obs.allocated != 1 || obs.released != 0 {
		t.Fatal("identical Reforge reallocated")
	}
}

func TestReforge_InPlace(t *testing.T) {
	tests := []struct {
		name  string
		sizes layout.Shape
		te    int
		dt    dtype.DataType
	}{
		{"reshape", layout.Shape{12, 10}, 2, dtype.SFloat},
		{"retype", layout.Shape{10, 12}, 1, dtype.DFloat},
		{"tensor to space", layout.Shape{20, 12}, 1, dtype.SFloat},
		{"bytes", layout.Shape{10, 12, 8}, 1, dtype.UInt8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			heap, _, obs := trackedHeap()
			v := mustForge(t, layout.Shape{10, 12}, 2, dtype.SFloat, WithHeap(heap))
			blk := v.Block()

			if err := v.Reforge(tt.sizes, tt.te, tt.dt, DisallowDataTypeChange); err != nil {
				t.Fatal(err)
			}
			if v.Block() != blk || obs.allocated != 1 {
				t.Fatal("same byte count should reuse the block")
			}
			if !v.Sizes().Equal(tt.sizes) || v.TensorElements() != tt.te || v.DataType() != tt.dt {
				t.Fatalf("metadata not updated: %v %d %v", v.Sizes(), v.TensorElements(), v.DataType())
			}
			if !v.HasNormalStrides() || v.Origin() != 0 {
				t.Fatalf("reused view should have normal strides at origin 0, got %v at %d", v.Strides(), v.Origin())
			}
		})
	}
}

func TestReforge_InPlaceMirrored(t *testing.T) {
	v := mustForge(t, layout.Shape{4, 3}, 1, dtype.UInt8)
	m := must(t)(v.Mirror([]bool{true, true}))
	blk := v.Block()
	_ = v.Release()

	if err := m.Reforge(layout.Shape{3, 4}, 1, dtype.UInt8, DisallowDataTypeChange); err != nil {
		t.Fatal(err)
	}
	if m.Block() != blk {
		t.Fatal("unshared mirrored view should be reused")
	}
	if m.Origin() != 0 {
		t.Fatalf("origin = %d, want 0", m.Origin())
	}
}

func TestReforge_Fresh(t *testing.T) {
	heap, reg, obs := trackedHeap()

	t.Run("different size", func(t *testing.T) {
		v := mustForge(t, layout.Shape{4, 4}, 1, dtype.UInt8, WithHeap(heap))
		old := v.Block()
		if err := v.Reforge(layout.Shape{8, 8}, 1, dtype.UInt8, DisallowDataTypeChange); err != nil {
			t.Fatal(err)
		}
		if v.Block() == old {
			t.Fatal("larger byte count must allocate")
		}
		if old.RefCount() != 0 {
			t.Fatal("old block not released")
		}
		if len(v.Bytes()) != 64 {
			t.Fatalf("new block has %d bytes", len(v.Bytes()))
		}
		_ = v.Release()
	})

	t.Run("shared", func(t *testing.T) {
		v := mustForge(t, layout.Shape{4, 4}, 1, dtype.UInt8, WithHeap(heap))
		other := must(t)(v.Clone())
		old := v.Block()
		if err := v.Reforge(layout.Shape{2, 8}, 1, dtype.UInt8, DisallowDataTypeChange); err != nil {
			t.Fatal(err)
		}
		if v.Block() == old {
			t.Fatal("shared block must not be reused")
		}
		if other.Block() != old || old.RefCount() != 1 {
			t.Fatal("other view lost its block")
		}
		_ = v.Release()
		_ = other.Release()
	})

	t.Run("not contiguous", func(t *testing.T) {
		v := mustForge(t, layout.Shape{4, 4}, 1, dtype.UInt8, WithHeap(heap))
		sub := must(t)(v.Crop(Range{0, -1, 2}, FullRange()))
		_ = v.Release()
		old := sub.Block()
		if err := sub.Reforge(layout.Shape{8}, 1, dtype.UInt8, DisallowDataTypeChange); err != nil {
			t.Fatal(err)
		}
		if sub.Block() == old {
			t.Fatal("strided view must not be reused")
		}
		_ = sub.Release()
	})

	if reg.Len() != 0 {
		t.Fatalf("%d blocks leaked", reg.Len())
	}
	if obs.allocated != obs.released {
		t.Fatalf("allocated %d, released %d", obs.allocated, obs.released)
	}
}

func TestReforge_FailureKeepsView(t *testing.T) {
	v := mustForge(t, layout.Shape{4, 4}, 1, dtype.UInt8)
	blk := v.Block()

	tests := []struct {
		name  string
		sizes layout.Shape
		te    int
		dt    dtype.DataType
		want  *errors.Error
	}{
		{"zero size", layout.Shape{4, 0}, 1, dtype.UInt8, errors.ErrSizeExceedsLimit},
		{"negative size", layout.Shape{-4}, 1, dtype.UInt8, errors.ErrInvalidInput},
		{"zero tensor", layout.Shape{4}, 0, dtype.UInt8, errors.ErrInvalidInput},
		{"bad type", layout.Shape{4}, 1, dtype.DataType(42), errors.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Reforge(tt.sizes, tt.te, tt.dt, DisallowDataTypeChange)
			if !stderrors.Is(err, tt.want) {
				t.Fatalf("Reforge error = %v, want %s", err, tt.want.Kind)
			}
			if v.Block() != blk || !v.Sizes().Equal(layout.Shape{4, 4}) || v.DataType() != dtype.UInt8 {
				t.Fatal("failed Reforge changed the view")
			}
		})
	}
}

func TestReforge_Protected(t *testing.T) {
	t.Run("allow keeps type", func(t *testing.T) {
		v := mustForge(t, layout.Shape{4, 4}, 1, dtype.SFloat)
		v.Protect(true)
		blk := v.Block()
		if err := v.Reforge(layout.Shape{4, 4}, 1, dtype.UInt8, AllowDataTypeChange); err != nil {
			t.Fatal(err)
		}
		if v.DataType() != dtype.SFloat || v.Block() != blk {
			t.Fatal("protected view changed type")
		}
	})

	t.Run("disallow fails", func(t *testing.T) {
		v := mustForge(t, layout.Shape{4, 4}, 1, dtype.SFloat)
		v.Protect(true)
		blk := v.Block()
		err := v.Reforge(layout.Shape{4, 4}, 1, dtype.UInt8, DisallowDataTypeChange)
		if !stderrors.Is(err, errors.ErrProtected) {
			t.Fatalf("Reforge error = %v, want protected", err)
		}
		if v.DataType() != dtype.SFloat || v.Block() != blk {
			t.Fatal("failed Reforge changed the view")
		}
	})

	t.Run("reshape fails", func(t *testing.T) {
		v := mustForge(t, layout.Shape{4, 4}, 1, dtype.SFloat)
		v.Protect(true)
		err := v.Reforge(layout.Shape{2, 8}, 1, dtype.SFloat, AllowDataTypeChange)
		if !stderrors.Is(err, errors.ErrProtected) {
			t.Fatalf("Reforge error = %v, want protected", err)
		}
	})

	t.Run("raw protected forges", func(t *testing.T) {
		v := New(layout.Shape{2}, 1, dtype.SFloat)
		v.Protect(true)
		if err := v.Reforge(layout.Shape{3}, 1, dtype.UInt16, AllowDataTypeChange); err != nil {
			t.Fatal(err)
		}
		if !v.IsForged() || v.DataType() != dtype.SFloat || !v.IsProtected() {
			t.Fatal("raw protected view should forge with its own type")
		}
	})
}

func TestStrip(t *testing.T) {
	heap, reg, _ := trackedHeap()
	v := mustForge(t, layout.Shape{3, 4}, 1, dtype.SInt16, WithHeap(heap), WithStrides(layout.Strides{4, 1}))
	clone := must(t)(v.Clone())

	if err := v.Strip(); err != nil {
		t.Fatal(err)
	}
	if v.IsForged() {
		t.Fatal("stripped view still forged")
	}
	if !clone.IsForged() || reg.Len() != 1 {
		t.Fatal("Strip should not affect views sharing the block")
	}
	if s := v.Strides(); !v.Sizes().Equal(layout.Shape{3, 4}) || s[0] != 4 || s[1] != 1 || v.DataType() != dtype.SInt16 {
		t.Fatal("Strip should keep sizes, strides and type")
	}
	if err := v.Strip(); err != nil {
		t.Fatalf("Strip of raw view: %v", err)
	}

	// The kept layout is requested again by the next Forge.
	if err := v.Forge(); err != nil {
		t.Fatal(err)
	}
	if s := v.Strides(); s[0] != 4 || s[1] != 1 {
		t.Fatalf("reforged strides = %v, want [4 1]", s)
	}

	if err := clone.Strip(); err != nil {
		t.Fatal(err)
	}
	_ = v.Release()
	if reg.Len() != 0 {
		t.Fatal("blocks leaked")
	}
}

func TestStrip_Protected(t *testing.T) {
	v := mustForge(t, layout.Shape{3}, 1, dtype.UInt8)
	if v.Protect(true) {
		t.Fatal("Protect should return the previous value false")
	}
	if err := v.Strip(); !stderrors.Is(err, errors.ErrProtected) {
		t.Fatalf("Strip error = %v, want protected", err)
	}
	if !v.IsForged() {
		t.Fatal("protected view was stripped")
	}

	clone := must(t)(v.Clone())
	if clone.IsProtected() {
		t.Fatal("derived views are not protected")
	}
	_ = clone.Release()

	if err := v.Release(); err != nil {
		t.Fatal(err)
	}
	if v.IsForged() {
		t.Fatal("Release should ignore the protect flag")
	}
}

func TestRegistryClose_ViewsTurnRaw(t *testing.T) {
	heap, reg, _ := trackedHeap()
	v := mustForge(t, layout.Shape{4, 4}, 1, dtype.UInt8, WithHeap(heap))
	c := must(t)(v.Crop(Range{0, 1, 1}, FullRange()))
	v.Protect(true)

	if err := reg.Close(); err != nil {
		t.Fatal(err)
	}
	for _, w := range []*View{v, c} {
		if w.IsForged() || w.Bytes() != nil {
			t.Fatal("view over a freed block should be raw")
		}
	}
	if _, err := c.Clone(); !stderrors.Is(err, errors.ErrNotForged) {
		t.Fatalf("Clone error = %v, want not forged", err)
	}
	if _, err := c.Offset([]int{0, 0}); !stderrors.Is(err, errors.ErrNotForged) {
		t.Fatalf("Offset error = %v, want not forged", err)
	}
	if err := v.Strip(); err != nil {
		t.Fatalf("Strip of protected view over a freed block: %v", err)
	}
	if err := c.Release(); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if v.Block() != nil || c.Block() != nil {
		t.Fatal("stripped views should drop the freed block")
	}

	// The crop still allocates from the heap whose registry is closed.
	if err := c.Forge(); !stderrors.Is(err, errors.ErrClosed) {
		t.Fatalf("Forge error = %v, want closed", err)
	}
	if c.IsForged() {
		t.Fatal("failed Forge should leave the view raw")
	}
}

func TestPolicy_String(t *testing.T) {
	if AllowDataTypeChange.String() != "allow" || DisallowDataTypeChange.String() != "disallow" || Policy(7).String() != "unknown" {
		t.Fatal("unexpected Policy names")
	}
}
