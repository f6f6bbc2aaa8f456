// Package diplib provides strided n-dimensional image views over shared,
// reference-counted storage.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	diplib/
//	├── dtype/             Sample data types, type classes and promotion rules
//	├── layout/            Stride arithmetic and coordinate translation
//	├── storage/           Reference-counted blocks, heap, mmap, registry
//	│   └── wasmmem/       Blocks placed in a WebAssembly linear memory
//	├── view/              Views: forge, reforge, crop, mirror, aliasing
//	└── errors/            Structured error types
//
// # Quick Start
//
// Forge an image and take a view of part of it:
//
//	img, err := view.NewForged(layout.Shape{640, 480}, 3, dtype.UInt8)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer img.Release()
//
//	roi, err := img.Crop(view.Range{Start: 100, Stop: 199, Step: 1}, view.FullRange())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer roi.Release()
//
//	off, _ := roi.ByteOffset([]int{0, 0}) // first sample of pixel (100, 0)
//	roi.Bytes()[off] = 255
//
// # Storage Providers
//
// A view asks its storage.Provider for a block before falling back to its
// heap. The wasmmem provider lets a WebAssembly guest read and write image
// data in place:
//
//	mem, err := wasmmem.New(ctx, &wasmmem.Config{MaxPages: 1024})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer mem.Close(ctx)
//
//	img, err := view.NewForged(sizes, 1, dtype.SFloat, view.WithProvider(mem))
//	ptr, _ := mem.GuestOffset(img.Block())
//
// # Error Handling
//
// Errors are *errors.Error values carrying a phase and a kind. Use the
// standard errors.Is with the sentinel values of package errors:
//
//	if errors.Is(err, diperrors.ErrNotForged) {
//	    // view has no storage yet
//	}
//
// # Logging
//
// Packages storage, wasmmem and view log through zap. Loggers are no-ops
// until configured with the package's SetLogger.
package diplib
