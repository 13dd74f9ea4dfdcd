// Package loader loads guest images: 32-bit LoongArch ELF executables or raw
// binaries placed at the reset vector.
package loader

import (
	"bytes"
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/la32sim/emu"
	"github.com/sarchlab/la32sim/log"
)

// Loader errors.
var (
	ErrUnsupportedELF = errors.New("unsupported ELF")
	ErrEmptyImage     = errors.New("empty image")
	ErrOutOfMemory    = errors.New("segment outside guest memory")
)

// SegmentFlags represents memory protection flags for a segment.
type SegmentFlags uint32

const (
	// SegmentFlagExecute indicates the segment is executable.
	SegmentFlagExecute SegmentFlags = 1 << iota
	// SegmentFlagWrite indicates the segment is writable.
	SegmentFlagWrite
	// SegmentFlagRead indicates the segment is readable.
	SegmentFlagRead
)

// Segment represents a loadable region of an image.
type Segment struct {
	// VirtAddr is the address where this segment should be loaded.
	VirtAddr uint32
	// Data contains the segment contents from the file.
	Data []byte
	// MemSize is the size in memory (may be larger than len(Data) for BSS).
	MemSize uint32
	// Flags contains the segment protection flags.
	Flags SegmentFlags
}

// Program represents a loaded image ready for execution.
type Program struct {
	// EntryPoint is the address where execution should begin.
	EntryPoint uint32
	// Segments contains all loadable segments of the image.
	Segments []Segment
}

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Load reads an image. Files starting with the ELF magic are parsed as
// LoongArch32 ELF executables, anything else is loaded raw at base.
func Load(path string, base uint32) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer func() { _ = f.Close() }()

	magic := make([]byte, len(elfMagic))
	n, err := io.ReadFull(f, magic)
	if err == nil && bytes.Equal(magic, elfMagic) {
		return LoadELF(path)
	}
	if n == 0 {
		return nil, fmt.Errorf("failed to load %s: %w", path, ErrEmptyImage)
	}

	return LoadRaw(path, base)
}

// LoadRaw loads the whole file as a single segment at base and enters at
// its first byte.
func LoadRaw(path string, base uint32) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw image: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("failed to load %s: %w", path, ErrEmptyImage)
	}

	log.Debug(log.LoaderModule, "raw image", "path", path, "size", len(data))

	return &Program{
		EntryPoint: base,
		Segments: []Segment{{
			VirtAddr: base,
			Data:     data,
			MemSize:  uint32(len(data)),
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}, nil
}

// LoadELF parses a 32-bit LoongArch ELF executable.
func LoadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("%w: not a 32-bit ELF file", ErrUnsupportedELF)
	}

	if f.Machine != elf.EM_LOONGARCH {
		return nil, fmt.Errorf("%w: not a LoongArch ELF file (machine type: %v)", ErrUnsupportedELF, f.Machine)
	}

	prog := &Program{EntryPoint: uint32(f.Entry)}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		var flags SegmentFlags
		if phdr.Flags&elf.PF_X != 0 {
			flags |= SegmentFlagExecute
		}
		if phdr.Flags&elf.PF_W != 0 {
			flags |= SegmentFlagWrite
		}
		if phdr.Flags&elf.PF_R != 0 {
			flags |= SegmentFlagRead
		}

		prog.Segments = append(prog.Segments, Segment{
			VirtAddr: uint32(phdr.Vaddr),
			Data:     data,
			MemSize:  uint32(phdr.Memsz),
			Flags:    flags,
		})
	}

	log.Debug(log.LoaderModule, "ELF image", "path", path,
		"entry", fmt.Sprintf("0x%08x", prog.EntryPoint), "segments", len(prog.Segments))

	return prog, nil
}

// Size returns the number of bytes the program occupies in memory.
func (p *Program) Size() uint64 {
	var total uint64
	for _, seg := range p.Segments {
		total += uint64(max(seg.MemSize, uint32(len(seg.Data))))
	}
	return total
}

// CheckBounds verifies that every segment lies inside [base, base+size).
func (p *Program) CheckBounds(base, size uint32) error {
	end := uint64(base) + uint64(size)
	for _, seg := range p.Segments {
		segEnd := uint64(seg.VirtAddr) + uint64(max(seg.MemSize, uint32(len(seg.Data))))
		if seg.VirtAddr < base || segEnd > end {
			return fmt.Errorf("%w: [0x%08x, 0x%08x) not in [0x%08x, 0x%08x)",
				ErrOutOfMemory, seg.VirtAddr, segEnd, base, end)
		}
	}
	return nil
}

// LoadInto copies every segment into mem and zero fills the rest of each
// segment's memory size.
func (p *Program) LoadInto(mem *emu.Memory) {
	for _, seg := range p.Segments {
		mem.LoadProgram(seg.VirtAddr, seg.Data)
		for off := uint32(len(seg.Data)); off < seg.MemSize; off++ {
			mem.Write8(seg.VirtAddr+off, 0)
		}
	}
}
