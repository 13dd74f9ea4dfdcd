package loader

import "encoding/binary"

// builtinWords is the image run when no image file is given. It stores zero
// over its last word, loads it back into a0 and traps, so a correct core
// ends with a good trap.
var builtinWords = []uint32{
	0x1c00000c, // pcaddu12i t0, 0
	0x29804180, // st.w      zero, t0, 16
	0x28804184, // ld.w      a0, t0, 16
	0x002a0000, // break     0
	0xdeadbeef, // data
}

// BuiltinImage returns the built-in image as little-endian bytes.
func BuiltinImage() []byte {
	img := make([]byte, 4*len(builtinWords))
	for i, w := range builtinWords {
		binary.LittleEndian.PutUint32(img[4*i:], w)
	}
	return img
}

// Builtin returns the built-in image as a program placed at base.
func Builtin(base uint32) *Program {
	img := BuiltinImage()
	return &Program{
		EntryPoint: base,
		Segments: []Segment{{
			VirtAddr: base,
			Data:     img,
			MemSize:  uint32(len(img)),
			Flags:    SegmentFlagRead | SegmentFlagWrite | SegmentFlagExecute,
		}},
	}
}
