package emf

import (
	"encoding/binary"
	"math"
	"unicode/utf16"
)

// Record types, only the few that are needed.
const (
	emrHeader                 = 0x00000001
	emrPolyline               = 0x00000004
	emrEOF                    = 0x0000000E
	emrSetBkMode              = 0x00000012
	emrSetTextAlign           = 0x00000016
	emrSetTextColor           = 0x00000018
	emrMoveToEx               = 0x0000001B
	emrSelectObject           = 0x00000025
	emrDeleteObject           = 0x00000028
	emrLineTo                 = 0x00000036
	emrBeginPath              = 0x0000003B
	emrEndPath                = 0x0000003C
	emrCloseFigure            = 0x0000003D
	emrStrokePath             = 0x00000040
	emrExtCreateFontIndirectW = 0x00000052
	emrExtTextOutW            = 0x00000054
	emrExtCreatePen           = 0x0000005F
)

// text alignment
const (
	taCenter   = 0x0006
	taBaseline = 0x0018
)

// pen styles
const (
	psSolid     = 0x00000000
	psGeometric = 0x00010000
)

// stock object handles
const (
	stockNullPen           = 0x80000008
	stockDeviceDefaultFont = 0x8000000E
)

// background modes
const bkTransparent = 0x0001

// graphics mode for text output
const gmCompatible = 0x00000001

// headerSize is the fixed size of the file header record including the
// 16-byte description string.
const headerSize = 108 + 16

// buf accumulates a little-endian record payload.
type buf []byte

func (b buf) u32(v uint32) buf { return binary.LittleEndian.AppendUint32(b, v) }

func (b buf) i32(v int) buf { return b.u32(uint32(int32(v))) }

func (b buf) u16(v uint16) buf { return binary.LittleEndian.AppendUint16(b, v) }

func (b buf) f32(v float64) buf { return b.u32(math.Float32bits(float32(v))) }

func (b buf) bytes(p []byte) buf { return append(b, p...) }

// record is a complete EMF record: type, declared size, payload. The
// declared size always equals len(record) and is a multiple of 4.
type record []byte

// mkrec frames a payload as a record, zero-padding it to 4-byte alignment
// so the declared size matches the bytes written.
func mkrec(typ uint32, payload buf) record {
	for len(payload)%4 != 0 {
		payload = append(payload, 0)
	}
	rec := make(buf, 0, 8+len(payload))
	rec = rec.u32(typ).u32(uint32(8 + len(payload)))
	rec = rec.bytes(payload)
	return record(rec)
}

// utf16Bytes encodes s as UTF-16LE into a fixed-size zero-padded field,
// truncating if it does not fit.
func utf16Bytes(s string, size int) []byte {
	u := utf16.Encode([]rune(s))
	if len(u) > size/2 {
		u = u[:size/2]
	}
	b := make([]byte, size)
	for i, v := range u {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

func eofRecord() record {
	// palette count, palette offset, then the record size again
	return mkrec(emrEOF, buf{}.u32(0).u32(16).u32(20))
}
