package utils

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// BufWriter accumulates little-endian output. Offsets that are only known
// later are written as placeholders and patched with PatchU32.
type BufWriter struct {
	buf bytes.Buffer
}

func (bw *BufWriter) W8(v uint8) {
	bw.buf.WriteByte(v)
}

func (bw *BufWriter) W16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	bw.buf.Write(buf[:])
}

func (bw *BufWriter) W32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	bw.buf.Write(buf[:])
}

func (bw *BufWriter) WF(v float32) {
	bw.W32(math.Float32bits(v))
}

func (bw *BufWriter) WVec2(v mgl32.Vec2) {
	for _, f := range v {
		bw.WF(f)
	}
}

func (bw *BufWriter) WVec3(v mgl32.Vec3) {
	for _, f := range v {
		bw.WF(f)
	}
}

func (bw *BufWriter) WVec4(v mgl32.Vec4) {
	for _, f := range v {
		bw.WF(f)
	}
}

func (bw *BufWriter) WColor(v mgl32.Vec4) {
	raw := ColorToBytes(v)
	bw.buf.Write(raw[:])
}

func (bw *BufWriter) WBytes(b []byte) {
	bw.buf.Write(b)
}

// WZString writes s followed by nil byte
func (bw *BufWriter) WZString(s string) {
	bw.buf.WriteString(s)
	bw.buf.WriteByte(0)
}

func (bw *BufWriter) Pos() int {
	return bw.buf.Len()
}

func (bw *BufWriter) Skip(count int) {
	bw.buf.Write(make([]byte, count))
}

func (bw *BufWriter) Pad(align int) {
	if bw.Pos()%align != 0 {
		bw.Skip(align - bw.Pos()%align)
	}
}

// PatchU32 overwrites already written 4 bytes at pos
func (bw *BufWriter) PatchU32(pos int, v uint32) {
	binary.LittleEndian.PutUint32(bw.buf.Bytes()[pos:pos+4], v)
}

func (bw *BufWriter) Bytes() []byte {
	return bw.buf.Bytes()
}

func AlignUp(n, alignment int) int {
	return (n + alignment - 1) / alignment * alignment
}
