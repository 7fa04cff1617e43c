package utils

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

var ErrOutOfBounds = errors.New("read out of buffer bounds")

// BufStack is a little-endian view over a byte slice. Sub buffers keep a
// link to their parent so errors can report absolute offsets.
//
// Reads never panic: the first out of bounds access is remembered and all
// following reads return zero values. Check Err() after a batch of reads.
type BufStack struct {
	parent         *BufStack
	buf            []byte
	relativeOffset int
	absoluteOffset int
	pos            int
	kind           string
	name           string
	err            error
}

func NewBufStack(kind string, b []byte) *BufStack {
	return &BufStack{
		buf:  b,
		kind: kind,
	}
}

// SubBuf returns view starting at offset (relative to bs) up to the end of bs.
func (bs *BufStack) SubBuf(kind string, offset int) *BufStack {
	child := &BufStack{
		parent:         bs,
		relativeOffset: offset,
		absoluteOffset: bs.absoluteOffset + offset,
		kind:           kind,
	}
	if offset < 0 || offset > len(bs.buf) {
		child.fail(offset, 0)
	} else {
		child.buf = bs.buf[offset:]
	}
	return child
}

func (bs *BufStack) SetName(name string) *BufStack {
	bs.name = name
	return bs
}

// SetSize limits view to size bytes.
func (bs *BufStack) SetSize(size int) *BufStack {
	if size < 0 || size > len(bs.buf) {
		bs.fail(0, size)
		return bs
	}
	bs.buf = bs.buf[:size]
	return bs
}

func (bs *BufStack) Name() string        { return bs.name }
func (bs *BufStack) Kind() string        { return bs.kind }
func (bs *BufStack) Size() int           { return len(bs.buf) }
func (bs *BufStack) Parent() *BufStack   { return bs.parent }
func (bs *BufStack) RelativeOffset() int { return bs.relativeOffset }
func (bs *BufStack) AbsoluteOffset() int { return bs.absoluteOffset }
func (bs *BufStack) Raw() []byte         { return bs.buf }

func (bs *BufStack) String() string {
	return fmt.Sprintf("buf<%v>(%v)[o:0x%x,s:0x%x,ao:0x%x,ae:0x%x]",
		bs.kind, bs.name, bs.relativeOffset, len(bs.buf), bs.absoluteOffset, bs.absoluteOffset+len(bs.buf))
}

func (bs *BufStack) StringChain() string {
	s := bs.String()
	if bs.parent != nil {
		s += "::" + bs.parent.StringChain()
	}
	return s
}

// Err returns first out of bounds error of this buffer.
func (bs *BufStack) Err() error {
	return bs.err
}

func (bs *BufStack) fail(off, size int) {
	if bs.err == nil {
		bs.err = errors.Wrapf(ErrOutOfBounds, "%s: 0x%x bytes at 0x%x (absolute 0x%x)",
			bs.StringChain(), size, off, bs.absoluteOffset+off)
	}
}

func (bs *BufStack) slice(off, size int) []byte {
	if bs.err != nil {
		return nil
	}
	if off < 0 || size < 0 || off+size > len(bs.buf) {
		bs.fail(off, size)
		return nil
	}
	return bs.buf[off : off+size]
}

func (bs *BufStack) Pos() int {
	return bs.pos
}

func (bs *BufStack) Seek(pos int) {
	bs.pos = pos
}

func (bs *BufStack) Skip(amount int) {
	bs.pos += amount
}

func (bs *BufStack) Read(amount int) []byte {
	b := bs.slice(bs.pos, amount)
	bs.pos += amount
	return b
}

func (bs *BufStack) LU32(off int) uint32 {
	if b := bs.slice(off, 4); b != nil {
		return binary.LittleEndian.Uint32(b)
	}
	return 0
}

func (bs *BufStack) LU16(off int) uint16 {
	if b := bs.slice(off, 2); b != nil {
		return binary.LittleEndian.Uint16(b)
	}
	return 0
}

func (bs *BufStack) Byte(off int) byte {
	if b := bs.slice(off, 1); b != nil {
		return b[0]
	}
	return 0
}

func (bs *BufStack) LF(off int) float32 {
	return math.Float32frombits(bs.LU32(off))
}

func (bs *BufStack) LVec2(off int) mgl32.Vec2 {
	return mgl32.Vec2{bs.LF(off), bs.LF(off + 4)}
}

func (bs *BufStack) LVec3(off int) mgl32.Vec3 {
	return mgl32.Vec3{bs.LF(off), bs.LF(off + 4), bs.LF(off + 8)}
}

func (bs *BufStack) LVec4(off int) mgl32.Vec4 {
	return mgl32.Vec4{bs.LF(off), bs.LF(off + 4), bs.LF(off + 8), bs.LF(off + 12)}
}

// LColor reads 4 bytes packed normalized color
func (bs *BufStack) LColor(off int) mgl32.Vec4 {
	var raw [4]byte
	copy(raw[:], bs.slice(off, 4))
	return ColorFromBytes(raw)
}

// ZStringAt reads nil-terminated utf-8 string without moving cursor
func (bs *BufStack) ZStringAt(off int) string {
	if bs.err != nil {
		return ""
	}
	if off < 0 || off >= len(bs.buf) {
		bs.fail(off, 1)
		return ""
	}
	n := bytes.IndexByte(bs.buf[off:], 0)
	if n < 0 {
		bs.fail(off, len(bs.buf)-off+1)
		return ""
	}
	return string(bs.buf[off : off+n])
}

func (bs *BufStack) ReadLU32() uint32 {
	v := bs.LU32(bs.pos)
	bs.pos += 4
	return v
}

func (bs *BufStack) ReadLU16() uint16 {
	v := bs.LU16(bs.pos)
	bs.pos += 2
	return v
}

func (bs *BufStack) ReadU8() byte {
	v := bs.Byte(bs.pos)
	bs.pos++
	return v
}

func (bs *BufStack) ReadLF() float32 {
	v := bs.LF(bs.pos)
	bs.pos += 4
	return v
}

func (bs *BufStack) ReadVec2() mgl32.Vec2 {
	v := bs.LVec2(bs.pos)
	bs.pos += 8
	return v
}

func (bs *BufStack) ReadVec3() mgl32.Vec3 {
	v := bs.LVec3(bs.pos)
	bs.pos += 12
	return v
}

func (bs *BufStack) ReadColor() mgl32.Vec4 {
	v := bs.LColor(bs.pos)
	bs.pos += 4
	return v
}

func (bs *BufStack) ReadZString() string {
	s := bs.ZStringAt(bs.pos)
	bs.pos += len(s) + 1
	return s
}
