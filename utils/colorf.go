package utils

import "github.com/go-gl/mathgl/mgl32"

// ColorFromBytes converts packed normalized color (one byte per channel)
func ColorFromBytes(raw [4]byte) mgl32.Vec4 {
	var c mgl32.Vec4
	for i, b := range raw {
		c[i] = float32(b) / 255.0
	}
	return c
}

// ColorToBytes packs channels back to bytes. Channels are clamped to [0, 1]
// and then truncated, so 1.0 stays 0xff and values slightly out of range
// do not wrap around.
func ColorToBytes(c mgl32.Vec4) (raw [4]byte) {
	for i, f := range c {
		if f != f {
			f = 0
		}
		f = mgl32.Clamp(f, 0, 1)
		raw[i] = byte(f * 255.0)
	}
	return raw
}
