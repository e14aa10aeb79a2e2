package raster

import (
	"math"
	"testing"

	"github.com/meridian-render/meridian/types"
)

func TestPackChannel(t *testing.T) {
	type spec struct {
		in  float32
		out byte
	}

	specs := []spec{
		{-1, 0},
		{0, 0},
		{0.5, 128},
		{1, 255},
		{2, 255},
	}

	for idx, s := range specs {
		if got := packChannel(s.in); got != s.out {
			t.Fatalf("[spec %d] expected packChannel(%f) to be %d; got %d", idx, s.in, s.out, got)
		}
	}
}

func TestClearRows(t *testing.T) {
	fb := newFrameBuffer(4, 4, 1)
	packed := packColor(types.Vec3{1, 0, 0})
	fb.clearRows(packed, 1, 3)

	sc := fb.sampleCount
	for y := uint32(0); y < 4; y++ {
		for x := uint32(0); x < 4; x++ {
			for s := uint32(0); s < sc; s++ {
				idx := (y*4+x)*sc + s
				if y >= 1 && y < 3 {
					if fb.samples[idx] != packed {
						t.Fatalf("expected sample (%d, %d, %d) to hold the clear color", x, y, s)
					}
					if fb.depth[idx] != math.MaxFloat32 {
						t.Fatalf("expected sample (%d, %d, %d) depth to be reset", x, y, s)
					}
					continue
				}
				if fb.samples[idx] != 0 {
					t.Fatalf("expected sample (%d, %d, %d) outside the row range to stay zero", x, y, s)
				}
			}
		}
	}
}

func TestResolveAveragesSamples(t *testing.T) {
	fb := newFrameBuffer(2, 1, 1)

	// Pixel 0: both samples identical; the resolve must be exact.
	uniform := packColor(types.Vec3{0.25, 0.5, 0.75})
	fb.samples[0] = uniform
	fb.samples[1] = uniform

	// Pixel 1: two handcrafted samples averaging per channel.
	fb.samples[2] = 0xff000000 | 100 | 40<<8 | 10<<16
	fb.samples[3] = 0xff000000 | 200 | 60<<8 | 30<<16

	fb.Resolve()

	pix := fb.Pixels()
	if pix[0] != byte(uniform) || pix[1] != byte(uniform>>8) || pix[2] != byte(uniform>>16) || pix[3] != 0xff {
		t.Fatalf("expected an exact resolve of uniform samples; got (%d, %d, %d, %d)", pix[0], pix[1], pix[2], pix[3])
	}
	if pix[4] != 150 || pix[5] != 50 || pix[6] != 20 || pix[7] != 0xff {
		t.Fatalf("expected channel averages (150, 50, 20, 255); got (%d, %d, %d, %d)", pix[4], pix[5], pix[6], pix[7])
	}
}

func TestFrameBufferLayout(t *testing.T) {
	fb := newFrameBuffer(3, 2, 2)
	if fb.SampleCount() != 4 {
		t.Fatalf("expected 4 samples per pixel; got %d", fb.SampleCount())
	}
	if len(fb.samples) != 3*2*4 || len(fb.depth) != 3*2*4 {
		t.Fatalf("expected %d sample slots; got %d colors, %d depths", 3*2*4, len(fb.samples), len(fb.depth))
	}
	if len(fb.Pixels()) != 3*2*4 {
		t.Fatalf("expected %d resolved bytes; got %d", 3*2*4, len(fb.Pixels()))
	}

	// A fresh buffer must start at the far plane, not at depth zero.
	for i, d := range fb.depth {
		if d != math.MaxFloat32 {
			t.Fatalf("expected depth slot %d to start at the far plane; got %f", i, d)
		}
	}
}
