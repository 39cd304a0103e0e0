package transform

import (
	"bytes"
	"testing"

	"github.com/matzehuels/gifshuffle/pkg/buffer"
	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif/giftest"
)

func TestCallSuccess(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frames(4).Build()
	alloc := buffer.NewLimited(1 << 20)

	var got []byte
	code := Call(alloc, data, DefaultCallParams(9), func(out []byte) { got = out })
	if code != nil {
		t.Fatalf("Call returned %q", code)
	}
	if len(got) != len(data) {
		t.Fatalf("output len = %d, want %d", len(got), len(data))
	}
	if alloc.InUse() != len(data) {
		t.Errorf("InUse = %d, want output held by caller", alloc.InUse())
	}
	alloc.Release(got)
	if alloc.InUse() != 0 {
		t.Errorf("InUse = %d after release", alloc.InUse())
	}
}

func TestCallMatchesTransform(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frames(6).Build()
	p := CallParams{
		Seed:         3,
		SpeedEnabled: true,
		Speed:        2,
		LoopEnabled:  true,
		Loop:         1,
		SwapRatio:    0.5,
		SwapDistance: 2,
	}

	var got []byte
	if code := Call(nil, data, p, func(out []byte) { got = out }); code != nil {
		t.Fatalf("Call returned %q", code)
	}
	res, err := Transform(data, p.Config())
	if err != nil {
		t.Fatalf("Transform error: %v", err)
	}
	if !bytes.Equal(got, res.Output) {
		t.Error("Call and Transform disagree")
	}
}

func TestCallErrorIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		alloc buffer.Allocator
		data  []byte
		want  errors.Code
	}{
		{"wrong header", nil, []byte("nope"), errors.ErrCodeWrongHeader},
		{"missing color table", nil, giftest.New().Frames(1).Build(), errors.ErrCodeMissingColorTable},
		{"out of memory", buffer.NewLimited(8), giftest.New().GlobalTable(0).Frames(1).Build(), errors.ErrCodeOutOfMemory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			code := Call(tt.alloc, tt.data, DefaultCallParams(1), func([]byte) { called = true })
			if called {
				t.Error("callback invoked on failure")
			}
			if len(code) == 0 || len(code) > 25 || code[len(code)-1] != 0 {
				t.Fatalf("identifier %q is not a short NUL-terminated string", code)
			}
			if string(code[:len(code)-1]) != string(tt.want) {
				t.Errorf("identifier = %q, want %s", code, tt.want)
			}
			if msg := errors.MessageFor(code); msg == "" || msg == "Unknown error" {
				t.Errorf("MessageFor(%q) = %q", code, msg)
			}
		})
	}
}

func TestCallParamsConfig(t *testing.T) {
	p := DefaultCallParams(5)
	cfg := p.Config()
	if cfg.Seed != 5 || cfg.SwapRatio != 1 || cfg.SwapDistance != 0 {
		t.Errorf("Config() = %+v", cfg)
	}
	if cfg.Speed != nil || cfg.Loop != nil {
		t.Error("overrides should be unset by default")
	}

	p.SwapDistance = 4
	p.LoopEnabled = true
	p.Loop = 2
	cfg = p.Config()
	if cfg.SwapDistance != 4 || cfg.Loop == nil || *cfg.Loop != 2 {
		t.Errorf("Config() = %+v", cfg)
	}
}

func TestCallNilCallbackReleases(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frames(2).Build()
	alloc := buffer.NewLimited(1 << 20)
	if code := Call(alloc, data, DefaultCallParams(1), nil); code != nil {
		t.Fatalf("Call returned %q", code)
	}
	if alloc.InUse() != 0 {
		t.Errorf("InUse = %d, want 0", alloc.InUse())
	}
}
