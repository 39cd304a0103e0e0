package envelope

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif/giftest"
	"github.com/matzehuels/gifshuffle/pkg/transform"
)

func TestRequestDeterministicEncoding(t *testing.T) {
	speed := 2.0
	req := Request{ID: "a", Input: []byte("GIF89a"), Seed: 9, Speed: &speed}

	first, err := Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	second, err := Marshal(req)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("encoding not deterministic: %x != %x", first, second)
	}

	var decoded Request
	if err := Unmarshal(first, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded.ID != "a" || decoded.Seed != 9 || decoded.Speed == nil || *decoded.Speed != 2 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.SwapRatio != nil || decoded.Loop != nil {
		t.Error("absent fields should decode as nil")
	}
}

func TestRequestIgnoresUnknownFields(t *testing.T) {
	data, err := Marshal(map[string]any{"id": "x", "seed": 3, "future": true})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var req Request
	if err := Unmarshal(data, &req); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if req.ID != "x" || req.Seed != 3 {
		t.Errorf("decoded = %+v", req)
	}
}

func TestRequestConfig(t *testing.T) {
	ratio := 0.25
	tests := []struct {
		name         string
		req          Request
		wantRatio    float64
		wantDistance int
	}{
		{"defaults", Request{Seed: 1}, 1, 0},
		{"ratio", Request{SwapRatio: &ratio}, 0.25, 0},
		{"distance", Request{SwapDistance: 3}, 1, 3},
		{"unbounded sentinel", Request{SwapDistance: transform.UnboundedDistance}, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.req.Config()
			if cfg.SwapRatio != tt.wantRatio || cfg.SwapDistance != tt.wantDistance {
				t.Errorf("Config() = %+v", cfg)
			}
		})
	}
}

func TestHandle(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frames(3).Build()

	ok := Handle(context.Background(), Request{ID: "1", Input: data, Seed: 42})
	if !ok.OK || ok.ID != "1" || len(ok.Output) != len(data) || ok.Code != "" {
		t.Errorf("success response = %+v", ok)
	}

	bad := Handle(context.Background(), Request{ID: "2", Input: []byte("PNG")})
	if bad.OK || bad.Output != nil {
		t.Errorf("failure response = %+v", bad)
	}
	if bad.Code != string(errors.ErrCodeWrongHeader) {
		t.Errorf("Code = %q, want WrongHeader", bad.Code)
	}
	if bad.Message != "Not a GIF89a file" {
		t.Errorf("Message = %q", bad.Message)
	}
}

func TestReplyHidesErrorText(t *testing.T) {
	resp := Reply("z", nil, io.ErrUnexpectedEOF)
	if resp.Code != string(errors.ErrCodeUnknownBlock) {
		t.Errorf("Code = %q, want UnknownBlock", resp.Code)
	}
	if strings.Contains(resp.Message, "EOF") {
		t.Errorf("Message leaks error text: %q", resp.Message)
	}
}

func TestServe(t *testing.T) {
	data := giftest.New().GlobalTable(0).Frames(4).Build()

	var in bytes.Buffer
	enc := NewEncoder(&in)
	for _, req := range []Request{
		{ID: "a", Input: data, Seed: 1},
		{ID: "b", Input: []byte("nope")},
		{ID: "c", Input: data, Seed: 1},
	} {
		if err := enc.Encode(req); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	var out bytes.Buffer
	if err := Serve(context.Background(), &in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	dec := NewDecoder(&out)
	var resps []Response
	for {
		var resp Response
		if err := dec.Decode(&resp); err != nil {
			break
		}
		resps = append(resps, resp)
	}
	if len(resps) != 3 {
		t.Fatalf("got %d responses, want 3", len(resps))
	}
	if !resps[0].OK || resps[1].OK || !resps[2].OK {
		t.Errorf("OK flags = %v %v %v", resps[0].OK, resps[1].OK, resps[2].OK)
	}
	if resps[1].ID != "b" || resps[1].Code != string(errors.ErrCodeWrongHeader) {
		t.Errorf("second response = %+v", resps[1])
	}
	if !bytes.Equal(resps[0].Output, resps[2].Output) {
		t.Error("same request gave different output")
	}
}

func TestServeCustomHandler(t *testing.T) {
	var in bytes.Buffer
	if err := NewEncoder(&in).Encode(Request{ID: "q"}); err != nil {
		t.Fatal(err)
	}
	var seen []string
	w := &Worker{Handler: func(_ context.Context, req Request) Response {
		seen = append(seen, req.ID)
		return Response{ID: req.ID, OK: true}
	}}
	var out bytes.Buffer
	if err := w.Serve(context.Background(), &in, &out); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if len(seen) != 1 || seen[0] != "q" {
		t.Errorf("handler saw %v", seen)
	}
}

func TestServeMalformedInput(t *testing.T) {
	in := bytes.NewReader([]byte{0xFF, 0xFF, 0xFF})
	if err := Serve(context.Background(), in, io.Discard); err == nil {
		t.Error("Serve should fail on malformed CBOR")
	}
}

func TestServeCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var in bytes.Buffer
	if err := Serve(ctx, &in, io.Discard); err != context.Canceled {
		t.Errorf("Serve error = %v, want context.Canceled", err)
	}
}
