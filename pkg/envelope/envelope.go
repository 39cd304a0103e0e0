// Package envelope carries transform requests and responses between a host
// and a background worker as CBOR messages.
//
// A host writes a sequence of [Request] items to the worker's input and
// reads one [Response] per request, in order, from its output. Responses
// never carry Go error text: a failure is reported by its kind identifier
// plus the fixed human-readable message for that kind.
//
//	enc := envelope.NewEncoder(stdin)
//	enc.Encode(envelope.Request{ID: "1", Input: data, Seed: 42})
//
//	var resp envelope.Response
//	envelope.NewDecoder(stdout).Decode(&resp)
//	if !resp.OK {
//	    fmt.Println(resp.Message)
//	}
package envelope

import (
	"context"

	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
	"github.com/matzehuels/gifshuffle/pkg/transform"
)

// Request asks for one transform.
type Request struct {
	// ID is echoed in the response so hosts can pair them.
	ID string `cbor:"id,omitempty"`

	Input []byte `cbor:"input"`
	Seed  uint64 `cbor:"seed"`

	Speed *float64 `cbor:"speed,omitempty"`
	Loop  *uint32  `cbor:"loop,omitempty"`

	// SwapRatio defaults to 1 (full shuffle) when absent.
	SwapRatio *float64 `cbor:"swap_ratio,omitempty"`

	// SwapDistance of 0 means unbounded.
	SwapDistance uint32 `cbor:"swap_distance,omitempty"`
}

// Config converts r to a shuffle configuration.
func (r Request) Config() shuffle.Config {
	cfg := shuffle.DefaultConfig(r.Seed)
	cfg.Speed = r.Speed
	cfg.Loop = r.Loop
	if r.SwapRatio != nil {
		cfg.SwapRatio = *r.SwapRatio
	}
	if r.SwapDistance != transform.UnboundedDistance {
		cfg.SwapDistance = int(r.SwapDistance)
	}
	return cfg
}

// Response answers one Request. Exactly one of Output or Code is set.
type Response struct {
	ID      string `cbor:"id,omitempty"`
	OK      bool   `cbor:"ok"`
	Output  []byte `cbor:"output,omitempty"`
	Code    string `cbor:"code,omitempty"`
	Message string `cbor:"message,omitempty"`
}

// Reply builds the response for a finished transform. Errors are reduced
// to their kind.
func Reply(id string, output []byte, err error) Response {
	if err != nil {
		code := errors.KindOf(err)
		return Response{
			ID:      id,
			Code:    string(code),
			Message: errors.MessageFor([]byte(code)),
		}
	}
	return Response{ID: id, OK: true, Output: output}
}

// Handle runs the transform described by req.
func Handle(ctx context.Context, req Request, opts ...transform.Option) Response {
	res, err := transform.TransformContext(ctx, req.Input, req.Config(), opts...)
	if err != nil {
		return Reply(req.ID, nil, err)
	}
	return Reply(req.ID, res.Output, nil)
}
