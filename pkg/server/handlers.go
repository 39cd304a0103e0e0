package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gifshuffle/pkg/buildinfo"
	"github.com/matzehuels/gifshuffle/pkg/envelope"
	"github.com/matzehuels/gifshuffle/pkg/errors"
	"github.com/matzehuels/gifshuffle/pkg/gif"
	"github.com/matzehuels/gifshuffle/pkg/observability"
	"github.com/matzehuels/gifshuffle/pkg/pipeline"
	"github.com/matzehuels/gifshuffle/pkg/shuffle"
)

// Content types.
const (
	ContentTypeGIF  = "image/gif"
	ContentTypeCBOR = "application/cbor"
	ContentTypeJSON = "application/json"
)

// Response headers set on successful shuffles.
const (
	HeaderSeed   = "X-Gifshuffle-Seed"
	HeaderFrames = "X-Gifshuffle-Frames"
	HeaderCache  = "X-Gifshuffle-Cache"
)

// errorBody is the JSON error payload.
type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// inspectBody is the JSON payload of /v1/inspect.
type inspectBody struct {
	gif.Info
	Cached bool `json:"cached"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleShuffle(w http.ResponseWriter, r *http.Request) {
	if isCBOR(r) {
		s.handleEnvelope(w, r)
		return
	}

	cfg, err := s.queryConfig(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(r.Context(), body, pipeline.Options{
		Config:    cfg,
		Allocator: s.alloc,
		Logger:    log.FromContext(r.Context()),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer res.Release()

	h := w.Header()
	h.Set("Content-Type", ContentTypeGIF)
	h.Set("Content-Length", strconv.Itoa(len(res.Output)))
	h.Set(HeaderSeed, strconv.FormatUint(cfg.Seed, 10))
	h.Set(HeaderFrames, strconv.Itoa(res.Stats.Frames))
	h.Set(HeaderCache, cacheStatus(res.CacheInfo.Hit))
	w.WriteHeader(http.StatusOK)
	w.Write(res.Output)
}

// handleEnvelope answers a CBOR envelope request with a CBOR response.
// Transform failures are reported in the response body with the mapped
// status code.
func (s *Server) handleEnvelope(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req envelope.Request
	if err := envelope.Unmarshal(body, &req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode envelope"))
		return
	}
	if req.ID == "" {
		req.ID = RequestID(r.Context())
	}

	status := http.StatusOK
	res, err := s.runner.Execute(r.Context(), req.Input, pipeline.Options{
		Config:    req.Config(),
		Allocator: s.alloc,
		Logger:    log.FromContext(r.Context()),
	})
	var resp envelope.Response
	if err != nil {
		status = statusFor(err)
		resp = envelope.Reply(req.ID, nil, err)
	} else {
		defer res.Release()
		resp = envelope.Reply(req.ID, res.Output, nil)
	}

	data, err := envelope.Marshal(resp)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode envelope"))
		return
	}
	w.Header().Set("Content-Type", ContentTypeCBOR)
	w.WriteHeader(status)
	w.Write(data)
}

func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, hit, err := s.runner.Inspect(r.Context(), body)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, inspectBody{Info: gif.Describe(body, l), Cached: hit})
}

// readBody reads the request body up to the configured limit.
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	var tooBig *http.MaxBytesError
	if stderrors.As(err, &tooBig) {
		return nil, errors.Wrap(errors.ErrCodeNoSpaceLeft, err, "request body exceeds %d bytes", tooBig.Limit)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return body, nil
}

// queryConfig overlays query parameters on the server defaults.
func (s *Server) queryConfig(q url.Values) (shuffle.Config, error) {
	cfg := s.cfg.Defaults
	if v := q.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return cfg, badParam("seed", v)
		}
		cfg.Seed = seed
	}
	if v := q.Get("speed"); v != "" {
		speed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, badParam("speed", v)
		}
		cfg.Speed = &speed
	}
	if v := q.Get("loop"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return cfg, badParam("loop", v)
		}
		loop := uint32(n)
		cfg.Loop = &loop
	}
	if v := q.Get("ratio"); v != "" {
		ratio, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, badParam("ratio", v)
		}
		cfg.SwapRatio = ratio
	}
	if v := q.Get("distance"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return cfg, badParam("distance", v)
		}
		cfg.SwapDistance = d
	}
	return cfg, cfg.Validate()
}

func badParam(name, value string) error {
	return errors.New(errors.ErrCodeInvalidInput, "invalid %s %q", name, value)
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch code := errors.GetCode(err); {
	case code == errors.ErrCodeNoSpaceLeft, code == errors.ErrCodeOutOfMemory:
		return http.StatusRequestEntityTooLarge
	case errors.IsKind(code):
		return http.StatusUnprocessableEntity
	case code == errors.ErrCodeInvalidInput, code == errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case code == errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}

	ctx := r.Context()
	observability.HTTP().OnError(ctx, r.Method, r.URL.Path, err)
	log.FromContext(ctx).Warn("request failed", "code", code, "status", status, "error", err)
	writeJSON(w, status, errorBody{Code: string(code), Message: msg, RequestID: RequestID(ctx)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func isCBOR(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == ContentTypeCBOR
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
