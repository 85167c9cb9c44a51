package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tuomass/bittranspose-go/internal/framing"
	"github.com/tuomass/bittranspose-go/pkg/bittranspose"
)

const (
	opTranspose   = "transpose"
	opUntranspose = "untranspose"

	contentTypeOctet = "application/octet-stream"
	headerStrands    = "X-Strands"
)

// errBadParam marks query parameters that failed to parse.
var errBadParam = errors.New("bad parameter")

// transformFunc handles one request and returns the response body. Errors
// are mapped to a status code by statusFor.
type transformFunc func(r *http.Request, body []byte) (out []byte, strands int, err error)

func (s *Server) instrument(op string, fn transformFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			s.metrics.latency.WithLabelValues(op).Observe(time.Since(start).Seconds())
		}()

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes))
		var out []byte
		var strands int
		if err == nil {
			out, strands, err = fn(r, body)
		}
		if err != nil {
			code := statusFor(err)
			s.metrics.requests.WithLabelValues(op, strconv.Itoa(code)).Inc()
			s.log.Info("transform rejected", zap.String("op", op), zap.Int("status", code), zap.Error(err))
			writeError(w, code, err.Error())
			return
		}

		s.metrics.requests.WithLabelValues(op, strconv.Itoa(http.StatusOK)).Inc()
		s.metrics.bytes.WithLabelValues(op, "in").Add(float64(len(body)))
		s.metrics.bytes.WithLabelValues(op, "out").Add(float64(len(out)))

		w.Header().Set("Content-Type", contentTypeOctet)
		w.Header().Set(headerStrands, strconv.Itoa(strands))
		w.Header().Set("Content-Length", strconv.Itoa(len(out)))
		w.WriteHeader(http.StatusOK)
		w.Write(out)
	}
}

// handleTranspose accepts raw frames and returns bit planes, optionally
// wrapped in a framing header (?framed=true).
func (s *Server) handleTranspose(r *http.Request, body []byte) ([]byte, int, error) {
	strands, err := s.strandsParam(r)
	if err != nil {
		return nil, 0, err
	}
	framed, err := boolParam(r, "framed")
	if err != nil {
		return nil, 0, err
	}

	out, err := bittranspose.Transpose(body, strands)
	if err != nil {
		return nil, 0, err
	}
	if framed {
		out, err = framing.BuildFrame(out, strands)
		if err != nil {
			return nil, 0, err
		}
	}
	return out, strands, nil
}

// handleUntranspose reverses handleTranspose. A framed body supplies its
// own strand count; an explicit ?strands= must then agree with it.
func (s *Server) handleUntranspose(r *http.Request, body []byte) ([]byte, int, error) {
	framed, err := boolParam(r, "framed")
	if err != nil {
		return nil, 0, err
	}
	strands, err := s.strandsParam(r)
	if err != nil {
		return nil, 0, err
	}

	payload := body
	if framed {
		header, p, err := framing.ParseFrame(body)
		if err != nil {
			return nil, 0, err
		}
		if r.URL.Query().Has("strands") && strands != int(header.Strands) {
			return nil, 0, fmt.Errorf("%w: strands=%d but frame header says %d", errBadParam, strands, header.Strands)
		}
		strands = int(header.Strands)
		payload = p
	}

	out, err := bittranspose.Untranspose(payload, strands)
	if err != nil {
		return nil, 0, err
	}
	return out, strands, nil
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) strandsParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("strands")
	if raw == "" {
		return s.opts.DefaultStrands, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: strands=%q is not an integer", errBadParam, raw)
	}
	return n, nil
}

func boolParam(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", errBadParam, name, raw)
	}
	return b, nil
}

func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errBadParam),
		errors.Is(err, bittranspose.ErrInvalidStrandCount),
		errors.Is(err, bittranspose.ErrShapeMismatch),
		errors.Is(err, framing.ErrFrameTooShort),
		errors.Is(err, framing.ErrInvalidMagic),
		errors.Is(err, framing.ErrUnsupportedVersion),
		errors.Is(err, framing.ErrInvalidLength),
		errors.Is(err, framing.ErrCRCMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
