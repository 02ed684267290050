package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stackgrid/pkg/buildinfo"
	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	"github.com/matzehuels/stackgrid/pkg/observability"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

// =============================================================================
// Request and response bodies
// =============================================================================

type compactRequest struct {
	Options *pipeline.Options `json:"options"`
	Layout  grid.Layout       `json:"layout"`
}

type moveRequest struct {
	Options *pipeline.Options `json:"options"`
	Layout  grid.Layout       `json:"layout"`
	ID      string            `json:"id"`
	X       int               `json:"x"`
	Y       int               `json:"y"`
}

type resizeRequest struct {
	Options *pipeline.Options `json:"options"`
	Layout  grid.Layout       `json:"layout"`
	ID      string            `json:"id"`
	W       int               `json:"w"`
	H       int               `json:"h"`
	Handle  string            `json:"handle"`
}

type synchronizeRequest struct {
	Options  *pipeline.Options  `json:"options"`
	Layout   grid.Layout        `json:"layout"`
	Children []grid.Declaration `json:"children"`
}

type calcXYRequest struct {
	Options *pipeline.Options `json:"options"`
	Top     float64           `json:"top"`
	Left    float64           `json:"left"`
	W       int               `json:"w"`
	H       int               `json:"h"`
}

type positionRequest struct {
	Options *pipeline.Options `json:"options"`
	X       int               `json:"x"`
	Y       int               `json:"y"`
	W       int               `json:"w"`
	H       int               `json:"h"`
}

type layoutResponse struct {
	pipeline.Result
	ContainerHeight float64 `json:"container_height"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCompact(w http.ResponseWriter, r *http.Request) {
	var req compactRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Compact(r.Context(), req.Layout, opts)
	s.respond(w, r, res, opts, err)
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Move(r.Context(), req.Layout, req.ID, req.X, req.Y, opts)
	s.respond(w, r, res, opts, err)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Resize(r.Context(), req.Layout, req.ID, req.W, req.H, req.Handle, opts)
	s.respond(w, r, res, opts, err)
}

func (s *Server) handleSynchronize(w http.ResponseWriter, r *http.Request) {
	var req synchronizeRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.runner.Synchronize(r.Context(), req.Layout, req.Children, opts)
	s.respond(w, r, res, opts, err)
}

func (s *Server) handleCalcXY(w http.ResponseWriter, r *http.Request) {
	var req calcXYRequest
	if !s.decode(w, r, &req) {
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	cell, err := s.runner.CalcXY(opts, req.Top, req.Left, max(req.W, 1), max(req.H, 1))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, cell)
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.W < 1 || req.H < 1 || req.X < 0 || req.Y < 0 {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput,
			"rectangle (%d,%d %dx%d) must have a non-negative origin and a size of at least 1x1", req.X, req.Y, req.W, req.H))
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	pos, err := s.runner.Position(opts, grid.Item{X: req.X, Y: req.Y, W: req.W, H: req.H})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, pos)
}

// =============================================================================
// Helpers
// =============================================================================

// options fills the fields req leaves unset from the server defaults.
func (s *Server) options(req *pipeline.Options) (pipeline.Options, error) {
	var opts pipeline.Options
	if req != nil {
		opts = *req
	}
	if err := mergo.Merge(&opts, s.defaults.Clone(), mergo.WithoutDereference); err != nil {
		return pipeline.Options{}, errors.Wrap(errors.ErrCodeInternal, err, "merge options")
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

// decode reads a JSON body into v, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return false
	}
	return true
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, res pipeline.Result, opts pipeline.Options, err error) {
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, layoutResponse{
		Result:          res,
		ContainerHeight: grid.ContainerHeight(opts.Geometry(), res.Layout),
	})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	route := routePattern(r)
	observability.HTTP().OnError(r.Context(), r.Method, route, err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "route", route, "request_id", middleware.GetReqID(r.Context()), "err", err)
	} else {
		s.logger.Debug("request rejected", "route", route, "code", code, "err", err)
	}
	s.writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: strings.TrimPrefix(err.Error(), string(code)+": ")}})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}

// instrument reports each request to the HTTP hooks and the logger.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		route := routePattern(r)
		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "route", route, "status", status,
			"bytes", ww.BytesWritten(), "duration", d, "request_id", middleware.GetReqID(r.Context()))
	})
}

// routePattern returns the matched chi route, or "unmatched" for 404s so
// metrics labels stay bounded.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
