package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/champions-academy/clubgate/internal/clubgate/service"
	"github.com/champions-academy/clubgate/internal/clubgate/types"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Dependencies struct {
	Logger          *slog.Logger
	Addr            string
	CORSOrigin      string
	AccessService   *service.AccessService
	ActivityService *service.ActivityService
	// DB is optional; without it /healthz always reports ok.
	DB Pinger
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	mux        *http.ServeMux
	access     *service.AccessService
	activity   *service.ActivityService
	db         Pinger
}

func NewServer(d Dependencies) *Server {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	mux := http.NewServeMux()

	s := &Server{
		logger:   d.Logger.With("component", "http"),
		mux:      mux,
		access:   d.AccessService,
		activity: d.ActivityService,
		db:       d.DB,
	}

	mux.HandleFunc("POST /v1/scan", s.handleScan)
	// Path the dashboard already calls.
	mux.HandleFunc("POST /functions/v1/scan", s.handleScan)
	mux.HandleFunc("GET /v1/members/{identifier}/balance", s.handleBalance)
	mux.HandleFunc("POST /v1/members/{id}/insurance", s.handleInsurance)
	mux.HandleFunc("GET /v1/checkins", s.handleCheckins)
	mux.HandleFunc("GET /v1/audit_logs", s.handleAuditLogs)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := loggingMiddleware(s.logger, corsMiddleware(d.CORSOrigin, mux))

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	p := newPrinter(resolveLanguage(r))
	asProto := isProtobuf(r)

	reply := func(status int, resp types.ScanResponse) {
		if asProto {
			writeProto(w, status, scanResponseToStruct(resp))
			return
		}
		writeJSON(w, status, resp)
	}

	req, err := decodeScanRequest(r, asProto)
	if err != nil {
		s.logger.Debug("scan request rejected", "error", err)
		reply(http.StatusBadRequest, types.ScanResponse{Message: p.Sprintf(msgInvalidRequest)})
		return
	}

	d, err := s.access.Scan(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidIdentifier):
			reply(http.StatusBadRequest, types.ScanResponse{Message: p.Sprintf(msgInvalidUID)})
		case errors.Is(err, service.ErrServiceUnavailable):
			s.logger.Warn("scan timed out", "error", err)
			reply(http.StatusServiceUnavailable, types.ScanResponse{Message: p.Sprintf(msgUnavailable)})
		default:
			s.logger.Error("scan failed", "error", err)
			reply(http.StatusInternalServerError, types.ScanResponse{Message: p.Sprintf(msgInternal)})
		}
		return
	}

	reply(renderDecision(p, d))
}

func decodeScanRequest(r *http.Request, asProto bool) (types.ScanRequest, error) {
	var req types.ScanRequest
	if asProto {
		var body structpb.Struct
		if err := readProto(r, &body); err != nil {
			return types.ScanRequest{}, err
		}
		var err error
		if req, err = scanRequestFromStruct(&body); err != nil {
			return types.ScanRequest{}, err
		}
	} else if err := decodeJSON(r, &req, false); err != nil {
		return types.ScanRequest{}, err
	}
	return req, validateStruct(req)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	bal, err := s.access.Balance(r.Context(), r.PathValue("identifier"))
	if err != nil {
		s.writeServiceError(w, "balance", err)
		return
	}
	writeJSON(w, http.StatusOK, bal)
}

func (s *Server) handleInsurance(w http.ResponseWriter, r *http.Request) {
	var req types.InsuranceRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "invalid JSON body")
		return
	}
	req.Method = strings.ToLower(strings.TrimSpace(req.Method))
	if err := validateStruct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	out, err := s.access.PayInsurance(r.Context(), r.PathValue("id"), req.Method)
	if err != nil {
		s.writeServiceError(w, "insurance", err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCheckins(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	out, err := s.activity.RecentCheckins(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, "checkins", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"checkins": out})
}

func (s *Server) handleAuditLogs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	out, err := s.activity.RecentAudit(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, "audit_logs", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"audit_logs": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIdentifier), errors.Is(err, service.ErrInvalidMemberID):
		writeError(w, http.StatusBadRequest, "invalid_identifier", err.Error())
	case errors.Is(err, service.ErrMemberNotFound):
		writeError(w, http.StatusNotFound, "member_not_found", err.Error())
	case errors.Is(err, service.ErrServiceUnavailable):
		s.logger.Warn(op+" timed out", "error", err)
		writeError(w, http.StatusServiceUnavailable, "unavailable", "service temporarily unavailable")
	default:
		s.logger.Error(op+" error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unexpected server error")
	}
}

// parseLimit reads ?limit=. Absent means the store default; out-of-range
// values are clamped by the store.
func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be an integer")
		return 0, false
	}
	return n, true
}
