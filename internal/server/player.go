package server

import (
	"context"
	"fmt"
	"net/http"

	"soloq-tracker/internal/api"
	"soloq-tracker/internal/domain"

	"connectrpc.com/connect"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	PlayerServicePath        = "/lolstats.v1.PlayerService/"
	GetPlayerReportProcedure = "/lolstats.v1.PlayerService/GetPlayerReport"
	PlayerReportPath         = "/api/player"
	HealthPath               = "/healthz"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type ReportBuilder interface {
	BuildReport(ctx context.Context, id domain.PlayerIdentity) (*domain.PlayerReport, error)
}

type RateLimitReporter interface {
	GetRateLimitInfo() api.RateLimitInfo
}

type PlayerServer struct {
	reports ReportBuilder
	limits  RateLimitReporter
	logger  zerolog.Logger
}

func NewPlayerServer(reports ReportBuilder, limits RateLimitReporter, logger zerolog.Logger) *PlayerServer {
	return &PlayerServer{reports: reports, limits: limits, logger: logger}
}

// HandleGetPlayer serves GET /api/player?name=&tag=.
func (s *PlayerServer) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
		return
	}

	id := domain.PlayerIdentity{
		Name: r.URL.Query().Get("name"),
		Tag:  r.URL.Query().Get("tag"),
	}

	report, err := s.reports.BuildReport(r.Context(), id)
	if err != nil {
		status, body := httpError(err)
		s.requestLogger(r.Context()).Warn().Err(err).Int("status", status).Msg("player report failed")
		respondWithJSON(w, status, body)
		return
	}

	respondWithJSON(w, http.StatusOK, report)
}

// GetPlayerReport is the Connect RPC form of HandleGetPlayer. Request and
// response are google.protobuf.Struct values carrying the same JSON shapes.
func (s *PlayerServer) GetPlayerReport(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	fields := req.Msg.GetFields()
	id := domain.PlayerIdentity{
		Name: fields["name"].GetStringValue(),
		Tag:  fields["tag"].GetStringValue(),
	}

	report, err := s.reports.BuildReport(ctx, id)
	if err != nil {
		s.requestLogger(ctx).Warn().Err(err).Str("name", id.Name).Str("tag", id.Tag).Msg("player report rpc failed")
		return nil, connectError(err)
	}

	msg, err := reportStruct(report)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}

// ConnectHandler returns the mount path and handler for the RPC service.
func (s *PlayerServer) ConnectHandler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append(opts, connect.WithIdempotency(connect.IdempotencyNoSideEffects))
	handler := connect.NewUnaryHandler(GetPlayerReportProcedure, s.GetPlayerReport, opts...)

	mux := http.NewServeMux()
	mux.Handle(GetPlayerReportProcedure, handler)
	return PlayerServicePath, mux
}

func (s *PlayerServer) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"rate_limit": s.limits.GetRateLimitInfo(),
	})
}

// requestLogger prefers the request-scoped logger set by the middleware.
func (s *PlayerServer) requestLogger(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

func reportStruct(report *domain.PlayerReport) (*structpb.Struct, error) {
	raw, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	var msg structpb.Struct
	if err := protojson.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("failed to convert report: %w", err)
	}
	return &msg, nil
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response, _ = json.Marshal(ErrorResponse{Error: "Internal server error", Details: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
