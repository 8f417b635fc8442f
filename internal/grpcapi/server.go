package grpcapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/diamond-sim/internal/config"
	"github.com/xtding233/diamond-sim/internal/game"
	"github.com/xtding233/diamond-sim/internal/service"
	"github.com/xtding233/diamond-sim/internal/store"
)

// Server implements SimulatorServer on top of the shared service.
type Server struct {
	svc    *service.Service
	logger *log.Logger
}

var _ SimulatorServer = (*Server)(nil)

func NewServer(svc *service.Service, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{svc: svc, logger: logger}
}

// NewGRPCServer registers the simulator and the health service.
func NewGRPCServer(srv *Server) (*grpc.Server, *health.Server) {
	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	RegisterSimulatorServer(grpcServer, srv)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	return grpcServer, healthServer
}

func (s *Server) SimulateGame(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "simulate request is required")
	}
	var body service.RequestBody
	if err := decodeStruct(in, &body); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	out, err := s.svc.Simulate(ctx, body.Request())
	if err != nil {
		return nil, s.statusErr(err)
	}
	return encodeStruct(out)
}

func (s *Server) GetSnapshot(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	gameID := strings.TrimSpace(in.GetFields()["game_id"].GetStringValue())
	if gameID == "" {
		return nil, status.Error(codes.InvalidArgument, "game_id is required")
	}
	snap, err := s.svc.Snapshot(ctx, gameID)
	if err != nil {
		return nil, s.statusErr(err)
	}
	return encodeStruct(snap)
}

func (s *Server) statusErr(err error) error {
	switch {
	case errors.Is(err, service.ErrBadRequest), errors.Is(err, config.ErrInvalid), errors.Is(err, game.ErrIncompleteRoster):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, config.ErrNotFound), errors.Is(err, store.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, service.ErrNoStore):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		s.logger.Error("rpc failed", "err", err)
		return status.Error(codes.Internal, err.Error())
	}
}

func decodeStruct(in *structpb.Struct, out any) error {
	data, err := in.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

func encodeStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	out, err := structpb.NewStruct(payload)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
