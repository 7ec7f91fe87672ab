package control

import (
	"context"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Valley1051/VL2025.12.19/internal/command"
	"github.com/Valley1051/VL2025.12.19/internal/domain/session"
	"github.com/Valley1051/VL2025.12.19/internal/logger"
)

// Service abstracts the bridge operations the transport layer depends on.
type Service interface {
	Submit(ctx context.Context, cmd command.Command)
	Status() session.Status
}

// Server implements the ControlService gRPC API.
type Server struct {
	// service provides the bridge operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// SendCommand queues an operator command for the next tick.
func (s *Server) SendCommand(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "command is required")
	}

	cmd, ok := command.Parse(req.GetValue())
	if !ok {
		return nil, status.Errorf(codes.InvalidArgument, "unknown command %q", req.GetValue())
	}

	s.service.Submit(ctx, cmd)
	logger.DebugKV(ctx, "Control command accepted", "command", string(cmd))

	return new(emptypb.Empty), nil
}

// GetStatus returns the snapshot of the last tick.
func (s *Server) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	result, err := ToStruct(s.service.Status())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode status")
	}

	return result, nil
}

// ToStruct converts a status snapshot to a protobuf Struct. Durations are
// rendered in seconds and timestamps in RFC 3339.
func ToStruct(st session.Status) (*structpb.Struct, error) {
	fields := map[string]any{
		"phase":         st.Phase,
		"progress":      st.Progress,
		"elapsed":       st.Elapsed.Seconds(),
		"energy":        st.Energy,
		"ticks":         st.Tick,
		"ghosts":        st.Ghosts,
		"recording":     st.Recording,
		"body_detected": st.BodyDetected,
		"debug":         st.Debug,
	}

	if !st.UpdatedAt.IsZero() {
		fields["updated_at"] = st.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}

	return structpb.NewStruct(fields)
}
