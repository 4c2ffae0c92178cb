package transcoderpc

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/grpc"

	"github.com/MrWong99/callaudit/internal/batch"
	"github.com/MrWong99/callaudit/internal/result"
)

// ServiceName is the gRPC service path prefix, mirroring the
// "/<package>.<Service>/<Method>" convention a compiled .proto would
// produce even though none is compiled here.
const ServiceName = "callaudit.BatchEngine"

// ProcessRequest is the unary request that starts one ProcessFolder run.
type ProcessRequest struct {
	FolderPath         string `json:"folder_path"`
	UserID             string `json:"user_id"`
	AccountTier        string `json:"account_tier"`
	LiteMode           bool   `json:"lite_mode"`
	ShowAllResults     bool   `json:"show_all_results"`
	MaxWorkersOverride int    `json:"max_workers_override"`
}

// ProgressUpdate is one message of the server-streamed response. Every
// message carries the running (completed, total) pair; the last message
// additionally sets Done and carries either Result or Error.
type ProgressUpdate struct {
	Completed int                   `json:"completed"`
	Total     int                   `json:"total"`
	Done      bool                  `json:"done"`
	Result    *result.TabularResult `json:"result,omitempty"`
	Error     string                `json:"error,omitempty"`
}

// Engine is the subset of *batch.Engine the RPC server depends on.
type Engine interface {
	ProcessFolder(ctx context.Context, folderPath, userID string, opts batch.Options) (result.TabularResult, error)
}

// Server adapts an Engine to the ProcessFolder gRPC method.
type Server struct {
	engine Engine
}

// NewServer wraps engine for gRPC serving.
func NewServer(engine Engine) *Server {
	return &Server{engine: engine}
}

// Register attaches the ProcessFolder service to s, which must have been
// constructed with ServerOption() so it speaks the proto-free JSON codec.
func Register(s *grpc.Server, engine Engine) {
	s.RegisterService(&serviceDesc, NewServer(engine))
}

// NewGRPCServer returns a ready-to-Serve *grpc.Server with the
// ProcessFolder service registered.
func NewGRPCServer(engine Engine) *grpc.Server {
	s := grpc.NewServer(ServerOption())
	Register(s, engine)
	return s
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*any)(nil),
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "ProcessFolder",
			Handler:       processFolderHandler,
			ServerStreams: true,
		},
	},
}

func processFolderHandler(srv any, stream grpc.ServerStream) error {
	s := srv.(*Server)

	var raw rawBytes
	if err := stream.RecvMsg(&raw); err != nil {
		return err
	}
	var req ProcessRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("transcoderpc: decode ProcessRequest: %w", err)
	}

	opts := batch.Options{
		AccountTier:        tierFromString(req.AccountTier),
		MaxWorkersOverride: req.MaxWorkersOverride,
		LiteMode:           req.LiteMode,
		ShowAllResults:     req.ShowAllResults,
		ProgressCallback: func(completed, total int) {
			_ = sendUpdate(stream, ProgressUpdate{Completed: completed, Total: total})
		},
	}

	tab, err := s.engine.ProcessFolder(stream.Context(), req.FolderPath, req.UserID, opts)
	if err != nil {
		return sendUpdate(stream, ProgressUpdate{Done: true, Error: err.Error()})
	}
	return sendUpdate(stream, ProgressUpdate{
		Completed: len(tab.All),
		Total:     len(tab.All),
		Done:      true,
		Result:    &tab,
	})
}

func sendUpdate(stream grpc.ServerStream, upd ProgressUpdate) error {
	b, err := json.Marshal(upd)
	if err != nil {
		return fmt.Errorf("transcoderpc: encode ProgressUpdate: %w", err)
	}
	raw := rawBytes(b)
	return stream.SendMsg(&raw)
}

func tierFromString(s string) batch.AccountTier {
	if s == string(batch.TierPaid) {
		return batch.TierPaid
	}
	return batch.TierFree
}
