// Package transcoderpc exposes the BatchEngine's ProcessFolder operation as
// a gRPC service without a .proto compile step: messages are plain Go
// structs carried as JSON over the wire through a custom grpc codec, the
// same proto-free technique beluga-ai's gRPC server adapter uses for its
// AgentService. This is an additional network front door; the in-process
// *batch.Engine.ProcessFolder named in spec.md §6 remains the canonical
// entry point.
package transcoderpc

import (
	"encoding/json"

	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// rawBytes is a pre-marshalled JSON payload passed straight through the
// codec, letting handlers decode request/response bodies themselves instead
// of forcing every message through a shared Go type.
type rawBytes []byte

// jsonCodec implements encoding.Codec over encoding/json. rawBytes values
// pass through unmarshalled; everything else goes through json.Marshal /
// json.Unmarshal.
type jsonCodec struct{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	switch b := v.(type) {
	case *rawBytes:
		return *b, nil
	case rawBytes:
		return b, nil
	default:
		return json.Marshal(v)
	}
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if b, ok := v.(*rawBytes); ok {
		*b = append((*b)[:0], data...)
		return nil
	}
	return json.Unmarshal(data, v)
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// ServerOption forces every RPC served by a *grpc.Server to use the
// proto-free JSON codec.
func ServerOption() grpc.ServerOption {
	return grpc.ForceServerCodec(jsonCodec{})
}

// ClientCodecOption is the matching grpc.DialOption a client must pass to
// speak the same codec.
func ClientCodecOption() grpc.DialOption {
	return grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{}))
}
