package transcoderpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"google.golang.org/grpc"
)

// streamDesc describes the ProcessFolder server-streaming method for
// clients dialing with grpc.ClientConn.NewStream, mirroring the
// StreamDesc a generated client stub would embed.
var streamDesc = &grpc.StreamDesc{
	StreamName:    "ProcessFolder",
	ServerStreams: true,
}

// methodPath is the "/<service>/<method>" path NewStream dispatches on.
var methodPath = fmt.Sprintf("/%s/ProcessFolder", ServiceName)

// Client calls the ProcessFolder RPC over an existing *grpc.ClientConn. The
// conn must have been dialed with ClientCodecOption().
type Client struct {
	conn *grpc.ClientConn
}

// NewClient wraps conn.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// ProcessFolder starts one run and calls onUpdate for every ProgressUpdate
// the server streams back, including the final one (Done == true).
func (c *Client) ProcessFolder(ctx context.Context, req ProcessRequest, onUpdate func(ProgressUpdate)) error {
	stream, err := c.conn.NewStream(ctx, streamDesc, methodPath)
	if err != nil {
		return fmt.Errorf("transcoderpc: open stream: %w", err)
	}

	reqData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("transcoderpc: encode ProcessRequest: %w", err)
	}
	raw := rawBytes(reqData)
	if err := stream.SendMsg(&raw); err != nil {
		return fmt.Errorf("transcoderpc: send request: %w", err)
	}
	if err := stream.CloseSend(); err != nil {
		return fmt.Errorf("transcoderpc: close send: %w", err)
	}

	for {
		var msg rawBytes
		if err := stream.RecvMsg(&msg); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("transcoderpc: recv update: %w", err)
		}
		var upd ProgressUpdate
		if err := json.Unmarshal(msg, &upd); err != nil {
			return fmt.Errorf("transcoderpc: decode ProgressUpdate: %w", err)
		}
		onUpdate(upd)
	}
}
