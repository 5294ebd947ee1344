package server

import (
	"context"
	"errors"
	"io"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/njchilds90/gosymdiff"
)

// Application error codes for tool failures that are not about the shape of
// the request.
const (
	CodeEvaluation jrpc2.Code = 1001 // a variable has no binding
	CodePathLimit  jrpc2.Code = 1002 // the expression exceeds the path limit
)

// Methods maps every tool name to a JSON-RPC method whose params are the
// tool's params object.
func (s *Server) Methods() handler.Map {
	methods := handler.Map{}
	for _, name := range gosymdiff.Tools() {
		methods[name] = s.method(name)
	}
	return methods
}

func (s *Server) method(tool string) jrpc2.Handler {
	return func(ctx context.Context, req *jrpc2.Request) (any, error) {
		params := map[string]interface{}{}
		if req.HasParams() {
			if err := req.UnmarshalParams(&params); err != nil {
				return nil, jrpc2.Errorf(jrpc2.InvalidParams, "%v", err)
			}
		}
		resp, err := s.tools.Call(gosymdiff.ToolRequest{Tool: tool, Params: params})
		if err != nil {
			return nil, jrpc2.Errorf(errorCode(err), "%v", err)
		}
		return resp, nil
	}
}

func errorCode(err error) jrpc2.Code {
	switch {
	case errors.Is(err, gosymdiff.ErrUndefinedVariable):
		return CodeEvaluation
	case errors.Is(err, gosymdiff.ErrPathLimit):
		return CodePathLimit
	}
	return jrpc2.InvalidParams
}

// ServeStdio serves JSON-RPC 2.0 requests, one JSON object per line, until
// r is exhausted or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.WriteCloser) error {
	srv := jrpc2.NewServer(s.Methods(), &jrpc2.ServerOptions{
		Logger: func(text string) { s.logger.Debug(text) },
	})
	srv.Start(channel.Line(r, w))

	stop := context.AfterFunc(ctx, srv.Stop)
	defer stop()

	s.logger.InfoContext(ctx, "json-rpc server started", "methods", len(gosymdiff.Tools()))
	return srv.Wait()
}
