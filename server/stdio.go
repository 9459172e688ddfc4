// Package server implements the thin newline-delimited JSON-RPC 2.0 loop
// that dispatches to pkg/tools. Transport framing itself is intentionally
// minimal: it exists so cmd/newsnexus is a runnable process, not to
// implement the full JSON-RPC or MCP specification.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-pkgz/lgr"

	"github.com/prayag001/NewsNexus/pkg/domain"
	"github.com/prayag001/NewsNexus/pkg/tools"
)

const jsonRPCVersion = "2.0"

// request is an incoming JSON-RPC call.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
	ID      json.RawMessage `json:"id"`
}

// response is an outgoing JSON-RPC reply; exactly one of Result/Error is set.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

// rpcError is the {code, message} shape §7 maps pkg/domain error kinds to.
type rpcError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server reads newline-delimited JSON-RPC requests from in and writes
// newline-delimited replies to out, dispatching each call to svc.
type Server struct {
	Service *tools.Service
	in      io.Reader
	out     io.Writer
}

// New builds a Server reading requests from in and writing replies to out.
func New(svc *tools.Service, in io.Reader, out io.Writer) *Server {
	return &Server{Service: svc, in: in, out: out}
}

// Run processes requests until in is exhausted or ctx is canceled. A
// malformed line produces a parse-error reply rather than aborting the loop,
// since one bad request from a client should not kill the process.
func (s *Server) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	writer := bufio.NewWriter(s.out)
	defer writer.Flush() //nolint:errcheck // best-effort flush on exit

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.handleLine(ctx, line)
		data, err := json.Marshal(resp)
		if err != nil {
			lgr.Printf("[ERROR] marshal response failed: %v", err)
			continue
		}
		if _, err := writer.Write(data); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write response newline: %w", err)
		}
		if err := writer.Flush(); err != nil {
			return fmt.Errorf("flush response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	return nil
}

func (s *Server) handleLine(ctx context.Context, line []byte) response {
	var req request
	if err := json.Unmarshal(line, &req); err != nil {
		return response{JSONRPC: jsonRPCVersion, Error: &rpcError{Code: string(domain.BadInput), Message: "invalid JSON-RPC request: " + err.Error()}}
	}

	result, err := s.dispatch(ctx, req.Method, req.Params)
	if err != nil {
		lgr.Printf("[WARN] method=%s failed err=%v", req.Method, err)
		return response{JSONRPC: jsonRPCVersion, ID: req.ID, Error: toRPCError(err)}
	}
	return response{JSONRPC: jsonRPCVersion, ID: req.ID, Result: result}
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	switch method {
	case "get_articles":
		var req tools.GetArticlesRequest
		if err := unmarshalParams(params, &req); err != nil {
			return nil, err
		}
		return s.Service.GetArticles(ctx, req)
	case "get_top_news":
		var req tools.GetTopNewsRequest
		if err := unmarshalParams(params, &req); err != nil {
			return nil, err
		}
		return s.Service.GetTopNews(ctx, req)
	case "health_check":
		return s.Service.HealthCheck(ctx), nil
	case "get_metrics":
		return s.Service.GetMetrics(ctx), nil
	default:
		return nil, domain.NewError(domain.BadInput, "unknown method "+method)
	}
}

func unmarshalParams(params json.RawMessage, dst interface{}) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return domain.Wrap(domain.BadInput, "invalid params", err)
	}
	return nil
}

// toRPCError maps a pkg/domain error to the JSON-RPC-ish {code, message}
// shape, defaulting to "internal" for errors that did not originate from
// the domain error taxonomy.
func toRPCError(err error) *rpcError {
	return &rpcError{Code: string(domain.KindOf(err)), Message: err.Error()}
}
