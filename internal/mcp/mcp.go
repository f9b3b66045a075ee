// Package mcp implements ushell's optional control-plane server: a
// newline-delimited JSON-RPC-ish protocol over TCP, modeled on
// original_source/include/mcp_server.h, letting an external process drive
// the shell's tool dispatch without attaching to its terminal.
package mcp

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/net/netutil"

	"ushell/internal/dispatch"
)

// Request is one line of client input.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is one line of server output.
type Response struct {
	ID     string      `json:"id"`
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type callToolParams struct {
	Argv []string `json:"argv"`
}

// execution tracks one in-flight or completed call_tool invocation.
type execution struct {
	id       string
	status   string // "running", "done"
	exitCode int
	stdout   string
	stderr   string
}

// Server bridges MCP clients to the shell's dispatch.Registry.
type Server struct {
	Addr       string
	MaxClients int
	Reg        *dispatch.Registry
	Log        *slog.Logger

	mu     sync.Mutex
	execs  map[string]*execution
	nextID atomic.Int64

	listener net.Listener
}

// New returns a Server ready to Serve.
func New(addr string, maxClients int, reg *dispatch.Registry, log *slog.Logger) *Server {
	return &Server{Addr: addr, MaxClients: maxClients, Reg: reg, Log: log, execs: make(map[string]*execution)}
}

// Serve listens on s.Addr, capping concurrent connections at s.MaxClients
// via netutil.LimitListener, and blocks handling clients until the
// listener is closed.
func (s *Server) Serve() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	limited := netutil.LimitListener(ln, s.MaxClients)
	s.listener = limited

	for {
		conn, err := limited.Accept()
		if err != nil {
			return err
		}
		go s.handleConn(conn)
	}
}

// Close stops accepting new connections.
func (s *Server) Close() error {
	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	s.Log.Info("mcp: client connected", "remote", conn.RemoteAddr().String())

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	enc := json.NewEncoder(conn)

	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			enc.Encode(Response{Error: "invalid request: " + err.Error()})
			continue
		}
		resp := s.dispatch(req)
		if err := enc.Encode(resp); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	switch req.Method {
	case "initialize":
		return Response{ID: req.ID, Result: map[string]string{"server": "ushell-mcp", "version": "1"}}
	case "list_tools":
		return Response{ID: req.ID, Result: s.Reg.Names()}
	case "call_tool":
		return s.callTool(req)
	case "get_execution_status":
		return s.getStatus(req)
	case "cancel_execution":
		return s.cancel(req)
	default:
		return Response{ID: req.ID, Error: "unknown method " + req.Method}
	}
}

func (s *Server) callTool(req Request) Response {
	var p callToolParams
	if err := json.Unmarshal(req.Params, &p); err != nil || len(p.Argv) == 0 {
		return Response{ID: req.ID, Error: "call_tool requires params.argv"}
	}

	fn, kind, _ := s.Reg.Resolve(p.Argv[0])
	if kind == dispatch.NotFound || fn == nil {
		return Response{ID: req.ID, Error: fmt.Sprintf("%s: command not found", p.Argv[0])}
	}

	id := strconv.FormatInt(s.nextID.Add(1), 10)
	ex := &execution{id: id, status: "running"}
	s.mu.Lock()
	s.execs[id] = ex
	s.mu.Unlock()

	var out, errBuf stringWriter
	status := fn(p.Argv, dispatch.IO{Stdin: nilReader{}, Stdout: &out, Stderr: &errBuf})

	s.mu.Lock()
	ex.status = "done"
	ex.exitCode = status
	ex.stdout = out.String()
	ex.stderr = errBuf.String()
	s.mu.Unlock()

	return Response{ID: req.ID, Result: map[string]interface{}{
		"execution_id": id, "status": "done", "exit_code": status,
		"stdout": ex.stdout, "stderr": ex.stderr,
	}}
}

type execIDParams struct {
	ExecutionID string `json:"execution_id"`
}

func (s *Server) getStatus(req Request) Response {
	var p execIDParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return Response{ID: req.ID, Error: "get_execution_status requires params.execution_id"}
	}
	s.mu.Lock()
	ex, ok := s.execs[p.ExecutionID]
	s.mu.Unlock()
	if !ok {
		return Response{ID: req.ID, Error: "unknown execution_id"}
	}
	return Response{ID: req.ID, Result: map[string]interface{}{
		"status": ex.status, "exit_code": ex.exitCode,
	}}
}

// cancel stops nothing: it reports the execution's current status. Since
// call_tool runs synchronously, an execution started on the same
// connection has always finished by the time this is called; a request
// from another connection may see it still "running". It exists to satisfy
// the protocol's method set for clients that poll it defensively.
func (s *Server) cancel(req Request) Response {
	var p execIDParams
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return Response{ID: req.ID, Error: "cancel_execution requires params.execution_id"}
	}
	s.mu.Lock()
	ex, ok := s.execs[p.ExecutionID]
	s.mu.Unlock()
	if !ok {
		return Response{ID: req.ID, Error: "unknown execution_id"}
	}
	return Response{ID: req.ID, Result: map[string]interface{}{"status": ex.status}}
}
