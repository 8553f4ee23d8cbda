package sync

import (
	"bufio"
	"errors"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server accepts line-delimited JSON subscribers over TCP.
type Server struct {
	Addr string
	Hub  *Hub
	Log  *zap.Logger

	mu     sync.Mutex
	ln     net.Listener
	closed bool
}

func NewServer(addr string, hub *Hub, log *zap.Logger) *Server {
	return &Server{Addr: addr, Hub: hub, Log: log}
}

// Run blocks until Close is called or the listener fails.
func (s *Server) Run() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ln.Close()
	}
	s.ln = ln
	s.mu.Unlock()
	s.Log.Info("tcp sync listening", zap.String("addr", ln.Addr().String()))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			continue
		}

		if err := s.Hub.AddConn(conn); err != nil {
			s.Log.Debug("tcp sync welcome failed", zap.String("remote", conn.RemoteAddr().String()), zap.Error(err))
			continue
		}
		s.Log.Debug("tcp sync client connected", zap.String("remote", conn.RemoteAddr().String()))

		go func(c net.Conn) {
			defer func() {
				s.Hub.RemoveConn(c)
				s.Log.Debug("tcp sync client disconnected", zap.String("remote", c.RemoteAddr().String()))
			}()

			// subscribers never send anything meaningful
			sc := bufio.NewScanner(c)
			for sc.Scan() {
			}
		}(conn)
	}
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
