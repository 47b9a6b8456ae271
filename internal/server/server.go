// Package server implements the line-protocol TCP front end: accepting
// connections, parsing commands, and dispatching them against a
// registry.Registry. All registry access is funneled through a single
// dispatch goroutine so the registry itself needs no locking — the
// same single-owner-mutates-state discipline the original simulator
// got for free from being single-threaded around a select() loop.
package server

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/coriolis-labs/pvsim/internal/protocol"
	"github.com/coriolis-labs/pvsim/internal/registry"
)

type eventKind int

const (
	eventConnect eventKind = iota
	eventLine
	eventDisconnect
	eventTick
)

// event is the single message type flowing into the dispatch
// goroutine from every source: the accept loop, per-session readers,
// and the supervisor's tick scheduler.
type event struct {
	kind eventKind
	sess *session
	line string
	dt   float64

	// accepted carries the accept/reject decision back to the accept
	// loop for eventConnect, since only the dispatch goroutine knows
	// the current session count.
	accepted chan bool
}

// monitorState is the per-session monitor-subscription bookkeeping,
// owned exclusively by the dispatch goroutine (mirrors client_t's
// monitoring/monitor_pv/monitor_interval_ms/last_monitor_time fields
// in the original, minus the fields readLoop/writeLoop already own).
type monitorState struct {
	monitoring bool
	pvName     string
	intervalMs int
	lastPush   time.Time
}

// Config bundles the server's tunables, mirroring config.ServerConfig
// without importing the config package directly. Listen backlog isn't
// represented here: the stdlib net package gives no portable way to
// set it, unlike the original's listen(fd, BEAMLINE_BACKLOG) — it's
// still validated as part of config.ServerConfig for parity, just not
// plumbed any further.
type Config struct {
	Host            string
	Port            int
	MaxClients      int
	CmdBufferSize   int
	ResponseBufSize int
}

// Server is the TCP line-protocol front end.
type Server struct {
	cfg    Config
	reg    *registry.Registry
	logger Logger
	rec    Recorder

	events   chan event
	sessions map[*session]*monitorState

	// sessionCount mirrors len(sessions) for lock-free reads from
	// metrics/admin code outside the dispatch goroutine; it is only
	// ever written from within dispatchLoop.
	sessionCount atomic.Int32
}

// New creates a Server bound to reg. Call Run to start accepting
// connections; registry mutation only ever happens from within Run's
// dispatch goroutine.
func New(cfg Config, reg *registry.Registry) *Server {
	return &Server{
		cfg:      cfg,
		reg:      reg,
		logger:   noopLogger{},
		rec:      noopRecorder{},
		events:   make(chan event, 64),
		sessions: make(map[*session]*monitorState),
	}
}

// SetLogger installs a logger for connection/dispatch diagnostics.
func (s *Server) SetLogger(l Logger) {
	if l != nil {
		s.logger = l
	}
}

// SetRecorder installs a metrics recorder.
func (s *Server) SetRecorder(r Recorder) {
	if r != nil {
		s.rec = r
	}
}

// Tick enqueues a simulation tick: the registry advances by dt seconds
// and due monitor subscriptions push their current values, all from
// within the dispatch goroutine alongside ordinary command handling.
func (s *Server) Tick(dt float64) {
	s.events <- event{kind: eventTick, dt: dt}
}

// SessionCount returns the number of currently connected sessions.
// Safe to call from any goroutine — backed by an atomic counter
// updated only from within the dispatch goroutine.
func (s *Server) SessionCount() int {
	return int(s.sessionCount.Load())
}

// Run listens on cfg.Host:cfg.Port and serves clients until ctx is
// cancelled. It blocks until the accept loop and the dispatch goroutine
// have stopped; per-session reader/writer goroutines are not waited for.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	s.logger.Info("listening", "addr", addr)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		s.acceptLoop(ctx, ln)
	}()

	s.dispatchLoop(ctx)
	<-acceptDone
	return nil
}

// acceptLoop accepts connections and, for each one, asks the dispatch
// goroutine whether there's room before spinning up reader/writer
// goroutines — mirroring the original's client_accept, which finds a
// free slot or closes the new fd immediately if none exists.
func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error("accept failed", "error", err)
			continue
		}

		sess := newSession(conn)
		accepted := make(chan bool, 1)
		s.events <- event{kind: eventConnect, sess: sess, accepted: accepted}

		if !<-accepted {
			s.logger.Warn("max clients reached, rejecting connection", "remote", conn.RemoteAddr())
			conn.Close()
			continue
		}

		s.logger.Info("client connected", "session", sess.id, "remote", conn.RemoteAddr())
		go sess.writeLoop()
		go sess.readLoop(s.events, s.cfg.CmdBufferSize)
	}
}

// dispatchLoop is the single goroutine that owns s.sessions and the
// registry. Every mutation of either happens here and nowhere else.
func (s *Server) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for sess := range s.sessions {
				close(sess.send)
			}
			return
		case ev := <-s.events:
			switch ev.kind {
			case eventConnect:
				s.handleConnect(ev)
			case eventLine:
				s.handleLine(ev)
			case eventDisconnect:
				s.handleDisconnect(ev)
			case eventTick:
				s.handleTick(ev)
			}
		}
	}
}

func (s *Server) handleConnect(ev event) {
	if len(s.sessions) >= s.cfg.MaxClients {
		ev.accepted <- false
		return
	}
	s.sessions[ev.sess] = &monitorState{}
	s.sessionCount.Add(1)
	ev.accepted <- true
}

func (s *Server) handleDisconnect(ev event) {
	if _, ok := s.sessions[ev.sess]; !ok {
		return
	}
	delete(s.sessions, ev.sess)
	s.sessionCount.Add(-1)
	close(ev.sess.send)
	s.logger.Info("client disconnected", "session", ev.sess.id)
}

func (s *Server) handleLine(ev event) {
	state, ok := s.sessions[ev.sess]
	if !ok {
		return
	}

	cmd, parsed := protocol.Parse(ev.line)
	if !parsed {
		ev.sess.trySend(protocol.FormatError(protocol.ErrUnknownCmd))
		s.rec.IncError(protocol.ErrUnknownCmd.String())
		return
	}

	s.rec.IncCommand(cmd.Type.String())
	s.execute(ev.sess, state, cmd)
}

func (s *Server) handleTick(ev event) {
	start := time.Now()
	s.reg.Update(ev.dt)
	s.rec.ObserveTick(time.Since(start))

	now := time.Now()
	for sess, state := range s.sessions {
		if !state.monitoring {
			continue
		}
		if !monitorDue(now, state.lastPush, state.intervalMs) {
			continue
		}
		if idx := s.reg.Find(state.pvName); idx >= 0 {
			sess.trySend(protocol.FormatMonitorPush(s.reg.Get(idx)))
		}
		// Advance unconditionally, even if the PV vanished — matches
		// check_monitoring's last_monitor_time update, which happens
		// outside the pv_find != NULL branch.
		state.lastPush = now
	}
}
