package server

import (
	"time"

	"github.com/coriolis-labs/pvsim/internal/protocol"
)

// execute runs one parsed command against the registry and enqueues
// the response on sess, mirroring execute_command's switch in the
// original server.c verb for verb, including its exact response
// payloads ("PUT", "MOVING", "PONG", "BYE", "MONITORING", "STOPPED").
func (s *Server) execute(sess *session, state *monitorState, cmd protocol.Command) {
	switch cmd.Type {
	case protocol.Get:
		s.executeGet(sess, cmd)
	case protocol.Put:
		s.executePut(sess, cmd)
	case protocol.Ping:
		sess.trySend(protocol.FormatResponse("OK", "PONG"))
	case protocol.Quit:
		sess.trySend(protocol.FormatResponse("OK", "BYE"))
		s.disconnect(sess)
	case protocol.Monitor:
		state.monitoring = true
		state.pvName = cmd.Target
		state.intervalMs = cmd.MonitorIntervalMs
		state.lastPush = time.Now()
		sess.trySend(protocol.FormatResponse("OK", "MONITORING"))
	case protocol.Stop:
		state.monitoring = false
		sess.trySend(protocol.FormatResponse("OK", "STOPPED"))
	case protocol.List:
		sess.trySend(protocol.FormatList(s.reg.List(cmd.Target, s.cfg.ResponseBufSize)))
	case protocol.Move:
		s.executeMove(sess, cmd)
	case protocol.Status:
		s.executeStatus(sess, cmd)
	default:
		s.sendErr(sess, protocol.ErrUnknownCmd)
	}
}

// sendErr sends the formatted error response and records it.
func (s *Server) sendErr(sess *session, code protocol.ErrorCode) {
	sess.trySend(protocol.FormatError(code))
	s.rec.IncError(code.String())
}

func (s *Server) executeGet(sess *session, cmd protocol.Command) {
	idx := s.reg.Find(cmd.Target)
	if idx < 0 {
		s.sendErr(sess, protocol.ErrUnknownPV)
		return
	}
	sess.trySend(protocol.FormatResponse("OK", protocol.FormatValue(s.reg.Get(idx))))
}

func (s *Server) executePut(sess *session, cmd protocol.Command) {
	idx := s.reg.Find(cmd.Target)
	if idx < 0 {
		s.sendErr(sess, protocol.ErrUnknownPV)
		return
	}
	if err := s.reg.Set(idx, cmd.Value); err != nil {
		s.sendErr(sess, protocol.ErrInvalidValue)
		return
	}
	sess.trySend(protocol.FormatResponse("OK", "PUT"))
}

func (s *Server) executeMove(sess *session, cmd protocol.Command) {
	m := s.reg.FindMotor(cmd.Target)
	if m < 0 {
		s.sendErr(sess, protocol.ErrInvalidValue)
		return
	}
	if err := s.reg.MoveMotor(m, cmd.Value); err != nil {
		s.sendErr(sess, protocol.ErrInvalidValue)
		return
	}
	sess.trySend(protocol.FormatResponse("OK", "MOVING"))
}

func (s *Server) executeStatus(sess *session, cmd protocol.Command) {
	m := s.reg.FindMotor(cmd.Target)
	if m < 0 {
		s.sendErr(sess, protocol.ErrUnknownPV)
		return
	}
	sess.trySend(protocol.FormatResponse("OK", s.reg.MotorStatusString(m)))
}

// disconnect tears a session down from within the dispatch goroutine,
// used by QUIT which must close the connection right after its
// response is flushed rather than waiting for the client to hang up.
func (s *Server) disconnect(sess *session) {
	delete(s.sessions, sess)
	s.sessionCount.Add(-1)
	close(sess.send)
}
