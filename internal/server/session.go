package server

import (
	"bufio"
	"net"
	"time"

	"github.com/google/uuid"
)

// sendBufferSize is the per-session outbound message buffer, sized the
// same way the teacher's WebSocket hub sizes wsSendBufferSize: generous
// enough that a normally-paced client never blocks the dispatch
// goroutine on a slow write.
const sendBufferSize = 256

// session represents one connected client's transport: the raw
// connection plus the channels that let its reader/writer goroutines
// talk to the dispatch goroutine without ever touching registry or
// monitor state themselves. All monitor-subscription bookkeeping for
// a session lives in the dispatch goroutine's Server.sessions map, not
// here — this struct is pure plumbing.
type session struct {
	id   string
	conn net.Conn
	send chan string
}

func newSession(conn net.Conn) *session {
	return &session{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan string, sendBufferSize),
	}
}

// trySend enqueues a response line, dropping it silently if the
// session's outbound buffer is full (a slow or dead client should
// never stall the single dispatch goroutine).
func (s *session) trySend(line string) {
	select {
	case s.send <- line:
	default:
	}
}

// writeLoop drains send to the connection until it's closed, then
// closes the connection.
func (s *session) writeLoop() {
	defer s.conn.Close()

	for line := range s.send {
		if _, err := s.conn.Write([]byte(line)); err != nil {
			return
		}
	}
}

// readLoop reads newline-terminated commands from the connection and
// delivers them to events, along with a final disconnect event when
// the client goes away. maxLine enforces the original's
// BEAMLINE_CMD_BUFFER_SIZE: a line that exceeds it without a newline
// disconnects the client, matching the original's overflow handling
// in client_handle (recv() into a bounded buffer with no room for
// more data is treated as fatal for that connection).
func (s *session) readLoop(events chan<- event, maxLine int) {
	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, maxLine), maxLine)
	scanner.Split(bufio.ScanLines)

	for scanner.Scan() {
		events <- event{kind: eventLine, sess: s, line: scanner.Text()}
	}

	events <- event{kind: eventDisconnect, sess: s}
}

// monitorDue reports whether, given now, a subscription with the
// given interval and last-push time has elapsed.
func monitorDue(now, last time.Time, intervalMs int) bool {
	return now.Sub(last) >= time.Duration(intervalMs)*time.Millisecond
}
