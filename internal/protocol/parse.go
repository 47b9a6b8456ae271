package protocol

import (
	"strings"

	"github.com/coriolis-labs/pvsim/internal/numeric"
)

// Parse parses one line of client input (without its trailing
// newline) into a Command. It returns false if the line is empty
// after trimming or doesn't match any known verb — callers should
// respond with ErrUnknownCmd in that case, matching the original
// simulator's behaviour of mapping every parse failure to
// UNKNOWN_CMD regardless of which verb-specific parse step failed.
func Parse(line string) (Command, bool) {
	work := numeric.Trim(line)
	if work == "" {
		return Command{}, false
	}

	colon := strings.IndexByte(work, ':')
	if colon < 0 {
		return parseSimple(work)
	}

	verb := work[:colon]
	rest := work[colon+1:]

	switch verb {
	case "GET":
		return Command{Type: Get, Target: rest}, true
	case "STATUS":
		return Command{Type: Status, Target: rest}, true
	case "LIST":
		return Command{Type: List, Target: rest}, true
	case "PUT":
		return parseValueTail(Put, rest)
	case "MOVE":
		return parseValueTail(Move, rest)
	case "MONITOR":
		return parseMonitor(rest)
	default:
		return Command{}, false
	}
}

// parseSimple handles the colon-free verbs: PING, QUIT, STOP, LIST
// (with no pattern).
func parseSimple(word string) (Command, bool) {
	switch word {
	case "PING":
		return Command{Type: Ping}, true
	case "QUIT":
		return Command{Type: Quit}, true
	case "STOP":
		return Command{Type: Stop}, true
	case "LIST":
		return Command{Type: List}, true
	default:
		return Command{}, false
	}
}

// parseValueTail implements PUT/MOVE's "split the remainder on the
// LAST colon" rule: PUT:BL02:SAMPLE:X:1000 must yield target
// "BL02:SAMPLE:X" and value 1000, even though the target itself
// contains colons.
func parseValueTail(t CommandType, rest string) (Command, bool) {
	lastColon := strings.LastIndexByte(rest, ':')
	if lastColon < 0 {
		return Command{}, false
	}

	target := rest[:lastColon]
	valueStr := rest[lastColon+1:]

	value, ok := numeric.ParseFloat(valueStr)
	if !ok {
		return Command{}, false
	}

	return Command{Type: t, Target: target, Value: value, HasValue: true}, true
}

// parseMonitor implements MONITOR's last-colon split: the tail is an
// integer interval in milliseconds rather than a PV value.
func parseMonitor(rest string) (Command, bool) {
	lastColon := strings.LastIndexByte(rest, ':')
	if lastColon < 0 {
		return Command{}, false
	}

	target := rest[:lastColon]
	intervalStr := rest[lastColon+1:]

	interval, ok := numeric.ParseFloat(intervalStr)
	if !ok {
		return Command{}, false
	}

	return Command{
		Type:              Monitor,
		Target:            target,
		MonitorIntervalMs: int(interval),
	}, true
}
