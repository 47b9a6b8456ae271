package protocol

import "strconv"

// FormatValue renders a numeric PV value the way the wire protocol
// expects: %.6g-equivalent, six significant digits, no trailing zeros.
func FormatValue(v float64) string {
	s := strconv.FormatFloat(v, 'g', 6, 64)
	// strconv's 'g' format with precision 6 rounds to 6 significant
	// digits already; %.6g in C additionally strips a trailing decimal
	// point if every fractional digit was zero, which FormatFloat does
	// not produce in the first place, and FormatFloat already writes a
	// lowercase 'e' exponent like snprintf, so no post-processing is needed.
	return s
}

// FormatResponse formats a successful response. A non-empty data
// payload is appended after a colon; an empty payload yields a bare
// "OK\n"-style line.
func FormatResponse(status, data string) string {
	if data != "" {
		return status + ":" + data + "\n"
	}
	return status + "\n"
}

// FormatError formats an error response, e.g. "ERR:UNKNOWN_PV\n".
func FormatError(code ErrorCode) string {
	return "ERR:" + code.String() + "\n"
}

// FormatMonitorPush formats an unsolicited monitor update, e.g.
// "DATA:123.456\n".
func FormatMonitorPush(value float64) string {
	return "DATA:" + FormatValue(value) + "\n"
}

// FormatList formats the comma-joined PV name list into a response.
// An empty list still returns "OK\n" (not an error), matching the
// original: LIST with zero matches is not a failure condition.
func FormatList(names string) string {
	return FormatResponse("OK", names)
}
