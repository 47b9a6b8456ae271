package protocol

import "testing"

func TestFormatResponse_WithData(t *testing.T) {
	if got := FormatResponse("OK", "350.5"); got != "OK:350.5\n" {
		t.Errorf("FormatResponse() = %q, want %q", got, "OK:350.5\n")
	}
}

func TestFormatResponse_NoData(t *testing.T) {
	if got := FormatResponse("OK", ""); got != "OK\n" {
		t.Errorf("FormatResponse() = %q, want %q", got, "OK\n")
	}
}

func TestFormatError(t *testing.T) {
	if got := FormatError(ErrUnknownPV); got != "ERR:UNKNOWN_PV\n" {
		t.Errorf("FormatError() = %q, want %q", got, "ERR:UNKNOWN_PV\n")
	}
}

func TestFormatValue_StripsTrailingZeros(t *testing.T) {
	cases := map[float64]string{
		350.5:     "350.5",
		7112:      "7112",
		0.001:     "0.001",
		123456789: "1.23457e+08",
	}
	for in, want := range cases {
		if got := FormatValue(in); got != want {
			t.Errorf("FormatValue(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatMonitorPush(t *testing.T) {
	if got := FormatMonitorPush(42.5); got != "DATA:42.5\n" {
		t.Errorf("FormatMonitorPush() = %q, want %q", got, "DATA:42.5\n")
	}
}

func TestFormatList_EmptyIsNotError(t *testing.T) {
	if got := FormatList(""); got != "OK\n" {
		t.Errorf("FormatList(\"\") = %q, want %q", got, "OK\n")
	}
}
