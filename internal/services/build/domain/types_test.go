package domain

import (
	"testing"

	perr "ecotrack/internal/platform/errors"
)

func TestParsePin(t *testing.T) {
	cases := map[string]Pin{
		"":        "",
		"0.13":    "0.13",
		"+0.13":   "0.13",
		" 0.5.2 ": "0.5.2",
	}
	for in, want := range cases {
		got, err := ParsePin(in)
		if err != nil || got != want {
			t.Fatalf("ParsePin(%q) = %q %v", in, got, err)
		}
	}
	for _, bad := range []string{"latest", "v0.13", "0", "0.x"} {
		if _, err := ParsePin(bad); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("ParsePin(%q) err = %v", bad, err)
		}
	}
}

func TestPinArg(t *testing.T) {
	if MinorPin(7).Arg() != "+0.7" {
		t.Fatalf("MinorPin(7).Arg() = %q", MinorPin(7).Arg())
	}
	if Pin("").Arg() != "" {
		t.Fatalf("zero pin must render empty")
	}
}

func TestModes(t *testing.T) {
	if FullRefresh().Selective || FullRefresh().String() != "full-refresh" {
		t.Fatalf("FullRefresh wrong")
	}
	m := SelectiveCheck("0.5", "0.4", true)
	if !m.Selective || !m.Compare() || !m.IncludeKnownFailures || m.String() != "selective-check" {
		t.Fatalf("SelectiveCheck wrong: %+v", m)
	}
	if SelectiveCheck("", "", false).Compare() {
		t.Fatalf("no reference means no comparison")
	}
}

func TestStatusRecorded(t *testing.T) {
	for _, s := range []Status{StatusPass, StatusFail, StatusMigrated, StatusCheckoutFailed} {
		if !s.Recorded() {
			t.Fatalf("%s should be recorded", s)
		}
	}
	for _, s := range []Status{StatusUnchanged, StatusSkipped} {
		if s.Recorded() {
			t.Fatalf("%s should not be recorded", s)
		}
	}
}

func TestReportCount(t *testing.T) {
	r := Report{Projects: []ProjectReport{{Status: StatusPass}, {Status: StatusFail}, {Status: StatusPass}}}
	if r.Count(StatusPass) != 2 || r.Count(StatusMigrated) != 0 {
		t.Fatalf("Count wrong")
	}
}
