// Package domain holds the build pipeline's types and ports
package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	perr "ecotrack/internal/platform/errors"
)

// Pin selects a compiler release through the installer's "+x.y" argument.
// The zero Pin means whatever compiler the binary resolves to by default
type Pin string

var pinRe = regexp.MustCompile(`^\d+\.\d+(\.\d+)?$`)

// ParsePin accepts "0.13", "+0.13" or "0.13.1"; empty input is the zero Pin
func ParsePin(s string) (Pin, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	if s == "" {
		return "", nil
	}
	if !pinRe.MatchString(s) {
		return "", perr.InvalidArgf("version pin %q must look like 0.13", s)
	}
	return Pin(s), nil
}

// MinorPin pins a 0.x release line
func MinorPin(minor uint64) Pin { return Pin(fmt.Sprintf("0.%d", minor)) }

// Arg renders the command line argument, empty for the zero Pin
func (p Pin) Arg() string {
	if p == "" {
		return ""
	}
	return "+" + string(p)
}

// Mode selects what a run does
type Mode struct {
	Selective            bool
	Target               Pin
	Reference            Pin
	IncludeKnownFailures bool
}

// FullRefresh rebuilds every project and is the only mode whose results are saved
func FullRefresh() Mode { return Mode{} }

// SelectiveCheck verifies projects ad hoc, optionally against pinned compilers
func SelectiveCheck(target, reference Pin, includeKnownFailures bool) Mode {
	return Mode{Selective: true, Target: target, Reference: reference, IncludeKnownFailures: includeKnownFailures}
}

// Compare reports whether a reference build runs next to the target build
func (m Mode) Compare() bool { return m.Reference != "" }

func (m Mode) String() string {
	if !m.Selective {
		return "full-refresh"
	}
	return "selective-check"
}

// Request is one orchestrator run
type Request struct {
	// CompilerPath overrides the configured compiler binary
	CompilerPath string
	Mode         Mode
}

// Status is the per-project verdict of a run
type Status string

// Statuses reported per project
const (
	StatusPass           Status = "pass"
	StatusFail           Status = "fail"
	StatusMigrated       Status = "migrated"
	StatusUnchanged      Status = "unchanged"
	StatusSkipped        Status = "skipped"
	StatusCheckoutFailed Status = "checkout-failed"
)

// Recorded reports whether the status produces a build log
func (s Status) Recorded() bool {
	return s != StatusUnchanged && s != StatusSkipped
}

// ProjectReport is what happened to one project
type ProjectReport struct {
	ID            uint64        `json:"id"`
	URL           string        `json:"url"`
	Status        Status        `json:"status"`
	Rev           string        `json:"rev,omitempty"`
	FailingRoots  []string      `json:"failing_roots,omitempty"`
	MigratedRoots []string      `json:"migrated_roots,omitempty"`
	Regressions   []string      `json:"regressions,omitempty"`
	Fixed         []string      `json:"fixed,omitempty"`
	Detail        string        `json:"detail,omitempty"`
	Elapsed       time.Duration `json:"elapsed"`
}

// Report is the outcome of a whole run
type Report struct {
	RunID           string          `json:"run_id"`
	Mode            string          `json:"mode"`
	CompilerVersion string          `json:"compiler_version"`
	Projects        []ProjectReport `json:"projects"`
	Committed       int             `json:"committed"`
}

// Count returns how many projects ended with status s
func (r Report) Count(s Status) int {
	n := 0
	for _, p := range r.Projects {
		if p.Status == s {
			n++
		}
	}
	return n
}
