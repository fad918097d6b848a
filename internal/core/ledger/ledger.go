// Package ledger is the persistent compatibility record: discovered projects,
// their build history, discovery snapshots and release download samples.
//
// A Ledger is loaded whole at the start of a run, mutated in memory and saved
// whole at the end. Every history it holds only grows.
package ledger

import (
	"slices"
	"time"

	"ecotrack/internal/core/canon"
	perr "ecotrack/internal/platform/errors"
)

// BuildLog is one recorded build outcome. An empty Rev marks a checkout failure
type BuildLog struct {
	Rev             string `json:"rev"`
	CompilerVersion string `json:"compiler_version"`
	Result          bool   `json:"result"`
}

// Project is a tracked repository. ID is its position in the registry
type Project struct {
	ID        uint64     `json:"-"`
	URL       string     `json:"url"`
	BuildLogs []BuildLog `json:"build_logs"`
}

// Latest returns the most recent build log
func (p Project) Latest() (BuildLog, bool) {
	if len(p.BuildLogs) == 0 {
		return BuildLog{}, false
	}
	return p.BuildLogs[len(p.BuildLogs)-1], true
}

// Discovery is one snapshot of the ecosystem size
type Discovery struct {
	Date     UnixTime `json:"date"`
	Sources  uint64   `json:"sources"`
	Projects []uint64 `json:"projects"`
}

// Entry is a build log waiting to be committed for a project
type Entry struct {
	ProjectID uint64
	Log       BuildLog
}

// Point is one chart sample
type Point struct {
	Date     time.Time
	Sources  uint64
	Projects int
}

// Ledger holds the whole document in memory
type Ledger struct {
	discovered []Discovery
	projects   []Project
	byKey      map[string]uint64
	downloads  map[Track]map[string][]DownloadSample
}

// New returns an empty ledger
func New() *Ledger {
	return &Ledger{
		byKey: map[string]uint64{},
		downloads: map[Track]map[string][]DownloadSample{
			TrackCompiler:  {},
			TrackInstaller: {},
		},
	}
}

// InsertProject finds or creates the project for url. New projects get the
// current registry size as id
func (l *Ledger) InsertProject(url string) (id uint64, created bool) {
	key := canon.Key(url)
	if id, ok := l.byKey[key]; ok {
		return id, false
	}
	id = uint64(len(l.projects))
	l.projects = append(l.projects, Project{ID: id, URL: canon.URL(url)})
	l.byKey[key] = id
	return id, true
}

// Lookup returns the id registered for url, if any
func (l *Ledger) Lookup(url string) (uint64, bool) {
	id, ok := l.byKey[canon.Key(url)]
	return id, ok
}

// Len returns the number of registered projects
func (l *Ledger) Len() int { return len(l.projects) }

// Project returns a copy of project id
func (l *Ledger) Project(id uint64) (Project, bool) {
	if id >= uint64(len(l.projects)) {
		return Project{}, false
	}
	return clone(l.projects[id]), true
}

// Projects returns copies of all projects in ascending id order
func (l *Ledger) Projects() []Project {
	out := make([]Project, len(l.projects))
	for i, p := range l.projects {
		out[i] = clone(p)
	}
	return out
}

// LatestLog returns the most recent build log of project id
func (l *Ledger) LatestLog(id uint64) (BuildLog, bool) {
	if id >= uint64(len(l.projects)) {
		return BuildLog{}, false
	}
	return l.projects[id].Latest()
}

// AppendBuildLogs commits a batch of build logs. The batch is checked first so
// an unknown id leaves every history untouched
func (l *Ledger) AppendBuildLogs(entries []Entry) error {
	for _, e := range entries {
		if e.ProjectID >= uint64(len(l.projects)) {
			return perr.InvalidArgf("build log for unknown project %d", e.ProjectID)
		}
	}
	for _, e := range entries {
		p := &l.projects[e.ProjectID]
		p.BuildLogs = append(p.BuildLogs, e.Log)
	}
	return nil
}

// RecordDiscovery appends a snapshot. Project ids are stored sorted and unique
func (l *Ledger) RecordDiscovery(d Discovery) {
	ids := append([]uint64{}, d.Projects...)
	slices.Sort(ids)
	d.Projects = slices.Compact(ids)
	l.discovered = append(l.discovered, d)
}

// Discoveries returns a copy of all snapshots in insertion order
func (l *Ledger) Discoveries() []Discovery {
	out := make([]Discovery, len(l.discovered))
	for i, d := range l.discovered {
		d.Projects = slices.Clone(d.Projects)
		out[i] = d
	}
	return out
}

// Series returns the chart samples: date, source file matches, project count
func (l *Ledger) Series() []Point {
	out := make([]Point, 0, len(l.discovered))
	for _, d := range l.discovered {
		out = append(out, Point{Date: d.Date.Time(), Sources: d.Sources, Projects: len(d.Projects)})
	}
	return out
}

func clone(p Project) Project {
	p.BuildLogs = slices.Clone(p.BuildLogs)
	return p
}
