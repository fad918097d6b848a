package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"ecotrack/internal/core/canon"
	perr "ecotrack/internal/platform/errors"

	"github.com/Masterminds/semver/v3"
)

// document is the persisted shape. discovered and projects are required,
// the download maps default to empty
type document struct {
	Discovered         *[]Discovery                `json:"discovered"`
	Projects           map[string]Project          `json:"projects"`
	Downloads          map[string][]DownloadSample `json:"downloads"`
	InstallerDownloads map[string][]DownloadSample `json:"installer_downloads"`
}

// Load reads the document at path. Any problem is fatal to the caller
func Load(path string) (*Ledger, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeIO, "read %s", path)
	}
	return Decode(b)
}

// LoadOrNew is Load, except that a missing file yields an empty ledger
func LoadOrNew(path string) (*Ledger, error) {
	l, err := Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	return l, err
}

// Decode parses a document
func Decode(b []byte) (*Ledger, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&doc); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDecode, "decode document")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, perr.Decodef("trailing data after document")
	}
	if doc.Discovered == nil {
		return nil, perr.Decodef("document has no discovered list")
	}
	if doc.Projects == nil {
		return nil, perr.Decodef("document has no projects map")
	}

	l := New()
	l.discovered = *doc.Discovered
	for i := range l.discovered {
		if l.discovered[i].Projects == nil {
			l.discovered[i].Projects = []uint64{}
		}
	}

	l.projects = make([]Project, len(doc.Projects))
	seen := make([]bool, len(doc.Projects))
	for k, p := range doc.Projects {
		id, err := strconv.ParseUint(k, 10, 64)
		if err != nil || id >= uint64(len(doc.Projects)) || seen[id] {
			return nil, perr.Decodef("project key %q breaks the dense id sequence", k)
		}
		seen[id] = true
		p.ID = id
		if p.BuildLogs == nil {
			p.BuildLogs = []BuildLog{}
		}
		l.projects[id] = p
	}
	for _, p := range l.projects {
		key := canon.Key(p.URL)
		if prev, dup := l.byKey[key]; dup {
			return nil, perr.Decodef("projects %d and %d share url %s", prev, p.ID, p.URL)
		}
		l.byKey[key] = p.ID
	}

	for track, raw := range map[Track]map[string][]DownloadSample{
		TrackCompiler:  doc.Downloads,
		TrackInstaller: doc.InstallerDownloads,
	} {
		for v, samples := range raw {
			if _, err := semver.StrictNewVersion(v); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeDecode, "%s download key %q", track, v)
			}
			for _, s := range samples {
				for p := range s.Counts {
					if !knownPlatform(p) {
						return nil, perr.Decodef("%s download %s has unknown platform %q", track, v, p)
					}
				}
			}
			l.downloads[track][v] = samples
		}
	}
	return l, nil
}

// Encode renders the document as indented JSON
func (l *Ledger) Encode() ([]byte, error) {
	disc := l.discovered
	if disc == nil {
		disc = []Discovery{}
	}
	doc := document{
		Discovered:         &disc,
		Projects:           make(map[string]Project, len(l.projects)),
		Downloads:          l.downloads[TrackCompiler],
		InstallerDownloads: l.downloads[TrackInstaller],
	}
	for _, p := range l.projects {
		if p.BuildLogs == nil {
			p.BuildLogs = []BuildLog{}
		}
		doc.Projects[strconv.FormatUint(p.ID, 10)] = p
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "encode document")
	}
	return append(b, '\n'), nil
}

// Save overwrites the document at path in one write. It is not crash atomic
func (l *Ledger) Save(path string) error {
	b, err := l.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "create %s", filepath.Dir(path))
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeIO, "write %s", path)
	}
	return nil
}
