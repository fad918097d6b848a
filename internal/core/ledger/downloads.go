package ledger

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	perr "ecotrack/internal/platform/errors"

	"github.com/Masterminds/semver/v3"
)

// Track is a distribution channel with its own download history
type Track string

const (
	// TrackCompiler is the compiler release stream
	TrackCompiler Track = "compiler"
	// TrackInstaller is the toolchain installer release stream
	TrackInstaller Track = "installer"
)

// Tracks lists every known track in a stable order
var Tracks = []Track{TrackCompiler, TrackInstaller}

// Valid reports whether t is a known track
func (t Track) Valid() bool { return slices.Contains(Tracks, t) }

// Platform is a target a release asset is built for
type Platform string

// Platforms recognised in release assets
const (
	Aarch64Linux  Platform = "Aarch64Linux"
	Aarch64Mac    Platform = "Aarch64Mac"
	X86_64Linux   Platform = "X86_64Linux"
	X86_64Mac     Platform = "X86_64Mac"
	X86_64Windows Platform = "X86_64Windows"
)

// assetSuffixes maps asset filename suffixes to platforms
var assetSuffixes = []struct {
	suffix   string
	platform Platform
}{
	{"-aarch64-linux.zip", Aarch64Linux},
	{"-aarch64-mac.zip", Aarch64Mac},
	{"-x86_64-linux.zip", X86_64Linux},
	{"-x86_64-mac.zip", X86_64Mac},
	{"-x86_64-windows.zip", X86_64Windows},
}

// PlatformOf classifies an asset filename
func PlatformOf(asset string) (Platform, bool) {
	for _, s := range assetSuffixes {
		if strings.HasSuffix(asset, s.suffix) {
			return s.platform, true
		}
	}
	return "", false
}

func knownPlatform(p Platform) bool {
	for _, s := range assetSuffixes {
		if s.platform == p {
			return true
		}
	}
	return false
}

// DownloadSample is the download counts of one release at one instant
type DownloadSample struct {
	Date   UnixTime            `json:"date"`
	Counts map[Platform]uint64 `json:"counts"`
}

// Release is the part of an upstream release the ledger records
type Release struct {
	Name    string
	TagName string
	Assets  []Asset
}

// Asset is one downloadable file of a release
type Asset struct {
	Name          string
	DownloadCount uint64
}

// RecordOptions tunes RecordReleaseDownloads
type RecordOptions struct {
	// SkipUnknownAssets drops unclassifiable assets instead of failing
	SkipUnknownAssets bool
}

// RecordResult summarizes one RecordReleaseDownloads call
type RecordResult struct {
	Appended  int
	Unchanged int
	Skipped   []string
}

// ErrContract is the sentinel behind every upstream contract violation
var ErrContract = perr.New(perr.ErrorCodeContract, "upstream contract violation")

// VersionTagError reports a release whose name is not a semantic version
type VersionTagError struct {
	Tag string
	Err error
}

func (e *VersionTagError) Error() string {
	return fmt.Sprintf("release %q is not a semantic version: %v", e.Tag, e.Err)
}

// Unwrap exposes ErrContract so perr.CodeOf reports ErrorCodeContract
func (e *VersionTagError) Unwrap() []error { return []error{ErrContract, e.Err} }

// UnknownAssetError reports a release asset that matches no known platform
type UnknownAssetError struct {
	Release string
	Asset   string
}

func (e *UnknownAssetError) Error() string {
	return fmt.Sprintf("release %s: asset %q matches no known platform", e.Release, e.Asset)
}

// Unwrap exposes ErrContract so perr.CodeOf reports ErrorCodeContract
func (e *UnknownAssetError) Unwrap() error { return ErrContract }

// ParseVersion strips one leading "v" and parses strictly
func ParseVersion(tag string) (*semver.Version, error) {
	v, err := semver.StrictNewVersion(strings.TrimPrefix(strings.TrimSpace(tag), "v"))
	if err != nil {
		return nil, &VersionTagError{Tag: tag, Err: err}
	}
	return v, nil
}

type parsedRelease struct {
	version string
	counts  map[Platform]uint64
}

// CheckReleases reports the first release RecordReleaseDownloads would reject,
// without touching any ledger
func CheckReleases(releases []Release, opts RecordOptions) error {
	_, _, err := parseReleases(releases, opts)
	return err
}

func parseReleases(releases []Release, opts RecordOptions) ([]parsedRelease, []string, error) {
	var skipped []string
	parsed := make([]parsedRelease, 0, len(releases))
	for _, r := range releases {
		name := r.Name
		if strings.TrimSpace(name) == "" {
			name = r.TagName
		}
		v, err := ParseVersion(name)
		if err != nil {
			return nil, nil, err
		}
		counts := make(map[Platform]uint64, len(r.Assets))
		for _, a := range r.Assets {
			p, ok := PlatformOf(a.Name)
			if !ok {
				if opts.SkipUnknownAssets {
					skipped = append(skipped, a.Name)
					continue
				}
				return nil, nil, &UnknownAssetError{Release: name, Asset: a.Name}
			}
			counts[p] += a.DownloadCount
		}
		parsed = append(parsed, parsedRelease{version: v.String(), counts: counts})
	}
	return parsed, skipped, nil
}

// RecordReleaseDownloads appends one download sample per release for track,
// unless the counts equal the previous sample for that version. Every release
// is validated before anything is recorded
func (l *Ledger) RecordReleaseDownloads(releases []Release, track Track, at time.Time, opts RecordOptions) (RecordResult, error) {
	var res RecordResult
	if !track.Valid() {
		return res, perr.InvalidArgf("unknown track %q", track)
	}
	parsed, skipped, err := parseReleases(releases, opts)
	if err != nil {
		return RecordResult{}, err
	}
	res.Skipped = skipped

	hist := l.downloads[track]
	date := At(at)
	for _, pr := range parsed {
		samples := hist[pr.version]
		if n := len(samples); n > 0 && maps.Equal(samples[n-1].Counts, pr.counts) {
			res.Unchanged++
			continue
		}
		hist[pr.version] = append(samples, DownloadSample{Date: date, Counts: pr.counts})
		res.Appended++
	}
	return res, nil
}

// Downloads returns a copy of the history of one track keyed by version
func (l *Ledger) Downloads(track Track) map[string][]DownloadSample {
	src := l.downloads[track]
	out := make(map[string][]DownloadSample, len(src))
	for v, samples := range src {
		cp := make([]DownloadSample, len(samples))
		for i, s := range samples {
			cp[i] = DownloadSample{Date: s.Date, Counts: maps.Clone(s.Counts)}
		}
		out[v] = cp
	}
	return out
}

// Versions returns the versions of a track in ascending semver order
func (l *Ledger) Versions(track Track) []string {
	type pair struct {
		raw string
		v   *semver.Version
	}
	ps := make([]pair, 0, len(l.downloads[track]))
	for raw := range l.downloads[track] {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		ps = append(ps, pair{raw, v})
	}
	slices.SortFunc(ps, func(a, b pair) int { return a.v.Compare(b.v) })
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.raw
	}
	return out
}
