package ledger

import (
	"errors"
	"testing"
	"time"

	perr "ecotrack/internal/platform/errors"
)

var (
	day1 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	day2 = day1.Add(24 * time.Hour)
)

func release(name string, linux, windows uint64) Release {
	return Release{Name: name, Assets: []Asset{
		{Name: "veryl-x86_64-linux.zip", DownloadCount: linux},
		{Name: "veryl-x86_64-windows.zip", DownloadCount: windows},
	}}
}

func TestPlatformOf(t *testing.T) {
	cases := map[string]Platform{
		"veryl-aarch64-linux.zip":  Aarch64Linux,
		"veryl-aarch64-mac.zip":    Aarch64Mac,
		"veryl-x86_64-linux.zip":   X86_64Linux,
		"verylup-x86_64-mac.zip":   X86_64Mac,
		"veryl-x86_64-windows.zip": X86_64Windows,
	}
	for name, want := range cases {
		got, ok := PlatformOf(name)
		if !ok || got != want {
			t.Fatalf("PlatformOf(%q) = %q %v", name, got, ok)
		}
	}
	if _, ok := PlatformOf("veryl-x86_64-linux.tar.gz"); ok {
		t.Fatalf("tarball should not classify")
	}
}

func TestRecordReleaseDownloads_DedupsIdenticalCounts(t *testing.T) {
	l := New()
	res, err := l.RecordReleaseDownloads([]Release{release("v0.5.0", 10, 3)}, TrackCompiler, day1, RecordOptions{})
	if err != nil || res.Appended != 1 {
		t.Fatalf("first record = %+v %v", res, err)
	}
	res, err = l.RecordReleaseDownloads([]Release{release("v0.5.0", 10, 3)}, TrackCompiler, day2, RecordOptions{})
	if err != nil || res.Appended != 0 || res.Unchanged != 1 {
		t.Fatalf("second record = %+v %v", res, err)
	}
	hist := l.Downloads(TrackCompiler)["0.5.0"]
	if len(hist) != 1 || !hist[0].Date.Time().Equal(day1) {
		t.Fatalf("history = %+v", hist)
	}

	if _, err := l.RecordReleaseDownloads([]Release{release("v0.5.0", 11, 3)}, TrackCompiler, day2, RecordOptions{}); err != nil {
		t.Fatalf("third record: %v", err)
	}
	hist = l.Downloads(TrackCompiler)["0.5.0"]
	if len(hist) != 2 || hist[1].Counts[X86_64Linux] != 11 {
		t.Fatalf("changed counts not appended: %+v", hist)
	}
}

func TestRecordReleaseDownloads_TracksAreIndependent(t *testing.T) {
	l := New()
	if _, err := l.RecordReleaseDownloads([]Release{release("v0.5.0", 1, 1)}, TrackCompiler, day1, RecordOptions{}); err != nil {
		t.Fatal(err)
	}
	if _, err := l.RecordReleaseDownloads([]Release{release("v0.5.0", 1, 1)}, TrackInstaller, day1, RecordOptions{}); err != nil {
		t.Fatal(err)
	}
	if len(l.Downloads(TrackCompiler)["0.5.0"]) != 1 || len(l.Downloads(TrackInstaller)["0.5.0"]) != 1 {
		t.Fatalf("tracks share history")
	}
	if _, err := l.RecordReleaseDownloads(nil, Track("nightly"), day1, RecordOptions{}); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("unknown track: %v", err)
	}
}

func TestRecordReleaseDownloads_UnknownAssetIsTypedAndAtomic(t *testing.T) {
	l := New()
	bad := Release{Name: "v0.6.0", Assets: []Asset{{Name: "veryl-riscv64-linux.zip", DownloadCount: 1}}}
	_, err := l.RecordReleaseDownloads([]Release{release("v0.5.0", 1, 1), bad}, TrackCompiler, day1, RecordOptions{})

	var ua *UnknownAssetError
	if !errors.As(err, &ua) || ua.Asset != "veryl-riscv64-linux.zip" {
		t.Fatalf("want UnknownAssetError, got %v", err)
	}
	if !perr.IsCode(err, perr.ErrorCodeContract) || !errors.Is(err, ErrContract) {
		t.Fatalf("want contract code, got %v", perr.CodeOf(err))
	}
	if len(l.Versions(TrackCompiler)) != 0 {
		t.Fatalf("valid release recorded before the batch failed")
	}

	res, err := l.RecordReleaseDownloads([]Release{bad}, TrackCompiler, day1, RecordOptions{SkipUnknownAssets: true})
	if err != nil || len(res.Skipped) != 1 || res.Appended != 1 {
		t.Fatalf("skip mode = %+v %v", res, err)
	}
}

func TestRecordReleaseDownloads_BadVersionTag(t *testing.T) {
	l := New()
	for _, name := range []string{"nightly", "v1.2", "vv1.2.3"} {
		_, err := l.RecordReleaseDownloads([]Release{{Name: name}}, TrackCompiler, day1, RecordOptions{})
		var vt *VersionTagError
		if !errors.As(err, &vt) || vt.Tag != name {
			t.Fatalf("%q: want VersionTagError, got %v", name, err)
		}
		if !perr.IsCode(err, perr.ErrorCodeContract) {
			t.Fatalf("%q: want contract code", name)
		}
	}
}

func TestRecordReleaseDownloads_FallsBackToTag(t *testing.T) {
	l := New()
	r := release("", 1, 0)
	r.TagName = "v0.7.1"
	if _, err := l.RecordReleaseDownloads([]Release{r}, TrackInstaller, day1, RecordOptions{}); err != nil {
		t.Fatal(err)
	}
	if got := l.Versions(TrackInstaller); len(got) != 1 || got[0] != "0.7.1" {
		t.Fatalf("versions = %v", got)
	}
}

func TestVersions_SemverOrder(t *testing.T) {
	l := New()
	rs := []Release{release("v0.10.0", 1, 1), release("v0.9.1", 1, 1), release("v0.9.0", 1, 1)}
	if _, err := l.RecordReleaseDownloads(rs, TrackCompiler, day1, RecordOptions{}); err != nil {
		t.Fatal(err)
	}
	got := l.Versions(TrackCompiler)
	want := []string{"0.9.0", "0.9.1", "0.10.0"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Versions = %v, want %v", got, want)
		}
	}
}

func TestCheckReleases(t *testing.T) {
	unknown := Release{Name: "v0.6.0", Assets: []Asset{{Name: "veryl-riscv64-linux.zip"}}}
	if err := CheckReleases([]Release{release("v0.5.0", 1, 1)}, RecordOptions{}); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}
	var ua *UnknownAssetError
	if err := CheckReleases([]Release{unknown}, RecordOptions{}); !errors.As(err, &ua) {
		t.Fatalf("want UnknownAssetError, got %v", err)
	}
	if err := CheckReleases([]Release{unknown}, RecordOptions{SkipUnknownAssets: true}); err != nil {
		t.Fatalf("skip mode rejected: %v", err)
	}
	var vt *VersionTagError
	if err := CheckReleases([]Release{{Name: "latest"}}, RecordOptions{}); !errors.As(err, &vt) {
		t.Fatalf("want VersionTagError, got %v", err)
	}
}
