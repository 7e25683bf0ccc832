package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestResolveLdflags(t *testing.T) {
	t.Parallel()
	info := resolve("v1.2.0", "0123456789abcdef", "2026-01-02", noBuildInfo)
	if info.Version != "v1.2.0" || info.BuildTime != "2026-01-02" {
		t.Fatalf("unexpected info: %+v", info)
	}
	if got := info.String(); got != "v1.2.0 (0123456789ab)" {
		t.Fatalf("String() = %q", got)
	}
}

func TestResolveFallbacks(t *testing.T) {
	t.Parallel()
	info := resolve("", "", "", noBuildInfo)
	if !strings.HasSuffix(info.Version, "Z") || info.Commit != "" {
		t.Fatalf("expected timestamp version without commit, got %+v", info)
	}
	if info.String() != info.Version {
		t.Fatalf("String() = %q, want bare version", info.String())
	}

	info = resolve("", "", "2026-03-04", noBuildInfo)
	if info.Version != "2026-03-04" {
		t.Fatalf("expected build time as version, got %q", info.Version)
	}
}

func TestResolveBuildInfo(t *testing.T) {
	t.Parallel()
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "(devel)"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "abc123"},
				{Key: "vcs.time", Value: "2026-05-06T07:08:09Z"},
			},
		}, true
	}
	info := resolve("", "", "", read)
	if info.Commit != "abc123" || info.Version != "2026-05-06T07:08:09Z" {
		t.Fatalf("unexpected info: %+v", info)
	}

	info = resolve("v0.1.0", "deadbeef", "", read)
	if info.Commit != "deadbeef" || info.Version != "v0.1.0" {
		t.Fatalf("ldflags should win over build info: %+v", info)
	}
}

func TestResolveBuildSettings(t *testing.T) {
	t.Parallel()
	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.modified", Value: "true"},
				{Key: "CGO_ENABLED", Value: "0"},
				{Key: "-tags", Value: "netgo"},
			},
		}, true
	}
	info := resolve("v0.2.0", "", "", read)
	if !info.Modified || info.CGO || info.Tags != "netgo" {
		t.Fatalf("unexpected build settings: %+v", info)
	}
	if got := info.String(); got != "v0.2.0 (0123456789ab-dirty)" {
		t.Fatalf("String() = %q", got)
	}
	if !strings.Contains(info.Platform, "/") {
		t.Fatalf("platform %q", info.Platform)
	}
}
