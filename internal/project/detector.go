// Package project detects the Ruby project in a directory and resolves its
// dependency manifest.
package project

import (
	"os"
	"path/filepath"
	"strings"
)

// GemfileEnv is the environment variable Bundler reads the manifest path from.
const GemfileEnv = "BUNDLE_GEMFILE"

// DefaultGemfile is the manifest Bundler looks for by default.
const DefaultGemfile = "Gemfile"

// MarkerKind says what a marker file tells us about the project.
type MarkerKind string

const (
	MarkerManifest MarkerKind = "manifest"
	MarkerLockfile MarkerKind = "lockfile"
	MarkerRuntime  MarkerKind = "runtime"
	MarkerVCS      MarkerKind = "vcs"
)

// Marker is a file or directory that identifies part of a project.
type Marker struct {
	// Name is the file or directory name to look for.
	Name string
	// Kind is what the marker indicates.
	Kind MarkerKind
	// Lockfile is the lockfile paired with a manifest marker.
	Lockfile string
}

// DefaultMarkers are checked in order; the first manifest found wins.
var DefaultMarkers = []Marker{
	{Name: "Gemfile", Kind: MarkerManifest, Lockfile: "Gemfile.lock"},
	{Name: "gems.rb", Kind: MarkerManifest, Lockfile: "gems.locked"},
	{Name: "Gemfile.lock", Kind: MarkerLockfile},
	{Name: "gems.locked", Kind: MarkerLockfile},
	{Name: ".ruby-version", Kind: MarkerRuntime},
	// .git is a file inside linked worktrees
	{Name: ".git", Kind: MarkerVCS},
}

// Info contains information about a detected project.
type Info struct {
	// Path is the absolute path to the project directory.
	Path string `json:"path" yaml:"path"`
	// Gemfile is the absolute manifest path, empty if none was found.
	Gemfile string `json:"gemfile,omitempty" yaml:"gemfile,omitempty"`
	// Lockfile is the absolute lockfile path paired with Gemfile, empty if absent.
	Lockfile string `json:"lockfile,omitempty" yaml:"lockfile,omitempty"`
	// IsGitRepo indicates whether the directory is a git checkout.
	IsGitRepo bool `json:"is_git_repo" yaml:"is_git_repo"`
	// RubyVersion is the trimmed content of .ruby-version, if any.
	RubyVersion string `json:"ruby_version,omitempty" yaml:"ruby_version,omitempty"`
	// Markers are the marker names found.
	Markers []string `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// HasGemfile reports whether a manifest was found.
func (i *Info) HasGemfile() bool {
	return i.Gemfile != ""
}

// Detector detects Ruby projects.
type Detector struct {
	// Markers are the project markers to check.
	Markers []Marker
}

// NewDetector creates a new Detector with default markers.
func NewDetector() *Detector {
	return &Detector{
		Markers: DefaultMarkers,
	}
}

// Detect inspects dir. It fails only if dir is not an accessible directory;
// a directory without markers yields an Info with no Gemfile.
func (d *Detector) Detect(dir string) (*Info, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	stat, err := os.Stat(absPath)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return nil, &os.PathError{Op: "detect", Path: absPath, Err: os.ErrInvalid}
	}

	info := &Info{
		Path:    absPath,
		Markers: []string{},
	}

	for _, marker := range d.Markers {
		path := filepath.Join(absPath, marker.Name)
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}

		switch marker.Kind {
		case MarkerManifest, MarkerLockfile, MarkerRuntime:
			if fi.IsDir() {
				continue
			}
		}

		info.Markers = append(info.Markers, marker.Name)

		switch marker.Kind {
		case MarkerManifest:
			if info.Gemfile == "" {
				info.Gemfile = path
				if marker.Lockfile != "" && fileExists(filepath.Join(absPath, marker.Lockfile)) {
					info.Lockfile = filepath.Join(absPath, marker.Lockfile)
				}
			}
		case MarkerRuntime:
			if data, err := os.ReadFile(path); err == nil {
				info.RubyVersion = strings.TrimSpace(string(data))
			}
		case MarkerVCS:
			info.IsGitRepo = true
		}
	}

	return info, nil
}

// Detect is a convenience function using the default markers.
func Detect(dir string) (*Info, error) {
	return NewDetector().Detect(dir)
}

// GemfilePath resolves the manifest path for dir. A non-empty override is
// taken relative to dir; otherwise DefaultGemfile in dir is used. The file
// does not have to exist.
func GemfilePath(dir, override string) (string, error) {
	name := override
	if name == "" {
		name = DefaultGemfile
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(dir, name)
	}
	return filepath.Abs(name)
}

// EnsureGemfileEnv sets BUNDLE_GEMFILE to path unless it is already set
// (an empty value counts as set). It returns the effective value and whether
// this call set it.
func EnsureGemfileEnv(path string) (string, bool, error) {
	if current, ok := os.LookupEnv(GemfileEnv); ok {
		return current, false, nil
	}
	if err := os.Setenv(GemfileEnv, path); err != nil {
		return "", false, err
	}
	return path, true, nil
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
