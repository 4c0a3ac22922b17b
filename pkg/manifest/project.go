// Copyright 2026 nupush
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
)

var (
	// ErrProjectNotFound is returned when a configured manifest path does not exist.
	ErrProjectNotFound = errors.New("Project file not found")
	// ErrVersionNotFound is returned when the version pattern does not match a manifest.
	ErrVersionNotFound = errors.New("Version not found in project file")
	// ErrInvalidPattern is returned when the configured version pattern does not compile.
	ErrInvalidPattern = errors.New("Invalid version pattern")
)

// Project describes a single package manifest.
// It is created once per configured manifest path and is immutable after
// version extraction.
type Project struct {
	// Path to the manifest file.
	Path string
	// Package name, derived from the manifest filename minus its extension.
	PackageName string
	// Version declared in the manifest.
	Version string
}

// Extractor reads package manifests and extracts their declared versions via
// a configurable pattern. The pattern is fixed per run, not per file.
type Extractor struct {
	Log     logr.Logger
	pattern *regexp.Regexp
}

// NewExtractor compiles the given version pattern. Matching is
// case-insensitive and multiline.
func NewExtractor(log logr.Logger, pattern string) (*Extractor, error) {
	compiled, err := regexp.Compile("(?im)" + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidPattern, pattern, err)
	}
	return &Extractor{
		Log:     log,
		pattern: compiled,
	}, nil
}

// LoadProjects stats and reads every manifest path and extracts its version.
// The returned slice preserves input order.
func (extractor *Extractor) LoadProjects(paths []string) ([]Project, error) {
	projects := make([]Project, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			extractor.logWorkingDirectory()
			return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, path)
		}

		contents, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		version, err := extractor.extract(string(contents))
		if err != nil {
			return nil, fmt.Errorf("%w: %s:\n%s", err, path, contents)
		}

		projects = append(projects, Project{
			Path:        path,
			PackageName: packageName(path),
			Version:     version,
		})
	}
	return projects, nil
}

func (extractor *Extractor) extract(text string) (string, error) {
	match := extractor.pattern.FindStringSubmatch(text)
	if match == nil {
		return "", ErrVersionNotFound
	}
	if len(match) > 1 {
		return strings.TrimSpace(match[1]), nil
	}
	return strings.TrimSpace(match[0]), nil
}

func (extractor *Extractor) logWorkingDirectory() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	entries, err := os.ReadDir(wd)
	if err != nil {
		return
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	extractor.Log.Info("Working directory listing", "dir", wd, "entries", names)
}

func packageName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
