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

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

var (
	ErrMissingConfig = errors.New("Missing required configuration")
)

const (
	DefaultSource       = "https://api.nuget.org"
	DefaultVersionRegex = `<Version>(.*)</Version>`
	DefaultTagFormat    = "v*"
)

// Config is the immutable per-run configuration. It is constructed once at
// startup from the environment and passed by value into every component.
type Config struct {
	// Registry base URL, e.g. https://api.nuget.org.
	Source string
	// Registry push credential.
	APIKey string
	// Manifest files to release.
	ProjectFilePaths []string
	// Pattern used to extract the version from a manifest.
	// Applied case-insensitive and multiline.
	VersionRegex string
	// Enables symbol package build and push flags.
	IncludeSymbols bool
	// Branch names eligible for tagging the triggering commit.
	TaggableBranches []string
	// Tag template containing '*' for the version.
	TagFormat string
	// Raw 'branch=template' entries, comma-separated.
	BranchVersionSuffixes string
	// Credential for the source control tag and ref API.
	RepoToken string
	// Source control repository in 'owner/repo' format.
	Repository string
	// Optional override for the detected triggering commit.
	CommitSHA string
}

// Load reads the run configuration from the environment via the given viper
// instance and validates it.
func Load(env *viper.Viper) (Config, error) {
	cfg := Config{
		Source:                withDefault(env.GetString("NUGET_SOURCE"), DefaultSource),
		APIKey:                env.GetString("NUGET_KEY"),
		ProjectFilePaths:      splitList(env.GetString("PROJECT_FILE_PATHS")),
		VersionRegex:          withDefault(env.GetString("VERSION_REGEX"), DefaultVersionRegex),
		IncludeSymbols:        env.GetBool("INCLUDE_SYMBOLS"),
		TaggableBranches:      splitList(env.GetString("TAG_COMMIT")),
		TagFormat:             withDefault(env.GetString("TAG_FORMAT"), DefaultTagFormat),
		BranchVersionSuffixes: env.GetString("BRANCH_VERSION_SUFFIXES"),
		RepoToken:             env.GetString("REPO_TOKEN"),
		Repository:            withDefault(env.GetString("GITHUB_REPOSITORY"), env.GetString("REPOSITORY")),
		CommitSHA:             withDefault(env.GetString("COMMIT_SHA"), env.GetString("GITHUB_SHA")),
	}

	if len(cfg.ProjectFilePaths) == 0 {
		return Config{}, fmt.Errorf("%w: PROJECT_FILE_PATHS", ErrMissingConfig)
	}
	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("%w: NUGET_KEY", ErrMissingConfig)
	}
	if len(cfg.TaggableBranches) > 0 {
		if cfg.RepoToken == "" {
			return Config{}, fmt.Errorf("%w: REPO_TOKEN", ErrMissingConfig)
		}
		if cfg.Repository == "" {
			return Config{}, fmt.Errorf("%w: GITHUB_REPOSITORY", ErrMissingConfig)
		}
	}

	return cfg, nil
}

func withDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var entries []string
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}
