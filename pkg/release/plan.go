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

package release

import (
	"context"

	"github.com/Masterminds/semver/v3"
	"github.com/go-logr/logr"
	"github.com/nupush/nupush/pkg/manifest"
)

// Registry answers which versions are already published for a package.
type Registry interface {
	Versions(ctx context.Context, packageName string) ([]string, error)
}

// Planner decides per project whether publishing is required by testing the
// extracted version against the remote version set. Decisions are computed
// independently per project and preserve input order.
type Planner struct {
	Log      logr.Logger
	Registry Registry
}

// Plan returns the subset of projects whose version is absent from the
// registry. One registry call per project, no caching.
func (planner *Planner) Plan(
	ctx context.Context,
	projects []manifest.Project,
) ([]manifest.Project, error) {
	var decision []manifest.Project
	for _, project := range projects {
		remoteVersions, err := planner.Registry.Versions(ctx, project.PackageName)
		if err != nil {
			return nil, err
		}

		if versionExists(project.Version, remoteVersions) {
			planner.Log.Info(
				"Version already published, skipping",
				"package", project.PackageName,
				"version", project.Version,
			)
			continue
		}

		decision = append(decision, project)
	}
	return decision, nil
}

// versionExists reports whether version is a member of remoteVersions.
// Versions parseable as semver compare by semantic equality, everything else
// by exact string match.
func versionExists(version string, remoteVersions []string) bool {
	current, parseErr := semver.NewVersion(version)
	for _, remote := range remoteVersions {
		if remote == version {
			return true
		}
		if parseErr != nil {
			continue
		}
		remoteVersion, err := semver.NewVersion(remote)
		if err != nil {
			continue
		}
		if remoteVersion.Equal(current) {
			return true
		}
	}
	return false
}
