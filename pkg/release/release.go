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
	"errors"
	"slices"
	"time"

	"github.com/go-logr/logr"
	"github.com/nupush/nupush/pkg/config"
	"github.com/nupush/nupush/pkg/manifest"
)

var (
	ErrNoTagger = errors.New("No tagger configured for a taggable branch")
)

// Stage identifies a step of a release run. Stages run strictly
// sequentially; the first error is terminal and skips all remaining stages.
type Stage string

const (
	StageInit              Stage = "init"
	StageVersionsExtracted Stage = "versions-extracted"
	StageDecided           Stage = "decided"
	StageTagged            Stage = "tagged"
	StageSkippedTag        Stage = "skipped-tag"
	StageBuilt             Stage = "built"
	StagePushed            Stage = "pushed"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

// ProjectLoader reads manifests and extracts their versions.
type ProjectLoader interface {
	LoadProjects(paths []string) ([]manifest.Project, error)
}

// Tagger creates a release tag for a commit, rejecting duplicates.
type Tagger interface {
	Tag(ctx context.Context, name string, sha string) error
}

// Pipeline builds, packages and pushes package artifacts.
type Pipeline interface {
	// Clean removes stale artifacts from the working directory.
	Clean() error
	// BuildPack builds and packages a single project.
	BuildPack(ctx context.Context, project manifest.Project, versionSuffix string) error
	// Push pushes all produced artifacts to the registry.
	Push(ctx context.Context) error
}

// Releaser orchestrates a single release run: version extraction, publish
// decision, branch-conditional tagging and the build/pack/push pipeline.
type Releaser struct {
	Log      logr.Logger
	Config   config.Config
	Loader   ProjectLoader
	Planner  *Planner
	Tagger   Tagger
	Pipeline Pipeline

	// Branch that triggered the run.
	Branch string
	// Commit that triggered the run.
	CommitSHA string

	// Now returns the current time for date placeholder rendering.
	Now func() time.Time
}

// Run executes the release pipeline once. It returns the first error
// encountered; no stage after a failed one is executed.
func (releaser *Releaser) Run(ctx context.Context) error {
	releaser.logStage(StageInit)

	projects, err := releaser.Loader.LoadProjects(releaser.Config.ProjectFilePaths)
	if err != nil {
		return releaser.fail(err)
	}
	releaser.logStage(StageVersionsExtracted)

	decision, err := releaser.Planner.Plan(ctx, projects)
	if err != nil {
		return releaser.fail(err)
	}
	releaser.logStage(StageDecided, "publish", len(decision), "total", len(projects))

	// The tag embeds the first project's version and is computed regardless
	// of whether any project requires publishing.
	versionSuffix := ""
	if slices.Contains(releaser.Config.TaggableBranches, releaser.Branch) {
		template := SuffixTemplateFor(
			ParseSuffixRules(releaser.Config.BranchVersionSuffixes),
			releaser.Branch,
		)
		versionSuffix = ComputeSuffix(template, releaser.Now(), releaser.CommitSHA)
		tagName := BuildTagName(releaser.Config.TagFormat, projects[0].Version, versionSuffix)

		if releaser.Tagger == nil {
			return releaser.fail(ErrNoTagger)
		}
		if err := releaser.Tagger.Tag(ctx, tagName, releaser.CommitSHA); err != nil {
			return releaser.fail(err)
		}
		releaser.logStage(StageTagged, "tag", tagName)
	} else {
		releaser.logStage(StageSkippedTag, "branch", releaser.Branch)
	}

	if len(decision) == 0 {
		releaser.Log.Info("All versions already published, nothing to do")
		releaser.logStage(StageDone)
		return nil
	}

	if err := releaser.Pipeline.Clean(); err != nil {
		return releaser.fail(err)
	}
	for _, project := range decision {
		if err := releaser.Pipeline.BuildPack(ctx, project, versionSuffix); err != nil {
			return releaser.fail(err)
		}
	}
	releaser.logStage(StageBuilt)

	if err := releaser.Pipeline.Push(ctx); err != nil {
		return releaser.fail(err)
	}
	releaser.logStage(StagePushed)

	releaser.logStage(StageDone)
	return nil
}

func (releaser *Releaser) fail(err error) error {
	releaser.Log.Error(err, "Release run aborted", "stage", StageFailed)
	return err
}

func (releaser *Releaser) logStage(stage Stage, keysAndValues ...any) {
	releaser.Log.Info("Stage reached", append([]any{"stage", stage}, keysAndValues...)...)
}
