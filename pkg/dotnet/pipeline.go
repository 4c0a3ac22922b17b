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

package dotnet

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/nupush/nupush/pkg/manifest"
)

var (
	// ErrToolFailed is returned when a build, pack or push invocation exits
	// abnormally.
	ErrToolFailed = errors.New("Dotnet tool failed")
	// ErrPushRejected is returned when the push tool output contains an
	// error line.
	ErrPushRejected = errors.New("Push rejected by registry")
	// ErrNoArtifacts is returned when packaging produced nothing to push.
	ErrNoArtifacts = errors.New("No artifacts found")
)

var artifactPatterns = []string{"*.nupkg", "*.snupkg"}

// RunFunc invokes a tool with inherited standard I/O.
type RunFunc func(ctx context.Context, dir string, name string, args ...string) error

// CaptureFunc invokes a tool and returns its combined output.
type CaptureFunc func(ctx context.Context, dir string, name string, args ...string) (string, error)

type pipelineOptions struct {
	run     RunFunc
	capture CaptureFunc
}

type pipelineOption interface {
	apply(*pipelineOptions)
}

// WithRunner overrides how tool invocations are executed.
type WithRunner struct {
	Run     RunFunc
	Capture CaptureFunc
}

func (runner WithRunner) apply(opts *pipelineOptions) {
	opts.run = runner.Run
	opts.capture = runner.Capture
}

// Pipeline builds, packages and pushes NuGet packages by driving the dotnet
// toolchain. Build and pack run with inherited standard I/O so their own
// logs stay visible; push output is captured for failure scanning.
type Pipeline struct {
	Log logr.Logger

	workDir        string
	source         string
	apiKey         string
	includeSymbols bool
	run            RunFunc
	capture        CaptureFunc
}

func NewPipeline(
	log logr.Logger,
	workDir string,
	source string,
	apiKey string,
	includeSymbols bool,
	opts ...pipelineOption,
) *Pipeline {
	pipelineOpts := &pipelineOptions{
		run:     runInherited,
		capture: runCaptured,
	}
	for _, o := range opts {
		o.apply(pipelineOpts)
	}
	return &Pipeline{
		Log:            log,
		workDir:        workDir,
		source:         strings.TrimSuffix(source, "/"),
		apiKey:         apiKey,
		includeSymbols: includeSymbols,
		run:            pipelineOpts.run,
		capture:        pipelineOpts.capture,
	}
}

// Clean removes pre-existing package artifacts from the working directory so
// stale packages are never pushed.
func (pipeline *Pipeline) Clean() error {
	artifacts, err := pipeline.artifacts()
	if err != nil {
		return err
	}
	for _, artifact := range artifacts {
		pipeline.Log.V(1).Info("Removing stale artifact", "artifact", artifact)
		if err := os.Remove(artifact); err != nil {
			return err
		}
	}
	return nil
}

// BuildPack builds the project in release configuration and packages it into
// the working directory.
func (pipeline *Pipeline) BuildPack(
	ctx context.Context,
	project manifest.Project,
	versionSuffix string,
) error {
	if err := pipeline.run(ctx, pipeline.workDir, "dotnet", "build", "-c", "Release", project.Path); err != nil {
		return fmt.Errorf(
			"%w: build %s %s: %s",
			ErrToolFailed,
			project.PackageName,
			project.Version,
			err,
		)
	}

	packArgs := []string{"pack", "-c", "Release", project.Path, "--no-build", "-o", pipeline.workDir}
	if pipeline.includeSymbols {
		packArgs = append(packArgs, "--include-symbols", "-p:SymbolPackageFormat=snupkg")
	}
	if versionSuffix != "" {
		packArgs = append(packArgs, "--version-suffix", versionSuffix)
	}
	if err := pipeline.run(ctx, pipeline.workDir, "dotnet", packArgs...); err != nil {
		return fmt.Errorf(
			"%w: pack %s %s: %s",
			ErrToolFailed,
			project.PackageName,
			project.Version,
			err,
		)
	}

	return nil
}

// Push sends all produced artifacts to the registry in a single invocation
// with duplicate-skip semantics and scans the tool output for error lines.
func (pipeline *Pipeline) Push(ctx context.Context) error {
	artifacts, err := pipeline.artifacts()
	if err != nil {
		return err
	}
	if len(artifacts) == 0 {
		return fmt.Errorf("%w: %s", ErrNoArtifacts, pipeline.workDir)
	}

	args := []string{"nuget", "push"}
	args = append(args, artifacts...)
	args = append(
		args,
		"-s", fmt.Sprintf("%s/v3/index.json", pipeline.source),
		"-k", pipeline.apiKey,
		"--skip-duplicate",
	)
	if !pipeline.includeSymbols {
		args = append(args, "-n")
	}

	output, runErr := pipeline.capture(ctx, pipeline.workDir, "dotnet", args...)
	if output != "" {
		pipeline.Log.Info("Push output", "output", output)
	}

	// The push tool reports partial failures on a zero exit, so the output
	// scan takes precedence over the exit status.
	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "error") {
			return fmt.Errorf("%w: %s", ErrPushRejected, strings.TrimSpace(line))
		}
	}
	if runErr != nil {
		return fmt.Errorf("%w: push: %s", ErrToolFailed, runErr)
	}

	return nil
}

func (pipeline *Pipeline) artifacts() ([]string, error) {
	var artifacts []string
	for _, pattern := range artifactPatterns {
		matches, err := filepath.Glob(filepath.Join(pipeline.workDir, pattern))
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, matches...)
	}
	return artifacts, nil
}

func runInherited(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func runCaptured(ctx context.Context, dir string, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return string(output), err
}
