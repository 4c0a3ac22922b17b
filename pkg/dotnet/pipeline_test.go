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

package dotnet_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/nupush/nupush/pkg/dotnet"
	"github.com/nupush/nupush/pkg/manifest"
	"gotest.tools/v3/assert"
)

type invocation struct {
	name string
	args []string
}

type toolRecorder struct {
	invocations []invocation
	runErr      error
	pushOutput  string
	pushErr     error
}

func (recorder *toolRecorder) run(
	ctx context.Context,
	dir string,
	name string,
	args ...string,
) error {
	recorder.invocations = append(recorder.invocations, invocation{name: name, args: args})
	return recorder.runErr
}

func (recorder *toolRecorder) capture(
	ctx context.Context,
	dir string,
	name string,
	args ...string,
) (string, error) {
	recorder.invocations = append(recorder.invocations, invocation{name: name, args: args})
	return recorder.pushOutput, recorder.pushErr
}

func newTestPipeline(
	t *testing.T,
	workDir string,
	includeSymbols bool,
	recorder *toolRecorder,
) *dotnet.Pipeline {
	return dotnet.NewPipeline(
		logr.Discard(),
		workDir,
		"https://api.nuget.org",
		"secret",
		includeSymbols,
		dotnet.WithRunner{
			Run:     recorder.run,
			Capture: recorder.capture,
		},
	)
}

func writeArtifact(t *testing.T, dir string, name string) string {
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte("pkg"), 0644)
	assert.NilError(t, err)
	return path
}

func TestPipeline_Clean(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "Stale.1.0.0.nupkg")
	writeArtifact(t, dir, "Stale.1.0.0.snupkg")
	keep := writeArtifact(t, dir, "notes.txt")

	pipeline := newTestPipeline(t, dir, false, &toolRecorder{})
	err := pipeline.Clean()
	assert.NilError(t, err)

	entries, err := os.ReadDir(dir)
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 1)
	assert.Equal(t, filepath.Join(dir, entries[0].Name()), keep)
}

func TestPipeline_BuildPack(t *testing.T) {
	dir := t.TempDir()
	recorder := &toolRecorder{}
	pipeline := newTestPipeline(t, dir, false, recorder)

	err := pipeline.BuildPack(context.Background(), manifest.Project{
		Path:        "src/MyLib/MyLib.csproj",
		PackageName: "MyLib",
		Version:     "1.2.0",
	}, "")
	assert.NilError(t, err)

	assert.Equal(t, len(recorder.invocations), 2)
	assert.DeepEqual(
		t,
		recorder.invocations[0].args,
		[]string{"build", "-c", "Release", "src/MyLib/MyLib.csproj"},
	)
	assert.DeepEqual(
		t,
		recorder.invocations[1].args,
		[]string{"pack", "-c", "Release", "src/MyLib/MyLib.csproj", "--no-build", "-o", dir},
	)
}

func TestPipeline_BuildPack_SymbolsAndSuffix(t *testing.T) {
	dir := t.TempDir()
	recorder := &toolRecorder{}
	pipeline := newTestPipeline(t, dir, true, recorder)

	err := pipeline.BuildPack(context.Background(), manifest.Project{
		Path:        "MyLib.csproj",
		PackageName: "MyLib",
		Version:     "2.0.0",
	}, "pre-240305-abc1234")
	assert.NilError(t, err)

	packArgs := recorder.invocations[1].args
	assert.DeepEqual(t, packArgs, []string{
		"pack", "-c", "Release", "MyLib.csproj", "--no-build", "-o", dir,
		"--include-symbols", "-p:SymbolPackageFormat=snupkg",
		"--version-suffix", "pre-240305-abc1234",
	})
}

func TestPipeline_BuildPack_ToolFailure(t *testing.T) {
	dir := t.TempDir()
	recorder := &toolRecorder{runErr: errors.New("exit status 1")}
	pipeline := newTestPipeline(t, dir, false, recorder)

	err := pipeline.BuildPack(context.Background(), manifest.Project{
		Path:        "MyLib.csproj",
		PackageName: "MyLib",
		Version:     "1.2.0",
	}, "")
	assert.Assert(t, errors.Is(err, dotnet.ErrToolFailed))
	assert.ErrorContains(t, err, "MyLib")
	assert.ErrorContains(t, err, "1.2.0")
}

func TestPipeline_Push(t *testing.T) {
	dir := t.TempDir()
	artifact := writeArtifact(t, dir, "MyLib.1.2.0.nupkg")

	recorder := &toolRecorder{pushOutput: "Pushing MyLib.1.2.0.nupkg...\nYour package was pushed."}
	pipeline := newTestPipeline(t, dir, false, recorder)

	err := pipeline.Push(context.Background())
	assert.NilError(t, err)

	assert.Equal(t, len(recorder.invocations), 1)
	pushArgs := recorder.invocations[0].args
	assert.Equal(t, pushArgs[0], "nuget")
	assert.Equal(t, pushArgs[1], "push")
	assert.Equal(t, pushArgs[2], artifact)
	assert.Assert(t, strings.Contains(strings.Join(pushArgs, " "), "--skip-duplicate"))
	assert.Assert(t, strings.Contains(strings.Join(pushArgs, " "), "-n"))
	assert.Assert(
		t,
		strings.Contains(strings.Join(pushArgs, " "), "https://api.nuget.org/v3/index.json"),
	)
}

func TestPipeline_Push_SymbolsKeepsSymbolPackages(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "MyLib.1.2.0.nupkg")
	writeArtifact(t, dir, "MyLib.1.2.0.snupkg")

	recorder := &toolRecorder{pushOutput: "Your package was pushed."}
	pipeline := newTestPipeline(t, dir, true, recorder)

	err := pipeline.Push(context.Background())
	assert.NilError(t, err)

	pushArgs := recorder.invocations[0].args
	joined := strings.Join(pushArgs, " ")
	assert.Assert(t, strings.Contains(joined, ".snupkg"))
	assert.Assert(t, !strings.Contains(joined, " -n"))
}

func TestPipeline_Push_ErrorLine(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "MyLib.1.2.0.nupkg")

	recorder := &toolRecorder{
		pushOutput: "Pushing MyLib.1.2.0.nupkg...\nerror: 409 conflict\nmore output",
	}
	pipeline := newTestPipeline(t, dir, false, recorder)

	err := pipeline.Push(context.Background())
	assert.Assert(t, errors.Is(err, dotnet.ErrPushRejected))
	assert.ErrorContains(t, err, "error: 409 conflict")
	assert.Assert(t, !strings.Contains(err.Error(), "more output"))
}

func TestPipeline_Push_NoArtifacts(t *testing.T) {
	pipeline := newTestPipeline(t, t.TempDir(), false, &toolRecorder{})

	err := pipeline.Push(context.Background())
	assert.Assert(t, errors.Is(err, dotnet.ErrNoArtifacts))
}
