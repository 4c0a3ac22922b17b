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

package vcs_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/nupush/nupush/internal/githubtest"
	"github.com/nupush/nupush/pkg/vcs"
	"gotest.tools/v3/assert"
)

func TestGithubTagger_Tag(t *testing.T) {
	provider := githubtest.MockProvider(t, "owner", "repo", []string{"v1.0.0", "v1.1.0"})
	tagger, err := vcs.NewGithubTagger(logr.Discard(), provider.Client, "token", "owner/repo")
	assert.NilError(t, err)

	err = tagger.Tag(context.Background(), "v2.0.0", "abc1234567deadbeef")
	assert.NilError(t, err)

	assert.Equal(t, len(provider.CreatedTagObjects), 1)
	tagObject := provider.CreatedTagObjects[0]
	assert.Equal(t, tagObject.Tag, "v2.0.0")
	assert.Equal(t, tagObject.Object, "abc1234567deadbeef")
	assert.Equal(t, tagObject.Type, "commit")
	assert.Assert(t, tagObject.Message != "")

	assert.Equal(t, len(provider.CreatedRefs), 1)
	assert.Equal(t, provider.CreatedRefs[0].Ref, "refs/tags/v2.0.0")
}

func TestGithubTagger_Tag_Duplicate(t *testing.T) {
	provider := githubtest.MockProvider(t, "owner", "repo", []string{"v2.0.0"})
	tagger, err := vcs.NewGithubTagger(logr.Discard(), provider.Client, "token", "owner/repo")
	assert.NilError(t, err)

	err = tagger.Tag(context.Background(), "v2.0.0", "abc1234567deadbeef")
	assert.Assert(t, errors.Is(err, vcs.ErrTagAlreadyExists))

	// nothing may be created when the tag name collides
	assert.Equal(t, len(provider.CreatedTagObjects), 0)
	assert.Equal(t, len(provider.CreatedRefs), 0)
}

func TestNewGithubTagger_InvalidRepoID(t *testing.T) {
	_, err := vcs.NewGithubTagger(logr.Discard(), nil, "token", "not-a-repo-id")
	assert.Assert(t, errors.Is(err, vcs.ErrRepositoryID))
}
