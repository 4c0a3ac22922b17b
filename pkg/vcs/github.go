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

package vcs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v62/github"
)

var (
	ErrRepositoryID = errors.New("Unknown repository id")
	// ErrTagAlreadyExists is returned when the computed tag name collides
	// with an existing tag in the repository.
	ErrTagAlreadyExists = errors.New("Tag already exists")
)

// maxExistingTags bounds how many existing tag names are fetched for the
// duplicate check.
const maxExistingTags = 1000

const tagsPerPage = 100

// GithubTagger creates annotated release tags through the GitHub API.
type GithubTagger struct {
	Log logr.Logger

	client *github.Client
	owner  string
	repo   string
}

func NewGithubTagger(
	log logr.Logger,
	httpClient *http.Client,
	token string,
	repoID string,
) (*GithubTagger, error) {
	owner, repo, err := parseGithubRepoID(repoID)
	if err != nil {
		return nil, err
	}
	return &GithubTagger{
		Log:    log,
		client: github.NewClient(httpClient).WithAuthToken(token),
		owner:  owner,
		repo:   repo,
	}, nil
}

// Tag creates an annotated tag object pointing at the given commit and a
// corresponding 'refs/tags/{name}' reference. It fails without creating
// anything when the tag name already exists.
func (tagger *GithubTagger) Tag(ctx context.Context, name string, sha string) error {
	existing, err := tagger.existingTags(ctx)
	if err != nil {
		return err
	}
	if slices.Contains(existing, name) {
		return fmt.Errorf("%w: %s", ErrTagAlreadyExists, name)
	}

	message := fmt.Sprintf("Release %s", name)
	objectType := "commit"
	tag, _, err := tagger.client.Git.CreateTag(ctx, tagger.owner, tagger.repo, &github.Tag{
		Tag:     &name,
		Message: &message,
		Object: &github.GitObject{
			SHA:  &sha,
			Type: &objectType,
		},
	})
	if err != nil {
		return err
	}

	ref := "refs/tags/" + name
	_, _, err = tagger.client.Git.CreateRef(ctx, tagger.owner, tagger.repo, &github.Reference{
		Ref: &ref,
		Object: &github.GitObject{
			SHA: tag.SHA,
		},
	})
	if err != nil {
		return err
	}

	tagger.Log.Info("Created release tag", "tag", name, "commit", sha)
	return nil
}

func (tagger *GithubTagger) existingTags(ctx context.Context) ([]string, error) {
	var names []string
	opts := &github.ListOptions{PerPage: tagsPerPage}
	for {
		tags, response, err := tagger.client.Repositories.ListTags(
			ctx,
			tagger.owner,
			tagger.repo,
			opts,
		)
		if err != nil {
			return nil, err
		}
		for _, tag := range tags {
			names = append(names, tag.GetName())
		}
		if response.NextPage == 0 || len(names) >= maxExistingTags {
			break
		}
		opts.Page = response.NextPage
	}
	if len(names) > maxExistingTags {
		names = names[:maxExistingTags]
	}
	return names, nil
}

func parseGithubRepoID(id string) (owner string, repo string, err error) {
	idSplit := strings.Split(id, "/")
	if len(idSplit) != 2 {
		return "", "", fmt.Errorf(
			"%w: %s doesn't correspond to the owner/repo format",
			ErrRepositoryID,
			id,
		)
	}

	owner = idSplit[0]
	repo = idSplit[1]
	err = nil

	return
}
