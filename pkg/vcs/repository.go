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
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
)

var (
	ErrNoBranch = errors.New("Head does not point at a branch")
)

// Repository provides read access to the local checkout that triggered the
// release run.
type Repository struct {
	gitRepository *git.Repository
}

func OpenRepository(path string) (*Repository, error) {
	gitRepository, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	return &Repository{
		gitRepository: gitRepository,
	}, nil
}

// Head returns the current branch name and the commit hash it points at.
func (repository *Repository) Head() (branch string, sha string, err error) {
	ref, err := repository.gitRepository.Head()
	if err != nil {
		return "", "", err
	}
	if !ref.Name().IsBranch() {
		return "", ref.Hash().String(), fmt.Errorf("%w: %s", ErrNoBranch, ref.Name())
	}
	return ref.Name().Short(), ref.Hash().String(), nil
}
