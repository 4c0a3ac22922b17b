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

package gittest

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type LocalGitRepository struct {
	Worktree  *git.Worktree
	Directory string
}

func (r *LocalGitRepository) CommitFile(file string, message string) (string, error) {
	worktree := r.Worktree
	if _, err := worktree.Add(file); err != nil {
		return "", err
	}
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "John Doe",
			Email: "john@doe.org",
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", err
	}
	return hash.String(), nil
}

func (r *LocalGitRepository) CommitNewFile(file string, message string) (string, error) {
	if err := os.WriteFile(filepath.Join(r.Directory, file), []byte{}, 0664); err != nil {
		return "", err
	}
	return r.CommitFile(file, message)
}

// InitGitRepository initializes a repository with a single commit in dir.
func InitGitRepository(dir string) (*LocalGitRepository, error) {
	r, err := git.PlainInit(dir, false)
	if err != nil {
		return nil, err
	}
	worktree, err := r.Worktree()
	if err != nil {
		return nil, err
	}
	localRepository := &LocalGitRepository{
		Worktree:  worktree,
		Directory: dir,
	}
	if _, err := localRepository.CommitNewFile("first", "first commit"); err != nil {
		return nil, err
	}

	return localRepository, nil
}
