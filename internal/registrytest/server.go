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

package registrytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// NewRegistry starts a flat-container registry double serving the given
// versions per package name. Unknown packages answer 404.
func NewRegistry(t *testing.T, versionsByPackage map[string][]string) *httptest.Server {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			packageName, ok := parseIndexPath(r.URL.Path)
			if !ok {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			versions, found := versionsByPackage[packageName]
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			err := json.NewEncoder(w).Encode(map[string][]string{
				"versions": versions,
			})
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
			}
		}),
	)
	t.Cleanup(server.Close)
	return server
}

// NewBrokenRegistry starts a registry double answering every request with
// the given status and body, for failure-path tests.
func NewBrokenRegistry(t *testing.T, status int, body string) *httptest.Server {
	server := httptest.NewServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}),
	)
	t.Cleanup(server.Close)
	return server
}

func parseIndexPath(path string) (string, bool) {
	trimmed, found := strings.CutPrefix(path, "/v3-flatcontainer/")
	if !found {
		return "", false
	}
	packageName, found := strings.CutSuffix(trimmed, "/index.json")
	if !found {
		return "", false
	}
	return packageName, true
}
