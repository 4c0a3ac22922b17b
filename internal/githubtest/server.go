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

package githubtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gotest.tools/v3/assert"
)

// TagObject records a created annotated tag object.
type TagObject struct {
	Tag     string `json:"tag"`
	Message string `json:"message"`
	Object  string `json:"object"`
	Type    string `json:"type"`
}

// Ref records a created git reference.
type Ref struct {
	Ref string `json:"ref"`
	SHA string `json:"sha"`
}

// Provider is a GitHub API double covering the tag listing and tag/ref
// creation endpoints.
type Provider struct {
	Client *http.Client

	CreatedTagObjects []TagObject
	CreatedRefs       []Ref
}

// enforceHostRoundTripper rewrites all requests with the given `Host`.
type enforceHostRoundTripper struct {
	Host                 string
	UpstreamRoundTripper http.RoundTripper
}

func (efrt *enforceHostRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	splitHost := strings.Split(efrt.Host, "://")
	r.URL.Scheme = splitHost[0]
	r.URL.Host = splitHost[1]

	return efrt.UpstreamRoundTripper.RoundTrip(r)
}

// MockProvider starts a GitHub API double for owner/repo whose tag listing
// returns existingTags. The returned client rewrites every request to the
// test server, so it can be handed to code expecting the real API host.
func MockProvider(
	t *testing.T,
	owner string,
	repo string,
	existingTags []string,
) *Provider {
	provider := &Provider{}
	repoPath := fmt.Sprintf("/repos/%s/%s", owner, repo)

	server := httptest.NewTLSServer(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header["Authorization"]
			assert.Assert(t, len(authHeader) == 1)
			assert.Assert(t, strings.HasPrefix(authHeader[0], "Bearer "))
			assert.Assert(t, authHeader[0] != "Bearer ")

			switch {
			case r.Method == http.MethodGet && r.URL.Path == repoPath+"/tags":
				tags := make([]map[string]string, 0, len(existingTags))
				for _, tag := range existingTags {
					tags = append(tags, map[string]string{"name": tag})
				}
				writeJSON(t, w, tags)

			case r.Method == http.MethodPost && r.URL.Path == repoPath+"/git/tags":
				var tagObject TagObject
				decodeBody(t, r.Body, &tagObject)
				provider.CreatedTagObjects = append(provider.CreatedTagObjects, tagObject)
				w.WriteHeader(http.StatusCreated)
				writeJSON(t, w, map[string]any{
					"tag":     tagObject.Tag,
					"sha":     tagObjectSHA(tagObject.Tag),
					"message": tagObject.Message,
					"object": map[string]string{
						"sha":  tagObject.Object,
						"type": tagObject.Type,
					},
				})

			case r.Method == http.MethodPost && r.URL.Path == repoPath+"/git/refs":
				var ref Ref
				decodeBody(t, r.Body, &ref)
				provider.CreatedRefs = append(provider.CreatedRefs, ref)
				w.WriteHeader(http.StatusCreated)
				writeJSON(t, w, map[string]any{
					"ref": ref.Ref,
					"object": map[string]string{
						"sha": ref.SHA,
					},
				})

			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}),
	)
	t.Cleanup(server.Close)

	client := server.Client()
	client.Transport = &enforceHostRoundTripper{
		Host:                 server.URL,
		UpstreamRoundTripper: client.Transport,
	}
	provider.Client = client

	return provider
}

// tagObjectSHA derives a deterministic fake object sha for a created tag.
func tagObjectSHA(tag string) string {
	return fmt.Sprintf("%040x", []byte(tag))[:40]
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	err := json.NewEncoder(w).Encode(payload)
	assert.NilError(t, err)
}

func decodeBody(t *testing.T, body io.Reader, target any) {
	bodyBytes, err := io.ReadAll(body)
	assert.NilError(t, err)
	err = json.Unmarshal(bodyBytes, target)
	assert.NilError(t, err)
}
