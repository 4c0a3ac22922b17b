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

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-logr/logr"
)

var (
	// ErrUnexpectedResponse is returned when the registry answers with
	// anything other than a version index or a not-found status.
	ErrUnexpectedResponse = errors.New("Unexpected registry response")
)

// Client queries a NuGet registry's v3 flat-container endpoint for the
// versions known for a package. A not-found answer means the package was
// never published and yields an empty version set.
type Client struct {
	Log logr.Logger

	source     string
	httpClient *http.Client
}

func NewClient(log logr.Logger, source string, httpClient *http.Client) *Client {
	return &Client{
		Log:        log,
		source:     strings.TrimSuffix(source, "/"),
		httpClient: httpClient,
	}
}

type versionIndex struct {
	Versions []string `json:"versions"`
}

// Versions returns the version set the registry knows for packageName.
func (client *Client) Versions(ctx context.Context, packageName string) ([]string, error) {
	url := fmt.Sprintf(
		"%s/v3-flatcontainer/%s/index.json",
		client.source,
		strings.ToLower(packageName),
	)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: package %s: %s", ErrUnexpectedResponse, packageName, err)
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: package %s: %s", ErrUnexpectedResponse, packageName, err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusNotFound:
		client.Log.V(1).Info("Package not published yet", "package", packageName)
		return nil, nil
	case http.StatusOK:
		var index versionIndex
		if err := json.NewDecoder(response.Body).Decode(&index); err != nil {
			return nil, fmt.Errorf("%w: package %s: %s", ErrUnexpectedResponse, packageName, err)
		}
		return index.Versions, nil
	default:
		body, _ := io.ReadAll(response.Body)
		return nil, fmt.Errorf(
			"%w: package %s: status %d: %s",
			ErrUnexpectedResponse,
			packageName,
			response.StatusCode,
			body,
		)
	}
}
