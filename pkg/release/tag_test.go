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

package release_test

import (
	"testing"
	"time"

	"github.com/nupush/nupush/pkg/release"
	"gotest.tools/v3/assert"
)

type suffixTestCase struct {
	name      string
	template  string
	now       time.Time
	commitSHA string
	want      string
}

func TestComputeSuffix(t *testing.T) {
	testCases := []suffixTestCase{
		{
			name:      "Date-And-Hash",
			template:  "pre-{yyMMdd}-*",
			now:       time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
			commitSHA: "abc1234567",
			want:      "pre-240305-abc1234",
		},
		{
			name:      "Passthrough",
			template:  "beta",
			now:       time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
			commitSHA: "abc1234567",
			want:      "beta",
		},
		{
			name:      "Empty-Template",
			template:  "",
			now:       time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC),
			commitSHA: "abc1234567",
			want:      "",
		},
		{
			name:      "Full-Date-Tokens",
			template:  "{yyyyMMddHHmm}",
			now:       time.Date(2026, 8, 23, 14, 7, 9, 0, time.UTC),
			commitSHA: "abc1234567",
			want:      "202608231407",
		},
		{
			name:      "Hash-Only",
			template:  "rc.*",
			now:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			commitSHA: "deadbeefcafe",
			want:      "rc.deadbee",
		},
		{
			name:      "Short-Hash-Untouched",
			template:  "*",
			now:       time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
			commitSHA: "abc",
			want:      "abc",
		},
		{
			name:      "Non-UTC-Input-Rendered-In-UTC",
			template:  "{ddHH}",
			now:       time.Date(2024, 3, 5, 23, 0, 0, 0, time.FixedZone("plus2", 2*3600)),
			commitSHA: "abc1234567",
			want:      "0521",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := release.ComputeSuffix(tc.template, tc.now, tc.commitSHA)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestComputeSuffix_Deterministic(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)
	first := release.ComputeSuffix("pre-{yyMMdd}-*", now, "abc1234567")
	second := release.ComputeSuffix("pre-{yyMMdd}-*", now, "abc1234567")
	assert.Equal(t, first, second)
}

func TestBuildTagName(t *testing.T) {
	assert.Equal(t, release.BuildTagName("v*", "2.0.0", ""), "v2.0.0")
	assert.Equal(
		t,
		release.BuildTagName("v*", "2.0.0", "pre-240305-abc1234"),
		"v2.0.0pre-240305-abc1234",
	)
	assert.Equal(t, release.BuildTagName("release-*", "1.0.0", ""), "release-1.0.0")
}

func TestParseSuffixRules(t *testing.T) {
	rules := release.ParseSuffixRules("develop=pre-{yyMMdd}-*, feature=alpha-*,broken")
	assert.DeepEqual(t, rules, []release.SuffixRule{
		{BranchPattern: "develop", Template: "pre-{yyMMdd}-*"},
		{BranchPattern: "feature", Template: "alpha-*"},
	})
}

func TestParseSuffixRules_Empty(t *testing.T) {
	assert.Equal(t, len(release.ParseSuffixRules("")), 0)
}

func TestSuffixTemplateFor(t *testing.T) {
	rules := release.ParseSuffixRules("develop=pre-*,feature=alpha-*")

	assert.Equal(t, release.SuffixTemplateFor(rules, "develop"), "pre-*")
	assert.Equal(t, release.SuffixTemplateFor(rules, "feature/login"), "alpha-*")
	assert.Equal(t, release.SuffixTemplateFor(rules, "main"), "")
}
