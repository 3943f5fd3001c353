// SPDX-FileCopyrightText: Copyright The utf8conv Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package version // import "utf8conv.app/internal/version"

import "strings"

const (
	devVersion = "Development Version"
	repoURL    = "https://github.com/utf8conv/utf8conv"
	unknown    = "Unknown (built outside VCS)"
)

// Variables populated at build time when using LD_FLAGS.
var (
	Commit    = unknown
	BuildDate = unknown
	Version   = devVersion
)

// ReleaseURL returns a link to the release page of version, or to the diff
// between the last tag and the commit for "git describe" like versions
// (1.2.0-3-gabcdef0). It returns empty string for development builds.
func ReleaseURL(version string) string {
	if version == devVersion {
		return ""
	}

	tag, commits, found := strings.Cut(version, "-")
	if !found {
		return repoURL + "/releases/tag/v" + tag
	}

	_, hash, found := strings.Cut(commits, "-g")
	if !found {
		return ""
	}
	return repoURL + "/compare/v" + tag + "..." + hash
}

// CommitURL returns a link to commit, or empty string if it's unknown.
func CommitURL(commit string) string {
	if commit == "" || commit == unknown {
		return ""
	}
	return repoURL + "/commit/" + commit
}
