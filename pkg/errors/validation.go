package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// repoSegmentRegex matches a single owner or repository segment on a
// source-control host.
var repoSegmentRegex = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ValidateRepoName validates a repository key of the form "owner/name".
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - Exactly one "/" separating two non-empty segments
//   - No control characters
//   - Segments of letters, digits, '.', '_' and '-' only, and neither "." nor ".."
func ValidateRepoName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "repository name cannot be empty")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "repository name contains invalid control characters")
		}
	}

	owner, repo, ok := strings.Cut(name, "/")
	if !ok || strings.Contains(repo, "/") {
		return New(ErrCodeInvalidInput, "repository name must be owner/name: %q", name)
	}

	for _, seg := range []string{owner, repo} {
		if seg == "." || seg == ".." || !repoSegmentRegex.MatchString(seg) {
			return New(ErrCodeInvalidInput, "invalid repository name: %q", name)
		}
	}

	return nil
}

// ValidateOutputDir validates a directory used for writing run artifacts.
// Only emptiness and control characters are rejected; the directory is
// created on demand.
func ValidateOutputDir(dir string) error {
	if strings.TrimSpace(dir) == "" {
		return New(ErrCodeInvalidInput, "output directory cannot be empty")
	}
	for _, r := range dir {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output directory contains invalid characters")
		}
	}
	return nil
}
