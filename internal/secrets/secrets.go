// Package secrets scans tracked repository files for leaked credentials.
package secrets

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Pattern is a named content signature.
type Pattern struct {
	Code string
	Re   *regexp.Regexp
}

// Patterns are checked against the content of every scanned file.
var Patterns = []Pattern{
	{"OPENAI_API_KEY", regexp.MustCompile(`\bsk-[A-Za-z0-9]{20,}\b`)},
	{"GITHUB_TOKEN", regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}\b`)},
	{"PRIVATE_KEY_BLOCK", regexp.MustCompile(`-----BEGIN (?:RSA |EC |OPENSSH )?PRIVATE KEY-----`)},
	{"AWS_ACCESS_KEY_ID", regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`)},
	{"GOOGLE_API_KEY", regexp.MustCompile(`\bAIza[0-9A-Za-z\-_]{20,}\b`)},
}

// BlockedGlobs name files that must never be committed. A glob matches
// either the slash-separated relative path or the base name; * crosses
// directory separators.
var BlockedGlobs = []string{
	".env",
	".env.*",
	"*.pem",
	"*.p12",
	"*.pfx",
	"*.key",
	"*service-account*.json",
	"*credentials*.json",
	".secrets/*",
	"secrets/*",
}

// allowedNames are exempt from BlockedGlobs.
var allowedNames = map[string]bool{".env.example": true}

// SkipPrefixes are path prefixes that are never scanned.
var SkipPrefixes = []string{
	".git/",
	".venv/",
	"venv/",
	"output/",
	"tmp/",
	"__pycache__/",
	".pytest_cache/",
}

var blockedRes = compileGlobs(BlockedGlobs)

// Scanner scans files relative to Root.
type Scanner struct {
	Root string

	git func(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// NewScanner returns a Scanner for the repository at root.
func NewScanner(root string) *Scanner {
	return &Scanner{Root: root, git: runGit}
}

// Open returns a Scanner rooted at the top level of the git work tree
// containing dir. git reports staged paths relative to that top level.
func Open(ctx context.Context, dir string) (*Scanner, error) {
	return openWith(ctx, dir, runGit)
}

func openWith(ctx context.Context, dir string, git func(context.Context, string, ...string) ([]byte, error)) (*Scanner, error) {
	out, err := git(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	root := strings.TrimSpace(string(out))
	if root == "" {
		return nil, fmt.Errorf("no git work tree found for %s", dir)
	}
	return &Scanner{Root: filepath.FromSlash(root), git: git}, nil
}

// Files lists tracked files, or only staged additions and modifications.
func (s *Scanner) Files(ctx context.Context, staged bool) ([]string, error) {
	args := []string{"ls-files"}
	if staged {
		args = []string{"diff", "--cached", "--name-only", "--diff-filter=ACMR"}
	}
	out, err := s.git(ctx, s.Root, args...)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}

// Scan checks the named files and returns sorted, de-duplicated violations
// such as "blocked-file: .env" or "pattern-GITHUB_TOKEN: cmd/main.go".
func (s *Scanner) Scan(files []string) []string {
	seen := make(map[string]bool)
	for _, rel := range files {
		rel = filepath.ToSlash(rel)
		if shouldSkip(rel) {
			continue
		}
		full := filepath.Join(s.Root, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			continue
		}

		if IsBlockedName(rel) {
			seen["blocked-file: "+rel] = true
		}

		data, err := os.ReadFile(full)
		if err != nil || len(data) == 0 {
			continue
		}
		for _, p := range Patterns {
			if p.Re.Match(data) {
				seen[fmt.Sprintf("pattern-%s: %s", p.Code, rel)] = true
			}
		}
	}

	violations := make([]string, 0, len(seen))
	for v := range seen {
		violations = append(violations, v)
	}
	sort.Strings(violations)
	return violations
}

// IsBlockedName reports whether rel names a file that must not be committed.
func IsBlockedName(rel string) bool {
	if allowedNames[rel] {
		return false
	}
	base := path.Base(rel)
	for _, re := range blockedRes {
		if re.MatchString(rel) || re.MatchString(base) {
			return true
		}
	}
	return false
}

func shouldSkip(rel string) bool {
	for _, prefix := range SkipPrefixes {
		if strings.HasPrefix(rel, prefix) {
			return true
		}
	}
	return false
}

// compileGlobs translates shell globs into anchored expressions.
func compileGlobs(globs []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(globs))
	for i, g := range globs {
		var b strings.Builder
		b.WriteString("^")
		for _, r := range g {
			switch r {
			case '*':
				b.WriteString(".*")
			case '?':
				b.WriteString(".")
			default:
				b.WriteString(regexp.QuoteMeta(string(r)))
			}
		}
		b.WriteString("$")
		res[i] = regexp.MustCompile(b.String())
	}
	return res
}

func runGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}
