// Package gitstate answers one question: what source state was a host
// directory in when we looked at it. The answer is used to decide whether a
// cached host binary is still trustworthy and to annotate diagnostics; it is
// never consulted on the fast channel-reuse path.
package gitstate

import (
	"os/exec"
	"strings"
)

// DirtySentinel is returned whenever a directory has uncommitted changes, is
// not a git repository, or git itself is unavailable. All of those states
// mean the same thing to a caller: there is no stable revision to compare
// build artifacts against.
const DirtySentinel = "no-repository-or-dirty-repository-state"

// CommitIdentity returns the current revision hash of the repository rooted
// at dir, or DirtySentinel. It never fails outward; every error condition
// collapses into the sentinel. The git invocations are synchronous and
// blocking, which is acceptable because callers sit on the build path.
func CommitIdentity(dir string) string {
	status := exec.Command("git", "status", "--porcelain")
	status.Dir = dir
	out, err := status.Output()
	if err != nil {
		return DirtySentinel
	}
	if strings.TrimSpace(string(out)) != "" {
		return DirtySentinel
	}

	revParse := exec.Command("git", "rev-parse", "HEAD")
	revParse.Dir = dir
	out, err = revParse.Output()
	if err != nil {
		return DirtySentinel
	}

	rev := strings.TrimSpace(string(out))
	if rev == "" {
		return DirtySentinel
	}
	return rev
}
