// Package resolver turns free-text worktree requests into creation plans.
// It only reads repository state; nothing here fetches or writes.
package resolver

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/nicobailon/gw/internal/git"
	"github.com/sirupsen/logrus"
)

type Source int

const (
	ExistingLocal Source = iota
	ExistingRemote
	New
	PullRequest
)

func (s Source) String() string {
	switch s {
	case ExistingLocal:
		return "local"
	case ExistingRemote:
		return "remote"
	case New:
		return "new"
	case PullRequest:
		return "pull-request"
	}
	return "unknown"
}

// Plan describes the worktree to create.
type Plan struct {
	Input  string
	Source Source
	Branch string
	// Remote is set for ExistingRemote and PullRequest.
	Remote string
	PR     int
	// Base is the start point for New; empty means HEAD.
	Base string
	// Track is true when the plan needs a fetch and a tracking setup.
	Track bool
	Path  string
}

type Options struct {
	Base string
	// Remote pins the remote and skips the ambiguity check.
	Remote string
	// WorktreesDir is joined with the sanitized branch. Path overrides it.
	WorktreesDir string
	Path         string
	// Logger receives warnings about remotes that could not be queried.
	Logger logrus.FieldLogger
}

// Inspector is the read-only view of the repository the resolver needs.
type Inspector interface {
	LocalBranchExists(name string) (bool, error)
	Remotes() ([]git.Remote, error)
	RemoteBranchExists(remote, branch string) (bool, error)
}

var ErrEmptyInput = errors.New("empty worktree request")

// AmbiguousRemoteError lists remotes that all satisfy a request.
type AmbiguousRemoteError struct {
	Branch  string
	Remotes []string
}

func (e *AmbiguousRemoteError) Error() string {
	return fmt.Sprintf("%s is available on several remotes (%s); choose one", e.Branch, strings.Join(e.Remotes, ", "))
}

// ErrNoRemote is returned for pull requests in repositories without remotes.
var ErrNoRemote = errors.New("no remote configured to fetch the pull request from")

var prURL = regexp.MustCompile(`^https?://[^/\s]+/([^/\s]+)/([^/\s]+)/pull/(\d+)(?:[/?#].*)?$`)

// PullRequestRef identifies a pull request parsed from a URL.
type PullRequestRef struct {
	Owner  string
	Repo   string
	Number int
}

func ParsePullRequestURL(s string) (PullRequestRef, bool) {
	m := prURL.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return PullRequestRef{}, false
	}
	n, err := strconv.Atoi(m[3])
	if err != nil || n <= 0 {
		return PullRequestRef{}, false
	}
	return PullRequestRef{Owner: m[1], Repo: strings.TrimSuffix(m[2], ".git"), Number: n}, true
}

// Resolve classifies input. Local branches win without any remote lookup.
func Resolve(input string, opts Options, ins Inspector) (Plan, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Plan{}, ErrEmptyInput
	}
	plan := Plan{Input: input}

	if pr, ok := ParsePullRequestURL(input); ok {
		remote, err := pullRequestRemote(pr, opts.Remote, ins)
		if err != nil {
			return Plan{}, err
		}
		plan.Source = PullRequest
		plan.PR = pr.Number
		plan.Branch = fmt.Sprintf("pr/%d", pr.Number)
		plan.Remote = remote
		plan.Track = true
		plan.Path = destination(plan.Branch, opts)
		return plan, nil
	}

	plan.Branch = input
	plan.Path = destination(input, opts)

	local, err := ins.LocalBranchExists(input)
	if err != nil {
		return Plan{}, err
	}
	if local {
		plan.Source = ExistingLocal
		return plan, nil
	}

	remote, found, err := branchRemote(input, opts.Remote, ins, opts.Logger)
	if err != nil {
		return Plan{}, err
	}
	if found {
		plan.Source = ExistingRemote
		plan.Remote = remote
		plan.Track = true
		return plan, nil
	}

	plan.Source = New
	plan.Base = opts.Base
	return plan, nil
}

// branchRemote finds the remote holding branch. An unreachable remote counts
// as not having it, unless it is the pinned one.
func branchRemote(branch, pinned string, ins Inspector, log logrus.FieldLogger) (string, bool, error) {
	if pinned != "" {
		ok, err := ins.RemoteBranchExists(pinned, branch)
		return pinned, ok, err
	}
	remotes, err := ins.Remotes()
	if err != nil {
		return "", false, err
	}
	var hits []string
	for _, r := range remotes {
		ok, err := ins.RemoteBranchExists(r.Name, branch)
		if err != nil {
			if log != nil {
				log.WithError(err).WithFields(logrus.Fields{"remote": r.Name, "branch": branch}).Warn("skipping unreachable remote")
			}
			continue
		}
		if ok {
			hits = append(hits, r.Name)
		}
	}
	switch len(hits) {
	case 0:
		return "", false, nil
	case 1:
		return hits[0], true, nil
	}
	return "", false, &AmbiguousRemoteError{Branch: branch, Remotes: hits}
}

func pullRequestRemote(pr PullRequestRef, pinned string, ins Inspector) (string, error) {
	if pinned != "" {
		return pinned, nil
	}
	remotes, err := ins.Remotes()
	if err != nil {
		return "", err
	}
	switch len(remotes) {
	case 0:
		return "", ErrNoRemote
	case 1:
		return remotes[0].Name, nil
	}
	slug := strings.ToLower(pr.Owner + "/" + pr.Repo)
	var hits, names []string
	for _, r := range remotes {
		names = append(names, r.Name)
		for _, u := range r.URLs {
			if remoteMatches(u, slug) {
				hits = append(hits, r.Name)
				break
			}
		}
	}
	if len(hits) == 1 {
		return hits[0], nil
	}
	if len(hits) == 0 {
		hits = names
	}
	return "", &AmbiguousRemoteError{Branch: fmt.Sprintf("pr/%d", pr.Number), Remotes: hits}
}

func remoteMatches(url, slug string) bool {
	u := strings.ToLower(strings.TrimSuffix(strings.TrimSuffix(url, "/"), ".git"))
	return strings.HasSuffix(u, "/"+slug) || strings.HasSuffix(u, ":"+slug)
}

func destination(branch string, opts Options) string {
	if opts.Path != "" {
		return opts.Path
	}
	if opts.WorktreesDir == "" {
		return ""
	}
	return filepath.Join(opts.WorktreesDir, Sanitize(branch))
}
