// Package authz decides whether a user may act on an owned resource.
//
// Resources form a closed set: only the variants declared here satisfy
// Resource. Every variant shares one rule for View, Edit and Delete: the
// caller must own the resource. Tasks are owned through their project.
package authz

import (
	"errors"
	"strconv"

	"my-ankode/internal/domain/entity"
	"my-ankode/internal/observability/metrics"
)

// ErrUnsupportedResource is returned by Authorize when no rule covers the
// resource. Callers treat it as a wiring error.
var ErrUnsupportedResource = errors.New("authz: unsupported resource")

// Action is an operation on a resource.
type Action int

const (
	View Action = iota + 1
	Edit
	Delete
)

func (a Action) String() string {
	switch a {
	case View:
		return "view"
	case Edit:
		return "edit"
	case Delete:
		return "delete"
	default:
		return "unknown"
	}
}

func (a Action) valid() bool {
	return a == View || a == Edit || a == Delete
}

// Decision is the policy outcome. Abstain means no rule applies.
type Decision int

const (
	Abstain Decision = iota
	Deny
	Grant
)

func (d Decision) String() string {
	switch d {
	case Grant:
		return "grant"
	case Deny:
		return "deny"
	default:
		return "abstain"
	}
}

// Resource is implemented only by the variants in this package.
type Resource interface {
	isResource()
}

// ProjectResource wraps a project.
type ProjectResource struct{ Project *entity.Project }

// TaskResource wraps a task and the project it belongs to, loaded by the caller.
type TaskResource struct {
	Task    *entity.Task
	Project *entity.Project
}

// CompetenceResource wraps a competence.
type CompetenceResource struct{ Competence *entity.Competence }

// SnippetResource wraps a snippet from the document store.
type SnippetResource struct{ Snippet *entity.Snippet }

func (ProjectResource) isResource()    {}
func (TaskResource) isResource()       {}
func (CompetenceResource) isResource() {}
func (SnippetResource) isResource()    {}

// Policy is stateless and safe for concurrent use.
type Policy struct{}

// NewPolicy returns the ownership policy.
func NewPolicy() *Policy { return &Policy{} }

// Decide returns Grant when user owns r, Deny when they do not (or when
// there is no user), and Abstain when r or action is not covered.
func (p *Policy) Decide(action Action, r Resource, user *entity.User) Decision {
	d := p.decide(action, r, user)
	metrics.RecordAuthzDecision(resourceKind(r), d.String())
	return d
}

// Authorize is Decide collapsed to a boolean. Abstain yields ErrUnsupportedResource.
func (p *Policy) Authorize(action Action, r Resource, user *entity.User) (bool, error) {
	switch p.Decide(action, r, user) {
	case Grant:
		return true, nil
	case Deny:
		return false, nil
	default:
		return false, ErrUnsupportedResource
	}
}

// Require returns nil on Grant, entity.ErrForbidden on Deny, and
// ErrUnsupportedResource on Abstain.
func (p *Policy) Require(action Action, r Resource, user *entity.User) error {
	ok, err := p.Authorize(action, r, user)
	if err != nil {
		return err
	}
	if !ok {
		return entity.ErrForbidden
	}
	return nil
}

func (p *Policy) decide(action Action, r Resource, user *entity.User) Decision {
	if user == nil {
		return Deny
	}
	if !action.valid() {
		return Abstain
	}

	switch res := r.(type) {
	case ProjectResource:
		if res.Project == nil {
			return Abstain
		}
		return grantIf(res.Project.OwnerID == user.ID)
	case *ProjectResource:
		if res == nil {
			return Abstain
		}
		return p.decide(action, *res, user)
	case TaskResource:
		if res.Task == nil {
			return Abstain
		}
		parent := res.Project
		return grantIf(parent != nil && parent.ID == res.Task.ProjectID && parent.OwnerID == user.ID)
	case *TaskResource:
		if res == nil {
			return Abstain
		}
		return p.decide(action, *res, user)
	case CompetenceResource:
		if res.Competence == nil {
			return Abstain
		}
		return grantIf(res.Competence.OwnerID == user.ID)
	case *CompetenceResource:
		if res == nil {
			return Abstain
		}
		return p.decide(action, *res, user)
	case SnippetResource:
		if res.Snippet == nil {
			return Abstain
		}
		return grantIf(res.Snippet.OwnerID == strconv.FormatInt(user.ID, 10))
	case *SnippetResource:
		if res == nil {
			return Abstain
		}
		return p.decide(action, *res, user)
	default:
		return Abstain
	}
}

func grantIf(ok bool) Decision {
	if ok {
		return Grant
	}
	return Deny
}

func resourceKind(r Resource) string {
	switch r.(type) {
	case ProjectResource, *ProjectResource:
		return "project"
	case TaskResource, *TaskResource:
		return "task"
	case CompetenceResource, *CompetenceResource:
		return "competence"
	case SnippetResource, *SnippetResource:
		return "snippet"
	case nil:
		return "none"
	default:
		return "unknown"
	}
}
