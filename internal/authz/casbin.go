// Package authz decides which file actions a user may take, by their
// relation to the file.
package authz

import (
	"fmt"
	"strings"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"store-it/internal/domain/entities"
)

// Relations between a user and a file.
const (
	RelationOwner  = "owner"
	RelationShared = "shared"
	RelationNone   = "none"
)

// File actions.
const (
	ActionView     = "view"
	ActionDownload = "download"
	ActionRename   = "rename"
	ActionShare    = "share"
	ActionDelete   = "delete"
	ActionActivity = "activity"
)

const modelText = `
[request_definition]
r = sub, act

[policy_definition]
p = sub, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.act == p.act
`

var defaultPolicies = [][]string{
	{RelationOwner, ActionView},
	{RelationOwner, ActionDownload},
	{RelationOwner, ActionRename},
	{RelationOwner, ActionShare},
	{RelationOwner, ActionDelete},
	{RelationOwner, ActionActivity},
	{RelationShared, ActionView},
	{RelationShared, ActionDownload},
}

// Authorizer wraps a casbin enforcer over relation/action policies.
type Authorizer struct {
	mu sync.RWMutex
	e  *casbin.Enforcer
}

// New builds the built-in policy set.
func New() (*Authorizer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("casbin model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("casbin enforcer: %w", err)
	}
	if _, err := e.AddPolicies(defaultPolicies); err != nil {
		return nil, fmt.Errorf("casbin policies: %w", err)
	}
	return &Authorizer{e: e}, nil
}

// Relation classifies user against file. Ownership wins over sharing.
func Relation(user *entities.User, file *entities.File) string {
	if user == nil || file == nil {
		return RelationNone
	}
	if user.ID != "" && file.Owner.ID == user.ID {
		return RelationOwner
	}
	if user.Email != "" && file.SharedWith(strings.ToLower(user.Email)) {
		return RelationShared
	}
	return RelationNone
}

// Can reports whether user may perform action on file.
func (a *Authorizer) Can(user *entities.User, file *entities.File, action string) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.e.Enforce(Relation(user, file), action)
}
