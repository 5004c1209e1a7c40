// Package authz decides which roles may call which API endpoints. Rules are
// expressed as a Casbin RBAC model with keyMatch2 path patterns.
package authz

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/justestif/go-music-platform/internal/db"
)

// APIPrefix is the path prefix that role rules apply to. Paths outside it only
// require an authenticated identity.
const APIPrefix = "/api/"

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Policy is a role based access decision function.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy loads the embedded model and rules.
func NewPolicy() (*Policy, error) {
	return NewPolicyFromStrings(embeddedModel, embeddedPolicy)
}

// NewPolicyFromFile loads rules from a CSV file on disk, evaluated with the
// embedded model.
func NewPolicyFromFile(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading policy file: %w", err)
	}
	return NewPolicyFromStrings(embeddedModel, string(data))
}

// NewPolicyFromStrings builds a Policy from a Casbin model and CSV rules.
func NewPolicyFromStrings(modelText, policyText string) (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("loading casbin model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("creating casbin enforcer: %w", err)
	}
	if err := loadRules(enforcer, policyText); err != nil {
		return nil, err
	}
	return &Policy{enforcer: enforcer}, nil
}

// loadRules adds "p" and "g" lines from CSV text. Blank lines and # comments
// are skipped.
func loadRules(enforcer *casbin.SyncedEnforcer, text string) error {
	for n, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := enforcer.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("adding policy on line %d: %w", n+1, err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := enforcer.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("adding role on line %d: %w", n+1, err)
			}
		default:
			return fmt.Errorf("malformed policy line %d: %q", n+1, line)
		}
	}
	return nil
}

// Allow reports whether role may call method on path. The caller must already
// have authenticated the request. Trailing slashes are ignored so that
// /api/artists/ is judged like /api/artists, matching how the router serves it.
func (p *Policy) Allow(role db.Role, path, method string) (bool, error) {
	if !strings.HasPrefix(path, APIPrefix) {
		return true, nil
	}
	if !role.Valid() {
		return false, nil
	}
	if trimmed := strings.TrimRight(path, "/"); len(trimmed) >= len(APIPrefix) {
		path = trimmed
	}
	ok, err := p.enforcer.Enforce(string(role), path, strings.ToUpper(method))
	if err != nil {
		return false, fmt.Errorf("enforcing policy: %w", err)
	}
	return ok, nil
}
