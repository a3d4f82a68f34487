package services

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	fileadapter "github.com/casbin/casbin/v2/persist/file-adapter"
	"github.com/sirupsen/logrus"
)

// Resource names a guarded part of the application
type Resource string

const (
	ResourceAssets      Resource = "assets"
	ResourceTransfers   Resource = "transfers"
	ResourceAssignments Resource = "assignments"
	ResourceProfile     Resource = "profile"
	ResourceProfileBase Resource = "profile.base"
	ResourceDashboard   Resource = "dashboard"
)

// Action is what a role wants to do with a resource
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

//go:embed policy/model.conf
var defaultModel string

//go:embed policy/policy.csv
var defaultPolicy string

// Capabilities answers (role, resource, action) questions from a casbin policy
type Capabilities struct {
	enforcer *casbin.Enforcer
	logger   *logrus.Entry
}

// NewCapabilities loads the embedded policy, or the CSV file at policyPath
// when one is configured
func NewCapabilities(policyPath string, logger *logrus.Logger) (*Capabilities, error) {
	m, err := model.NewModelFromString(defaultModel)
	if err != nil {
		return nil, fmt.Errorf("capabilities: invalid model: %w", err)
	}

	var enf *casbin.Enforcer
	if policyPath != "" {
		enf, err = casbin.NewEnforcer(m, fileadapter.NewAdapter(policyPath))
		if err != nil {
			return nil, fmt.Errorf("capabilities: failed to load policy %s: %w", policyPath, err)
		}
	} else {
		enf, err = casbin.NewEnforcer(m)
		if err != nil {
			return nil, fmt.Errorf("capabilities: failed to initialize enforcer: %w", err)
		}
		if err := loadPolicyText(enf, defaultPolicy); err != nil {
			return nil, err
		}
	}

	var entry *logrus.Entry
	if logger != nil {
		entry = logger.WithField("component", "capabilities")
	} else {
		entry = logrus.WithField("component", "capabilities")
	}

	return &Capabilities{enforcer: enf, logger: entry}, nil
}

// loadPolicyText adds "p, ..." and "g, ..." lines to the enforcer
func loadPolicyText(enf *casbin.Enforcer, text string) error {
	var policies, groupings [][]string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		switch fields[0] {
		case "p":
			policies = append(policies, fields[1:])
		case "g":
			groupings = append(groupings, fields[1:])
		default:
			return fmt.Errorf("capabilities: unknown policy type %q", fields[0])
		}
	}

	if len(policies) > 0 {
		if _, err := enf.AddPolicies(policies); err != nil {
			return fmt.Errorf("capabilities: failed to add policies: %w", err)
		}
	}
	if len(groupings) > 0 {
		if _, err := enf.AddGroupingPolicies(groupings); err != nil {
			return fmt.Errorf("capabilities: failed to add role links: %w", err)
		}
	}
	return nil
}

// Can reports whether role may perform action on resource. Evaluation
// errors deny.
func (c *Capabilities) Can(role string, resource Resource, action Action) bool {
	if role == "" {
		return false
	}
	ok, err := c.enforcer.Enforce(role, string(resource), string(action))
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"role":     role,
			"resource": resource,
			"action":   action,
		}).Warn("capability check failed")
		return false
	}
	return ok
}
