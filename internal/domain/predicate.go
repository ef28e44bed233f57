package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// PredicateOperator is a leaf comparison operator.
type PredicateOperator string

const (
	OperatorEquals   PredicateOperator = "equals"
	OperatorContains PredicateOperator = "contains"
)

// Validate checks that the operator is one of the known values.
func (o PredicateOperator) Validate() error {
	switch o {
	case OperatorEquals, OperatorContains:
		return nil
	}
	return fmt.Errorf("invalid predicate operator: %s", o)
}

// PredicateLogic joins composite conditions.
type PredicateLogic string

const (
	LogicAnd PredicateLogic = "AND"
	LogicOr  PredicateLogic = "OR"
)

// Validate checks that the logic is one of the known values.
func (l PredicateLogic) Validate() error {
	switch l {
	case LogicAnd, LogicOr:
		return nil
	}
	return fmt.Errorf("invalid predicate logic: %s", l)
}

// consentAttribute is the reserved attribute name that selects against the
// first-class consent_state column rather than the attribute map.
const consentAttribute = "consent_state"

// attributeNamePattern whitelists the shape of a leaf predicate's Attribute
// before it ever reaches a query compiler: plain identifier characters
// only, no quotes, operators, or whitespace that a JSON-path or SQL
// fragment could smuggle in.
var attributeNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Predicate is a node in a segment's predicate tree: either a leaf
// comparison or a composite of child predicates joined by AND/OR. Exactly
// one of Leaf or Composite is set.
type Predicate struct {
	Leaf      *LeafPredicate      `json:"leaf,omitempty"`
	Composite *CompositePredicate `json:"composite,omitempty"`
}

// LeafPredicate compares a single attribute (or the first-class
// consent_state column, when Attribute == "consent_state") against Value.
type LeafPredicate struct {
	Attribute string            `json:"attribute"`
	Operator  PredicateOperator `json:"operator"`
	Value     string            `json:"value"`
}

// CompositePredicate joins child predicates with AND/OR logic.
type CompositePredicate struct {
	Conditions []*Predicate   `json:"conditions"`
	Logic      PredicateLogic `json:"logic"`
}

// Validate recursively validates a predicate tree.
func (p *Predicate) Validate() error {
	if p == nil {
		return fmt.Errorf("predicate must not be nil")
	}
	switch {
	case p.Leaf != nil && p.Composite != nil:
		return fmt.Errorf("predicate must be either a leaf or a composite, not both")
	case p.Leaf != nil:
		return p.Leaf.Validate()
	case p.Composite != nil:
		return p.Composite.Validate()
	default:
		return fmt.Errorf("predicate must have either 'leaf' or 'composite' set")
	}
}

// Validate checks that the leaf has a non-empty attribute and a known operator.
func (l *LeafPredicate) Validate() error {
	if l.Attribute == "" {
		return fmt.Errorf("leaf predicate must have 'attribute'")
	}
	if !attributeNamePattern.MatchString(l.Attribute) {
		return fmt.Errorf("leaf predicate attribute %q is not a valid identifier", l.Attribute)
	}
	if err := l.Operator.Validate(); err != nil {
		return fmt.Errorf("leaf predicate: %w", err)
	}
	if l.Attribute == consentAttribute {
		if err := ConsentState(l.Value).Validate(); err != nil {
			return fmt.Errorf("leaf predicate on consent_state: %w", err)
		}
	}
	return nil
}

// Validate checks that the composite has at least one condition and a known logic.
func (c *CompositePredicate) Validate() error {
	if err := c.Logic.Validate(); err != nil {
		return fmt.Errorf("composite predicate: %w", err)
	}
	if len(c.Conditions) == 0 {
		return fmt.Errorf("composite predicate must have at least one condition")
	}
	for i, cond := range c.Conditions {
		if cond == nil {
			return fmt.Errorf("composite predicate condition %d is nil", i)
		}
		if err := cond.Validate(); err != nil {
			return fmt.Errorf("composite predicate condition %d: %w", i, err)
		}
	}
	return nil
}

// Match evaluates the predicate tree against a single user in memory. The
// Segment Evaluator's repository implementation compiles the same tree to
// SQL for streaming selection; Match exists so orchestration and tests can
// reason about segment semantics without a database round-trip (used by the
// round-trip property in spec §8).
func (p *Predicate) Match(u *User) bool {
	switch {
	case p.Leaf != nil:
		return p.Leaf.match(u)
	case p.Composite != nil:
		return p.Composite.match(u)
	default:
		return false
	}
}

func (l *LeafPredicate) match(u *User) bool {
	var actual string
	if l.Attribute == consentAttribute {
		actual = string(u.ConsentState)
	} else {
		v, ok := u.Attribute(l.Attribute)
		if !ok {
			return false
		}
		actual = v
	}

	switch l.Operator {
	case OperatorEquals:
		return actual == l.Value
	case OperatorContains:
		return l.Value != "" && strings.Contains(strings.ToLower(actual), strings.ToLower(l.Value))
	default:
		return false
	}
}

func (c *CompositePredicate) match(u *User) bool {
	switch c.Logic {
	case LogicOr:
		for _, cond := range c.Conditions {
			if cond.Match(u) {
				return true
			}
		}
		return false
	default: // LogicAnd
		for _, cond := range c.Conditions {
			if !cond.Match(u) {
				return false
			}
		}
		return true
	}
}
