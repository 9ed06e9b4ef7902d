// Package predicate implements the boolean rule trees used to validate
// raw source records: operator nodes (AND/OR/NOR/NAND) over regex leaf
// rules. Trees are built once from stored filter rules and are immutable,
// safe for read-only sharing across a run.
package predicate

import (
	"fmt"
	"regexp"

	"github.com/inkwhale/bookbatch/internal/models"
)

// Node is one node of a rule tree. Nodes are evaluated against a single
// raw record and never mutate it.
type Node interface {
	// Test reports whether the record satisfies this node.
	Test(raw models.Raw) bool
}

// Operator is a boolean combination of child nodes.
//
// Truth table over the children's results:
//
//	AND:  all true (vacuously true with no children)
//	OR:   any true (vacuously false with no children)
//	NOR:  all false
//	NAND: not all true
type Operator struct {
	Op       models.FilterRuleOperator
	Children []Node
}

// Test implements Node.
func (o *Operator) Test(raw models.Raw) bool {
	switch o.Op {
	case models.OperatorAnd:
		for _, c := range o.Children {
			if !c.Test(raw) {
				return false
			}
		}
		return true
	case models.OperatorOr:
		for _, c := range o.Children {
			if c.Test(raw) {
				return true
			}
		}
		return false
	case models.OperatorNor:
		for _, c := range o.Children {
			if c.Test(raw) {
				return false
			}
		}
		return true
	case models.OperatorNand:
		for _, c := range o.Children {
			if !c.Test(raw) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Leaf matches a regular expression against one named record property.
//
// A missing property, or a property whose value is not a string, counts as
// rule-not-satisfied rather than an evaluation failure. The original
// implementation aborted on a missing property; treating it as false keeps
// filtering total over arbitrary scraped records and is the documented
// behavior here and in the tests.
type Leaf struct {
	Property string
	Pattern  *regexp.Regexp
}

// Test implements Node.
func (l *Leaf) Test(raw models.Raw) bool {
	value, ok := raw.Text(l.Property)
	if !ok {
		return false
	}
	return l.Pattern.MatchString(value)
}

// And builds an AND operator node over the given children.
func And(children ...Node) *Operator {
	return &Operator{Op: models.OperatorAnd, Children: children}
}

// Or builds an OR operator node over the given children.
func Or(children ...Node) *Operator {
	return &Operator{Op: models.OperatorOr, Children: children}
}

// NewLeaf compiles a leaf rule.
func NewLeaf(property, pattern string) (*Leaf, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling rule pattern %q: %w", pattern, err)
	}
	return &Leaf{Property: property, Pattern: re}, nil
}
