package models

// FilterRuleOperator is the boolean operator of an operator rule node.
type FilterRuleOperator string

const (
	// OperatorAnd is true iff all children are true (vacuously true).
	OperatorAnd FilterRuleOperator = "AND"
	// OperatorOr is true iff any child is true (vacuously false).
	OperatorOr FilterRuleOperator = "OR"
	// OperatorNor is true iff all children are false.
	OperatorNor FilterRuleOperator = "NOR"
	// OperatorNand is true iff not every child is true.
	OperatorNand FilterRuleOperator = "NAND"
)

// ParseFilterRuleOperator converts an operator code to a FilterRuleOperator.
func ParseFilterRuleOperator(code string) (FilterRuleOperator, error) {
	switch code {
	case "AND":
		return OperatorAnd, nil
	case "OR":
		return OperatorOr, nil
	case "NOR":
		return OperatorNor, nil
	case "NAND":
		return OperatorNand, nil
	default:
		return "", ErrValidation{Field: "operator", Message: "unknown operator: " + code}
	}
}

// FilterRule is one node of a per-site validation rule tree stored as
// parent-linked rows. A row is either an operator node (Operator set,
// children linked by ParentID) or a leaf node (Property and Pattern set).
// Root nodes have a nil ParentID.
type FilterRule struct {
	ID       uint64  `gorm:"primarykey" json:"id"`
	ParentID *uint64 `gorm:"index" json:"parent_id,omitempty"`

	// Name is a human-readable label for the rule.
	Name string `gorm:"not null;size:255" json:"name"`

	// Site selects which source's raw records this rule validates.
	Site Site `gorm:"not null;size:16;index" json:"site"`

	// Operator is set on operator nodes only.
	Operator FilterRuleOperator `gorm:"size:8" json:"operator,omitempty"`

	// Property is the raw record field a leaf node inspects.
	Property string `gorm:"size:255" json:"property,omitempty"`

	// Pattern is the leaf node's regular expression source.
	Pattern string `gorm:"size:1024" json:"pattern,omitempty"`
}

// TableName returns the table name for the FilterRule model.
func (FilterRule) TableName() string {
	return "filter_rules"
}

// IsLeaf reports whether this row describes a leaf rule.
func (r *FilterRule) IsLeaf() bool {
	return r.Operator == ""
}

// Validate checks that the row is either a well-formed operator node or a
// well-formed leaf node.
func (r *FilterRule) Validate() error {
	if r.Name == "" {
		return ErrValidation{Field: "name", Message: "name is required"}
	}
	if r.Site == "" {
		return ErrValidation{Field: "site", Message: "site is required"}
	}
	if r.Operator != "" {
		if r.Property != "" || r.Pattern != "" {
			return ErrValidation{Field: "operator", Message: "operator nodes cannot carry a property rule"}
		}
		if _, err := ParseFilterRuleOperator(string(r.Operator)); err != nil {
			return err
		}
		return nil
	}
	if r.Property == "" {
		return ErrValidation{Field: "property", Message: "leaf rules require a property"}
	}
	if r.Pattern == "" {
		return ErrValidation{Field: "pattern", Message: "leaf rules require a pattern"}
	}
	return nil
}
