package predicate

import (
	"fmt"

	"github.com/inkwhale/bookbatch/internal/models"
)

// FromRules assembles per-site rule trees from parent-linked rule rows.
// Rows with a nil parent are roots; a site with several roots gets them
// joined under an implicit AND. Sites without rules are absent from the
// returned map.
func FromRules(rules []models.FilterRule) (map[models.Site]Node, error) {
	nodes := make(map[uint64]Node, len(rules))
	children := make(map[uint64][]uint64)

	for i := range rules {
		rule := &rules[i]
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}

		node, err := buildNode(rule)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Name, err)
		}
		nodes[rule.ID] = node

		if rule.ParentID != nil {
			children[*rule.ParentID] = append(children[*rule.ParentID], rule.ID)
		}
	}

	// Attach children to their operator parents, preserving row order.
	for parentID, childIDs := range children {
		parent, ok := nodes[parentID]
		if !ok {
			return nil, fmt.Errorf("rule parent %d not found", parentID)
		}
		op, ok := parent.(*Operator)
		if !ok {
			return nil, fmt.Errorf("rule parent %d is a leaf and cannot have children", parentID)
		}
		for _, id := range childIDs {
			op.Children = append(op.Children, nodes[id])
		}
	}

	bySite := make(map[models.Site][]Node)
	for i := range rules {
		rule := &rules[i]
		if rule.ParentID == nil {
			bySite[rule.Site] = append(bySite[rule.Site], nodes[rule.ID])
		}
	}

	roots := make(map[models.Site]Node, len(bySite))
	for site, siteRoots := range bySite {
		if len(siteRoots) == 1 {
			roots[site] = siteRoots[0]
		} else {
			roots[site] = And(siteRoots...)
		}
	}
	return roots, nil
}

func buildNode(rule *models.FilterRule) (Node, error) {
	if rule.IsLeaf() {
		return NewLeaf(rule.Property, rule.Pattern)
	}
	return &Operator{Op: rule.Operator}, nil
}
