// Package rules loads validation rule trees from a YAML document and
// installs them as the stored rule set. The YAML shape mirrors the stored
// tree: nested operator nodes over regex leaves, grouped per site.
package rules

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/predicate"
	"github.com/inkwhale/bookbatch/internal/repository"
)

// Document is the top-level YAML shape: one rule tree list per site code.
type Document struct {
	Sites map[string][]RuleNode `yaml:"sites"`
}

// RuleNode is one node of a YAML rule tree. Operator nodes set Operator
// and Children; leaf nodes set Property and Pattern.
type RuleNode struct {
	Name     string     `yaml:"name"`
	Operator string     `yaml:"operator,omitempty"`
	Property string     `yaml:"property,omitempty"`
	Pattern  string     `yaml:"pattern,omitempty"`
	Children []RuleNode `yaml:"children,omitempty"`
}

// Parse decodes a YAML rule document.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding rules document: %w", err)
	}
	return &doc, nil
}

// ParseFile decodes a YAML rule document from disk.
func ParseFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Flatten converts the document's trees to parent-linked rule rows in
// depth-first order, assigning sequential ids starting at 1.
func (d *Document) Flatten() ([]models.FilterRule, error) {
	var rows []models.FilterRule
	nextID := uint64(1)

	var flatten func(site models.Site, node *RuleNode, parent *uint64) error
	flatten = func(site models.Site, node *RuleNode, parent *uint64) error {
		row := models.FilterRule{
			ID:       nextID,
			ParentID: parent,
			Name:     node.Name,
			Site:     site,
			Property: node.Property,
			Pattern:  node.Pattern,
		}
		nextID++

		if node.Operator != "" {
			op, err := models.ParseFilterRuleOperator(node.Operator)
			if err != nil {
				return fmt.Errorf("rule %q: %w", node.Name, err)
			}
			row.Operator = op
		}
		if err := row.Validate(); err != nil {
			return fmt.Errorf("rule %q: %w", node.Name, err)
		}
		if row.IsLeaf() && len(node.Children) > 0 {
			return fmt.Errorf("rule %q: leaf rules cannot have children", node.Name)
		}

		rows = append(rows, row)
		parentID := row.ID
		for i := range node.Children {
			if err := flatten(site, &node.Children[i], &parentID); err != nil {
				return err
			}
		}
		return nil
	}

	codes := make([]string, 0, len(d.Sites))
	for code := range d.Sites {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		site, err := models.ParseSite(code)
		if err != nil {
			return nil, err
		}
		trees := d.Sites[code]
		for i := range trees {
			if err := flatten(site, &trees[i], nil); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}

// Install validates the document and atomically replaces the stored rule
// set with it. The rows are assembled into predicate trees first, so a
// document that cannot compile never reaches the store.
func Install(ctx context.Context, repo repository.FilterRuleRepository, doc *Document) error {
	rows, err := doc.Flatten()
	if err != nil {
		return err
	}
	if _, err := predicate.FromRules(rows); err != nil {
		return fmt.Errorf("assembling rule trees: %w", err)
	}
	if err := repo.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("replacing stored rules: %w", err)
	}
	return nil
}
