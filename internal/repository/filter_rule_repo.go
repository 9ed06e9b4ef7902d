package repository

import (
	"context"
	"fmt"

	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/predicate"
	"gorm.io/gorm"
)

// filterRuleRepository implements FilterRuleRepository using GORM.
type filterRuleRepository struct {
	db *gorm.DB
}

// NewFilterRuleRepository creates a new FilterRuleRepository.
func NewFilterRuleRepository(db *gorm.DB) FilterRuleRepository {
	return &filterRuleRepository{db: db}
}

// Create creates a new filter rule row.
func (r *filterRuleRepository) Create(ctx context.Context, rule *models.FilterRule) error {
	if err := rule.Validate(); err != nil {
		return fmt.Errorf("validating filter rule: %w", err)
	}
	return r.db.WithContext(ctx).Create(rule).Error
}

// GetBySite retrieves all rule rows for a site in insertion order.
func (r *filterRuleRepository) GetBySite(ctx context.Context, site models.Site) ([]models.FilterRule, error) {
	var rules []models.FilterRule
	if err := r.db.WithContext(ctx).
		Where("site = ?", site).
		Order("id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// GetRoots loads every rule row and assembles the per-site predicate trees.
func (r *filterRuleRepository) GetRoots(ctx context.Context) (map[models.Site]predicate.Node, error) {
	var rules []models.FilterRule
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rules).Error; err != nil {
		return nil, err
	}
	roots, err := predicate.FromRules(rules)
	if err != nil {
		return nil, fmt.Errorf("assembling rule trees: %w", err)
	}
	return roots, nil
}

// ReplaceAll atomically replaces the whole rule set.
func (r *filterRuleRepository) ReplaceAll(ctx context.Context, rules []models.FilterRule) error {
	for i := range rules {
		if err := rules[i].Validate(); err != nil {
			return fmt.Errorf("validating filter rule %q: %w", rules[i].Name, err)
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.FilterRule{}).Error; err != nil {
			return err
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.Create(&rules).Error
	})
}

// Ensure filterRuleRepository implements FilterRuleRepository.
var _ FilterRuleRepository = (*filterRuleRepository)(nil)
