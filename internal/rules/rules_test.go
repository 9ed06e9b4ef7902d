package rules

import (
	"context"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/inkwhale/bookbatch/internal/models"
	"github.com/inkwhale/bookbatch/internal/repository"
)

const sampleRules = `
sites:
  nlgo:
    - name: registry-record
      operator: AND
      children:
        - name: isbn-shape
          property: ea_isbn
          pattern: "^[0-9]{13}$"
        - name: korean-isbn-prefix
          property: ea_isbn
          pattern: "^97(88|911)"
  naver:
    - name: isbn-present
      property: isbn
      pattern: "^[0-9]{13}$"
`

func TestParseAndFlatten(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleRules))
	require.NoError(t, err)

	rows, err := doc.Flatten()
	require.NoError(t, err)
	require.Len(t, rows, 4)

	// Sites flatten in sorted code order, trees depth-first.
	root := rows[0]
	assert.Equal(t, models.SiteNaver, root.Site)
	assert.Equal(t, "isbn-present", root.Name)
	assert.Nil(t, root.ParentID)
	assert.True(t, root.IsLeaf())

	and := rows[1]
	assert.Equal(t, models.SiteNLGO, and.Site)
	assert.Equal(t, models.OperatorAnd, and.Operator)
	assert.Nil(t, and.ParentID)

	for _, leaf := range rows[2:] {
		require.NotNil(t, leaf.ParentID)
		assert.Equal(t, and.ID, *leaf.ParentID)
		assert.True(t, leaf.IsLeaf())
	}
}

func TestFlatten_RejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			"unknown site",
			"sites:\n  amazon:\n    - name: x\n      property: p\n      pattern: a\n",
		},
		{
			"unknown operator",
			"sites:\n  nlgo:\n    - name: x\n      operator: XOR\n",
		},
		{
			"leaf with children",
			"sites:\n  nlgo:\n    - name: x\n      property: p\n      pattern: a\n      children:\n        - name: y\n          property: q\n          pattern: b\n",
		},
		{
			"leaf without pattern",
			"sites:\n  nlgo:\n    - name: x\n      property: p\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			_, err = doc.Flatten()
			assert.Error(t, err)
		})
	}
}

func TestInstall(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FilterRule{}))

	repo := repository.NewFilterRuleRepository(db)
	ctx := context.Background()

	doc, err := Parse(strings.NewReader(sampleRules))
	require.NoError(t, err)
	require.NoError(t, Install(ctx, repo, doc))

	roots, err := repo.GetRoots(ctx)
	require.NoError(t, err)
	require.Contains(t, roots, models.SiteNLGO)
	require.Contains(t, roots, models.SiteNaver)

	assert.True(t, roots[models.SiteNLGO].Test(models.Raw{"ea_isbn": "9791100000001"}))
	assert.False(t, roots[models.SiteNLGO].Test(models.Raw{"ea_isbn": "9991100000001"}))

	// Reinstalling replaces rather than appends.
	require.NoError(t, Install(ctx, repo, doc))
	stored, err := repo.GetBySite(ctx, models.SiteNLGO)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}

func TestInstall_BadPatternNeverReachesStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.FilterRule{}))

	repo := repository.NewFilterRuleRepository(db)
	ctx := context.Background()

	good, err := Parse(strings.NewReader(sampleRules))
	require.NoError(t, err)
	require.NoError(t, Install(ctx, repo, good))

	bad := &Document{Sites: map[string][]RuleNode{
		"nlgo": {{Name: "broken", Property: "p", Pattern: "(["}},
	}}
	require.Error(t, Install(ctx, repo, bad))

	stored, err := repo.GetBySite(ctx, models.SiteNLGO)
	require.NoError(t, err)
	assert.Len(t, stored, 3)
}
