// Package classifier derives code generation attributes from catalog columns.
//
// Classification is a fold over an ordered rule list; a later rule sees and may
// override what earlier rules decided.
package classifier

import "admin_codegen/internal/models"

// TableContext is the owning table a column is classified for.
type TableContext struct {
	TableID int64
}

type Classifier struct {
	rules []Rule
}

// New builds a classifier with the standard rule order: defaults, SQL type
// family, visibility, then column-name heuristics.
func New(cfg Config) *Classifier {
	return &Classifier{
		rules: []Rule{
			defaultsRule,
			cfg.typeFamilyRule(),
			cfg.visibilityRule(),
			nameRule,
		},
	}
}

// Classify turns a raw column into a column definition owned by table.
func (c *Classifier) Classify(raw models.RawColumn, table TableContext) models.GenTableColumn {
	col := models.GenTableColumn{
		TableID:       table.TableID,
		ColumnName:    raw.ColumnName,
		ColumnComment: raw.ColumnComment,
		ColumnType:    raw.ColumnType,
		IsPk:          raw.IsPk,
		IsIncrement:   raw.IsIncrement,
		IsRequired:    raw.IsRequired,
		Sort:          raw.Sort,
	}
	for _, rule := range c.rules {
		col = rule(col)
	}
	return col
}

// ClassifyAll classifies every column of a table in order.
func (c *Classifier) ClassifyAll(raws []models.RawColumn, table TableContext) []models.GenTableColumn {
	cols := make([]models.GenTableColumn, 0, len(raws))
	for _, raw := range raws {
		cols = append(cols, c.Classify(raw, table))
	}
	return cols
}
