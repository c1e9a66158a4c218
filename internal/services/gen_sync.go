package services

import "admin_codegen/internal/models"

// SyncPlan is the set of column writes that brings stored columns in line with
// the live table.
type SyncPlan struct {
	Updates   []models.GenTableColumn
	Inserts   []models.GenTableColumn
	DeleteIDs []int64
}

// PlanSync merges freshly classified live columns with the stored ones, keyed by
// column name.
//
// A live column with a stored counterpart keeps the stored identity and takes the
// fresh classification, except that the stored dictionary type and query operator
// are carried over when the stored column was listable. Live columns without a
// stored counterpart are inserted and stored columns without a live counterpart
// are deleted.
func PlanSync(stored, fresh []models.GenTableColumn) SyncPlan {
	byName := make(map[string]models.GenTableColumn, len(stored))
	for _, c := range stored {
		byName[c.ColumnName] = c
	}

	var plan SyncPlan
	live := make(map[string]bool, len(fresh))
	for _, col := range fresh {
		live[col.ColumnName] = true
		prev, ok := byName[col.ColumnName]
		if !ok {
			plan.Inserts = append(plan.Inserts, col)
			continue
		}

		col.ColumnID = prev.ColumnID
		col.TableID = prev.TableID
		col.CreateBy = prev.CreateBy
		col.CreateTime = prev.CreateTime
		if prev.IsList {
			col.DictType = prev.DictType
			col.QueryOperator = prev.QueryOperator
		}
		plan.Updates = append(plan.Updates, col)
	}

	for _, c := range stored {
		if !live[c.ColumnName] {
			plan.DeleteIDs = append(plan.DeleteIDs, c.ColumnID)
		}
	}
	return plan
}
