package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin_codegen/internal/models"
)

func TestPlanSync(t *testing.T) {
	stored := []models.GenTableColumn{
		{ColumnID: 10, TableID: 1, ColumnName: "id", IsList: false, DictType: "kept_off_list", QueryOperator: models.QueryNE},
		{ColumnID: 11, TableID: 1, ColumnName: "status", IsList: true, DictType: "sys_normal_disable", QueryOperator: models.QueryNE, HTMLWidget: models.HTMLSelect},
		{ColumnID: 12, TableID: 1, ColumnName: "legacy", IsList: true},
	}
	fresh := []models.GenTableColumn{
		{TableID: 1, ColumnName: "id", QueryOperator: models.QueryEQ},
		{TableID: 1, ColumnName: "status", QueryOperator: models.QueryEQ, HTMLWidget: models.HTMLRadio, ColumnType: "char(1)"},
		{TableID: 1, ColumnName: "added", QueryOperator: models.QueryEQ},
	}

	plan := PlanSync(stored, fresh)

	require.Len(t, plan.Updates, 2)
	id, status := plan.Updates[0], plan.Updates[1]

	assert.Equal(t, int64(10), id.ColumnID)
	assert.Empty(t, id.DictType, "quirk: curation only survives on columns that were listed")
	assert.Equal(t, models.QueryEQ, id.QueryOperator)

	assert.Equal(t, int64(11), status.ColumnID)
	assert.Equal(t, "sys_normal_disable", status.DictType)
	assert.Equal(t, models.QueryNE, status.QueryOperator)
	assert.Equal(t, models.HTMLRadio, status.HTMLWidget, "everything else comes from the fresh classification")
	assert.Equal(t, "char(1)", status.ColumnType)

	require.Len(t, plan.Inserts, 1)
	assert.Equal(t, "added", plan.Inserts[0].ColumnName)
	assert.Zero(t, plan.Inserts[0].ColumnID)

	assert.Equal(t, []int64{12}, plan.DeleteIDs)
}

func TestPlanSyncNoStoredColumns(t *testing.T) {
	plan := PlanSync(nil, []models.GenTableColumn{{ColumnName: "a"}, {ColumnName: "b"}})
	assert.Empty(t, plan.Updates)
	assert.Empty(t, plan.DeleteIDs)
	assert.Len(t, plan.Inserts, 2)
}
