package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"admin_codegen/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.GenTable{}, &models.GenTableColumn{}))
	return db
}

func seedTable(t *testing.T, repo *GenTableRepository, name string, columns ...string) *models.GenTable {
	t.Helper()
	ctx := context.Background()
	table := &models.GenTable{Name: name, TableComment: name + " table", ClassName: "X"}
	require.NoError(t, repo.Create(ctx, table))

	cols := make([]models.GenTableColumn, 0, len(columns))
	for i, c := range columns {
		cols = append(cols, models.GenTableColumn{TableID: table.TableID, ColumnName: c, Sort: len(columns) - i})
	}
	require.NoError(t, repo.CreateColumns(ctx, cols))
	return table
}

func TestGenTableRepositoryFind(t *testing.T) {
	repo := NewGenTableRepository(newTestDB(t))
	ctx := context.Background()
	created := seedTable(t, repo, "sys_post", "post_id", "post_name", "remark")

	got, err := repo.FindByID(ctx, created.TableID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "sys_post", got.Name)
	require.Len(t, got.Columns, 3)
	// ordered by sort, which seedTable assigns in reverse
	assert.Equal(t, "remark", got.Columns[0].ColumnName)
	assert.Equal(t, "post_id", got.Columns[2].ColumnName)

	byName, err := repo.FindByName(ctx, "sys_post")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, created.TableID, byName.TableID)

	missing, err := repo.FindByName(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	missing, err = repo.FindByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestGenTableRepositoryFindByNamesKeepsOrder(t *testing.T) {
	repo := NewGenTableRepository(newTestDB(t))
	seedTable(t, repo, "a_table", "id")
	seedTable(t, repo, "b_table", "id")

	tables, err := repo.FindByNames(context.Background(), []string{"b_table", "missing", "a_table"})
	require.NoError(t, err)
	require.Len(t, tables, 2)
	assert.Equal(t, "b_table", tables[0].Name)
	assert.Equal(t, "a_table", tables[1].Name)
	assert.Len(t, tables[0].Columns, 1)
}

func TestGenTableRepositoryList(t *testing.T) {
	repo := NewGenTableRepository(newTestDB(t))
	ctx := context.Background()
	seedTable(t, repo, "sys_post")
	seedTable(t, repo, "sys_user")
	seedTable(t, repo, "biz_order")

	tables, total, err := repo.List(ctx, models.GenTableQuery{TableName: "SYS"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, tables, 2)

	tables, total, err = repo.List(ctx, models.GenTableQuery{PageNum: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, tables, 1)

	_, total, err = repo.List(ctx, models.GenTableQuery{BeginTime: "2000-01-01", EndTime: "2000-01-02"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestGenTableRepositoryUpdateColumn(t *testing.T) {
	repo := NewGenTableRepository(newTestDB(t))
	ctx := context.Background()
	table := seedTable(t, repo, "sys_post", "status")

	got, err := repo.FindByID(ctx, table.TableID)
	require.NoError(t, err)
	col := got.Columns[0]
	col.HTMLWidget = models.HTMLRadio
	col.DictType = "sys_normal_disable"
	col.IsList = false
	require.NoError(t, repo.UpdateColumn(ctx, &col))

	got, err = repo.FindByID(ctx, table.TableID)
	require.NoError(t, err)
	assert.Equal(t, models.HTMLRadio, got.Columns[0].HTMLWidget)
	assert.Equal(t, "sys_normal_disable", got.Columns[0].DictType)
	assert.Equal(t, col.ColumnID, got.Columns[0].ColumnID)
}

func TestGenTableRepositoryDeleteCascades(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenTableRepository(db)
	ctx := context.Background()
	a := seedTable(t, repo, "a_table", "id", "name")
	b := seedTable(t, repo, "b_table", "id")

	require.NoError(t, repo.Delete(ctx, []int64{a.TableID}))

	var columns int64
	require.NoError(t, db.Model(&models.GenTableColumn{}).Count(&columns).Error)
	assert.Equal(t, int64(1), columns)

	gone, err := repo.FindByID(ctx, a.TableID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := repo.FindByID(ctx, b.TableID)
	require.NoError(t, err)
	assert.NotNil(t, kept)
}

func TestGenTableRepositoryTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewGenTableRepository(db)
	boom := errors.New("boom")

	err := repo.Transaction(context.Background(), func(tx *GenTableRepository) error {
		seedTable(t, tx, "a_table", "id")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var count int64
	require.NoError(t, db.Model(&models.GenTable{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
	require.NoError(t, db.Model(&models.GenTableColumn{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestPrefixPatterns(t *testing.T) {
	assert.Equal(t, []string{`qrtz\_%`, `gen\_%`}, prefixPatterns([]string{"qrtz_", "", "gen_"}))
	assert.Empty(t, prefixPatterns(nil))
}
