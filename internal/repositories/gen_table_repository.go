package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"admin_codegen/internal/models"

	"gorm.io/gorm"
)

// GenTableRepository persists generator tables and their columns.
type GenTableRepository struct {
	db *gorm.DB
}

func NewGenTableRepository(db *gorm.DB) *GenTableRepository {
	return &GenTableRepository{db: db}
}

// Transaction runs fn against a repository bound to one database transaction.
// The transaction is rolled back when fn returns an error.
func (r *GenTableRepository) Transaction(ctx context.Context, fn func(tx *GenTableRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GenTableRepository{db: tx})
	})
}

// Create inserts the table row only; columns are written with CreateColumns.
func (r *GenTableRepository) Create(ctx context.Context, table *models.GenTable) error {
	if err := r.db.WithContext(ctx).Omit("Columns").Create(table).Error; err != nil {
		return fmt.Errorf("failed to insert gen table %s: %w", table.Name, err)
	}
	return nil
}

func (r *GenTableRepository) CreateColumns(ctx context.Context, columns []models.GenTableColumn) error {
	if len(columns) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&columns).Error; err != nil {
		return fmt.Errorf("failed to insert gen table columns: %w", err)
	}
	return nil
}

func (r *GenTableRepository) withColumns(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Columns", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort ASC, column_id ASC")
	})
}

func (r *GenTableRepository) FindByID(ctx context.Context, id int64) (*models.GenTable, error) {
	var table models.GenTable
	err := r.withColumns(ctx).Where("table_id = ?", id).First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &table, nil
}

func (r *GenTableRepository) FindByName(ctx context.Context, name string) (*models.GenTable, error) {
	var table models.GenTable
	err := r.withColumns(ctx).Where("table_name = ?", name).First(&table).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &table, nil
}

// FindByNames returns the managed tables among names, in the order given.
func (r *GenTableRepository) FindByNames(ctx context.Context, names []string) ([]models.GenTable, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var tables []models.GenTable
	if err := r.withColumns(ctx).Where("table_name IN ?", names).Find(&tables).Error; err != nil {
		return nil, err
	}

	byName := make(map[string]models.GenTable, len(tables))
	for _, t := range tables {
		byName[t.Name] = t
	}
	ordered := make([]models.GenTable, 0, len(tables))
	for _, n := range names {
		if t, ok := byName[n]; ok {
			ordered = append(ordered, t)
			delete(byName, n)
		}
	}
	return ordered, nil
}

// List pages the managed tables, most recently updated first. Columns are not loaded.
func (r *GenTableRepository) List(ctx context.Context, q models.GenTableQuery) ([]models.GenTable, int64, error) {
	q.Normalize()

	db := r.db.WithContext(ctx).Model(&models.GenTable{})
	if q.TableName != "" {
		db = db.Where("LOWER(table_name) LIKE ?", "%"+strings.ToLower(q.TableName)+"%")
	}
	if q.TableComment != "" {
		db = db.Where("LOWER(table_comment) LIKE ?", "%"+strings.ToLower(q.TableComment)+"%")
	}
	if begin, _, ok := parseTime(q.BeginTime); ok {
		db = db.Where("create_time >= ?", begin)
	}
	if end, dateOnly, ok := parseTime(q.EndTime); ok {
		if dateOnly {
			db = db.Where("create_time < ?", end.AddDate(0, 0, 1))
		} else {
			db = db.Where("create_time <= ?", end)
		}
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count gen tables: %w", err)
	}

	var tables []models.GenTable
	err := db.Order("update_time DESC").Order("table_id DESC").
		Limit(q.PageSize).Offset(q.Offset()).
		Find(&tables).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list gen tables: %w", err)
	}
	return tables, total, nil
}

// UpdateTable writes the user editable table level fields.
func (r *GenTableRepository) UpdateTable(ctx context.Context, table *models.GenTable) error {
	res := r.db.WithContext(ctx).Model(&models.GenTable{}).
		Where("table_id = ?", table.TableID).
		Updates(map[string]interface{}{
			"table_name":      table.Name,
			"table_comment":   table.TableComment,
			"class_name":      table.ClassName,
			"tpl_category":    table.TplCategory,
			"tpl_web_type":    table.TplWebType,
			"package_name":    table.PackageName,
			"module_name":     table.ModuleName,
			"business_name":   table.BusinessName,
			"function_name":   table.FunctionName,
			"function_author": table.FunctionAuthor,
			"gen_type":        table.GenType,
			"gen_path":        table.GenPath,
			"options":         table.Options,
			"remark":          table.Remark,
			"update_by":       table.UpdateBy,
			"update_time":     time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update gen table %d: %w", table.TableID, res.Error)
	}
	return nil
}

// Touch bumps the update audit fields of a table.
func (r *GenTableRepository) Touch(ctx context.Context, tableID int64, operator string) error {
	err := r.db.WithContext(ctx).Model(&models.GenTable{}).
		Where("table_id = ?", tableID).
		Updates(map[string]interface{}{"update_by": operator, "update_time": time.Now()}).Error
	if err != nil {
		return fmt.Errorf("failed to touch gen table %d: %w", tableID, err)
	}
	return nil
}

// UpdateColumn writes every attribute of col except its identity, owner and creation audit.
func (r *GenTableRepository) UpdateColumn(ctx context.Context, col *models.GenTableColumn) error {
	col.UpdateTime = time.Now()
	err := r.db.WithContext(ctx).Model(col).
		Where("table_id = ?", col.TableID).
		Select("*").
		Omit("column_id", "table_id", "create_by", "create_time").
		Updates(col).Error
	if err != nil {
		return fmt.Errorf("failed to update column %s: %w", col.ColumnName, err)
	}
	return nil
}

func (r *GenTableRepository) DeleteColumns(ctx context.Context, columnIDs []int64) error {
	if len(columnIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("column_id IN ?", columnIDs).Delete(&models.GenTableColumn{}).Error; err != nil {
		return fmt.Errorf("failed to delete columns: %w", err)
	}
	return nil
}

// Delete removes the tables and all of their columns.
func (r *GenTableRepository) Delete(ctx context.Context, tableIDs []int64) error {
	if len(tableIDs) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.Where("table_id IN ?", tableIDs).Delete(&models.GenTableColumn{}).Error; err != nil {
		return fmt.Errorf("failed to delete gen table columns: %w", err)
	}
	if err := db.Where("table_id IN ?", tableIDs).Delete(&models.GenTable{}).Error; err != nil {
		return fmt.Errorf("failed to delete gen tables: %w", err)
	}
	return nil
}

// parseTime accepts a date or a timestamp and reports whether it was a bare date.
func parseTime(s string) (time.Time, bool, bool) {
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, true, true
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, false, true
		}
	}
	return time.Time{}, false, false
}
