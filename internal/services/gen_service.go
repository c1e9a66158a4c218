package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"admin_codegen/internal/classifier"
	"admin_codegen/internal/config"
	"admin_codegen/internal/models"
	"admin_codegen/internal/packager"
	"admin_codegen/internal/render"
	"admin_codegen/internal/repositories"
	"admin_codegen/internal/utils"
)

// SchemaIntrospector reads live table metadata.
type SchemaIntrospector interface {
	ListTables(ctx context.Context, q models.DBTableQuery) ([]models.DBTable, int64, error)
	ListColumns(ctx context.Context, tableName string) ([]models.RawColumn, error)
	DescribeTablesByNames(ctx context.Context, names []string) ([]models.DBTable, error)
}

// PreviewCache stores rendered previews per table id.
type PreviewCache interface {
	GetPreview(ctx context.Context, tableID int64) (map[string]string, error)
	SetPreview(ctx context.Context, tableID int64, preview map[string]string) error
	InvalidatePreview(ctx context.Context, tableIDs ...int64) error
}

type GenService struct {
	repo       *repositories.GenTableRepository
	schema     SchemaIntrospector
	cache      PreviewCache
	classifier *classifier.Classifier
	renderer   *render.Renderer
	packager   *packager.Packager
	cfg        config.GenConfig
}

// NewGenService wires the generator. cache may be nil.
func NewGenService(
	repo *repositories.GenTableRepository,
	schema SchemaIntrospector,
	cache PreviewCache,
	cls *classifier.Classifier,
	renderer *render.Renderer,
	pkg *packager.Packager,
	cfg config.GenConfig,
) *GenService {
	return &GenService{
		repo:       repo,
		schema:     schema,
		cache:      cache,
		classifier: cls,
		renderer:   renderer,
		packager:   pkg,
		cfg:        cfg,
	}
}

// UpdateGenTableRequest carries the user edits of a managed table and its columns.
type UpdateGenTableRequest struct {
	TableID        int64                   `json:"tableId" binding:"required"`
	TableName      string                  `json:"tableName"`
	TableComment   string                  `json:"tableComment"`
	ClassName      string                  `json:"className" binding:"required"`
	TplCategory    string                  `json:"tplCategory"`
	TplWebType     string                  `json:"tplWebType"`
	PackageName    string                  `json:"packageName"`
	ModuleName     string                  `json:"moduleName" binding:"required"`
	BusinessName   string                  `json:"businessName" binding:"required"`
	FunctionName   string                  `json:"functionName" binding:"required"`
	FunctionAuthor string                  `json:"functionAuthor"`
	GenType        string                  `json:"genType"`
	GenPath        string                  `json:"genPath"`
	Remark         string                  `json:"remark"`
	ParentMenuID   int64                   `json:"parentMenuId"`
	Columns        []models.GenTableColumn `json:"columns"`
}

func cleanNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// newGenTable derives the managed table row of a live table.
func (s *GenService) newGenTable(t models.DBTable, operator string) *models.GenTable {
	base := t.TableName
	if s.cfg.AutoRemovePre {
		base = utils.StripPrefixes(base, s.cfg.TablePrefix)
	}
	label := strings.TrimSpace(t.TableComment)
	if label == "" {
		label = t.TableName
	}
	return &models.GenTable{
		Name:           t.TableName,
		TableComment:   label,
		ClassName:      utils.ToPascalCase(base),
		TplCategory:    models.TplCategoryCrud,
		TplWebType:     models.TplWebElementPlus,
		PackageName:    s.cfg.PackageName,
		ModuleName:     s.cfg.ModuleName,
		BusinessName:   utils.BusinessName(t.TableName),
		FunctionName:   label,
		FunctionAuthor: s.cfg.Author,
		GenType:        models.GenTypeZip,
		GenPath:        models.GenPathDefault,
		CreateBy:       operator,
		UpdateBy:       operator,
	}
}

// ImportTables registers live tables with the generator. All tables are written
// in one transaction; any failure leaves nothing behind.
func (s *GenService) ImportTables(ctx context.Context, names []string, operator string) error {
	names = cleanNames(names)
	if len(names) == 0 {
		return fmt.Errorf("%w: no table names given", ErrValidation)
	}

	err := s.repo.Transaction(ctx, func(tx *repositories.GenTableRepository) error {
		tables, err := s.schema.DescribeTablesByNames(ctx, names)
		if err != nil {
			return fmt.Errorf("failed to describe tables: %w", err)
		}
		if len(tables) == 0 {
			return fmt.Errorf("%w: none of %s can be imported", ErrNotFound, strings.Join(names, ","))
		}

		for _, t := range tables {
			table := s.newGenTable(t, operator)
			if err := tx.Create(ctx, table); err != nil {
				return err
			}

			raws, err := s.schema.ListColumns(ctx, t.TableName)
			if err != nil {
				return fmt.Errorf("failed to read columns of %s: %w", t.TableName, err)
			}
			columns := s.classifier.ClassifyAll(raws, classifier.TableContext{TableID: table.TableID})
			if err := checkFieldIdentifiers(columns); err != nil {
				return fmt.Errorf("table %s: %w", t.TableName, err)
			}
			for i := range columns {
				columns[i].CreateBy = operator
			}
			if err := tx.CreateColumns(ctx, columns); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Strs("tables", names).Msg("Import failed, rolled back")
		return err
	}

	log.Info().Strs("tables", names).Str("operator", operator).Msg("Tables imported")
	return nil
}

// Synchronize re-reads the live columns of a managed table and merges them into
// the stored ones.
func (s *GenService) Synchronize(ctx context.Context, tableName, operator string) error {
	table, err := s.repo.FindByName(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", tableName, err)
	}
	if table == nil {
		return fmt.Errorf("%w: table %s is not managed", ErrNotFound, tableName)
	}

	raws, err := s.schema.ListColumns(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to read columns of %s: %w", tableName, err)
	}
	if len(raws) == 0 {
		return fmt.Errorf("%w: table %s has no live columns", ErrNotFound, tableName)
	}

	fresh := s.classifier.ClassifyAll(raws, classifier.TableContext{TableID: table.TableID})
	if err := checkFieldIdentifiers(fresh); err != nil {
		return fmt.Errorf("table %s: %w", tableName, err)
	}
	plan := PlanSync(table.Columns, fresh)

	err = s.repo.Transaction(ctx, func(tx *repositories.GenTableRepository) error {
		for i := range plan.Updates {
			plan.Updates[i].UpdateBy = operator
			if err := tx.UpdateColumn(ctx, &plan.Updates[i]); err != nil {
				return err
			}
		}
		for i := range plan.Inserts {
			plan.Inserts[i].CreateBy = operator
		}
		if err := tx.CreateColumns(ctx, plan.Inserts); err != nil {
			return err
		}
		if err := tx.DeleteColumns(ctx, plan.DeleteIDs); err != nil {
			return err
		}
		return tx.Touch(ctx, table.TableID, operator)
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, table.TableID)
	log.Info().
		Str("table", tableName).
		Int("updated", len(plan.Updates)).
		Int("inserted", len(plan.Inserts)).
		Int("deleted", len(plan.DeleteIDs)).
		Msg("Table synchronized")
	return nil
}

// Update writes user edits. Columns missing from the request stay untouched.
func (s *GenService) Update(ctx context.Context, req UpdateGenTableRequest, operator string) error {
	if req.TableID <= 0 {
		return fmt.Errorf("%w: tableId is required", ErrValidation)
	}
	if strings.TrimSpace(req.ClassName) == "" || strings.TrimSpace(req.BusinessName) == "" {
		return fmt.Errorf("%w: className and businessName are required", ErrValidation)
	}

	table, err := s.repo.FindByID(ctx, req.TableID)
	if err != nil {
		return fmt.Errorf("failed to load table %d: %w", req.TableID, err)
	}
	if table == nil {
		return fmt.Errorf("%w: table %d", ErrNotFound, req.TableID)
	}

	columns, err := mergeColumnEdits(table.Columns, req.Columns)
	if err != nil {
		return err
	}

	if req.TableName != "" {
		table.Name = req.TableName
	}
	table.TableComment = req.TableComment
	table.ClassName = req.ClassName
	table.TplCategory = orKeep(req.TplCategory, table.TplCategory)
	table.TplWebType = orKeep(req.TplWebType, table.TplWebType)
	table.PackageName = orKeep(req.PackageName, table.PackageName)
	table.ModuleName = req.ModuleName
	table.BusinessName = req.BusinessName
	table.FunctionName = req.FunctionName
	table.FunctionAuthor = orKeep(req.FunctionAuthor, table.FunctionAuthor)
	table.GenType = orKeep(req.GenType, table.GenType)
	table.GenPath = orKeep(req.GenPath, table.GenPath)
	table.Remark = req.Remark
	table.UpdateBy = operator
	table.SetOptions(models.TableOptions{ParentMenuID: req.ParentMenuID})

	err = s.repo.Transaction(ctx, func(tx *repositories.GenTableRepository) error {
		if err := tx.UpdateTable(ctx, table); err != nil {
			return err
		}
		for i := range columns {
			columns[i].UpdateBy = operator
			if err := tx.UpdateColumn(ctx, &columns[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, table.TableID)
	log.Info().Int64("tableId", table.TableID).Int("columns", len(columns)).Msg("Table updated")
	return nil
}

// orKeep returns v, or current when v is blank.
func orKeep(v, current string) string {
	if strings.TrimSpace(v) == "" {
		return current
	}
	return v
}

// mergeColumnEdits applies the editable attributes of edits onto the stored
// columns they name and returns the changed columns.
func mergeColumnEdits(stored, edits []models.GenTableColumn) ([]models.GenTableColumn, error) {
	byID := make(map[int64]int, len(stored))
	for i, c := range stored {
		byID[c.ColumnID] = i
	}

	merged := make([]models.GenTableColumn, len(stored))
	copy(merged, stored)
	changed := make(map[int64]bool, len(edits))

	for _, e := range edits {
		i, ok := byID[e.ColumnID]
		if !ok {
			return nil, fmt.Errorf("%w: column %d does not belong to this table", ErrValidation, e.ColumnID)
		}
		if err := checkColumnChoices(e); err != nil {
			return nil, err
		}
		c := &merged[i]
		c.ColumnComment = e.ColumnComment
		c.FieldIdentifier = e.FieldIdentifier
		c.LanguageType = e.LanguageType
		c.HTMLWidget = e.HTMLWidget
		c.QueryOperator = e.QueryOperator
		c.DictType = e.DictType
		c.IsRequired = e.IsRequired
		c.IsInsert = e.IsInsert && !(c.IsPk && c.IsIncrement)
		c.IsEdit = e.IsEdit && !c.IsPk
		c.IsList = e.IsList
		c.IsQuery = e.IsQuery
		c.Sort = e.Sort
		changed[c.ColumnID] = true
	}

	if err := checkFieldIdentifiers(merged); err != nil {
		return nil, err
	}

	out := make([]models.GenTableColumn, 0, len(changed))
	for _, c := range merged {
		if changed[c.ColumnID] {
			out = append(out, c)
		}
	}
	return out, nil
}

// checkColumnChoices rejects a column edit carrying an unknown type, widget or
// operator.
func checkColumnChoices(c models.GenTableColumn) error {
	switch {
	case !models.ValidLanguageType(c.LanguageType):
		return fmt.Errorf("%w: column %d has unknown language type %q", ErrValidation, c.ColumnID, c.LanguageType)
	case !models.ValidHTMLWidget(c.HTMLWidget):
		return fmt.Errorf("%w: column %d has unknown html type %q", ErrValidation, c.ColumnID, c.HTMLWidget)
	case !models.ValidQueryOperator(c.QueryOperator):
		return fmt.Errorf("%w: column %d has unknown query type %q", ErrValidation, c.ColumnID, c.QueryOperator)
	}
	return nil
}

// checkFieldIdentifiers requires every column of a table to carry a distinct,
// non-empty field identifier.
func checkFieldIdentifiers(cols []models.GenTableColumn) error {
	fields := make(map[string]string, len(cols))
	for _, c := range cols {
		if c.FieldIdentifier == "" {
			return fmt.Errorf("%w: column %s needs a field name", ErrValidation, c.ColumnName)
		}
		if other, dup := fields[c.FieldIdentifier]; dup {
			return fmt.Errorf("%w: columns %s and %s share field %s", ErrValidation, other, c.ColumnName, c.FieldIdentifier)
		}
		fields[c.FieldIdentifier] = c.ColumnName
	}
	return nil
}

// Delete removes managed tables and their columns.
func (s *GenService) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no table ids given", ErrValidation)
	}
	err := s.repo.Transaction(ctx, func(tx *repositories.GenTableRepository) error {
		return tx.Delete(ctx, ids)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, ids...)
	log.Info().Ints64("tableIds", ids).Msg("Tables deleted")
	return nil
}

func (s *GenService) List(ctx context.Context, q models.GenTableQuery) ([]models.GenTable, int64, error) {
	return s.repo.List(ctx, q)
}

// ListDBTables lists the live tables that can still be imported.
func (s *GenService) ListDBTables(ctx context.Context, q models.DBTableQuery) ([]models.DBTable, int64, error) {
	return s.schema.ListTables(ctx, q)
}

func (s *GenService) DetailByID(ctx context.Context, id int64) (*models.TableDetail, error) {
	table, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %d: %w", id, err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: table %d", ErrNotFound, id)
	}
	return models.NewTableDetail(*table), nil
}

func (s *GenService) DetailByName(ctx context.Context, name string) (*models.TableDetail, error) {
	table, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load table %s: %w", name, err)
	}
	if table == nil {
		return nil, fmt.Errorf("%w: table %s", ErrNotFound, name)
	}
	return models.NewTableDetail(*table), nil
}

// Preview renders every artifact of a table in memory, served from the cache
// when possible.
func (s *GenService) Preview(ctx context.Context, tableID int64) (map[string]string, error) {
	if s.cache != nil {
		cached, err := s.cache.GetPreview(ctx, tableID)
		if err != nil {
			log.Warn().Err(err).Int64("tableId", tableID).Msg("Preview cache unavailable")
		} else if cached != nil {
			log.Debug().Int64("tableId", tableID).Msg("Preview cache hit")
			return cached, nil
		}
	}

	detail, err := s.DetailByID(ctx, tableID)
	if err != nil {
		return nil, err
	}
	preview, err := s.renderer.Render(render.NewRenderModel(detail))
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetPreview(ctx, tableID, preview); err != nil {
			log.Warn().Err(err).Int64("tableId", tableID).Msg("Failed to cache preview")
		}
	}
	return preview, nil
}

// Generate renders every named table and writes one zip archive to w.
func (s *GenService) Generate(ctx context.Context, names []string, w io.Writer) error {
	files, err := s.Files(ctx, names)
	if err != nil {
		return err
	}
	return s.packager.StageAndArchive(ctx, files, w)
}

// Files renders every named table into archive-ready files.
func (s *GenService) Files(ctx context.Context, names []string) ([]render.File, error) {
	names = cleanNames(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no table names given", ErrValidation)
	}

	tables, err := s.repo.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to load tables: %w", err)
	}
	if len(tables) != len(names) {
		found := make(map[string]bool, len(tables))
		for _, t := range tables {
			found[t.Name] = true
		}
		for _, n := range names {
			if !found[n] {
				return nil, fmt.Errorf("%w: table %s is not managed", ErrNotFound, n)
			}
		}
	}

	var files []render.File
	for _, t := range tables {
		tableFiles, err := s.renderer.Files(render.NewRenderModel(models.NewTableDetail(t)))
		if err != nil {
			return nil, err
		}
		files = append(files, tableFiles...)
	}
	return files, nil
}

func (s *GenService) invalidate(ctx context.Context, ids ...int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePreview(ctx, ids...); err != nil {
		log.Warn().Err(err).Ints64("tableIds", ids).Msg("Failed to invalidate preview cache")
	}
}

// IsRenderError reports whether err came from a failing template.
func IsRenderError(err error) bool {
	var re *render.RenderError
	return errors.As(err, &re)
}
