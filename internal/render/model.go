package render

import (
	"encoding/json"
	"strings"

	"admin_codegen/internal/models"
	"admin_codegen/internal/utils"
)

// Column is a column as the templates see it.
type Column struct {
	models.GenTableColumn

	// Label is the comment cut at the first opening parenthesis.
	Label string
	// AttrName is the field identifier with its first letter upper-cased.
	AttrName string
	// TSType is the TypeScript type of the field.
	TSType string
}

func (c Column) HasDict() bool {
	return c.DictType != ""
}

// RenderModel is the template-ready projection of a managed table. Every template
// picks its columns from the slices computed here and never filters on its own.
type RenderModel struct {
	TableName    string
	TableComment string
	ClassName    string
	PackageName  string
	ModuleName   string
	BusinessName string
	FunctionName string
	Author       string
	ParentMenuID int64
	SeedTime     string

	ModelName          string // camelCase table name
	ModelNamePascal    string
	FileName           string // kebab-case table name
	EntityName         string // camelCase class name
	BusinessNamePascal string

	PkColumn   Column
	PkIsNumber bool

	ColumnNamesJSON    string
	HasCreateTime      bool
	HasUpdateTime      bool
	HasBaseAuditFields bool

	Dicts         string // "a","b"
	DictsNoSymbol string // a,b

	Columns []Column

	QueryColumns    []Column // every queryable column
	FilterColumns   []Column // queryable, compared against a single value
	BetweenColumns  []Column // queryable as a begin/end range
	ListColumns     []Column
	FormColumns     []Column
	CreateColumns   []Column
	UpdateColumns   []Column
	RequiredColumns []Column
}

// NewRenderModel derives the render model of a managed table.
func NewRenderModel(d *models.TableDetail) RenderModel {
	m := RenderModel{
		TableName:    d.Name,
		TableComment: d.TableComment,
		ClassName:    d.ClassName,
		PackageName:  d.PackageName,
		ModuleName:   d.ModuleName,
		BusinessName: d.BusinessName,
		FunctionName: d.FunctionName,
		Author:       d.FunctionAuthor,
		ParentMenuID: d.ParentMenuID,

		ModelName:          utils.ToCamelCase(d.Name),
		ModelNamePascal:    utils.ToPascalCase(d.Name),
		FileName:           utils.ToKebabCase(d.Name),
		EntityName:         utils.ToCamelCase(d.ClassName),
		BusinessNamePascal: utils.UpperFirst(d.BusinessName),

		HasCreateTime: d.HasColumn("create_time"),
		HasUpdateTime: d.HasColumn("update_time"),
		HasBaseAuditFields: d.HasColumn("create_time") && d.HasColumn("update_time") &&
			d.HasColumn("create_by") && d.HasColumn("update_by"),
	}

	seed := d.UpdateTime
	if seed.IsZero() {
		seed = d.CreateTime
	}
	if !seed.IsZero() {
		m.SeedTime = seed.Format("2006-01-02 15:04:05")
	}

	m.PkColumn = newColumn(d.PkColumn)
	m.PkIsNumber = d.PkColumn.LanguageType == models.TypeNumber

	comments := make([]string, 0, len(d.Columns))
	for _, gc := range d.Columns {
		col := newColumn(gc)
		m.Columns = append(m.Columns, col)
		comments = append(comments, col.ColumnComment)

		if col.IsQuery {
			m.QueryColumns = append(m.QueryColumns, col)
			if col.QueryOperator == models.QueryBetween {
				m.BetweenColumns = append(m.BetweenColumns, col)
			} else {
				m.FilterColumns = append(m.FilterColumns, col)
			}
		}
		if col.IsPk || col.IsList {
			m.ListColumns = append(m.ListColumns, col)
		}
		if col.IsInsert {
			m.CreateColumns = append(m.CreateColumns, col)
		}
		if col.IsEdit && !col.IsPk {
			m.UpdateColumns = append(m.UpdateColumns, col)
		}
		if (col.IsInsert || col.IsEdit) && !(col.IsPk && col.IsIncrement) {
			m.FormColumns = append(m.FormColumns, col)
			if col.IsRequired {
				m.RequiredColumns = append(m.RequiredColumns, col)
			}
		}
	}

	names, _ := json.Marshal(comments)
	m.ColumnNamesJSON = string(names)

	quoted := make([]string, 0, len(d.Dicts))
	for _, dict := range d.Dicts {
		quoted = append(quoted, `"`+dict+`"`)
	}
	m.Dicts = strings.Join(quoted, ",")
	m.DictsNoSymbol = strings.Join(d.Dicts, ",")

	return m
}

func newColumn(gc models.GenTableColumn) Column {
	if gc.ColumnComment == "" {
		gc.ColumnComment = gc.ColumnName
	}
	col := Column{
		GenTableColumn: gc,
		Label:          label(gc.ColumnComment),
		AttrName:       utils.UpperFirst(gc.FieldIdentifier),
		TSType:         "string",
	}
	if gc.LanguageType == models.TypeNumber {
		col.TSType = "number"
	}
	return col
}

func label(comment string) string {
	if i := strings.IndexAny(comment, "(（"); i > 0 {
		return strings.TrimSpace(comment[:i])
	}
	return comment
}
