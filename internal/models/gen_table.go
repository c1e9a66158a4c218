package models

import (
	"encoding/json"
	"time"
)

// GenTable is a table managed by the code generator (gen_table).
type GenTable struct {
	TableID        int64            `gorm:"column:table_id;primaryKey;autoIncrement" json:"tableId"`
	Name           string           `gorm:"column:table_name;type:varchar(200);not null;uniqueIndex" json:"tableName"`
	TableComment   string           `gorm:"column:table_comment;type:varchar(500)" json:"tableComment"`
	ClassName      string           `gorm:"column:class_name;type:varchar(100)" json:"className"`
	TplCategory    string           `gorm:"column:tpl_category;type:varchar(200)" json:"tplCategory"`
	TplWebType     string           `gorm:"column:tpl_web_type;type:varchar(30)" json:"tplWebType"`
	PackageName    string           `gorm:"column:package_name;type:varchar(100)" json:"packageName"`
	ModuleName     string           `gorm:"column:module_name;type:varchar(30)" json:"moduleName"`
	BusinessName   string           `gorm:"column:business_name;type:varchar(30)" json:"businessName"`
	FunctionName   string           `gorm:"column:function_name;type:varchar(50)" json:"functionName"`
	FunctionAuthor string           `gorm:"column:function_author;type:varchar(50)" json:"functionAuthor"`
	GenType        string           `gorm:"column:gen_type;type:char(1)" json:"genType"`
	GenPath        string           `gorm:"column:gen_path;type:varchar(200)" json:"genPath"`
	Options        string           `gorm:"column:options;type:text" json:"options"`
	Remark         string           `gorm:"column:remark;type:varchar(500)" json:"remark"`
	CreateBy       string           `gorm:"column:create_by;type:varchar(64)" json:"createBy"`
	CreateTime     time.Time        `gorm:"column:create_time;autoCreateTime" json:"createTime"`
	UpdateBy       string           `gorm:"column:update_by;type:varchar(64)" json:"updateBy"`
	UpdateTime     time.Time        `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
	Columns        []GenTableColumn `gorm:"foreignKey:TableID;references:TableID" json:"columns,omitempty"`
}

func (GenTable) TableName() string {
	return "gen_table"
}

// TableOptions is the decoded form of GenTable.Options.
type TableOptions struct {
	ParentMenuID int64 `json:"parentMenuId"`
}

// ParsedOptions decodes Options, treating empty or malformed JSON as zero options.
func (t *GenTable) ParsedOptions() TableOptions {
	var opts TableOptions
	if t.Options == "" {
		return opts
	}
	_ = json.Unmarshal([]byte(t.Options), &opts)
	return opts
}

// SetOptions encodes opts into Options.
func (t *GenTable) SetOptions(opts TableOptions) {
	data, _ := json.Marshal(opts)
	t.Options = string(data)
}

// GenTableQuery filters and pages the managed table list.
type GenTableQuery struct {
	TableName    string `form:"tableName"`
	TableComment string `form:"tableComment"`
	BeginTime    string `form:"params[beginTime]"`
	EndTime      string `form:"params[endTime]"`
	PageNum      int    `form:"pageNum"`
	PageSize     int    `form:"pageSize"`
}

func (q *GenTableQuery) Normalize() {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
}

func (q GenTableQuery) Offset() int {
	return (q.PageNum - 1) * q.PageSize
}

// TableDetail is a managed table together with the values derived from its columns.
type TableDetail struct {
	GenTable
	PkColumn     GenTableColumn `json:"pkColumn"`
	ColumnNames  []string       `json:"columnsKey"`
	ParentMenuID int64          `json:"parentMenuId"`
	Dicts        []string       `json:"dicts"`
}

// NewTableDetail derives the primary column, column names and dictionaries of t.
// The primary column is the first auto-incrementing primary key, else the first column.
func NewTableDetail(t GenTable) *TableDetail {
	d := &TableDetail{
		GenTable:     t,
		ColumnNames:  make([]string, 0, len(t.Columns)),
		ParentMenuID: t.ParsedOptions().ParentMenuID,
	}
	seen := make(map[string]bool)
	for _, c := range t.Columns {
		d.ColumnNames = append(d.ColumnNames, c.ColumnName)
		if c.DictType != "" && !seen[c.DictType] {
			seen[c.DictType] = true
			d.Dicts = append(d.Dicts, c.DictType)
		}
	}
	for _, c := range t.Columns {
		if c.IsPk && c.IsIncrement {
			d.PkColumn = c
			return d
		}
	}
	if len(t.Columns) > 0 {
		d.PkColumn = t.Columns[0]
	}
	return d
}

// HasColumn reports whether the table has a column with the given name.
func (d *TableDetail) HasColumn(name string) bool {
	for _, n := range d.ColumnNames {
		if n == name {
			return true
		}
	}
	return false
}
