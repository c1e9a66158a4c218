package models

import "time"

// GenTableColumn is the generator's classified view of one column (gen_table_column).
type GenTableColumn struct {
	ColumnID        int64     `gorm:"column:column_id;primaryKey;autoIncrement" json:"columnId"`
	TableID         int64     `gorm:"column:table_id;not null;index" json:"tableId"`
	ColumnName      string    `gorm:"column:column_name;type:varchar(200);not null" json:"columnName"`
	ColumnComment   string    `gorm:"column:column_comment;type:varchar(500)" json:"columnComment"`
	ColumnType      string    `gorm:"column:column_type;type:varchar(100)" json:"columnType"`
	FieldIdentifier string    `gorm:"column:java_field;type:varchar(200)" json:"javaField"`
	LanguageType    string    `gorm:"column:java_type;type:varchar(500)" json:"javaType"`
	HTMLWidget      string    `gorm:"column:html_type;type:varchar(200)" json:"htmlType"`
	QueryOperator   string    `gorm:"column:query_type;type:varchar(200)" json:"queryType"`
	DictType        string    `gorm:"column:dict_type;type:varchar(200)" json:"dictType"`
	IsPk            bool      `gorm:"column:is_pk" json:"isPk"`
	IsIncrement     bool      `gorm:"column:is_increment" json:"isIncrement"`
	IsRequired      bool      `gorm:"column:is_required" json:"isRequired"`
	IsInsert        bool      `gorm:"column:is_insert" json:"isInsert"`
	IsEdit          bool      `gorm:"column:is_edit" json:"isEdit"`
	IsList          bool      `gorm:"column:is_list" json:"isList"`
	IsQuery         bool      `gorm:"column:is_query" json:"isQuery"`
	Sort            int       `gorm:"column:sort" json:"sort"`
	CreateBy        string    `gorm:"column:create_by;type:varchar(64)" json:"createBy"`
	CreateTime      time.Time `gorm:"column:create_time;autoCreateTime" json:"createTime"`
	UpdateBy        string    `gorm:"column:update_by;type:varchar(64)" json:"updateBy"`
	UpdateTime      time.Time `gorm:"column:update_time;autoUpdateTime" json:"updateTime"`
}

func (GenTableColumn) TableName() string {
	return "gen_table_column"
}
