package models

import "time"

// RawColumn is one column as reported by the database catalog.
type RawColumn struct {
	ColumnName    string `json:"columnName"`
	IsRequired    bool   `json:"isRequired"` // NOT NULL and not part of the primary key
	IsPk          bool   `json:"isPk"`
	Sort          int    `json:"sort"` // ordinal position
	ColumnComment string `json:"columnComment"`
	IsIncrement   bool   `json:"isIncrement"`
	ColumnType    string `json:"columnType"` // e.g. varchar(255), int4, timestamp
}

// DBTable is a database table that can be imported into the generator.
type DBTable struct {
	TableName    string     `json:"tableName"`
	TableComment string     `json:"tableComment"`
	CreateTime   *time.Time `json:"createTime"`
	UpdateTime   *time.Time `json:"updateTime"`
}

// DBTableQuery filters and pages the importable table list.
type DBTableQuery struct {
	TableName    string `form:"tableName"`
	TableComment string `form:"tableComment"`
	PageNum      int    `form:"pageNum"`
	PageSize     int    `form:"pageSize"`
}

// Normalize applies paging defaults.
func (q *DBTableQuery) Normalize() {
	if q.PageNum < 1 {
		q.PageNum = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
}

func (q DBTableQuery) Offset() int {
	return (q.PageNum - 1) * q.PageSize
}
