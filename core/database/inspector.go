package database

import (
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo matches the output of SHOW COLUMNS.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

// SchemaIssue describes a table or column that is expected but absent.
type SchemaIssue struct {
	Table  string `json:"table"`
	Column string `json:"column,omitempty"`
	Reason string `json:"reason"`
}

// GetTableColumns retrieves the column definitions for a given table.
// A table that does not exist yields no columns and no error.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	var columns []ColumnInfo
	if db.Dialector.Name() == "sqlite" {
		type sqliteColumn struct {
			Cid        int
			Name       string
			Type       string
			Notnull    int
			DefaultVal *string `gorm:"column:dflt_value"`
			Pk         int
		}
		var sqliteCols []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&sqliteCols).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		for _, col := range sqliteCols {
			columns = append(columns, ColumnInfo{
				Field: strings.ToLower(col.Name),
				Type:  strings.ToLower(col.Type),
			})
		}
		return columns, nil
	}

	if !db.Migrator().HasTable(tableName) {
		return nil, nil
	}
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// CheckSchema compares the live schema with the expected table -> columns map.
// Issues are sorted by table then column.
func CheckSchema(db *gorm.DB, expected map[string][]string) ([]SchemaIssue, error) {
	var issues []SchemaIssue
	for table, want := range expected {
		cols, err := GetTableColumns(db, table)
		if err != nil {
			return nil, err
		}
		if len(cols) == 0 {
			issues = append(issues, SchemaIssue{Table: table, Reason: "missing table"})
			continue
		}
		have := make(map[string]bool, len(cols))
		for _, c := range cols {
			have[c.Field] = true
		}
		for _, col := range want {
			if !have[strings.ToLower(col)] {
				issues = append(issues, SchemaIssue{Table: table, Column: col, Reason: "missing column"})
			}
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Table != issues[j].Table {
			return issues[i].Table < issues[j].Table
		}
		return issues[i].Column < issues[j].Column
	})
	return issues, nil
}
