package datasource

// TableMetadata represents a discovered database table.
type TableMetadata struct {
	SchemaName string
	TableName  string
	RowCount   int64
}

// ColumnMetadata represents a discovered database column, in the shape the
// profiler and key/FD discovery stages consume: a lowercased, dialect-native
// type name rather than one normalized across adapters.
type ColumnMetadata struct {
	ColumnName      string
	DataTypeLower   string
	Nullable        bool
	OrdinalPosition int
}
