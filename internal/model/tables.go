package model

// Column type names used in DDL.
const (
	TypeInteger   = "INTEGER"
	TypeBigInt    = "BIGINT"
	TypeDouble    = "DOUBLE PRECISION"
	TypeTimestamp = "TIMESTAMP WITHOUT TIME ZONE"
	TypeSymbol    = "VARCHAR(10)"
)

// ColumnDef describes a single table column.
type ColumnDef struct {
	Name string
	Type string
}

// ForeignKey links a column to the primary key of another table.
type ForeignKey struct {
	Column   string
	RefTable string
	RefCol   string
}

// Table describes a persisted entity: its name, primary key, columns and references.
type Table struct {
	Name        string
	Entity      string // CamelCase entity name, e.g. MarketHours
	PrimaryKey  string
	Columns     []ColumnDef
	ForeignKeys []ForeignKey
}

// ColumnNames returns the table's column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether name is a column of t.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c.Name == name {
			return true
		}
	}
	return false
}

// Shared session record column names.
const (
	ColVWAPPct   = "vwap_pct"
	ColDollarVol = "dollar_vol"
	ColDatetime  = "datetime"
	ColSymbolID  = "symbol_id"
	ColSymbol    = "symbol"
)

// SymbolsTable holds ticker symbols.
var SymbolsTable = Table{
	Name:       "symbols",
	Entity:     "Symbols",
	PrimaryKey: ColSymbolID,
	Columns: []ColumnDef{
		{Name: ColSymbolID, Type: TypeInteger},
		{Name: ColSymbol, Type: TypeSymbol},
	},
}

var (
	PreMarketHoursTable   = sessionTable("pre_market_hours", "PreMarketHours")
	MarketHoursTable      = sessionTable("market_hours", "MarketHours")
	AfterMarketHoursTable = sessionTable("after_market_hours", "AfterMarketHours")
)

// Tables lists every entity in dependency order (referenced tables first).
var Tables = []Table{SymbolsTable, PreMarketHoursTable, MarketHoursTable, AfterMarketHoursTable}

// TableByName looks up a table descriptor by its SQL name.
func TableByName(name string) (Table, bool) {
	for _, t := range Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableByEntity looks up a table descriptor by its entity name.
func TableByEntity(entity string) (Table, bool) {
	for _, t := range Tables {
		if t.Entity == entity {
			return t, true
		}
	}
	return Table{}, false
}

func sessionTable(name, entity string) Table {
	pk := name + "_id"
	return Table{
		Name:       name,
		Entity:     entity,
		PrimaryKey: pk,
		Columns: []ColumnDef{
			{Name: pk, Type: TypeBigInt},
			{Name: ColVWAPPct, Type: TypeDouble},
			{Name: ColDollarVol, Type: TypeDouble},
			{Name: ColDatetime, Type: TypeTimestamp},
			{Name: ColSymbolID, Type: TypeInteger},
		},
		ForeignKeys: []ForeignKey{
			{Column: ColSymbolID, RefTable: SymbolsTable.Name, RefCol: ColSymbolID},
		},
	}
}
