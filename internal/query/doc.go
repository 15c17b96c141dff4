// Package query composes multi-table reads over the session tables.
//
// A Query names the columns or whole tables to return, AND-combined filter
// conditions, an optional join chain and an optional sort column:
//
//	q := query.Query{
//		Select:  []query.Selector{query.Col(model.MarketHoursTable, "vwap_pct")},
//		Where:   query.And(query.Eq(query.Col(model.SymbolsTable, "symbol"), "AA")),
//		Joins:   []query.Join{{Table: model.SymbolsTable}},
//		OrderBy: &query.Column{Table: model.MarketHoursTable, Name: "market_hours_id"},
//	}
//
// Joins without an explicit condition follow the foreign key between the
// joined table and a table already in the chain. Aggregation, pagination and
// OR are not supported.
package query
