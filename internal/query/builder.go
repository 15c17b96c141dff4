package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/timcrose/sessionstore/internal/model"
)

// Build renders q as parameterised SQL.
func (q Query) Build() (string, []any, error) {
	cols, err := q.selected()
	if err != nil {
		return "", nil, err
	}

	from := cols[0].Table
	chain := []model.Table{from}

	var b strings.Builder
	b.WriteString("SELECT ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.sql())
	}
	b.WriteString("\nFROM ")
	b.WriteString(pgx.Identifier{from.Name}.Sanitize())

	for _, j := range q.Joins {
		on, err := joinCondition(j, chain)
		if err != nil {
			return "", nil, err
		}
		chain = append(chain, j.Table)
		fmt.Fprintf(&b, "\nJOIN %s ON %s = %s",
			pgx.Identifier{j.Table.Name}.Sanitize(), on.Left.sql(), on.Right.sql())
	}

	for _, c := range cols {
		if !inChain(c.Table, chain) {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownTable, c.Table.Name)
		}
	}

	var args []any
	if len(q.Where) > 0 {
		b.WriteString("\nWHERE ")
		for i, cond := range q.Where {
			if i > 0 {
				b.WriteString(" AND ")
			}
			frag, err := cond.render(len(args)+1, chain)
			if err != nil {
				return "", nil, err
			}
			b.WriteString(frag)
			args = append(args, cond.Values...)
		}
	}

	if q.OrderBy != nil {
		if err := checkColumn(*q.OrderBy, chain); err != nil {
			return "", nil, err
		}
		b.WriteString("\nORDER BY ")
		b.WriteString(q.OrderBy.sql())
	}

	return b.String(), args, nil
}

// selected expands the select list into columns and validates them.
func (q Query) selected() ([]Column, error) {
	var cols []Column
	for _, s := range q.Select {
		cols = append(cols, s.columns()...)
	}
	if len(cols) == 0 {
		return nil, ErrEmptySelect
	}
	for _, c := range cols {
		if !c.Table.HasColumn(c.Name) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
		}
	}
	return cols, nil
}

func (c Condition) render(next int, chain []model.Table) (string, error) {
	if err := checkColumn(c.Column, chain); err != nil {
		return "", err
	}
	col := c.Column.sql()

	switch c.Op {
	case "BETWEEN":
		if len(c.Values) != 2 {
			return "", fmt.Errorf("BETWEEN on %s needs 2 values, got %d", c.Column, len(c.Values))
		}
		return fmt.Sprintf("%s BETWEEN $%d AND $%d", col, next, next+1), nil
	case "IN":
		if len(c.Values) == 0 {
			return "", fmt.Errorf("%w: %s", ErrEmptyIn, c.Column)
		}
		return fmt.Sprintf("%s IN (%s)", col, placeholders(next, len(c.Values))), nil
	case "=", "<>", "<", "<=", ">", ">=":
		if len(c.Values) != 1 {
			return "", fmt.Errorf("%s on %s needs 1 value, got %d", c.Op, c.Column, len(c.Values))
		}
		return fmt.Sprintf("%s %s $%d", col, c.Op, next), nil
	default:
		return "", fmt.Errorf("unsupported operator %q", c.Op)
	}
}

// joinCondition returns the explicit condition of j or infers one from a
// foreign key between j.Table and a table already joined.
func joinCondition(j Join, chain []model.Table) (JoinOn, error) {
	if j.On != nil {
		for _, c := range []Column{j.On.Left, j.On.Right} {
			if !c.Table.HasColumn(c.Name) {
				return JoinOn{}, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
			}
			if c.Table.Name != j.Table.Name && !inChain(c.Table, chain) {
				return JoinOn{}, fmt.Errorf("%w: %s", ErrUnknownTable, c.Table.Name)
			}
		}
		return *j.On, nil
	}

	for _, t := range chain {
		for _, fk := range t.ForeignKeys {
			if fk.RefTable == j.Table.Name {
				return JoinOn{Left: Col(t, fk.Column), Right: Col(j.Table, fk.RefCol)}, nil
			}
		}
		for _, fk := range j.Table.ForeignKeys {
			if fk.RefTable == t.Name {
				return JoinOn{Left: Col(t, fk.RefCol), Right: Col(j.Table, fk.Column)}, nil
			}
		}
	}
	return JoinOn{}, fmt.Errorf("%w: %s", ErrNoJoinPath, j.Table.Name)
}

func checkColumn(c Column, chain []model.Table) error {
	if !c.Table.HasColumn(c.Name) {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, c)
	}
	if !inChain(c.Table, chain) {
		return fmt.Errorf("%w: %s", ErrUnknownTable, c.Table.Name)
	}
	return nil
}

func inChain(t model.Table, chain []model.Table) bool {
	for _, c := range chain {
		if c.Name == t.Name {
			return true
		}
	}
	return false
}

func placeholders(start, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(ps, ", ")
}
