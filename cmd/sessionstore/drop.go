package main

import (
	"context"

	"github.com/timcrose/sessionstore/internal/database"
	"github.com/timcrose/sessionstore/internal/model"
)

// dropNamed drops tables in argument order. Entity names such as
// "MarketHours" are resolved to their tables; anything else is used as a
// table name verbatim, so a missing table fails.
func dropNamed(ctx context.Context, e *env, names []string) error {
	for _, name := range names {
		if t, ok := model.TableByEntity(name); ok {
			if err := database.DropEntities(ctx, e.pool, t); err != nil {
				return err
			}
			continue
		}
		if err := database.DropTables(ctx, e.pool, name); err != nil {
			return err
		}
	}
	return nil
}
