// Package model defines shared data types used across the session store.
//
// All types mirror the database schema created by internal/database.
//
// Conventions:
//   - Timestamps: naive exchange wall-clock time carried in time.UTC
//   - IDs: application-assigned, dense, 0-based
//   - Session records share one shape; SessionKind selects the physical table
package model
