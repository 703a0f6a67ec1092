// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains the thin SQL data access layer. Each store is a
// struct over *sql.DB with one method per query; business rules live in
// the taxonomy service and handlers.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicateSlug is returned when an article insert or update violates
// the unique slug index. Callers retry with the next suffix candidate.
var ErrDuplicateSlug = errors.New("article slug already in use")

// uniqueViolation is the PostgreSQL SQLSTATE for unique-index violations.
const uniqueViolation = "23505"

// violatedConstraint returns the name of the violated unique constraint,
// or "" when err is not a unique violation.
func violatedConstraint(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName
	}
	return ""
}
