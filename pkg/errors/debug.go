package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const sqliteUniquePrefix = "UNIQUE constraint failed: "

// DBError is the driver-level detail behind a failed statement.
type DBError struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// ErrorDump flattens an error chain for logs. It is never sent to clients.
type ErrorDump struct {
	Message string   `json:"message"`
	Code    Code     `json:"code,omitempty"`
	Chain   []string `json:"chain,omitempty"`
	DB      *DBError `json:"db,omitempty"`
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{Message: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	d.DB = dbErrorOf(err)
	return d
}

func dbErrorOf(err error) *DBError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBError{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBError{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
		}
	}

	// sqlite only reports "UNIQUE constraint failed: table.column".
	msg := err.Error()
	idx := strings.Index(msg, sqliteUniquePrefix)
	if idx < 0 {
		return nil
	}
	target := strings.TrimSpace(msg[idx+len(sqliteUniquePrefix):])
	out := &DBError{Driver: "sqlite", Constraint: target}
	if table, column, ok := strings.Cut(target, "."); ok {
		out.Table = table
		out.Column = column
	}
	return out
}
