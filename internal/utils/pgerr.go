package utils

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgCheckViolation = "23514"
	pgInvalidText    = "22P02"
)

// PGCheckViolation returns the violated constraint name if err is a
// PostgreSQL check violation (code 23514).
func PGCheckViolation(err error) (constraint string, ok bool) {
	var pge *pgconn.PgError
	if errors.As(err, &pge) && pge.Code == pgCheckViolation {
		return pge.ConstraintName, true
	}
	return "", false
}

// PGInvalidText reports whether err is PostgreSQL invalid_text_representation
// (code 22P02), e.g. a malformed uuid literal, and returns the rejected input
// quoted in the server message when present.
func PGInvalidText(err error) (value string, ok bool) {
	var pge *pgconn.PgError
	if !errors.As(err, &pge) || pge.Code != pgInvalidText {
		return "", false
	}
	// invalid input syntax for type uuid: "abc"
	msg := pge.Message
	if i := strings.Index(msg, ": \""); i >= 0 && len(msg) > i+3 && strings.HasSuffix(msg, "\"") {
		return msg[i+3 : len(msg)-1], true
	}
	return "", true
}
