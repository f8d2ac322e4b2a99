package repository

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoFields is returned when an update carries nothing to change.
	ErrNoFields = errors.New("no fields to update")
	// ErrUnknownField is returned for a field missing from the column map.
	ErrUnknownField = errors.New("field is not updatable")
)

type fieldColumn[F comparable] struct {
	field  F
	column string
}

// updateSpec whitelists the updatable columns of a table. SET clauses are
// emitted in declaration order so statements are stable.
type updateSpec[F comparable] struct {
	table   string
	columns []fieldColumn[F]
}

func (u updateSpec[F]) build(id int, values map[F]any) (string, []any, error) {
	if len(values) == 0 {
		return "", nil, ErrNoFields
	}

	sets := make([]string, 0, len(values))
	args := make([]any, 0, len(values)+1)
	seen := 0
	for _, fc := range u.columns {
		v, ok := values[fc.field]
		if !ok {
			continue
		}
		sets = append(sets, fc.column+" = ?")
		args = append(args, v)
		seen++
	}
	if seen != len(values) {
		return "", nil, ErrUnknownField
	}

	args = append(args, id)
	q := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", u.table, strings.Join(sets, ", "))
	return q, args, nil
}
