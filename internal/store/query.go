package store

import (
	"fmt"
	"strings"

	"github.com/roach88/updatelog/internal/record"
)

// recordColumns is the column list every record query selects, in scan order.
const recordColumns = `id, client, people_connected, actions, next_meeting, address,
	actions_taken, meeting_date, client_order, global_order, client_first_appearance,
	created_at, updated_at`

// orderKey names a deterministic ORDER BY clause. Every key ends in id so
// ties never depend on SQLite's scan order.
type orderKey string

const (
	// orderDisplay groups clients by first appearance, then arrival order.
	orderDisplay orderKey = "client_first_appearance ASC, global_order ASC, id ASC"

	// orderClient is the manual per-client sequence.
	orderClient orderKey = "client_order ASC, id ASC"
)

// compileSelect builds a parameterized SELECT over meetings.
//
// MANDATORY: Every query includes an ORDER BY ending in id.
// MANDATORY: All values are parameterized, never interpolated.
func compileSelect(f record.Filter, order orderKey) (string, []any) {
	var (
		where  []string
		params []any
	)

	if f.Client != "" {
		where = append(where, "client = ?")
		params = append(params, f.Client)
	}

	if f.ClientContains != "" {
		where = append(where, `LOWER(client) LIKE ? ESCAPE '\'`)
		params = append(params, "%"+escapeLike(strings.ToLower(f.ClientContains))+"%")
	}

	if f.IDs != nil {
		if len(f.IDs) == 0 {
			where = append(where, "1 = 0")
		} else {
			where = append(where, "id IN ("+placeholders(len(f.IDs))+")")
			for _, id := range f.IDs {
				params = append(params, id)
			}
		}
	}

	var whereClause string
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	sql := fmt.Sprintf("SELECT %s FROM meetings%s ORDER BY %s", recordColumns, whereClause, order)
	return sql, params
}

// placeholders returns "?, ?, ?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// escapeLike escapes LIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
