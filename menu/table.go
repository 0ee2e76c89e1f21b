// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package menu

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/mdhender/emptrack"
)

// renderTable writes a header, a rule and one line per row, columns
// aligned. An empty set prints the header and rule only.
func renderTable(w io.Writer, set *emptrack.RowSet) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	rule := make([]string, len(set.Columns))
	for i, name := range set.Columns {
		rule[i] = strings.Repeat("-", len(name))
	}
	fmt.Fprintln(tw, strings.Join(set.Columns, "\t"))
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	cells := make([]string, len(set.Columns))
	for _, row := range set.Rows {
		for i, name := range set.Columns {
			cells[i] = formatCell(row[name])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}

	return tw.Flush()
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
