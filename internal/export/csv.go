package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

// writeCSV writes every section as a "# <name>" line, the header row and
// the data rows. Sections are separated by a blank line.
func writeCSV(sections []section) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	names := newSheetNamer()

	for i, sec := range sections {
		if i > 0 {
			w.Flush()
			buf.WriteString("\n")
		}
		if err := w.Write([]string{"# " + names.name(sec.name)}); err != nil {
			return nil, err
		}
		if err := w.Write(sec.headers); err != nil {
			return nil, err
		}
		for _, values := range sec.rows {
			record := make([]string, len(values))
			for j, v := range values {
				record[j] = csvValue(v)
			}
			if err := w.Write(record); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func csvValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case time.Time:
		return t.Format(domain.DateLayout)
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
