package export

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

const (
	minColWidth = 10
	maxColWidth = 50
	chartWidth  = 720
	chartHeight = 360
)

func writeXLSX(sections []section, includeCharts bool) ([]byte, error) {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Msg("close workbook")
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	names := newSheetNamer()
	for i, sec := range sections {
		sheet := names.name(sec.name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return nil, fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, sec, headerStyle); err != nil {
			return nil, err
		}

		if includeCharts && sec.chart {
			if err := addColumnChart(f, sheet, sec); err != nil {
				log.Warn().Err(err).Str("sheet", sheet).Msg("chart could not be rendered, exporting data only")
			}
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, sec section, headerStyle int) error {
	headers := make([]any, len(sec.headers))
	widths := make([]int, len(sec.headers))
	for i, h := range sec.headers {
		headers[i] = h
		widths[i] = utf8.RuneCountInString(h)
	}
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("style header of %s: %w", sheet, err)
	}

	for r, values := range sec.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		row := values
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", r+1, sheet, err)
		}
		for c, v := range values {
			if c < len(widths) && v != nil {
				if n := utf8.RuneCountInString(fmt.Sprint(v)); n > widths[c] {
					widths[c] = n
				}
			}
		}
	}

	for c, w := range widths {
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, float64(clamp(w+2, minColWidth, maxColWidth))); err != nil {
			return fmt.Errorf("set width of %s!%s: %w", sheet, col, err)
		}
	}
	return nil
}

// addColumnChart places a native column chart to the right of the data,
// one chart series per value column.
func addColumnChart(f *excelize.File, sheet string, sec section) error {
	if len(sec.headers) < 2 || len(sec.rows) == 0 {
		return fmt.Errorf("nothing to plot")
	}
	ref := "'" + strings.ReplaceAll(sheet, "'", "''") + "'!"
	last := len(sec.rows) + 1

	series := make([]excelize.ChartSeries, 0, len(sec.headers)-1)
	for c := 2; c <= len(sec.headers); c++ {
		col, err := excelize.ColumnNumberToName(c)
		if err != nil {
			return err
		}
		series = append(series, excelize.ChartSeries{
			Name:       fmt.Sprintf("%s$%s$1", ref, col),
			Categories: fmt.Sprintf("%s$A$2:$A$%d", ref, last),
			Values:     fmt.Sprintf("%s$%s$2:$%s$%d", ref, col, col, last),
		})
	}

	anchorCol, err := excelize.ColumnNumberToName(len(sec.headers) + 2)
	if err != nil {
		return err
	}
	return f.AddChart(sheet, anchorCol+"2", &excelize.Chart{
		Type:      excelize.Col,
		Series:    series,
		Title:     []excelize.RichTextRun{{Text: sec.name}},
		Legend:    excelize.ChartLegend{Position: "bottom"},
		Dimension: excelize.ChartDimension{Width: chartWidth, Height: chartHeight},
	})
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
