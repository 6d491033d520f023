package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
	"github.com/jmoiron/sqlx"
	mssqldb "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog/log"
)

// Error messages surfaced to API callers.
const (
	MsgProcedureFailed = "Failed to execute stored procedure"
	MsgQueryFailed     = "Failed to execute query"
)

const dashboardQuery = `
	SELECT DB_NAME() AS database_name, COUNT(*) AS table_count
	FROM INFORMATION_SCHEMA.TABLES
	WHERE TABLE_TYPE = 'BASE TABLE'`

var decimalText = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

var procedureName = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*\.){0,2}[A-Za-z_][A-Za-z0-9_]*$`)

// Gateway executes calls on the shared pool.
type Gateway struct {
	db *DB
}

var _ repository.ProcedureGateway = (*Gateway)(nil)

// NewGateway builds a gateway over db.
func NewGateway(db *DB) *Gateway {
	return &Gateway{db: db}
}

// Execute calls a stored procedure by name. The driver sends a bare
// procedure name as an RPC call, binding params by name.
func (g *Gateway) Execute(ctx context.Context, procedure string, params domain.Params) (*domain.RecordsetResult, error) {
	procedure = strings.TrimSpace(procedure)
	if procedure == "" {
		return nil, domain.NewValidationError("procedure", "procedure is required")
	}
	if !procedureName.MatchString(procedure) {
		return nil, domain.NewValidationError("procedure", fmt.Sprintf("invalid procedure name %q", procedure))
	}
	args, err := namedArgs(params)
	if err != nil {
		return nil, err
	}
	return g.run(ctx, procedure, args, MsgProcedureFailed)
}

// ExecuteRaw runs free-form SQL. Parameters are referenced as @name.
func (g *Gateway) ExecuteRaw(ctx context.Context, query string, params domain.Params) (*domain.RecordsetResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.NewValidationError("query", "query is required")
	}
	args, err := namedArgs(params)
	if err != nil {
		return nil, err
	}
	return g.run(ctx, query, args, MsgQueryFailed)
}

// DashboardInfo reports the database name and its table count.
func (g *Gateway) DashboardInfo(ctx context.Context) (*domain.DashboardInfo, error) {
	release, err := g.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	var info domain.DashboardInfo
	if err := g.db.GetContext(ctx, &info, dashboardQuery); err != nil {
		return nil, executionError(MsgQueryFailed, err)
	}
	return &info, nil
}

// Connected is always true for an opened pool; it is never reconnected.
func (g *Gateway) Connected() bool { return g.db != nil }

// Close releases the pool.
func (g *Gateway) Close() error {
	if g.db == nil {
		return nil
	}
	return g.db.Close()
}

func (g *Gateway) run(ctx context.Context, text string, args []any, failure string) (*domain.RecordsetResult, error) {
	release, err := g.db.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	rows, err := g.db.QueryxContext(ctx, text, args...)
	if err != nil {
		return nil, executionError(failure, err)
	}
	defer rows.Close()

	result := &domain.RecordsetResult{
		Recordsets:   []domain.Recordset{},
		RowsAffected: []int64{},
	}
	for {
		rs, hasColumns, err := readRecordset(rows)
		if err != nil {
			return nil, executionError(failure, err)
		}
		if hasColumns {
			result.Recordsets = append(result.Recordsets, rs)
			result.RowsAffected = append(result.RowsAffected, int64(rs.Len()))
		}
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, executionError(failure, err)
	}

	log.Debug().
		Str("statement", summarize(text)).
		Int("recordsets", len(result.Recordsets)).
		Dur("elapsed", time.Since(start)).
		Msg("statement executed")
	return result, nil
}

// readRecordset drains the current result set. Statements that produce no
// columns (SET, DML without OUTPUT) report hasColumns=false.
func readRecordset(rows *sqlx.Rows) (domain.Recordset, bool, error) {
	cols, err := rows.Columns()
	if err != nil {
		return domain.Recordset{}, false, err
	}
	if len(cols) == 0 {
		for rows.Next() {
		}
		return domain.Recordset{}, false, nil
	}

	rs := domain.Recordset{Columns: cols, Rows: []domain.Row{}}
	for rows.Next() {
		values, err := rows.SliceScan()
		if err != nil {
			return domain.Recordset{}, true, err
		}
		row := make(domain.Row, len(cols))
		for i, col := range cols {
			row[col] = normalizeValue(values[i])
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, true, nil
}

// normalizeValue turns driver byte slices into JSON friendly values. The
// driver returns DECIMAL and MONEY columns as their text form.
func normalizeValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	text := string(b)
	if decimalText.MatchString(text) {
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return f
		}
	}
	return text
}

// namedArgs binds params as sql.Named in key order. Integral JSON numbers
// are sent as integers.
func namedArgs(params domain.Params) ([]any, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]any, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(k, "@")
		if name == "" {
			return nil, domain.NewValidationError("params", "parameter names must not be empty")
		}
		v, err := scalar(k, params[k])
		if err != nil {
			return nil, err
		}
		args = append(args, sql.Named(name, v))
	}
	return args, nil
}

func scalar(name string, v any) (any, error) {
	switch n := v.(type) {
	case nil, string, bool, int, int32, int64, time.Time:
		return n, nil
	case float64:
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n), nil
		}
		return n, nil
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, domain.NewValidationError("params", fmt.Sprintf("parameter %s is not a valid number", name))
		}
		return f, nil
	case float32, int8, int16, uint8, uint16, uint32:
		return n, nil
	default:
		return nil, domain.NewValidationError("params", fmt.Sprintf("parameter %s must be a scalar value", name))
	}
}

func executionError(message string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.ProcedureExecutionError{Message: message, Details: err.Error(), Err: err}
	}
	details := err.Error()
	var serverErr mssqldb.Error
	if errors.As(err, &serverErr) {
		details = serverErr.Message
		if serverErr.ProcName != "" {
			details = fmt.Sprintf("%s (procedure %s, line %d)", serverErr.Message, serverErr.ProcName, serverErr.LineNo)
		}
	}
	return &domain.ProcedureExecutionError{Message: message, Details: details, Err: err}
}

func summarize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > 80 {
		return text[:80] + "..."
	}
	return text
}
