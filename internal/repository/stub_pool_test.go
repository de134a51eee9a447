package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubPool struct {
	execSQL     []string
	execErr     error
	queuedBatch *pgx.Batch
	batch       *stubBatchResults
	querySQL    string
	queryArgs   []any
	rowsData    [][]any
	row         *stubRow
}

func (s *stubPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	s.execSQL = append(s.execSQL, sql)
	return pgconn.CommandTag{}, s.execErr
}

func (s *stubPool) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	s.queuedBatch = b
	if s.batch == nil {
		s.batch = &stubBatchResults{}
	}
	return s.batch
}

func (s *stubPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.querySQL = sql
	s.queryArgs = args
	dataCopy := make([][]any, len(s.rowsData))
	for i := range s.rowsData {
		row := make([]any, len(s.rowsData[i]))
		copy(row, s.rowsData[i])
		dataCopy[i] = row
	}
	return &stubRows{data: dataCopy}, nil
}

func (s *stubPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	s.querySQL = sql
	s.queryArgs = args
	if s.row == nil {
		return &stubRow{}
	}
	return s.row
}

type stubBatchResults struct {
	execCalls int
	nextID    int64
	err       error
}

func (s *stubBatchResults) Exec() (pgconn.CommandTag, error) {
	s.execCalls++
	return pgconn.CommandTag{}, s.err
}

func (s *stubBatchResults) Query() (pgx.Rows, error) { return &stubRows{}, nil }

func (s *stubBatchResults) QueryRow() pgx.Row {
	if s.err != nil {
		return &stubRow{err: s.err}
	}
	s.nextID++
	return &stubRow{values: []any{s.nextID}}
}

func (s *stubBatchResults) Close() error { return nil }

type stubRows struct {
	data [][]any
	idx  int
}

func (r *stubRows) Close() {}

func (r *stubRows) Err() error { return nil }

func (r *stubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *stubRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}

func (r *stubRows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.data) {
		return fmt.Errorf("invalid scan index")
	}
	return assign(r.data[r.idx-1], dest)
}

func (r *stubRows) Values() ([]any, error) { return nil, nil }

func (r *stubRows) RawValues() [][]byte { return nil }

func (r *stubRows) Conn() *pgx.Conn { return nil }

type stubRow struct {
	values []any
	err    error
}

func (r *stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

func assign(row []any, dest []any) error {
	if len(row) != len(dest) {
		return fmt.Errorf("scan: %d values into %d targets", len(row), len(dest))
	}
	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr = row[i].(string)
		case *int64:
			*ptr = row[i].(int64)
		case *float64:
			*ptr = row[i].(float64)
		case *[]byte:
			*ptr = row[i].([]byte)
		case *time.Time:
			*ptr = row[i].(time.Time)
		case **time.Time:
			if row[i] == nil {
				*ptr = nil
				continue
			}
			ts := row[i].(time.Time)
			*ptr = &ts
		default:
			return fmt.Errorf("unsupported dest type %T", d)
		}
	}
	return nil
}
