// Package converter converts DuckDB result sets to Apache Arrow batches.
package converter

import (
	"database/sql"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog"

	"github.com/TFMV/gauntlet/pkg/errors"
)

const defaultBatchSize = 1024

// BatchReader reads SQL rows and converts them to Arrow record batches.
// Results flow through the provided allocator, so wrapping it with a
// tracked allocator yields per-query memory accounting.
type BatchReader struct {
	schema    *arrow.Schema
	rows      *sql.Rows
	record    arrow.Record
	builder   *array.RecordBuilder
	err       error
	rowDest   []interface{}
	logger    zerolog.Logger
	batchSize int
}

// NewBatchReader creates a new batch reader from SQL rows. On error the
// rows are closed before returning.
func NewBatchReader(allocator memory.Allocator, rows *sql.Rows, logger zerolog.Logger) (*BatchReader, error) {
	cols, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to get column types")
	}

	fields := make([]arrow.Field, len(cols))
	rowDest := make([]interface{}, len(cols))

	for i, col := range cols {
		fields[i] = arrowFieldFor(col)
		rowDest[i] = createScanDest(fields[i])
	}

	schema := arrow.NewSchema(fields, nil)

	return &BatchReader{
		schema:    schema,
		rows:      rows,
		builder:   array.NewRecordBuilder(allocator, schema),
		rowDest:   rowDest,
		logger:    logger,
		batchSize: defaultBatchSize,
	}, nil
}

// SetBatchSize sets the number of rows to read per batch.
func (r *BatchReader) SetBatchSize(size int) {
	if size > 0 {
		r.batchSize = size
	}
}

// Schema returns the Arrow schema.
func (r *BatchReader) Schema() *arrow.Schema {
	return r.schema
}

// Release frees the reader's resources.
func (r *BatchReader) Release() {
	if r.rows != nil {
		r.rows.Close()
		r.rows = nil
	}
	if r.record != nil {
		r.record.Release()
		r.record = nil
	}
	if r.builder != nil {
		r.builder.Release()
		r.builder = nil
	}
}

// Record returns the current record batch.
func (r *BatchReader) Record() arrow.Record {
	return r.record
}

// Err returns any error that occurred during reading.
func (r *BatchReader) Err() error {
	return r.err
}

// Next reads the next batch of rows.
func (r *BatchReader) Next() bool {
	if r.record != nil {
		r.record.Release()
		r.record = nil
	}

	rows := 0
	start := time.Now()

	for rows < r.batchSize && r.rows.Next() {
		if err := r.rows.Scan(r.rowDest...); err != nil {
			r.err = errors.Wrap(err, errors.CodeQueryFailed, "failed to scan row")
			return false
		}

		for i, dest := range r.rowDest {
			if err := r.appendValue(i, dest); err != nil {
				r.err = errors.Wrapf(err, errors.CodeInternal, "failed to append value for column %d", i)
				return false
			}
		}

		rows++
	}

	if rows > 0 {
		r.record = r.builder.NewRecord()
		r.logger.Debug().
			Int("rows", rows).
			Dur("duration", time.Since(start)).
			Msg("Read batch")
	}

	if err := r.rows.Err(); err != nil {
		r.err = errors.Wrap(err, errors.CodeQueryFailed, "rows iteration error")
		return false
	}

	return rows > 0
}

// appendValue appends a scanned value to the appropriate builder.
func (r *BatchReader) appendValue(colIdx int, value interface{}) error {
	fb := r.builder.Field(colIdx)

	switch v := value.(type) {
	case *sql.NullBool:
		if !v.Valid {
			fb.AppendNull()
		} else {
			fb.(*array.BooleanBuilder).Append(v.Bool)
		}

	case *sql.NullInt32:
		if !v.Valid {
			fb.AppendNull()
		} else {
			fb.(*array.Int32Builder).Append(v.Int32)
		}

	case *sql.NullInt64:
		if !v.Valid {
			fb.AppendNull()
		} else {
			fb.(*array.Int64Builder).Append(v.Int64)
		}

	case *sql.NullFloat64:
		if !v.Valid {
			fb.AppendNull()
		} else {
			fb.(*array.Float64Builder).Append(v.Float64)
		}

	case *sql.NullString:
		if !v.Valid {
			fb.AppendNull()
		} else {
			fb.(*array.StringBuilder).Append(v.String)
		}

	case *sql.NullTime:
		if !v.Valid {
			fb.AppendNull()
		} else {
			fb.(*array.TimestampBuilder).Append(arrow.Timestamp(v.Time.UnixMicro()))
		}

	case *interface{}:
		if v == nil || *v == nil {
			fb.AppendNull()
		} else {
			appendDynamicValue(fb, *v)
		}

	default:
		return errors.New(errors.CodeInternal, "unsupported scan type: "+reflect.TypeOf(value).String())
	}

	return nil
}

// arrowFieldFor maps a DuckDB result column to an Arrow field. Result
// nullability is not reported by the driver, so every field is nullable.
func arrowFieldFor(col *sql.ColumnType) arrow.Field {
	var dt arrow.DataType

	switch name := strings.ToUpper(col.DatabaseTypeName()); {
	case name == "BOOLEAN":
		dt = arrow.FixedWidthTypes.Boolean
	case name == "TINYINT", name == "SMALLINT", name == "INTEGER":
		dt = arrow.PrimitiveTypes.Int32
	case name == "BIGINT":
		dt = arrow.PrimitiveTypes.Int64
	case name == "FLOAT", name == "REAL", name == "DOUBLE":
		dt = arrow.PrimitiveTypes.Float64
	case name == "VARCHAR", name == "TEXT", name == "UUID":
		dt = arrow.BinaryTypes.String
	case name == "DATE", strings.HasPrefix(name, "TIMESTAMP"):
		dt = arrow.FixedWidthTypes.Timestamp_us
	default:
		// HUGEINT, DECIMAL, and anything exotic render as strings.
		dt = arrow.BinaryTypes.String
	}

	return arrow.Field{Name: col.Name(), Type: dt, Nullable: true}
}

// createScanDest creates an appropriate scan destination based on the
// Arrow field type.
func createScanDest(field arrow.Field) interface{} {
	switch field.Type.ID() {
	case arrow.BOOL:
		return &sql.NullBool{}
	case arrow.INT32:
		return &sql.NullInt32{}
	case arrow.INT64:
		return &sql.NullInt64{}
	case arrow.FLOAT64:
		return &sql.NullFloat64{}
	case arrow.TIMESTAMP:
		return &sql.NullTime{}
	case arrow.STRING:
		// Strings also carry the dynamic fallback types.
		return new(interface{})
	default:
		return new(interface{})
	}
}

// appendDynamicValue appends a dynamically typed value to a string builder.
func appendDynamicValue(fb array.Builder, value interface{}) {
	sb, ok := fb.(*array.StringBuilder)
	if !ok {
		fb.AppendNull()
		return
	}
	sb.Append(toString(value))
}

// toString converts a value to string.
func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format(time.RFC3339Nano)
	default:
		if s, ok := v.(interface{ String() string }); ok {
			return s.String()
		}
		return ""
	}
}
