// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"sync"

	"github.com/hangxie/parquet-go/v2/parquet"
	"github.com/hangxie/parquet-go/v2/reader"
	"github.com/hangxie/parquet-go/v2/source"
	"github.com/hangxie/parquet-go/v2/source/local"

	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
	"github.com/brad-richardson/overturemaps-go/internal/objects"
	"github.com/brad-richardson/overturemaps-go/internal/spatial"
)

// parquetEngine reads whole files in bounded batches with no server-side
// filtering. It exists as the fallback when the pushdown engine cannot
// initialize; the pipeline applies id and bbox predicates client-side.
type parquetEngine struct {
	cfg        config.Config
	httpClient *http.Client

	mu sync.Mutex
	s3 *objects.MinioClientWrapper
}

func newParquetEngine(cfg config.Config, httpClient *http.Client) *parquetEngine {
	return &parquetEngine{cfg: cfg, httpClient: httpClient}
}

func (e *parquetEngine) Name() string           { return "parquet-stream" }
func (e *parquetEngine) PushesPredicates() bool { return false }

func (e *parquetEngine) Close() error { return nil }

func (e *parquetEngine) RowByID(ctx context.Context, fileURL, id string) (Row, error) {
	it, err := e.openIterator(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	defer func() { _ = it.Close() }()

	// no pushdown available, so scan batches until the id shows up
	for {
		row, err := it.Next()
		if err == io.EOF {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if rowID, ok := row.ID(); ok && rowID == id {
			return row, nil
		}
	}
}

func (e *parquetEngine) RowsByBbox(ctx context.Context, fileURL string, bbox geo.BoundingBox, limit int) (RowIterator, error) {
	// bbox and limit are ignored here on purpose: this engine streams
	// storage order and the pipeline filters and truncates
	return e.openIterator(ctx, fileURL)
}

func (e *parquetEngine) Schema(ctx context.Context, fileURL string) ([]string, error) {
	pf, err := e.openSource(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	pr, err := reader.NewParquetReader(pf, nil, int64(e.cfg.Backend.Concurrency))
	if err != nil {
		_ = pf.Close()
		return nil, fmt.Errorf("%w: reading footer of %s: %v", common.ErrSchema, fileURL, err)
	}
	defer func() {
		pr.ReadStop()
		_ = pf.Close()
	}()
	return topLevelColumns(pr), nil
}

func (e *parquetEngine) openIterator(ctx context.Context, fileURL string) (*parquetRowIterator, error) {
	pf, err := e.openSource(ctx, fileURL)
	if err != nil {
		return nil, err
	}
	pr, err := reader.NewParquetReader(pf, nil, int64(e.cfg.Backend.Concurrency))
	if err != nil {
		_ = pf.Close()
		return nil, fmt.Errorf("%w: reading footer of %s: %v", common.ErrSchema, fileURL, err)
	}
	return &parquetRowIterator{
		pr:        pr,
		pf:        pf,
		names:     exportedNames(pr),
		batchSize: e.cfg.Backend.BatchSize,
		remaining: pr.GetNumRows(),
	}, nil
}

// openSource dispatches on the URL scheme: https uses ranged HTTP reads,
// s3 uses the anonymous object store client, anything else is treated as
// a local path.
func (e *parquetEngine) openSource(ctx context.Context, fileURL string) (source.ParquetFileReader, error) {
	parsed, err := url.Parse(fileURL)
	if err == nil {
		switch parsed.Scheme {
		case "http", "https":
			return newHTTPRangeFile(ctx, e.httpClient, fileURL)
		case "s3":
			s3Client, err := e.s3Client()
			if err != nil {
				return nil, err
			}
			bucket, key, err := spatial.SplitS3URL(fileURL)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
			}
			return newS3ObjectFile(ctx, s3Client, bucket, key)
		case "file":
			fileURL = parsed.Path
		}
	}
	pf, err := local.NewLocalFileReader(fileURL)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", common.ErrUpstream, fileURL, err)
	}
	return pf, nil
}

func (e *parquetEngine) s3Client() (*objects.MinioClientWrapper, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s3 == nil {
		client, err := objects.NewAnonymousClient(e.cfg.S3)
		if err != nil {
			return nil, err
		}
		e.s3 = client
	}
	return e.s3, nil
}

// parquetRowIterator refills a bounded batch from the reader and yields
// rows one at a time in storage order.
type parquetRowIterator struct {
	pr        *reader.ParquetReader
	pf        source.ParquetFileReader
	names     map[string]string
	batchSize int
	remaining int64
	buf       []Row
	pos       int
	closed    bool
}

func (it *parquetRowIterator) Next() (Row, error) {
	for {
		if it.closed {
			return nil, io.EOF
		}
		if it.pos < len(it.buf) {
			row := it.buf[it.pos]
			it.pos++
			return row, nil
		}
		if it.remaining <= 0 {
			return nil, io.EOF
		}
		n := it.batchSize
		if int64(n) > it.remaining {
			n = int(it.remaining)
		}
		records, err := it.pr.ReadByNumber(n)
		if err != nil {
			return nil, fmt.Errorf("%w: reading batch: %v", common.ErrUpstream, err)
		}
		if len(records) == 0 {
			return nil, io.EOF
		}
		it.remaining -= int64(len(records))
		it.buf = it.buf[:0]
		for _, record := range records {
			if row := recordToRow(record, it.names); row != nil {
				it.buf = append(it.buf, row)
			}
		}
		it.pos = 0
	}
}

func (it *parquetRowIterator) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	it.pr.ReadStop()
	return it.pf.Close()
}

// exportedNames maps the reader's Go-ified field names back to the
// parquet column names so rows keep the file's own naming.
func exportedNames(pr *reader.ParquetReader) map[string]string {
	names := map[string]string{}
	for _, info := range pr.SchemaHandler.Infos {
		if _, seen := names[info.InName]; !seen {
			names[info.InName] = info.ExName
		}
	}
	return names
}

// topLevelColumns walks the footer schema: element 0 is the root and its
// NumChildren immediate subtrees are the columns.
func topLevelColumns(pr *reader.ParquetReader) []string {
	elements := pr.Footer.Schema
	if len(elements) == 0 {
		return nil
	}
	var cols []string
	i := 1
	for child := 0; child < int(elements[0].GetNumChildren()) && i < len(elements); child++ {
		cols = append(cols, elements[i].GetName())
		i += subtreeSize(elements, i)
	}
	return cols
}

func subtreeSize(elements []*parquet.SchemaElement, i int) int {
	size := 1
	for child := 0; child < int(elements[i].GetNumChildren()); child++ {
		size += subtreeSize(elements, i+size)
	}
	return size
}

// recordToRow converts one dynamically generated record struct into a
// generic row. Optional columns come back as pointers; nil pointers map to
// absent keys. Nested structs (the bbox column) become maps.
func recordToRow(record any, names map[string]string) Row {
	value := reflect.Indirect(reflect.ValueOf(record))
	if value.Kind() != reflect.Struct {
		return nil
	}
	row := make(Row, value.NumField())
	structType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		fieldValue := convertValue(value.Field(i))
		if fieldValue == nil {
			continue
		}
		name := names[structType.Field(i).Name]
		if name == "" {
			name = strings.ToLower(structType.Field(i).Name)
		}
		row[name] = fieldValue
	}
	return row
}

func convertValue(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct:
		nested := make(map[string]any, v.NumField())
		structType := v.Type()
		for i := 0; i < v.NumField(); i++ {
			if fieldValue := convertValue(v.Field(i)); fieldValue != nil {
				nested[strings.ToLower(structType.Field(i).Name)] = fieldValue
			}
		}
		return nested
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Bytes()
		}
		converted := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			converted[i] = convertValue(v.Index(i))
		}
		return converted
	default:
		if !v.CanInterface() {
			return nil
		}
		return v.Interface()
	}
}
