// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package backend abstracts over the two ways a GeoParquet file can be
// queried: a pushdown engine that filters server-side, and a generic
// streaming reader that fetches rows in bounded batches for client-side
// filtering.
package backend

import (
	"context"
	"net/http"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
)

// Column names handled specially by the pipeline.
const (
	GeometryColumn = "geometry"
	BboxColumn     = "bbox"
	IDColumn       = "id"
)

// Row is one record from a data or registry file, keyed by column name.
type Row map[string]any

// RowIterator yields rows one at a time. Next returns io.EOF when the
// sequence is exhausted. Close must be safe to call at any point,
// including before exhaustion, and releases the underlying cursor.
type RowIterator interface {
	Next() (Row, error)
	Close() error
}

// Engine is one query strategy over remote columnar files.
type Engine interface {
	Name() string
	// PushesPredicates reports whether bbox and id filters are applied
	// before rows cross the wire. When false, the pipeline filters
	// client-side.
	PushesPredicates() bool
	// RowByID fetches the single row with the given id, or nil when the
	// file holds no such row.
	RowByID(ctx context.Context, fileURL, id string) (Row, error)
	// RowsByBbox streams rows for a bbox query. limit <= 0 means
	// unbounded; engines that push predicates also push the limit.
	RowsByBbox(ctx context.Context, fileURL string, bbox geo.BoundingBox, limit int) (RowIterator, error)
	// Schema lists the file's top-level column names.
	Schema(ctx context.Context, fileURL string) ([]string, error)
	Close() error
}

// Selector probes for the pushdown engine once per instance and falls back
// to the streaming reader on any probe failure. The outcome is memoized;
// there is no per-call re-probing.
type Selector struct {
	cfg        config.Config
	httpClient *http.Client

	once   sync.Once
	engine Engine
}

func NewSelector(cfg config.Config, httpClient *http.Client) *Selector {
	return &Selector{cfg: cfg, httpClient: httpClient}
}

// NewStaticSelector pins the selector to a pre-built engine, bypassing
// the probe. Tests use this to observe engine calls.
func NewStaticSelector(engine Engine) *Selector {
	s := &Selector{}
	s.once.Do(func() { s.engine = engine })
	return s
}

// Engine returns the selected engine, probing on first use.
func (s *Selector) Engine() Engine {
	s.once.Do(func() {
		if !s.cfg.Backend.DisablePushdown {
			eng, err := newDuckDBEngine(s.cfg)
			if err == nil {
				log.Debugf("using %s backend", eng.Name())
				s.engine = eng
				return
			}
			// probe failures downgrade permanently and quietly; the
			// fallback serves every query this instance will see
			log.Warnf("pushdown engine unavailable, streaming whole files instead: %v", err)
		}
		s.engine = newParquetEngine(s.cfg, s.httpClient)
		log.Debugf("using %s backend", s.engine.Name())
	})
	return s.engine
}

// Close releases the selected engine. Destructive to all in-flight
// queries; callers coordinate so none are outstanding.
func (s *Selector) Close() error {
	if s.engine == nil {
		return nil
	}
	return s.engine.Close()
}

// ID extracts the row's id column.
func (r Row) ID() (string, bool) {
	v, ok := r[IDColumn]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	}
	return "", false
}

// GeometryBytes extracts the raw WKB geometry blob, or nil when the row
// has none.
func (r Row) GeometryBytes() []byte {
	v, ok := r[GeometryColumn]
	if !ok || v == nil {
		return nil
	}
	switch b := v.(type) {
	case []byte:
		return b
	case string:
		return []byte(b)
	}
	return nil
}

// Bbox extracts the row's own bounding box column when present.
func (r Row) Bbox() (geo.BoundingBox, bool) {
	v, ok := r[BboxColumn]
	if !ok || v == nil {
		return geo.BoundingBox{}, false
	}
	fields, ok := v.(map[string]any)
	if !ok {
		return geo.BoundingBox{}, false
	}
	xmin, ok1 := toFloat(fields["xmin"])
	ymin, ok2 := toFloat(fields["ymin"])
	xmax, ok3 := toFloat(fields["xmax"])
	ymax, ok4 := toFloat(fields["ymax"])
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return geo.BoundingBox{}, false
	}
	return geo.BoundingBox{XMin: xmin, YMin: ymin, XMax: xmax, YMax: ymax}, true
}

// Properties returns a copy of the row without the geometry and bbox
// columns. One projection policy everywhere: full rows cross the pipeline
// and pruning happens here.
func (r Row) Properties() map[string]any {
	props := make(map[string]any, len(r))
	for k, v := range r {
		if k == GeometryColumn || k == BboxColumn {
			continue
		}
		props[k] = v
	}
	return props
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
