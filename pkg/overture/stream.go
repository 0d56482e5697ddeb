// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package overture

import (
	"context"
	"fmt"
	"io"

	"github.com/peterstace/simplefeatures/geom"
	log "github.com/sirupsen/logrus"

	"github.com/brad-richardson/overturemaps-go/internal/backend"
	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
	"github.com/brad-richardson/overturemaps-go/internal/telemetry"
)

// QueryOptions tunes a bbox query.
type QueryOptions struct {
	// Limit caps the number of features yielded across all files.
	// Zero means unbounded.
	Limit int
	// Release pins the query to a release; empty means the latest one.
	Release string
}

// QueryBbox starts a streaming query for every feature of the given
// collection type overlapping bbox. Validation happens before any I/O.
// The returned reader is pull-driven: nothing is fetched until Read is
// called, and closing it early releases the in-flight file cursor.
func (c *Client) QueryBbox(ctx context.Context, collectionType string, bbox BoundingBox, opts QueryOptions) (*FeatureReader, error) {
	if collectionType == "" {
		return nil, fmt.Errorf("%w: collection type must not be empty", common.ErrInvalidArgument)
	}
	if err := bbox.ValidateQuery(); err != nil {
		return nil, err
	}
	span, ctx := telemetry.SubSpanFromCtx(ctx)
	defer span.End()

	release := opts.Release
	if release == "" {
		var err error
		release, err = c.catalog.Latest(ctx)
		if err != nil {
			return nil, err
		}
	}

	files, err := c.index.FilesForBbox(ctx, collectionType, bbox, release)
	if err != nil {
		return nil, err
	}
	log.Debugf("bbox query over %s touches %d files", collectionType, len(files))

	remaining := -1
	if opts.Limit > 0 {
		remaining = opts.Limit
	}
	return &FeatureReader{
		ctx:       ctx,
		engine:    c.backends.Engine(),
		bbox:      bbox,
		files:     files,
		remaining: remaining,
	}, nil
}

// limitHeadroom pads the limit pushed to engines. Rows the client skips
// for undecodable geometry don't count against the caller's limit, so a
// server-side LIMIT of exactly r.remaining could truncate away matching
// rows the skips should have been covered by. The stream still stops at
// the caller's limit; the extra rows are simply discarded.
const limitHeadroom = 16

// FeatureReader streams decoded features across candidate files. Files
// are visited in index order and rows within a file keep storage order; no
// global sort is imposed. Read returns io.EOF once the files are
// exhausted or the limit is reached. After any other error the reader is
// failed: features already returned stand, but no further items come.
type FeatureReader struct {
	ctx    context.Context
	engine backend.Engine
	bbox   geo.BoundingBox
	files  []string

	fileIdx   int
	current   backend.RowIterator
	remaining int // -1 when unbounded
	failed    error
	closed    bool
}

// Read returns the next feature. Rows with missing or undecodable
// geometry are skipped and do not count against the limit.
func (r *FeatureReader) Read() (*Feature, error) {
	if r.failed != nil {
		return nil, r.failed
	}
	if r.closed || r.remaining == 0 {
		return nil, io.EOF
	}

	for {
		if r.current == nil {
			if r.fileIdx >= len(r.files) {
				return nil, io.EOF
			}
			fileURL := r.files[r.fileIdx]
			r.fileIdx++
			pushLimit := r.remaining
			if pushLimit > 0 {
				pushLimit += limitHeadroom
			}
			it, err := r.engine.RowsByBbox(r.ctx, fileURL, r.bbox, pushLimit)
			if err != nil {
				return nil, r.fail(err)
			}
			r.current = it
		}

		row, err := r.current.Next()
		if err == io.EOF {
			r.releaseCurrent()
			continue
		}
		if err != nil {
			r.releaseCurrent()
			return nil, r.fail(err)
		}

		geometry, decoded := geo.DecodeWKB(row.GeometryBytes())
		if !decoded {
			// skipped, not counted; one bad row must not kill the stream
			continue
		}

		// engines without pushdown return every row; apply the bbox
		// predicate here. Pushdown engines filtered server-side, so all
		// their rows are treated as in-bounds.
		if !r.engine.PushesPredicates() && !r.inBounds(row, geometry) {
			continue
		}

		feature := &Feature{
			Geometry:   geometry,
			Properties: row.Properties(),
		}
		feature.ID, _ = row.ID()
		if box, has := row.Bbox(); has {
			feature.Bbox = &box
		}

		if r.remaining > 0 {
			r.remaining--
			if r.remaining == 0 {
				// the limit is hit: release the cursor now rather than
				// waiting for the caller's Close
				r.releaseCurrent()
			}
		}
		return feature, nil
	}
}

// Close releases the in-flight cursor. Safe to call at any point,
// including mid-stream and more than once.
func (r *FeatureReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.releaseCurrent()
	return nil
}

// inBounds applies the strict overlap rule client-side, preferring the
// row's bbox column and falling back to the geometry's envelope for files
// without one.
func (r *FeatureReader) inBounds(row backend.Row, geometry geom.Geometry) bool {
	box, has := row.Bbox()
	if !has {
		box, has = geo.GeometryBounds(geometry)
	}
	return has && r.bbox.Intersects(box)
}

func (r *FeatureReader) releaseCurrent() {
	if r.current != nil {
		if err := r.current.Close(); err != nil {
			log.Warnf("error releasing file cursor: %v", err)
		}
		r.current = nil
	}
}

func (r *FeatureReader) fail(err error) error {
	r.failed = err
	return err
}
