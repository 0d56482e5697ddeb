// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

// Package spatial reads the small per-release index that records the
// covering rectangle of every data file, and prunes candidate files for a
// bbox query.
package spatial

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/brad-richardson/overturemaps-go/internal/common"
	"github.com/brad-richardson/overturemaps-go/internal/config"
	"github.com/brad-richardson/overturemaps-go/internal/geo"
)

// kindFeature is the only entry kind that maps to a data file; other kinds
// (metadata sidecars etc.) are ignored.
const kindFeature = "Feature"

// Entry is one row of the index file.
type Entry struct {
	Collection string            `json:"collection"`
	Kind       string            `json:"kind"`
	Bbox       []float64         `json:"bbox"`
	Assets     map[string]string `json:"assets"`
}

type indexedEntry struct {
	row   int
	bbox  geo.BoundingBox
	entry Entry
}

var _ rtreego.Spatial = indexedEntry{}

// Bounds implements rtreego.Spatial. The tree needs non-zero extents, so
// degenerate boxes get a small epsilon; the strict overlap re-check below
// filters out any false positives this introduces.
func (e indexedEntry) Bounds() rtreego.Rect {
	const epsilon = 0.0001
	lonLength := e.bbox.XMax - e.bbox.XMin
	latLength := e.bbox.YMax - e.bbox.YMin
	if lonLength < epsilon {
		lonLength = epsilon
	}
	if latLength < epsilon {
		latLength = epsilon
	}
	rect, _ := rtreego.NewRect(rtreego.Point{e.bbox.XMin, e.bbox.YMin}, []float64{lonLength, latLength})
	return rect
}

type releaseIndex struct {
	entries []Entry
	tree    *rtreego.Rtree
}

// Index fetches per-release index files and answers bbox queries against
// them. Parsed indexes are memoized per release.
type Index struct {
	cfg        config.CatalogConfig
	s3cfg      config.S3Config
	httpClient *http.Client

	mu    sync.Mutex
	cache *lru.Cache[string, *releaseIndex]
}

func NewIndex(cfg config.CatalogConfig, s3cfg config.S3Config, httpClient *http.Client) *Index {
	c, _ := lru.New[string, *releaseIndex](4)
	return &Index{
		cfg:        cfg,
		s3cfg:      s3cfg,
		httpClient: httpClient,
		cache:      c,
	}
}

// FilesForBbox returns the URLs of every data file of the given collection
// type whose covering rectangle strictly overlaps bbox, in index row
// order. An empty result is a successful query, not an error.
func (idx *Index) FilesForBbox(ctx context.Context, collectionType string, bbox geo.BoundingBox, release string) ([]string, error) {
	ri, err := idx.load(ctx, release)
	if err != nil {
		return nil, err
	}

	queryRect, rectErr := rtreego.NewRect(
		rtreego.Point{bbox.XMin, bbox.YMin},
		[]float64{bbox.XMax - bbox.XMin, bbox.YMax - bbox.YMin},
	)
	if rectErr != nil {
		return nil, fmt.Errorf("%w: query bbox has no area: %v", common.ErrInvalidArgument, rectErr)
	}

	var hits []indexedEntry
	for _, spatialHit := range ri.tree.SearchIntersect(queryRect) {
		hit := spatialHit.(indexedEntry)
		// the tree treats touching rectangles as intersecting; re-check
		// with the strict overlap rule
		if hit.entry.Collection == collectionType && bbox.Intersects(hit.bbox) {
			hits = append(hits, hit)
		}
	}

	// the tree returns results in tree order; file ordering must stay a
	// stable filter over the index file's row order
	sort.Slice(hits, func(i, j int) bool { return hits[i].row < hits[j].row })

	urls := make([]string, 0, len(hits))
	for _, hit := range hits {
		u, ok := ResolveAsset(hit.entry.Assets, idx.s3cfg)
		if !ok {
			return nil, fmt.Errorf("%w: index entry for %s has no usable asset location", common.ErrSchema, hit.entry.Collection)
		}
		urls = append(urls, u)
	}
	log.Debugf("bbox query over %s/%s matched %d of %d index entries", release, collectionType, len(urls), len(ri.entries))
	return urls, nil
}

// URL returns the index file location for a release.
func (idx *Index) URL(release string) string {
	return fmt.Sprintf("%s/%s/index.json", idx.cfg.IndexBaseURL, release)
}

func (idx *Index) load(ctx context.Context, release string) (*releaseIndex, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if cached, ok := idx.cache.Get(release); ok {
		return cached, nil
	}

	body, err := common.FetchBytes(ctx, idx.httpClient, idx.URL(release))
	if err != nil {
		return nil, err
	}

	var doc struct {
		Entries []Entry `json:"entries"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: index for release %s: %v", common.ErrSchema, release, err)
	}

	ri := &releaseIndex{
		entries: doc.Entries,
		tree:    rtreego.NewTree(2, 8, 32),
	}
	for row, entry := range doc.Entries {
		if entry.Kind != kindFeature {
			continue
		}
		b, err := geo.NewBoundingBox(entry.Bbox)
		if err != nil {
			return nil, fmt.Errorf("%w: index entry %d of release %s has bad bbox", common.ErrSchema, row, release)
		}
		ri.tree.Insert(indexedEntry{row: row, bbox: b, entry: entry})
	}
	idx.cache.Add(release, ri)
	return ri, nil
}
