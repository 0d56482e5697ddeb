// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package config

// The top level config for all overturemaps operations
type Config struct {
	Catalog CatalogConfig
	Data    DataConfig
	S3      S3Config
	Backend BackendConfig
}

// The config for catalog and spatial index endpoints
type CatalogConfig struct {
	// URL of the catalog json listing the latest release and the
	// sharded GERS registry manifest
	CatalogURL string `arg:"--catalog-url" default:"https://labs.overturemaps.org/catalog/catalog.json"`
	// Base URL under which each release keeps its bbox index file
	IndexBaseURL string `arg:"--index-base-url" default:"https://labs.overturemaps.org/catalog"`
}

// The config for the release data files themselves
type DataConfig struct {
	// Base URL for per-release GeoParquet data; relative filepaths from
	// the registry are resolved against <base>/<release>/
	BaseURL string `arg:"--data-base-url" default:"https://overturemaps-us-west-2.s3.us-west-2.amazonaws.com/release"`
}

// The config for reading s3:// asset urls; Overture data is public so no
// credentials are ever configured here
type S3Config struct {
	Endpoint string `arg:"--s3-endpoint" help:"endpoint for s3 asset urls" default:"s3.us-west-2.amazonaws.com"`
	Region   string `arg:"--s3-region" help:"region for s3 asset urls" default:"us-west-2"`
	SSL      bool   `arg:"--s3-ssl" default:"true"`
}

// The config for the query backend
type BackendConfig struct {
	// force the generic parquet reader even if the pushdown engine
	// would have probed successfully
	DisablePushdown bool `arg:"--disable-pushdown" help:"skip the pushdown engine probe and stream whole files"`
	// rows fetched per batch by the generic parquet reader
	BatchSize int `arg:"--batch-size" default:"1024"`
	// parallelism used by readers that support concurrent column reads
	Concurrency int `arg:"--concurrency" default:"4"`
}

// Default returns the configuration pointing at the public Overture
// endpoints.
func Default() Config {
	return Config{
		Catalog: CatalogConfig{
			CatalogURL:   "https://labs.overturemaps.org/catalog/catalog.json",
			IndexBaseURL: "https://labs.overturemaps.org/catalog",
		},
		Data: DataConfig{
			BaseURL: "https://overturemaps-us-west-2.s3.us-west-2.amazonaws.com/release",
		},
		S3: S3Config{
			Endpoint: "s3.us-west-2.amazonaws.com",
			Region:   "us-west-2",
			SSL:      true,
		},
		Backend: BackendConfig{
			BatchSize:   1024,
			Concurrency: 4,
		},
	}
}
