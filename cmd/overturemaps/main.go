// Copyright 2025 Brad Richardson
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := NewRunner(os.Args[1:]).Run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
