// Command strapisync syncs Strapi content into a local graph.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/strapisync/internal/adapters/driving/cli"
	"github.com/custodia-labs/strapisync/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version, buildApp); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
