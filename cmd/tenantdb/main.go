// Command tenantdb reconciles per-tenant PostgreSQL schemas against the
// compiled-in target model.
package main

import (
	"fmt"
	"os"

	"github.com/loomworks/tenantdb/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
