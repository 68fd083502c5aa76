// Command vecdb runs the vector database as an HTTP service.
//
// Usage:
//
//	vecdb [flags] <command> [args]
//
// Commands:
//
//	serve    - Run the HTTP server
//	inspect  - Describe a snapshot file
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/hupe1980/vecdb/cmd/vecdb/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
