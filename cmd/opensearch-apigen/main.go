// Command opensearch-apigen generates the Go client of the OpenSearch REST API.
package main

import (
	"fmt"
	"os"

	"github.com/opensearch-project/opensearch-apigen/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}
