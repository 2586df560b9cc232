// mztabkit - mzTab-M validation and conversion tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/mztabkit/cmd/mztabkit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
