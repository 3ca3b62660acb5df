// Command bloom runs the Bloom web app. See "bloom --help".
package main

import (
	"os"

	"github.com/sakif/bloom/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
