// quakectl styles, inspects, and validates earthquake overlays offline.
package main

import (
	"os"

	"github.com/couchcryptid/quake-overlay-service/cmd/quakectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
