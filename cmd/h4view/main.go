// Command h4view browses, dumps and copies objects in tag/reference
// scientific containers.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
