package main

import (
	"fmt"
	"os"

	layerrenamer "github.com/thrawn01/layer-renamer"
)

func main() {
	if err := layerrenamer.RunCmd(os.Args, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
