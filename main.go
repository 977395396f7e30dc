package main

import (
	"os"

	"github.com/gamescope-tools/gamescoperun/cmd"
)

func main() {
	os.Exit(cmd.Run())
}
