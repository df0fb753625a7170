package main

import (
	"os"

	"github.com/kilianp07/schedulegen/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
