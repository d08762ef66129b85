package main

import (
	"github.com/sidkik/mediasync/cmd"
	"github.com/sidkik/mediasync/cmd/util"
)

func main() {
	defer util.HandlePanic()
	cmd.Execute()
}
