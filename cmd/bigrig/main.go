// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Bigrig simulates range evolution under a generalized DEC+J model: it
// can annotate a given phylogeny with a sampled biogeographic history, or
// jointly simulate a phylogeny and its range history under a birth-death
// process.
package main

import (
	"github.com/js-arias/command"

	"github.com/js-arias/bigrig/cmd/bigrig/sim"
	"github.com/js-arias/bigrig/cmd/bigrig/tree"
)

var app = &command.Command{
	Usage: "bigrig <command> [<argument>...]",
	Short: "simulate biogeographic range evolution",
}

func init() {
	app.Add(sim.Command)
	app.Add(tree.Command)
}

func main() {
	app.Main()
}
