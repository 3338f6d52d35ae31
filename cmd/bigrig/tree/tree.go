// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package tree implements a command to jointly simulate a phylogeny and
// its range history under a birth-death process coupled to range
// evolution.
package tree

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/js-arias/command"

	"github.com/js-arias/bigrig/config"
	"github.com/js-arias/bigrig/phylo"
	"github.com/js-arias/bigrig/rng"
	"github.com/js-arias/bigrig/simulate"
	"github.com/js-arias/bigrig/spread"
)

var Command = &command.Command{
	Usage: `tree [-o|--output <prefix>] [--seed <number>]
	<config-file>`,
	Short: "jointly simulate a tree and its range history",
	Long: `
Command tree reads a bigrig YAML configuration with simulate_tree set to
true, and jointly simulates a phylogeny and its biogeographic range
history under a birth-death process: a lineage's speciation clock races
its combined anagenetic range-event clock, branch by branch, until
tree_duration is reached.

The output is two files: <prefix>-leaves.tab, a tab-delimited table with
the final range of every leaf (an extinct leaf has an empty range), and
<prefix>-tree.nwk with the simulated tree in Newick format. By default the prefix is "tree"; use -o or --output to
change it.

The flag --seed overrides the configuration file's seed, if any.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var seedFlag int64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "tree", "")
	c.Flags().StringVar(&output, "o", "tree", "")
	c.Flags().Int64Var(&seedFlag, "seed", 0, "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 1 {
		return c.UsageError("expecting configuration file")
	}

	cfg, err := readConfig(args[0])
	if err != nil {
		return err
	}
	if !cfg.SimulateTree {
		return c.UsageError("configuration does not set simulate_tree")
	}

	if seedFlag != 0 {
		rng.Seed(seedFlag)
	} else if cfg.Seed != 0 {
		rng.Seed(cfg.Seed)
	} else {
		rng.SeedFromEntropy()
	}

	root, err := cfg.RootDist()
	if err != nil {
		return err
	}
	periods, err := cfg.PeriodList()
	if err != nil {
		return err
	}
	models, err := cfg.Models()
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return c.UsageError("configuration has no periods")
	}
	mode := modeFromConfig(cfg.Mode)

	tr, err := simulate.SimulateTree(root, models[0], periods, cfg.TreeDuration, rng.Global(), mode)
	if err != nil {
		return fmt.Errorf("while simulating: %v", err)
	}
	labelLeaves(tr)

	if err := writeLeaves(tr); err != nil {
		return err
	}
	return writeTree(tr)
}

func readConfig(name string) (*config.Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := config.Read(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return cfg, nil
}

func modeFromConfig(m config.Mode) spread.Mode {
	if m == config.ModeSim {
		return spread.Sim
	}
	return spread.Fast
}

// labelLeaves assigns a "taxon<n>" label, in preorder, to every leaf
// produced by simulate.SimulateTree, which builds nodes with no label of
// their own.
func labelLeaves(tr *phylo.Tree) {
	next := 1
	tr.Preorder(func(n *phylo.Node) {
		if !n.IsLeaf() {
			return
		}
		n.Label = fmt.Sprintf("taxon%d", next)
		next++
	})
}

func writeLeaves(tr *phylo.Tree) (err error) {
	name := fmt.Sprintf("%s-leaves.tab", output)
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = e
		}
	}()

	fmt.Fprintf(f, "# simulated leaf ranges\n")
	fmt.Fprintf(f, "# date: %s\n", time.Now().Format(time.RFC3339))

	tsv := csv.NewWriter(f)
	tsv.Comma = '\t'
	tsv.UseCRLF = true
	if err := tsv.Write([]string{"taxon", "range"}); err != nil {
		return err
	}

	tr.Preorder(func(n *phylo.Node) {
		if !n.IsLeaf() {
			return
		}
		if err != nil {
			return
		}
		err = tsv.Write([]string{n.Label, n.FinalState.String()})
	})
	if err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}

	tsv.Flush()
	if err := tsv.Error(); err != nil {
		return fmt.Errorf("while writing to %q: %v", name, err)
	}
	return nil
}

func writeTree(tr *phylo.Tree) (err error) {
	name := fmt.Sprintf("%s-tree.nwk", output)
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		e := f.Close()
		if err == nil && e != nil {
			err = e
		}
	}()

	_, err = fmt.Fprintln(f, phylo.ToNewick(tr.Root, phylo.DefaultLabel))
	return err
}
