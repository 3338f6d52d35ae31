// Copyright © 2024 The bigrig authors.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package sim implements a command to annotate a given phylogeny with a
// sampled biogeographic range history.
package sim

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
	Usage: `sim [-o|--output <prefix>] [--seed <number>]
	<config-file> <tree-file>`,
	Short: "annotate a tree with a simulated range history",
	Long: `
Command sim reads a bigrig YAML configuration and a Newick tree, and
simulates a biogeographic range history on the given tree: a root range,
per-branch anagenetic transitions, and a cladogenetic split at every
internal node.

The output is two files: <prefix>-leaves.tab, a tab-delimited table with
the final range of every leaf, and <prefix>-tree.nwk with the tree in
Newick format (leaf labels, internal node IDs and branch lengths).
By default the prefix is "sim"; use -o or --output to change it.

The flag --seed overrides the configuration file's seed, if any.
	`,
	SetFlags: setFlags,
	Run:      run,
}

var output string
var seedFlag int64

func setFlags(c *command.Command) {
	c.Flags().StringVar(&output, "output", "sim", "")
	c.Flags().StringVar(&output, "o", "sim", "")
	c.Flags().Int64Var(&seedFlag, "seed", 0, "")
}

func run(c *command.Command, args []string) (err error) {
	if len(args) < 2 {
		return c.UsageError("expecting configuration and tree files")
	}

	cfg, err := readConfig(args[0])
	if err != nil {
		return err
	}

	tr, err := readTree(args[1])
	if err != nil {
		return err
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
	mode := modeFromConfig(cfg.Mode)

	if err := simulate.AnnotateTree(tr, root, periods, rng.Global(), mode); err != nil {
		return fmt.Errorf("while simulating: %v", err)
	}

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

func readTree(name string) (*phylo.Tree, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tr, err := phylo.ParseNewick(f)
	if err != nil {
		return nil, fmt.Errorf("on file %q: %v", name, err)
	}
	return tr, nil
}

func modeFromConfig(m config.Mode) spread.Mode {
	if m == config.ModeSim {
		return spread.Sim
	}
	return spread.Fast
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
