//go:build linux

// Command cachesc-selfcheck is a diagnostic CLI that builds a Prime+Probe
// structure for a chosen cache level, re-checks its invariants (spec.md
// §8), and prints a pass/fail report. It never performs or prints anything
// that would constitute an actual attack demo (spec.md §1 Non-goals) —
// only structure construction and invariant verification.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/Miro-H/cachesc/internal/arch"
	"github.com/Miro-H/cachesc/internal/fault"
	"github.com/Miro-H/cachesc/internal/obslog"
	"github.com/Miro-H/cachesc/internal/xlate"
	"github.com/Miro-H/cachesc/pkg/cachectx"
	"github.com/Miro-H/cachesc/pkg/primeprobe"
	"github.com/Miro-H/cachesc/pkg/topology"
	"github.com/Miro-H/cachesc/pkg/victim"
)

var (
	cpu       int
	logLevel  string
	setFilter []int
)

func main() {
	root := &cobra.Command{
		Use:   "cachesc-selfcheck",
		Short: "Builds a Prime+Probe structure and verifies its invariants",
		Long: `cachesc-selfcheck exercises the cache-structure builders (virtual, physical
privileged, physical unprivileged) against the running machine and checks
the structural invariants spec'd for a correctly built ring: every set
has exactly associativity members, exactly one FIRST and one LAST line
per set, and the ring returns to its entry after walking every line
exactly once.

This tool never mounts an attack against another process; it only builds
and tears down its own structures.`,
	}
	root.PersistentFlags().IntVar(&cpu, "cpu", 0, "logical CPU to pin the check to")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "obslog level (debug, info, warn, error)")
	root.PersistentFlags().IntSliceVar(&setFilter, "sets", nil, "restrict the build to these set indices (default: all sets)")

	root.AddCommand(
		newLevelCmd("l1", cachectx.L1),
		newLevelCmd("l2", cachectx.L2),
		newVictimCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLevelCmd(use string, level cachectx.Level) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Build and verify a %s structure", level),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLevelCheck(level)
		},
	}
}

func runLevelCheck(level cachectx.Level) (retErr error) {
	runID := uuid.New().String()
	log := obslog.New("selfcheck", logLevel)
	log = log.With("run", runID, "level", level.String())

	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(fault.Fault); ok {
				retErr = fmt.Errorf("fatal fault: %s", f.Error())
				return
			}
			panic(r)
		}
	}()

	if err := pinIfRequested(log); err != nil {
		return err
	}

	ctx, err := cachectx.MakeContext(level)
	if err != nil {
		return err
	}
	defer cachectx.Release(ctx)
	log.Info("context built", "sets", ctx.Sets, "associativity", ctx.Associativity, "line_size", ctx.LineSize)

	t, err := openTranslator(ctx, log)
	if err != nil {
		return err
	}
	if t != nil {
		defer t.Close()
	}

	r := rand.New(rand.NewSource(1))
	s := topology.BuildForSets(ctx, setFilter, t, r)
	defer s.Release()

	wantSets := ctx.Sets
	if len(setFilter) > 0 {
		wantSets = len(setFilter)
	}
	wantLines := wantSets * ctx.Associativity

	if err := topology.Verify(ctx, s.Entry, wantLines); err != nil {
		fmt.Printf("FAIL: %s\n", err)
		return err
	}
	fmt.Printf("PASS: %s structure verified (%d sets, %d lines, run %s)\n", level, wantSets, wantLines, runID)

	primeprobe.Probe(level, s.Entry)
	log.Debug("probe completed")
	return nil
}

func newVictimCmd() *cobra.Command {
	var targetSet int
	var levelName string

	cmd := &cobra.Command{
		Use:   "victim",
		Short: "Isolate a single cache line in one set and verify its lifecycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			level := cachectx.L1
			if levelName == "l2" {
				level = cachectx.L2
			}
			return runVictimCheck(level, targetSet)
		},
	}
	cmd.Flags().StringVar(&levelName, "level", "l1", "cache level to isolate the line in (l1, l2)")
	cmd.Flags().IntVar(&targetSet, "set", 0, "set index to isolate a line in")
	return cmd
}

func runVictimCheck(level cachectx.Level, targetSet int) (retErr error) {
	runID := uuid.New().String()
	log := obslog.New("selfcheck-victim", logLevel)
	log = log.With("run", runID)

	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(fault.Fault); ok {
				retErr = fmt.Errorf("fatal fault: %s", f.Error())
				return
			}
			panic(r)
		}
	}()

	if err := pinIfRequested(log); err != nil {
		return err
	}

	ctx, err := cachectx.MakeContext(level)
	if err != nil {
		return err
	}
	defer cachectx.Release(ctx)

	t, err := openTranslator(ctx, log)
	if err != nil {
		return err
	}
	if t != nil {
		defer t.Close()
	}

	r := rand.New(rand.NewSource(1))
	v := victim.Prepare(ctx, targetSet, t, r)
	defer victim.Release(v)

	victim.Evict(v)
	victim.Touch(v)
	fmt.Printf("PASS: victim line isolated in set %d of %s (run %s)\n", targetSet, level, runID)
	return nil
}

func pinIfRequested(log hclog.Logger) error {
	if err := arch.PinCPU(cpu); err != nil {
		log.Warn("failed to pin CPU, continuing unpinned", "err", err)
	}
	return nil
}

func openTranslator(ctx *cachectx.Context, log hclog.Logger) (*xlate.Translator, error) {
	if ctx.Addressing != cachectx.Physical {
		return nil, nil
	}
	t, err := xlate.Open(cachectx.PageSize)
	if err != nil {
		log.Warn("pagemap unavailable, falling back to unprivileged construction", "err", err)
		return nil, nil
	}
	if !xlate.CanTranslate(t) {
		log.Info("pagemap present but unprivileged, using collision-based construction")
	}
	return t, nil
}
