// Package demosul wires the reusecache package to a tiny synthetic System
// Under Learning and exposes it as a cobra CLI, for manual exploration of
// cache-hit/continuation/full-run behavior without a real SUL on hand.
package demosul

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gitrdm/reusecache/pkg/reusecache"
)

var defaultQueries = []string{
	"inc,inc,read",
	"inc,inc,read,dec",
	"inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,inc,read",
	"reset,reset,reset,inc,read",
	"inc,dec,inc,dec,read",
}

// NewRootCommand builds the reusecache-demo cobra command tree.
func NewRootCommand() *cobra.Command {
	var (
		modulus         int
		invariantInputs []string
		failureOutputs  []string
		verbose         bool
	)

	cmd := &cobra.Command{
		Use:   "reusecache-demo",
		Short: "Run a synthetic SUL through a reuse-cache-backed oracle",
		Long: "reusecache-demo drives a small register-machine SUL through a ReuseOracle\n" +
			"and reports, per query, its output, how many SUL calls it took (0 when\n" +
			"answered from cache), and the tree's node count. With --verbose it also\n" +
			"logs whether each query was a cache hit, a resumed continuation, or a\n" +
			"full SUL run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, modulus, invariantInputs, failureOutputs, verbose)
		},
	}

	cmd.Flags().IntVar(&modulus, "modulus", 16, "wraparound modulus of the demo counter SUL")
	cmd.Flags().StringSliceVar(&invariantInputs, "invariant-inputs", []string{"reset"}, "input symbols whose transitions pump (self-loop)")
	cmd.Flags().StringSliceVar(&failureOutputs, "failure-outputs", []string{"overflow"}, "output symbols whose triggering transitions pump (self-loop)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log every oracle dispatch decision")

	return cmd
}

func run(cmd *cobra.Command, args []string, modulus int, invariantInputs, failureOutputs []string, verbose bool) error {
	logger := zap.NewNop()
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		logger = l
		defer logger.Sync() //nolint:errcheck
	}

	alphabet, err := reusecache.NewAlphabet([]string{"inc", "dec", "read", "reset"})
	if err != nil {
		return err
	}

	opts := []reusecache.ReuseTreeOption[counterState, string, string]{
		reusecache.WithLogger[counterState, string, string](logger),
	}
	if len(invariantInputs) > 0 {
		opts = append(opts, reusecache.WithInvariantInputs[counterState, string, string](invariantInputs...))
	}
	if len(failureOutputs) > 0 {
		opts = append(opts, reusecache.WithFailureOutputs[counterState, string, string](failureOutputs...))
	}

	tree, err := reusecache.NewReuseTree[counterState, string, string](alphabet, opts...)
	if err != nil {
		return err
	}

	sul := NewCounterSUL(modulus)
	oracle, err := reusecache.NewReuseOracle[counterState, string, string](tree, sul, logger)
	if err != nil {
		return err
	}

	queries := defaultQueries
	if len(args) > 0 {
		queries = args
	}

	out := cmd.OutOrStdout()
	ctx := context.Background()
	for _, raw := range queries {
		symbols := strings.Split(raw, ",")
		word := reusecache.NewWord(symbols)

		before := sul.CallCount()
		traceID := uuid.New()
		result, err := oracle.Answer(ctx, word)
		if err != nil {
			return fmt.Errorf("query %q (trace %s): %w", raw, traceID, err)
		}
		after := sul.CallCount()

		fmt.Fprintf(out, "%-60s -> %v (sul_calls=%d, tree_nodes=%d)\n",
			raw, result.Slice(), after-before, tree.NodeCount())
	}

	return nil
}
