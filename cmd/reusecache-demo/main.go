// Command reusecache-demo drives a small synthetic System Under Learning
// through a ReuseOracle, printing for each query of a batch its output, how
// many SUL calls answering it took (0 for a cache hit), and the tree's node
// count.
package main

import (
	"fmt"
	"os"

	"github.com/gitrdm/reusecache/internal/demosul"
)

func main() {
	if err := demosul.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
