// Command stockticker demonstrates live change tracking over a keyed stock
// price store: init/clean manage the dataset, change drives a random
// workload, trace and display consume the change feed.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
