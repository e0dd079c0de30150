// Command pfmctl is the operator CLI: schema migrations, milestone
// evaluation and resync, budget checks and expense exports.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
