// Command planetsim runs the planetary production simulation.
//
// Usage:
//
//	planetsim run [--years=N] [--db=<path>] [--resume=<run>|last] [--adopt=<id>...] [--ban=<id>...]
//	planetsim mix [--years=N]
//	planetsim history --db=<path> [--run=<id>] [--process=<id>]
//	planetsim serve [--addr=:8080] [--db=<path>] [--interval=5s]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
