// Package main is the entry point for the crmetrics CLI tool, which tracks
// a Clash Royale player's battles and turns them into coaching metrics.
package main

import "github.com/pable/go-cr-metrics/cmd"

func main() {
	cmd.Execute()
}
