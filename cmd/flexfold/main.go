// Command flexfold runs the protein-ensemble flexibility-analysis
// pipeline end to end against a reference identifier and prints or
// renders its Result, structured the way poly's own cmd/poly driver
// separates flag wiring (this file) from command bodies
// (commands.go).
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := application().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// application builds the *cli.App so tests can spoof os.Args and the
// App's Reader/Writer without invoking main() directly.
func application() *cli.App {
	app := cli.NewApp()
	app.Name = "flexfold"
	app.Usage = "analyze conformational flexibility across a PDB cross-reference ensemble"
	app.Version = "0.1.0"

	app.Commands = []*cli.Command{
		{
			Name:      "run",
			Usage:     "run the flexibility analysis for one reference identifier",
			ArgsUsage: "<reference-id>",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "max-structures", Value: 20, Usage: "cap on cross-referenced structures considered after the method filter"},
				&cli.Float64Flag{Name: "seq-ratio", Value: 0.9, Usage: "minimum fraction of chains that must have a residue at a reference position for that row to be kept"},
				&cli.Float64Flag{Name: "cis-threshold", Value: 3.8, Usage: "Cα-Cα distance (Å) at or below which a residue pair counts as cis in a chain"},
				&cli.StringFlag{Name: "method", Value: "xray", Usage: "experimental method filter: xray, nmr, em, any"},
				&cli.StringFlag{Name: "ddof", Value: "population", Usage: "standard deviation convention: population or sample"},
				&cli.StringFlag{Name: "o", Value: "json", Usage: "output format: json, heatmap, scatter"},
				&cli.StringFlag{Name: "out", Usage: "output file path (defaults to stdout for json, <fingerprint>.png for images)"},
				&cli.StringFlag{Name: "cache-dir", Value: "./flexfold-cache", Usage: "directory for downloaded structures and coordinate cache"},
			},
			Action: runAnalyze,
		},
	}

	return app
}
