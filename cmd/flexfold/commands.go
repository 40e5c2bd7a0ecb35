package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/flexfold/ensemble/internal/cif"
	"github.com/flexfold/ensemble/internal/coordcache"
	"github.com/flexfold/ensemble/internal/download"
	"github.com/flexfold/ensemble/internal/ensemble"
	"github.com/flexfold/ensemble/internal/metadata"
	"github.com/flexfold/ensemble/internal/render"
)

// runAnalyze is the "run" command body: it builds a Config and an
// EnsembleSource from flags, drives ensemble.Run, and writes the
// Result in the requested format.
func runAnalyze(c *cli.Context) error {
	if c.Args().Len() < 1 {
		return cli.Exit("flexfold run: a reference identifier is required", 1)
	}
	referenceID := c.Args().First()

	cfg := ensemble.NewConfig()
	if v := c.Int("max-structures"); v > 0 {
		cfg.MaxStructures = v
	}
	if v := c.Float64("seq-ratio"); v > 0 {
		cfg.SeqRatio = v
	}
	if v := c.Float64("cis-threshold"); v > 0 {
		cfg.CisThreshold = v
	}
	cfg.MethodFilter = parseMethodFilter(c.String("method"))
	cfg.DDOF = parseDDOF(c.String("ddof"))

	cacheDir := c.String("cache-dir")
	source := ensemble.EnsembleSource{
		Metadata:   metadata.NewClient(),
		Downloader: download.NewCache(filepath.Join(cacheDir, "structures")),
		Parser:     cif.StructureParser{},
		CoordCache: coordcache.Dir{Path: filepath.Join(cacheDir, "coords")},
	}

	result, err := ensemble.Run(context.Background(), referenceID, cfg, source)
	if err != nil {
		return err
	}

	return writeResult(c, result)
}

func parseMethodFilter(s string) ensemble.MethodFilter {
	switch strings.ToLower(s) {
	case "nmr":
		return ensemble.MethodNMR
	case "em":
		return ensemble.MethodEM
	case "any":
		return ensemble.MethodAny
	default:
		return ensemble.MethodXray
	}
}

func parseDDOF(s string) ensemble.DDOF {
	if strings.ToLower(s) == "sample" {
		return ensemble.DDOFSample
	}
	return ensemble.DDOFPopulation
}

func writeResult(c *cli.Context, result ensemble.Result) error {
	format := c.String("o")
	outPath := c.String("out")

	switch format {
	case "heatmap":
		return writeImage(outPath, result, func(w *os.File) error {
			return render.WriteHeatmapPNG(w, result.Heatmap, render.DefaultHeatmapOptions())
		})
	case "scatter":
		return writeImage(outPath, result, func(w *os.File) error {
			return render.WriteScatterPNG(w, result.SamplePoints, render.DefaultScatterOptions())
		})
	default:
		output, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		if outPath == "" {
			fmt.Fprintln(c.App.Writer, string(output))
			return nil
		}
		return os.WriteFile(outPath, output, 0o644)
	}
}

func writeImage(outPath string, result ensemble.Result, encode func(*os.File) error) error {
	if outPath == "" {
		outPath = result.Fingerprint + ".png"
	}
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()
	return encode(f)
}
