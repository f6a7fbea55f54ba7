package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/gcbaptista/review-radar/internal/engine"
	"github.com/gcbaptista/review-radar/model"
)

var (
	boldGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan  = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow    = color.New(color.FgYellow).SprintFunc()
	faint     = color.New(color.Faint).SprintFunc()
	boldRed   = color.New(color.FgRed, color.Bold).SprintFunc()
)

func runOneShot(ctx context.Context, eng *engine.Engine, exportPath, rankKey, compareIDs, mode string, topN int) error {
	if exportPath != "" {
		if err := writeExport(eng, exportPath); err != nil {
			return err
		}
	}

	if rankKey != "" {
		rankMode, err := engine.ParseRankMode(mode)
		if err != nil {
			return err
		}
		products, err := eng.RankTopProducts(ctx, rankKey, topN, rankMode)
		if err != nil {
			return err
		}
		printRanking(os.Stdout, rankKey, products)
	}

	if compareIDs != "" {
		var ids []string
		for _, id := range strings.Split(compareIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
		comparisons, err := eng.CompareProducts(ids)
		if err != nil {
			return err
		}
		printComparisons(os.Stdout, comparisons)
	}
	return nil
}

func writeExport(eng *engine.Engine, path string) error {
	var w io.Writer = os.Stdout
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	n, err := eng.Export(w)
	if err != nil {
		return err
	}
	if path != "-" {
		fmt.Printf("%s %d records to %s\n", boldGreen("Exported"), n, boldCyan(path))
	}
	return nil
}

func printRanking(w io.Writer, keyword string, products []model.ProductAggregate) {
	fmt.Fprintf(w, "%s %s\n", boldGreen("Top products for"), boldCyan(keyword))
	if len(products) == 0 {
		fmt.Fprintln(w, faint("  no matching products"))
		return
	}
	for i, p := range products {
		fmt.Fprintf(w, "%3d. %s %s\n", i+1, boldCyan(p.ProductID), p.ProductTitle)
		fmt.Fprintf(w, "     sentiment %s  rating %s  reviews %d",
			yellow(p.AvgSentiment.String()), yellow(p.AvgRating.String()), p.ReviewCount)
		if p.TextRelevance != nil {
			fmt.Fprintf(w, "  relevance %.4f", *p.TextRelevance)
		}
		fmt.Fprintln(w)
	}
}

func printComparisons(w io.Writer, comparisons []model.Comparison) {
	for _, c := range comparisons {
		fmt.Fprintf(w, "%s %s\n", boldCyan(c.ProductID), c.ProductTitle)
		fmt.Fprintf(w, "  avg sentiment %s\n", yellow(c.AvgSentiment.String()))
		fmt.Fprintf(w, "  avg rating    %s\n", yellow(c.AvgRating.String()))
		fmt.Fprintf(w, "  reviews       %d\n", c.ReviewCount)
	}
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "%s %v\n", boldRed("error:"), err)
}
