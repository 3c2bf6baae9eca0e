package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/a3tai/mcp-smartform-parser/internal/smartform"
	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

const (
	formatText    = "text"
	formatJSON    = "json"
	formatSummary = "summary"

	exitRuntime = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	app := newApp(stdin, stdout, stderr)

	err := app.Run(append([]string{app.Name}, args...))
	if err == nil {
		return 0
	}

	fmt.Fprintln(stderr, err.Error())
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return exitRuntime
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	defaults := parser.DefaultOptions()

	return &cli.App{
		Name:        "smartform-dump",
		Usage:       "print the page/window tree of a SmartForm row export",
		UsageText:   "smartform-dump [options] <rows.json | ->",
		HideVersion: true,
		Writer:      stdout,
		ErrWriter:   stderr,
		Reader:      stdin,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, summary",
				Value:   formatText,
			},
			&cli.BoolFlag{
				Name:  "track-graphics",
				Usage: "Recognize graphic nodes",
				Value: defaults.TrackGraphics,
			},
			&cli.BoolFlag{
				Name:  "text-blocks",
				Usage: "Collect TDLINE rows of %TEXT regions",
				Value: defaults.TextBlockCapture,
			},
			&cli.BoolFlag{
				Name:  "empty-captions",
				Usage: "Always emit empty caption lists",
				Value: defaults.ForceEmptyCaptions,
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Print row statistics to stderr",
			},
		},
		Description: "Examples:\n" +
			"  smartform-dump exports/zsf_invoice.json\n" +
			"  smartform-dump --format=json --track-graphics=false exports/zsf_invoice.json\n" +
			"  cat rows.json | smartform-dump --format=summary -",
		Action: dumpCommand,
		OnUsageError: func(c *cli.Context, err error, _ bool) error {
			return cli.Exit(fmt.Sprintf("Error: %v", err), exitUsage)
		},
		// exit codes are mapped by run, never by os.Exit inside the app
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func dumpCommand(c *cli.Context) error {
	if c.Args().Len() != 1 {
		_ = cli.ShowAppHelp(c)
		return cli.Exit("Error: row export path required", exitUsage)
	}

	outputFormat := c.String("format")
	switch outputFormat {
	case formatText, formatJSON, formatSummary:
	default:
		return cli.Exit(fmt.Sprintf("Error: unknown format %q", outputFormat), exitUsage)
	}

	rows, err := readRows(c.Args().First(), c.App.Reader)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error: %v", err), exitRuntime)
	}

	stdout := c.App.Writer
	if outputFormat == formatSummary {
		if err := writeJSON(stdout, parser.Summarize(rows)); err != nil {
			return cli.Exit(fmt.Sprintf("Error writing output: %v", err), exitRuntime)
		}
		return nil
	}

	opts := parser.Options{
		TrackGraphics:      c.Bool("track-graphics"),
		TextBlockCapture:   c.Bool("text-blocks"),
		ForceEmptyCaptions: c.Bool("empty-captions"),
	}
	result, err := parser.New(opts).Parse(rows)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error parsing rows: %v", err), exitRuntime)
	}

	if c.Bool("verbose") {
		printStats(c.App.ErrWriter, smartform.ComputeStats(rows, result))
	}

	if outputFormat == formatJSON {
		err = writeJSON(stdout, result)
	} else {
		err = writeOutline(stdout, result)
	}
	if err != nil {
		return cli.Exit(fmt.Sprintf("Error writing output: %v", err), exitRuntime)
	}
	return nil
}

// readRows loads rows from a file, or from stdin when path is "-"
func readRows(path string, stdin io.Reader) ([]parser.Row, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return smartform.DecodeRows(data)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeOutline prints the tree as an indented outline
func writeOutline(w io.Writer, result *parser.Result) error {
	var b strings.Builder

	if len(result.Pages) == 0 {
		b.WriteString("(no pages)\n")
	}
	for _, page := range result.Pages {
		fmt.Fprintf(&b, "page %s\n", page.PageName)
		for _, win := range page.Windows {
			fmt.Fprintf(&b, "  window %s\n", win.WindowName)
			writeList(&b, "rows", win.Rows)
			writeList(&b, "cells", win.Cells)
			writeList(&b, "texts", win.Texts)
			writeList(&b, "captions", win.Captions)
			writeList(&b, "fields", win.Fields)
			writeList(&b, "tables", win.Tables)
			for i, code := range win.Code {
				fmt.Fprintf(&b, "    code #%d\n", i+1)
				for _, line := range strings.Split(code, "\n") {
					fmt.Fprintf(&b, "      | %s\n", line)
				}
			}
		}
		for _, g := range page.Graphics {
			fmt.Fprintf(&b, "  graphic %s\n", g.GraphicName)
			writeList(&b, "captions", g.Captions)
			writeList(&b, "fields", g.Fields)
			writeList(&b, "tables", g.Tables)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "    %s: %s\n", label, strings.Join(values, ", "))
}

func printStats(w io.Writer, stats *smartform.StatsResult) {
	fmt.Fprintf(w, "rows=%d depth=%d markers(page=%d window=%d graphic=%d) items=%d\n",
		stats.TotalRows, stats.MaxDepth, stats.PageMarkers, stats.WindowMarkers, stats.GraphicMarkers, stats.ItemRows)
	fmt.Fprintf(w, "tree: pages=%d windows=%d graphics=%d code=%d tables=%d fields=%d\n",
		stats.Pages, stats.Windows, stats.Graphics, stats.CodeBlocks, stats.Tables, stats.Fields)
}
