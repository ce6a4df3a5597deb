// Package main provides the CLI entry point for highlightctl, a tool that
// applies persisted highlight anchors to an HTML file and reports which
// anchors resolved.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/briarwood-reader/highlight"
)

func main() {
	var markerTag string

	applyCmd := &cobra.Command{
		Use:   "apply <html-file> <anchors.json>",
		Short: "Apply highlight anchors to an HTML file",
		Long: `apply reads an HTML document and a JSON array of anchors, applies the
anchors to the document, and writes the resulting HTML to stdout followed
by a summary of applied and orphaned anchor ids on stderr.`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runApply(args[0], args[1], markerTag)
		},
	}
	applyCmd.Flags().StringVar(&markerTag, "marker-tag", "", "element tag used to wrap highlighted text (default: html-hl)")

	newIDCmd := &cobra.Command{
		Use:   "new-id",
		Short: "Print a fresh anchor id",
		Long:  `new-id prints a random UUID suitable for use as an anchor's "id" field.`,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println(uuid.NewString())
			return nil
		},
	}

	rootCmd := &cobra.Command{
		Use:           "highlightctl",
		Short:         "Inspect and drive the durable highlighting engine from the command line",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	rootCmd.AddCommand(applyCmd, newIDCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runApply(htmlPath, anchorsPath, markerTag string) error {
	htmlBytes, err := os.ReadFile(htmlPath)
	if err != nil {
		return fmt.Errorf("read html file: %w", err)
	}

	anchorsBytes, err := os.ReadFile(anchorsPath)
	if err != nil {
		return fmt.Errorf("read anchors file: %w", err)
	}

	var rawAnchors []json.RawMessage
	if err := json.Unmarshal(anchorsBytes, &rawAnchors); err != nil {
		return fmt.Errorf("parse anchors file: %w", err)
	}

	anchors := make([]highlight.Anchor, 0, len(rawAnchors))
	for i, raw := range rawAnchors {
		a, err := highlight.DecodeAnchor(raw)
		if err != nil {
			return fmt.Errorf("anchor %d: %w", i, err)
		}
		anchors = append(anchors, a)
	}

	var opts []highlight.Option
	if markerTag != "" {
		opts = append(opts, highlight.WithMarkerTag(markerTag))
	}
	engine := highlight.NewEngine(opts...)

	result, err := engine.Apply(string(htmlBytes), anchors)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	fmt.Println(result.HTML)
	fmt.Fprintf(os.Stderr, "applied=%d orphaned=%v\n", result.Applied, result.OrphanedIDs)
	return nil
}
