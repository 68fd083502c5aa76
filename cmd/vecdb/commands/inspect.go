package commands

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/snapshot"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Describe a snapshot file",
	Long:  `Verify a snapshot file and print its header and collections.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var inspectGraph bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectGraph, "graph", false, "rebuild the indexes and print their graph layers")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	st, h, err := snapshot.Decode(f)
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}

	cmd.Printf("version:     %d\n", h.Version)
	cmd.Printf("codec:       %s\n", h.Codec)
	cmd.Printf("compression: %s\n", h.Compression)
	cmd.Printf("size:        %d bytes (%d raw)\n", h.Length, h.RawLength)
	cmd.Printf("checksum:    %08x\n", h.Checksum)
	cmd.Printf("collections: %d\n", len(st.Collections))

	if len(st.Collections) == 0 {
		return nil
	}

	cmd.Println()

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIMENSION\tVECTORS\tINDEXED\tSOURCES")
	for _, c := range st.Collections {
		sources := make(map[string]struct{}, len(c.Sources))
		for _, r := range c.Sources {
			sources[r.Source] = struct{}{}
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%t\t%d\n", c.Name, c.Dimension, c.Len(), c.Indexed, len(sources))
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	if !inspectGraph {
		return nil
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}

	return printGraphs(cmd, f)
}

func printGraphs(cmd *cobra.Command, r io.Reader) error {
	ctx := cmd.Context()

	db, err := vecdb.Restore(ctx, r)
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	defer func() { _ = db.Close() }()

	for _, name := range db.ListCollections(ctx) {
		st, err := db.Stats(ctx, name)
		if err != nil {
			return err
		}

		if st.Graph == nil {
			continue
		}

		cmd.Printf("\n%s:\n%s", name, st.Graph.String())
	}

	return nil
}
