package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kbukum/streamkit/version"
)

func newLambdaCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Sort a slice with function values and comparator helpers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runner(0).Lambda(cmd.Context())
		},
	}
}

func newWordsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "words",
		Short: "Count the long words of a sentence sequentially and in parallel",
		Long: `Count the words longer than five letters, once with a sequential pipeline
and once in parallel mode. With --parallel only the parallel count runs and
every other demo pipeline is evaluated in parallel too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			only, _ := cmd.Flags().GetBool(parallelFlag)
			return a.runner(0).WordCount(cmd.Context(), only)
		},
	}
	cmd.Flags().Bool(parallelFlag, false, "run only the parallel count")
	return cmd
}

func newAPICommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api [section...]",
		Short: "Tour the pipeline API",
		Long: `Run the pipeline API tour. Sections run in tour order; name sections to run
only those. "streamkit api --list" prints the section names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetUint64(seedFlag)
			r := a.runner(seed)
			if list, _ := cmd.Flags().GetBool("list"); list {
				for _, name := range r.SectionNames() {
					fmt.Fprintln(a.out, name)
				}
				return nil
			}
			return r.API(cmd.Context(), args...)
		},
	}
	cmd.Flags().Uint64(seedFlag, 0, "seed for the random generate demos, 0 for a random seed")
	cmd.Flags().Bool("list", false, "list section names and exit")
	return cmd
}

func newVersionCommand(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the streamkit version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return printJSON(out, info)
			}
			_, err := fmt.Fprintf(out, "streamkit %s\n", info)
			return err
		},
	}
	cmd.Flags().Bool("json", false, "print version information as JSON")
	return cmd
}

func printJSON(out io.Writer, info version.Info) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
