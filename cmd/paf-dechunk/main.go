// Command paf-dechunk rewrites PAF records produced against fasta_chunk
// output back into the coordinates of the original sequences: the
// "name|chunkStart|originalLength" header encoding is stripped from the
// query and target names and the coordinates are shifted accordingly.
//
// Used in conjunction with fasta_chunk. Reads stdin and writes stdout
// unless files are given.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ostreida/pinchnet/paf"
)

var (
	inputFile  string
	outputFile string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "paf-dechunk",
	Short:        "Undo fasta_chunk coordinate encoding in PAF records",
	Long:         "Modifies paf coordinates to remove the chunk coordinate name encoding created by fasta_chunk.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configureLogging(logLevel); err != nil {
			return err
		}

		var in io.Reader = os.Stdin
		if inputFile != "" {
			f, err := os.Open(inputFile)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		var out io.Writer = os.Stdout
		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		slog.Info("dechunking paf", "input", orStdio(inputFile, "stdin"), "output", orStdio(outputFile, "stdout"))
		return paf.DechunkStream(in, out)
	},
}

func configureLogging(level string) error {
	if level == "" {
		return nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("bad log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
	return nil
}

func orStdio(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}

func init() {
	rootCmd.Flags().StringVarP(&inputFile, "inputFile", "i", "", "input paf file; stdin when omitted")
	rootCmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "output paf file; stdout when omitted")
	rootCmd.Flags().StringVarP(&logLevel, "logLevel", "l", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
