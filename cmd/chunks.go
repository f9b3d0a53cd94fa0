package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"dupescan/internal/chunker"
	"dupescan/internal/chunker/languages"
	"dupescan/internal/embedinput"
	"dupescan/internal/model"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	flagChunkKinds []string
	flagShowInput  bool
	flagMaxChars   int
	flagChunksJSON bool
)

var chunksCmd = &cobra.Command{
	Use:   "chunks <file>",
	Short: "Print the chunks extracted from one file without embedding them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		opts := chunker.Options{
			MinLines:      flagMinLines,
			MaxLines:      flagMaxLines,
			SplitStrategy: chunker.SplitStrategy(flagSplit),
		}
		if opts.SplitStrategy != chunker.SplitAuto && opts.SplitStrategy != chunker.SplitNone {
			return fmt.Errorf("unknown split strategy %q", flagSplit)
		}
		for _, k := range flagChunkKinds {
			kind, err := model.ParseKind(k)
			if err != nil {
				return err
			}
			opts.Kinds = append(opts.Kinds, kind)
		}

		reg := languages.Default()
		if reg.Lookup(path) == nil {
			return fmt.Errorf("no grammar for %s", path)
		}
		chunks, err := chunker.NewASTChunker(reg).Chunk(path, src, opts)
		if err != nil {
			if !errors.Is(err, chunker.ErrSyntax) {
				return err
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}

		if flagChunksJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(chunks)
		}
		printChunks(chunks)
		return nil
	},
}

func printChunks(chunks []model.Chunk) {
	head := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.Faint)
	for i, c := range chunks {
		if i > 0 {
			fmt.Println()
		}
		head.Printf("%s %s", c.Kind, c.Name)
		fmt.Printf("  %s:%d-%d\n", c.FilePath, c.StartLine, c.EndLine)
		dim.Printf("  id %s\n", c.ID)
		if c.Section != nil {
			dim.Printf("  section %d of %s: %s\n", c.Section.Index, c.Section.ParentID, c.Section.Label)
		}
		for _, l := range []struct {
			label string
			names []string
		}{
			{"props", c.Metadata.Props},
			{"hooks", c.Metadata.Hooks},
			{"jsx", c.Metadata.JSXElements},
		} {
			if len(l.names) > 0 {
				fmt.Printf("  %s: %s\n", l.label, strings.Join(l.names, ", "))
			}
		}
		if flagShowInput {
			dim.Println("  --- embedding input ---")
			fmt.Println(embedinput.Prepare(c, embedinput.Options{MaxChars: flagMaxChars}))
		}
	}
	if len(chunks) == 0 {
		fmt.Println("No chunks.")
	}
}

func init() {
	f := chunksCmd.Flags()
	f.IntVar(&flagMinLines, "min-lines", chunker.DefaultMinLines, "drop chunks shorter than this")
	f.IntVar(&flagMaxLines, "max-lines", chunker.DefaultMaxLines, "split units longer than this (0 disables splitting)")
	f.StringVar(&flagSplit, "split", string(chunker.SplitAuto), "split strategy (auto or none)")
	f.StringSliceVar(&flagChunkKinds, "kind", nil, "keep only chunks of these kinds")
	f.BoolVar(&flagShowInput, "input", false, "also print the text sent to the embedding model")
	f.IntVar(&flagMaxChars, "max-chars", embedinput.DefaultMaxChars, "embedding input length cap")
	f.BoolVar(&flagChunksJSON, "json", false, "print chunks as JSON")
	rootCmd.AddCommand(chunksCmd)
}
