package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dupescan/internal/config"
	"dupescan/internal/duplicates"
	"dupescan/internal/index"
	"dupescan/internal/model"
	"dupescan/internal/report"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <path>",
	Short: "Scan a project and serve duplicate queries over MCP (stdio)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	root, err := resolveRoot(args[0])
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, root, applyScanFlags(cmd))
	if err != nil {
		return err
	}

	// Progress goes to stderr; stdout carries the protocol.
	idx, _, err := scanProject(cmd.Context(), root, cfg)
	if err != nil {
		return err
	}

	s := mcpserver.NewMCPServer("dupescan", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(findDuplicatesTool(), makeDuplicatesHandler(idx, cfg))
	s.AddTool(findSimilarToLocationTool(), makeLocationHandler(idx, cfg))
	s.AddTool(searchSimilarTool(), makeSearchHandler(idx, cfg))
	s.AddTool(getChunkTool(), makeChunkHandler(idx))
	s.AddTool(rescanTool(), makeRescanHandler(idx, root))

	return mcpserver.ServeStdio(s)
}

func init() {
	addScanFlags(mcpCmd)
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func findDuplicatesTool() mcp.Tool {
	return mcp.NewTool("find_duplicates",
		mcp.WithDescription("List groups of near-duplicate components, hooks and functions in the scanned project, most similar first."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithNumber("threshold",
			mcp.Description("Cosine similarity (0.0-1.0) at which two chunks are grouped. Defaults to the configured threshold."),
		),
		mcp.WithString("kind",
			mcp.Description("Only group chunks of this kind (component, hook, function, jsx-fragment, ...)."),
		),
		mcp.WithNumber("min_group_size",
			mcp.Description("Smallest group to return (default 2)."),
		),
	)
}

func findSimilarToLocationTool() mcp.Tool {
	return mcp.NewTool("find_similar_to_location",
		mcp.WithDescription("Find chunks similar to the component, hook or function covering a file and line. Use before writing a new component to check whether one already exists."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("file",
			mcp.Required(),
			mcp.Description("File path, absolute or relative to the project root"),
		),
		mcp.WithNumber("line",
			mcp.Required(),
			mcp.Description("1-based line inside the chunk"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum cosine similarity (default from config)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of matches (default from config)"),
		),
	)
}

func searchSimilarTool() mcp.Tool {
	return mcp.NewTool("search_similar",
		mcp.WithDescription("Embed a description or code snippet and return the most similar chunks in the project."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language description or source code"),
		),
		mcp.WithNumber("threshold",
			mcp.Description("Minimum cosine similarity (default from config)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of matches (default from config)"),
		),
	)
}

func getChunkTool() mcp.Tool {
	return mcp.NewTool("get_chunk",
		mcp.WithDescription("Get the source and metadata of a chunk by the id returned from the other tools."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Chunk id"),
		),
	)
}

func rescanTool() mcp.Tool {
	return mcp.NewTool("rescan",
		mcp.WithDescription("Re-scan the whole project so later queries see edited files. Queries keep answering from the previous scan until this one finishes."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{
			ReadOnlyHint:    mcp.ToBoolPtr(true),
			DestructiveHint: mcp.ToBoolPtr(false),
			IdempotentHint:  mcp.ToBoolPtr(true),
			OpenWorldHint:   mcp.ToBoolPtr(true),
		}),
	)
}

// --- Handler factories ---

func makeDuplicatesHandler(idx *index.Indexer, cfg config.Config) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		opts := cfg.DuplicateOptions()
		opts.Threshold = req.GetFloat("threshold", opts.Threshold)
		opts.MinGroupSize = req.GetInt("min_group_size", opts.MinGroupSize)
		if opts.Threshold < 0 || opts.Threshold > 1 {
			return mcp.NewToolResultError("threshold must be between 0.0 and 1.0"), nil
		}
		if opts.MinGroupSize < 2 {
			return mcp.NewToolResultError("min_group_size must be at least 2"), nil
		}
		if k := req.GetString("kind", ""); k != "" {
			kind, err := model.ParseKind(k)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.Kind = kind
		}

		groups := report.BuildGroups(idx, idx.Duplicates(opts))
		r := report.Report{
			Root:         idx.Root(),
			Model:        idx.Model(),
			Threshold:    opts.Threshold,
			Chunks:       idx.Size(),
			Groups:       groups,
			DuplicateLOC: report.RedundantLines(groups),
		}
		return mcp.NewToolResultText(report.Markdown(r)), nil
	}
}

// similarOptions reads optional threshold and limit arguments.
func similarOptions(req mcp.CallToolRequest, cfg config.Config) (duplicates.SimilarOptions, error) {
	opts := cfg.SimilarOptions()
	opts.Threshold = req.GetFloat("threshold", opts.Threshold)
	if l := req.GetInt("limit", 0); l > 0 {
		opts.Limit = l
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return opts, errors.New("threshold must be between 0.0 and 1.0")
	}
	return opts, nil
}

func makeLocationHandler(idx *index.Indexer, cfg config.Config) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		file := req.GetString("file", "")
		line := req.GetInt("line", 0)
		if file == "" || line < 1 {
			return mcp.NewToolResultError("file and a positive line are required"), nil
		}
		opts, err := similarOptions(req, cfg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		matches := idx.SimilarToLocation(file, line, opts)
		return mcp.NewToolResultText(formatMatches(idx, fmt.Sprintf("Similar to %s:%d", file, line), matches)), nil
	}
}

func makeSearchHandler(idx *index.Indexer, cfg config.Config) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := req.GetString("query", "")
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		opts, err := similarOptions(req, cfg)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		matches, err := idx.SimilarToQuery(ctx, query, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		return mcp.NewToolResultText(formatMatches(idx, fmt.Sprintf("Matches for %q", query), matches)), nil
	}
}

func makeChunkHandler(idx *index.Indexer) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		meta, ok := idx.Metadata(id)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("chunk %q not found; ids come from find_duplicates or search_similar", id)), nil
		}
		content, _ := idx.Content(id)

		var sb strings.Builder
		fmt.Fprintf(&sb, "## %s `%s`\n\n", meta.Name, meta.FilePath)
		fmt.Fprintf(&sb, "**Kind:** %s  \n**Lines:** %d–%d\n\n", meta.Kind, meta.StartLine, meta.EndLine)
		if len(meta.Metadata.Props) > 0 {
			fmt.Fprintf(&sb, "**Props:** %s  \n", strings.Join(meta.Metadata.Props, ", "))
		}
		if len(meta.Metadata.Hooks) > 0 {
			fmt.Fprintf(&sb, "**Hooks:** %s  \n", strings.Join(meta.Metadata.Hooks, ", "))
		}
		fmt.Fprintf(&sb, "\n```tsx\n%s\n```\n", content)
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func makeRescanHandler(idx *index.Indexer, root string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		stats, err := idx.Index(ctx, root)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("rescan failed: %v", err)), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Rescanned %d files: %d with chunks, %d unparsed, %d chunks total.",
			stats.FilesTotal, stats.FilesIndexed, stats.FilesUnparsed, stats.ChunksTotal)), nil
	}
}

// --- Formatting helpers ---

func formatMatches(idx *index.Indexer, title string, matches []model.LocatedMatch) string {
	if len(matches) == 0 {
		return title + ": no matches."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s (%d)\n\n", title, len(matches))
	for i, m := range matches {
		fmt.Fprintf(&sb, "### %d. %s `%s:%d-%d`\n\n", i+1, m.Metadata.Name, m.Metadata.FilePath, m.Metadata.StartLine, m.Metadata.EndLine)
		fmt.Fprintf(&sb, "**Kind:** %s  \n**Similarity:** %.3f  \n**Id:** `%s`\n\n", m.Metadata.Kind, m.Similarity, m.ID)
		if content, ok := idx.Content(m.ID); ok {
			fmt.Fprintf(&sb, "```tsx\n%s\n```\n\n", content)
		}
	}
	return sb.String()
}
