package layerrenamer

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// RunCmdOptions contains options for customizing RunCmd behavior
type RunCmdOptions struct {
	// MCPTransport allows providing a custom transport for MCP server (used for testing)
	MCPTransport *mcp.InMemoryTransport
	// Stdout writer for normal output (defaults to os.Stdout)
	Stdout io.Writer
	// Stderr writer for error output (defaults to os.Stderr)
	Stderr io.Writer
}

// commandContext holds runtime context for command execution
type commandContext struct {
	stdout  io.Writer
	stderr  io.Writer
	docPath string
	config  *Config
	session *Session
}

func RunCmd(args []string, options *RunCmdOptions) error {
	stdout := io.Writer(os.Stdout)
	stderr := io.Writer(os.Stderr)
	if options != nil {
		if options.Stdout != nil {
			stdout = options.Stdout
		}
		if options.Stderr != nil {
			stderr = options.Stderr
		}
	}

	if len(args) < 1 {
		return ShowHelp(stdout)
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		help       = fs.Bool("h", false, "Show help")
		mcpOption  = fs.Bool("mcp", false, "Run as MCP server")
		verbose    = fs.Bool("v", false, "Verbose output")
		dryRun     = fs.Bool("dry-run", false, "Show what would be renamed without saving")
		configFile = fs.String("config", "", "Path to configuration file")
		docFile    = fs.String("doc", "", "Path to the document file")
	)

	if len(args) > 1 {
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
	}

	if *help {
		return ShowHelp(stdout)
	}

	if *mcpOption {
		if *docFile == "" {
			return fmt.Errorf("--doc is required")
		}
		var transport *mcp.InMemoryTransport
		if options != nil && options.MCPTransport != nil {
			transport = options.MCPTransport
		}
		return RunMCPServer(*configFile, *docFile, transport, stderr)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return ShowHelp(stdout)
	}

	switch remaining[0] {
	case "list", "rename", "highlight", "dump":
	default:
		return fmt.Errorf("unknown command: %s", remaining[0])
	}

	if *docFile == "" {
		return fmt.Errorf("--doc is required")
	}

	config, err := LoadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	validator := NewDefaultValidator()
	if err := validator.ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := validator.ValidatePath(*docFile); err != nil {
		return fmt.Errorf("invalid document path: %w", err)
	}

	ctx := context.Background()
	doc, err := LoadDocument(ctx, *docFile)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	level := config.SlogLevel()
	if *verbose {
		level = slog.LevelDebug
	}

	cmdCtx := &commandContext{
		stdout:  stdout,
		stderr:  stderr,
		docPath: *docFile,
		config:  config,
		session: NewSession(doc, Options{
			Config:   config,
			Notifier: NewWriterNotifier(stderr),
			Logger:   slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})),
		}),
	}

	switch remaining[0] {
	case "list":
		return listInstancesCommand(ctx, cmdCtx, remaining[1:], *verbose)
	case "rename":
		return renameCommand(ctx, cmdCtx, remaining[1:], *dryRun, *verbose)
	case "highlight":
		return highlightCommand(ctx, cmdCtx, remaining[1:], *dryRun, *verbose)
	default:
		return dumpCommand(ctx, cmdCtx, remaining[1:])
	}
}

func ShowHelp(w io.Writer) error {
	help := `Layer Renamer - Rename component instances in a document tree

Usage:
  layer-renamer [OPTIONS] COMMAND [ARGS...]
  layer-renamer -mcp --doc FILE    Run as MCP server

Options:
  -h, --help           Show this help message
  -v, --verbose        Enable verbose output
  --dry-run            Preview changes without saving the document
  --config FILE        Path to configuration file
  --doc FILE           Path to the document (YAML or JSON)
  -mcp                 Run as MCP server

Commands:
  list         List component sets with their instance counts
  rename       Rename component instances
  highlight    Select every instance of a component set
  dump         Print the parsed document tree

Examples:
  layer-renamer --doc=design.yaml list
  layer-renamer --doc=design.yaml rename --button="CTA" --custom="Card:Tile,Badge:Pill"
  layer-renamer --doc=design.yaml --dry-run rename --list-item="Row"
  layer-renamer --doc=design.yaml highlight --group="Button"
  layer-renamer -mcp --doc=design.yaml --config=renamer.yaml

For more information, visit: https://github.com/thrawn01/layer-renamer
`
	_, _ = fmt.Fprint(w, help)
	return nil
}

func listInstancesCommand(ctx context.Context, cmdCtx *commandContext, args []string, verbose bool) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	minCount := fs.Int("min-count", 1, "Minimum instance count")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	instances, err := cmdCtx.session.FetchInstances(ctx)
	if err != nil {
		return err
	}

	filtered := make([]UniqueInstance, 0, len(instances))
	for _, instance := range instances {
		if instance.Count >= *minCount {
			filtered = append(filtered, instance)
		}
	}

	if *jsonOutput {
		return json.NewEncoder(cmdCtx.stdout).Encode(filtered)
	}

	_, _ = fmt.Fprintf(cmdCtx.stdout, "\nFound %d component sets:\n", len(filtered))
	for _, instance := range filtered {
		_, _ = fmt.Fprintf(cmdCtx.stdout, "  %-30s %d instances\n", instance.Name, instance.Count)
	}

	return nil
}

func renameCommand(ctx context.Context, cmdCtx *commandContext, args []string, globalDryRun bool, verbose bool) error {
	fs := flag.NewFlagSet("rename", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	defaults := cmdCtx.config.RenameRequest()

	button := fs.String("button", defaults.ButtonName, "New name for Button instances")
	serviceTiles := fs.String("service-tiles", defaults.ServiceTilesName, "New name for Elements / Service Tiles instances")
	listItem := fs.String("list-item", defaults.ListItemName, "New name for List item instances")
	custom := fs.String("custom", "", "Comma-separated custom renames (group1:new1,group2:new2)")
	out := fs.String("out", "", "Write the renamed document here instead of over --doc")
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	localDryRun := fs.Bool("dry-run", false, "Show what would be renamed without saving")

	if err := fs.Parse(args); err != nil {
		return err
	}

	customRenames, err := ParseCustomRenames(*custom)
	if err != nil {
		return err
	}

	req := RenameRequest{
		ButtonName:       *button,
		ServiceTilesName: *serviceTiles,
		ListItemName:     *listItem,
		CustomRenames:    append(customRenames, defaults.CustomRenames...),
	}

	if verbose {
		for _, issue := range NewDefaultValidator().ValidateRules(req.CustomRenames).Issues {
			_, _ = fmt.Fprintf(cmdCtx.stderr, "warning: %s\n", issue)
		}
	}

	dryRun := globalDryRun || *localDryRun
	if dryRun {
		_, _ = fmt.Fprintln(cmdCtx.stdout, "DRY RUN MODE - The document will not be modified")
	}

	report, err := cmdCtx.session.RenameComponents(ctx, req)
	if err != nil {
		return err
	}

	if dryRun {
		if _, err := cmdCtx.session.Undo(ctx); err != nil {
			return fmt.Errorf("failed to revert dry run: %w", err)
		}
	} else {
		target := cmdCtx.docPath
		if *out != "" {
			target = *out
		}
		if err := cmdCtx.session.Save(ctx, target); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
	}

	if *jsonOutput {
		return json.NewEncoder(cmdCtx.stdout).Encode(report)
	}

	_, _ = fmt.Fprintf(cmdCtx.stdout, "\nRenamed layers: %d\n", report.Total)
	for _, category := range []string{ButtonComponent, ServiceTilesComponent, ListItemComponent, CustomCategory} {
		_, _ = fmt.Fprintf(cmdCtx.stdout, "  %-30s %d\n", category, report.Counts[category])
	}
	if verbose {
		for _, item := range report.RenamedItems {
			_, _ = fmt.Fprintf(cmdCtx.stdout, "  %s: %q -> %q (%s)\n", item.ID, item.OriginalName, item.NewName, item.Type)
		}
	}

	return nil
}

func highlightCommand(ctx context.Context, cmdCtx *commandContext, args []string, globalDryRun bool, verbose bool) error {
	fs := flag.NewFlagSet("highlight", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	group := fs.String("group", "", "Component set name to select")
	save := fs.Bool("save", false, "Store the selection in the document")
	jsonOutput := fs.Bool("json", false, "Output as JSON")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *group == "" {
		return fmt.Errorf("--group is required")
	}

	result, err := cmdCtx.session.HighlightInstances(ctx, *group)
	if err != nil {
		return err
	}

	if *save && !globalDryRun && result.Count > 0 {
		if err := cmdCtx.session.Save(ctx, cmdCtx.docPath); err != nil {
			return fmt.Errorf("failed to save document: %w", err)
		}
	}

	if *jsonOutput {
		return json.NewEncoder(cmdCtx.stdout).Encode(result)
	}

	_, _ = fmt.Fprintf(cmdCtx.stdout, "\n%s\n", result.Message)
	for _, id := range result.NodeIDs {
		if verbose {
			if node, ok := cmdCtx.session.Document().FindByID(id); ok {
				_, _ = fmt.Fprintf(cmdCtx.stdout, "  %s  %s\n", id, node.Name)
				continue
			}
		}
		_, _ = fmt.Fprintf(cmdCtx.stdout, "  %s\n", id)
	}

	return nil
}

func dumpCommand(ctx context.Context, cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(cmdCtx.stderr)

	nodeID := fs.String("node", "", "Only dump the subtree rooted at this node id")

	if err := fs.Parse(args); err != nil {
		return err
	}

	dumper := spew.ConfigState{
		Indent:                  "  ",
		DisablePointerAddresses: true,
		DisableCapacities:       true,
		SortKeys:                true,
	}

	doc := cmdCtx.session.Document()
	if *nodeID != "" {
		node, ok := doc.FindByID(*nodeID)
		if !ok {
			return fmt.Errorf("node not found: %s", *nodeID)
		}
		dumper.Fdump(cmdCtx.stdout, node)
		return nil
	}

	for _, page := range doc.Pages {
		dumper.Fdump(cmdCtx.stdout, page)
	}
	return nil
}

// ParseCustomRenames parses "group:new" pairs separated by commas. The new
// name may be empty; a pair without a colon is an error.
func ParseCustomRenames(value string) ([]CustomRename, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var rules []CustomRename
	for _, pair := range strings.Split(value, ",") {
		name, newName, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid custom rename format: %s", pair)
		}
		rules = append(rules, CustomRename{
			Name:    strings.TrimSpace(name),
			NewName: strings.TrimSpace(newName),
		})
	}
	return rules, nil
}
