package layerrenamer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Parameter structures for MCP tools
type FetchInstancesParams struct {
	MaxResults *int `json:"max_results,omitempty"`
}

type HighlightInstancesParams struct {
	ComponentType string `json:"component_type"`
}

type SaveDocumentParams struct {
	Path string `json:"path,omitempty"`
}

type EmptyParams struct{}

type UndoResult struct {
	Restored int `json:"restored"`
}

type SaveResult struct {
	Path string `json:"path"`
}

// Tool handler functions
func FetchInstancesTool(ctx context.Context, req *mcp.CallToolRequest, args FetchInstancesParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	if args.MaxResults != nil && *args.MaxResults < 0 {
		return nil, nil, fmt.Errorf("max_results cannot be negative")
	}

	result, err := renamer.FetchInstances(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch instances: %w", err)
	}

	if args.MaxResults != nil && len(result) > *args.MaxResults {
		result = result[:*args.MaxResults]
	}

	return nil, result, nil
}

func RenameComponentsTool(ctx context.Context, req *mcp.CallToolRequest, args RenameRequest, renamer Renamer) (*mcp.CallToolResult, any, error) {
	result, err := renamer.RenameComponents(ctx, args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to rename components: %w", err)
	}

	return nil, result, nil
}

func HighlightInstancesTool(ctx context.Context, req *mcp.CallToolRequest, args HighlightInstancesParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	result, err := renamer.HighlightInstances(ctx, args.ComponentType)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to highlight instances: %w", err)
	}

	return nil, result, nil
}

func UndoRenameTool(ctx context.Context, req *mcp.CallToolRequest, args EmptyParams, renamer Renamer) (*mcp.CallToolResult, any, error) {
	restored, err := renamer.Undo(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to undo rename: %w", err)
	}

	return nil, UndoResult{Restored: restored}, nil
}

func SaveDocumentTool(ctx context.Context, req *mcp.CallToolRequest, args SaveDocumentParams, session *Session, defaultPath string) (*mcp.CallToolResult, any, error) {
	path := args.Path
	if path == "" {
		path = defaultPath
	}

	if err := NewDefaultValidator().ValidatePath(path); err != nil {
		return nil, nil, fmt.Errorf("invalid path: %w", err)
	}

	if err := session.Save(ctx, path); err != nil {
		return nil, nil, fmt.Errorf("failed to save document: %w", err)
	}

	return nil, SaveResult{Path: path}, nil
}

// RunMCPServer serves the document at documentPath over MCP until the client
// disconnects, a cancel tool call arrives or the process is signalled.
// If transport is nil, it will use stdio transport
func RunMCPServer(configPath, documentPath string, transport *mcp.InMemoryTransport, stderr io.Writer) error {
	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := NewDefaultValidator().ValidateConfig(config); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if stderr == nil {
		stderr = os.Stderr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	doc, err := LoadDocument(ctx, documentPath)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: config.SlogLevel()}))
	session := NewSession(doc, Options{
		Config:   config,
		Notifier: NewWriterNotifier(stderr),
		Logger:   logger,
	})

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "layer-renamer",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "fetch_instances",
		Description: "List component sets used on the current page with their instance counts",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args FetchInstancesParams) (*mcp.CallToolResult, any, error) {
		return FetchInstancesTool(ctx, req, args, session)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "rename_components",
		Description: "Rename component instances in the selection or current page",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args RenameRequest) (*mcp.CallToolResult, any, error) {
		return RenameComponentsTool(ctx, req, args, session)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "highlight_instances",
		Description: "Select every instance of a component set on the current page",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args HighlightInstancesParams) (*mcp.CallToolResult, any, error) {
		return HighlightInstancesTool(ctx, req, args, session)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "undo_rename",
		Description: "Restore the names changed by the last rename",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyParams) (*mcp.CallToolResult, any, error) {
		return UndoRenameTool(ctx, req, args, session)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save_document",
		Description: "Write the document with its current layer names",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args SaveDocumentParams) (*mcp.CallToolResult, any, error) {
		return SaveDocumentTool(ctx, req, args, session, documentPath)
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cancel",
		Description: "Close the renamer session",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args EmptyParams) (*mcp.CallToolResult, any, error) {
		if err := session.Cancel(ctx); err != nil {
			return nil, nil, err
		}
		go cancel()
		return nil, map[string]bool{"closed": true}, nil
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger.Debug("serving document", slog.String("path", documentPath))

	if transport != nil {
		return server.Run(ctx, transport)
	}
	return server.Run(ctx, &mcp.StdioTransport{})
}
