// Package mcp exposes a read-only thread surface over the Model Context
// Protocol, backed by the same project store the CLI and TUI use.
package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/adamavenir/skein/internal/core"
	"github.com/adamavenir/skein/internal/store"
	mcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the project store behind an MCP stdio server.
type Server struct {
	version string
	project core.Project
	store   *store.Store
}

// NewServer discovers the project at projectRef and opens its store. A ref
// that is not a directory is looked up in the global config as a registered
// project name or id.
func NewServer(projectRef, version string) (*Server, error) {
	path, err := resolveProjectPath(projectRef)
	if err != nil {
		return nil, err
	}
	project, err := core.DiscoverProject(path)
	if err != nil {
		return nil, err
	}
	logf("Discovered project: %s", project.Root)

	st, err := store.Open(project)
	if err != nil {
		return nil, err
	}
	if err := st.InitSchema(); err != nil {
		_ = st.Close()
		return nil, err
	}
	logf("Database opened: %s", project.DBPath)

	return &Server{
		version: version,
		project: project,
		store:   st,
	}, nil
}

// Run serves MCP over stdio until the client disconnects or ctx ends.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "skein",
		Version: s.version,
	}, nil)

	RegisterTools(server, &ToolContext{Store: s.store, Project: s.project})

	return server.Run(ctx, &mcp.StdioTransport{})
}

// Close releases the store.
func (s *Server) Close() error {
	if s.store != nil {
		_ = s.store.Close()
	}
	logf("Server closed")
	return nil
}

func resolveProjectPath(ref string) (string, error) {
	if info, err := os.Stat(ref); err == nil && info.IsDir() {
		return ref, nil
	}
	config, err := core.ReadGlobalConfig()
	if err != nil {
		return "", err
	}
	if _, project, ok := core.FindProjectByRef(ref, config); ok {
		logf("Resolved project %q to %s", ref, project.Path)
		return project.Path, nil
	}
	return "", fmt.Errorf("project not found: %s (not a directory or a registered project)", ref)
}

func logf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, "[skein-mcp] %s\n", fmt.Sprintf(format, args...))
}
