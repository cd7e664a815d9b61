package server

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
)

// serveStdio runs the MCP protocol over the given streams until EOF or ctx is cancelled
func (s *Server) serveStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	s.logger.Info("Serving via STDIO")

	stdioServer := server.NewStdioServer(s.mcpServer)
	stdioServer.SetContextFunc(s.contextFunc)
	// Transport errors go through the structured logger instead of stderr directly
	stdioServer.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdioServer.Listen(ctx, in, out)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	s.logger.Info("STDIO server stopped")
	return nil
}
