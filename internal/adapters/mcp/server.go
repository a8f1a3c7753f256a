package mcpadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/rfp-slide-generator/internal/core/domain"
	"github.com/kirillkom/rfp-slide-generator/internal/core/ports"
)

const (
	serverName    = "rfp-slide-generator"
	serverVersion = "1.0.0"

	toolGenerateSlides = "generate_slides"
	toolListDocuments  = "list_documents"
)

// Server exposes slide generation to MCP clients over streamable HTTP.
type Server struct {
	generator ports.SlideGenerator
	catalog   ports.Catalog
	mcp       *server.MCPServer
}

func NewServer(generator ports.SlideGenerator, catalog ports.Catalog) *Server {
	s := &Server{
		generator: generator,
		catalog:   catalog,
		mcp:       server.NewMCPServer(serverName, serverVersion, server.WithToolCapabilities(true)),
	}

	s.mcp.AddTool(mcp.NewTool(toolGenerateSlides,
		mcp.WithDescription("Generate a slide outline from an uploaded RFP document, optionally styled by a brand guide."),
		mcp.WithString("rfpFilename",
			mcp.Required(),
			mcp.Description("Original filename of an uploaded RFP document"),
		),
		mcp.WithString("brandGuideFilename",
			mcp.Description("Filename of an uploaded brand guide; omit for default styling"),
		),
		mcp.WithNumber("slideCount",
			mcp.Description("Number of slides to generate (3-15, default 5)"),
		),
	), s.handleGenerateSlides)

	s.mcp.AddTool(mcp.NewTool(toolListDocuments,
		mcp.WithDescription("List uploaded RFP documents and brand guides."),
	), s.handleListDocuments)

	return s
}

// Handler serves the MCP streamable HTTP transport.
func (s *Server) Handler() http.Handler {
	return server.NewStreamableHTTPServer(s.mcp)
}

func (s *Server) handleGenerateSlides(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rfpFilename, err := req.RequireString("rfpFilename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.generator.Generate(ctx, domain.GenerateRequest{
		RFPFilename:        rfpFilename,
		BrandGuideFilename: req.GetString("brandGuideFilename", ""),
		SlideCount:         req.GetInt("slideCount", 0),
	})
	if err != nil {
		slog.Warn("mcp_tool_failed", "tool", toolGenerateSlides, "rfp_filename", rfpFilename, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(result)
}

func (s *Server) handleListDocuments(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	listing, err := s.catalog.ListFiles(ctx)
	if err != nil {
		slog.Warn("mcp_tool_failed", "tool", toolListDocuments, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(listing)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode tool result: %w", err)
	}
	return mcp.NewToolResultText(string(raw)), nil
}
