package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stanchion/internal/llm"
	"stanchion/internal/templates"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	mcpsrv "github.com/mark3labs/mcp-go/server"
)

// msgNoTemplates is the fixed reply for an empty template catalog. Clients
// match on this text, so keep it stable.
const msgNoTemplates = "No templates found. Please ensure the templates directory contains .bicep files."

// errNotConfigured tells the operator how to connect the server to a chat
// deployment.
var errNotConfigured = errors.New("Azure OpenAI is not configured: set AZURE_OPENAI_ENDPOINT, AZURE_OPENAI_API_KEY and AZURE_OPENAI_DEPLOYMENT_NAME, or run 'stanchion setup'")

// tools returns the MCP tools this server exposes.
func (s *Server) tools() []mcpsrv.ServerTool {
	return []mcpsrv.ServerTool{
		s.toolAssessCode(),
		s.toolGetTemplate(),
	}
}

func (s *Server) toolAssessCode() mcpsrv.ServerTool {
	tool := mcplib.NewTool("assess_code_for_enterprise_standards",
		mcplib.WithDescription(`Assess infrastructure code against enterprise standards.

Submits the code together with the enterprise naming, shared-resource, and
security standards to the configured Azure OpenAI deployment and returns the
model's compliance assessment, including recommendations for improvement
where the code falls short.`),
		mcplib.WithString("code",
			mcplib.Description("Infrastructure code to be assessed against enterprise standards."),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleAssessCode}
}

func (s *Server) handleAssessCode(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	code, _ := stringArg(req, "code")
	if strings.TrimSpace(code) == "" {
		return resultErr(errors.New("assess_code_for_enterprise_standards: code is required")), nil
	}
	if s.assessor == nil {
		return resultErr(errNotConfigured), nil
	}

	s.logger.Info("Starting code assessment", "code_length", len(code))

	verdict, err := s.assessor.Assess(ctx, code)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return resultErr(errNotConfigured), nil
		}
		s.logger.Error("Code assessment failed", "error", err)
		return resultErr(fmt.Errorf("assess_code_for_enterprise_standards: %w", err)), nil
	}

	s.logger.Info("Assessment completed", "response_length", len(verdict))
	return resultText(verdict), nil
}

func (s *Server) toolGetTemplate() mcpsrv.ServerTool {
	tool := mcplib.NewTool("get_boilerplate_template",
		mcplib.WithDescription(`Provide a boilerplate Azure Bicep template for the described infrastructure.

Scans the available templates and picks the best match for the query, using
the configured Azure OpenAI deployment for selection when available and
keyword matching otherwise. Returns the complete Bicep template code as a
starting point for deployment.`),
		mcplib.WithString("query",
			mcplib.Description("Description of the infrastructure template needed (e.g., 'web application', 'virtual machine', 'kubernetes cluster')"),
			mcplib.Required(),
		),
		mcplib.WithReadOnlyHintAnnotation(true),
	)
	return mcpsrv.ServerTool{Tool: tool, Handler: s.handleGetTemplate}
}

func (s *Server) handleGetTemplate(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	query, _ := stringArg(req, "query")
	if strings.TrimSpace(query) == "" {
		return resultErr(errors.New("get_boilerplate_template: query is required")), nil
	}
	if s.catalog == nil {
		return resultErr(errors.New("get_boilerplate_template: no template catalog configured")), nil
	}

	s.logger.Info("Processing template request", "query", query)

	name, content, err := s.catalog.Select(ctx, query)
	if err != nil {
		if errors.Is(err, templates.ErrNoTemplates) {
			return resultText(msgNoTemplates), nil
		}
		s.logger.Error("Template request failed", "error", err)
		return resultErr(fmt.Errorf("get_boilerplate_template: %w", err)), nil
	}

	s.logger.Info("Template selected", "template", name)
	return resultText(fmt.Sprintf("Selected template: %s\n\n%s", name, content)), nil
}
