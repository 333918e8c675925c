package cmd

import (
	"fmt"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/gcalendar-mcp/internal/config"
	"github.com/teemow/gcalendar-mcp/internal/tools"
)

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
The documentation is built from the tool registry, so it always matches
what the server advertises.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerateDocs(cmd, outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(cmd *cobra.Command, outputFile string) error {
	// Documentation shows the built-in default, not whatever the local environment sets.
	markdown := generateToolsMarkdown(tools.NewRegistry(config.DefaultTimeZone).MCPTools())

	if outputFile != "" {
		if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), markdown)
	return nil
}

func generateToolsMarkdown(mcpTools []mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running gcalendar-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, tool := range mcpTools {
		sb.WriteString(fmt.Sprintf("- [%s](#%s)\n", tool.Name, tool.Name))
	}
	sb.WriteString("\n")

	sb.WriteString("## Calendar Tools\n\n")
	for _, tool := range mcpTools {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}

	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("### %s\n\n", tool.Name))

	if tool.Description != "" {
		sb.WriteString(fmt.Sprintf("%s\n\n", tool.Description))
	}

	if len(tool.InputSchema.Properties) > 0 {
		sb.WriteString("**Arguments:**\n")

		// Sort properties for consistent output
		propNames := make([]string, 0, len(tool.InputSchema.Properties))
		for name := range tool.InputSchema.Properties {
			propNames = append(propNames, name)
		}
		sort.Strings(propNames)

		for _, name := range propNames {
			propMap, ok := tool.InputSchema.Properties[name].(map[string]any)
			if !ok {
				continue
			}

			requiredStr := "optional"
			if slices.Contains(tool.InputSchema.Required, name) {
				requiredStr = "required"
			}

			sb.WriteString(fmt.Sprintf("- `%s` (%s, %s): ", name, getPropertyType(propMap), requiredStr))
			if desc, ok := propMap["description"].(string); ok {
				sb.WriteString(desc)
			}
			if def, ok := propMap["default"]; ok {
				sb.WriteString(fmt.Sprintf(" Default: `%v`.", def))
			}
			if enum, ok := propMap["enum"].([]string); ok {
				sb.WriteString(fmt.Sprintf(" One of: `%s`.", strings.Join(enum, "`, `")))
			}
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if ann := tool.Annotations; ann.ReadOnlyHint != nil && *ann.ReadOnlyHint {
		sb.WriteString("_Read-only._\n")
	}

	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	t, ok := prop["type"].(string)
	if !ok {
		return "any"
	}
	if t == "array" {
		if items, ok := prop["items"].(map[string]any); ok {
			if it, ok := items["type"].(string); ok {
				return "array of " + it
			}
		}
	}
	return t
}
