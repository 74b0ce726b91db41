package tool

// In this file: argument extraction and result helpers shared by all tool
// handlers.

import (
	mcplib "github.com/mark3labs/mcp-go/mcp"
)

// resultText is a helper that wraps text in a successful CallToolResult.
func resultText(text string) *mcplib.CallToolResult {
	return mcplib.NewToolResultText(text)
}

// resultErr is a helper that wraps an error in a CallToolResult with IsError=true.
func resultErr(err error) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(err.Error())},
		IsError: true,
	}
}

// resultJSON is a helper that serialises v to JSON and returns a CallToolResult.
func resultJSON(v any) (*mcplib.CallToolResult, error) {
	return mcplib.NewToolResultJSON(v)
}

// stringArg extracts a named string argument from a tool call request.
// Returns ("", false) if the argument is absent or not a string.
func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	args := req.GetArguments()
	if args == nil {
		return "", false
	}
	v, ok := args[name]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// optionalString extracts a named string argument, returning "" when absent.
func optionalString(req mcplib.CallToolRequest, name string) string {
	s, _ := stringArg(req, name)
	return s
}

// intArg extracts a named int argument from a tool call request.  The MCP
// protocol serialises numbers as float64, so we convert accordingly.
func intArg(req mcplib.CallToolRequest, name string, defaultVal int) int {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return defaultVal
}

// boolArg extracts a named bool argument from a tool call request.
func boolArg(req mcplib.CallToolRequest, name string, defaultVal bool) bool {
	args := req.GetArguments()
	if args == nil {
		return defaultVal
	}
	v, ok := args[name]
	if !ok {
		return defaultVal
	}
	b, ok := v.(bool)
	if !ok {
		return defaultVal
	}
	return b
}
