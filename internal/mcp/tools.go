package mcp

import "github.com/mark3labs/mcp-go/mcp"

// loadFormTool defines the load_form MCP tool.
var loadFormTool = mcp.NewTool("load_form",
	mcp.WithDescription("Open the form as a page load would: restore the last completed run, or fill random values when there is none."),
)

// fillRandomTool defines the fill_random MCP tool.
var fillRandomTool = mcp.NewTool("fill_random",
	mcp.WithDescription("Fill every field with valid random values. Initial values are always below their restrictions."),
)

// resetDefaultsTool defines the reset_defaults MCP tool.
var resetDefaultsTool = mcp.NewTool("reset_defaults",
	mcp.WithDescription("Reset every field to the document's default values."),
)

// showFormTool defines the show_form MCP tool.
var showFormTool = mcp.NewTool("show_form",
	mcp.WithDescription("Show the current field values and status."),
	mcp.WithString("format",
		mcp.Description("Output format (default text)"),
		mcp.Enum("text", "json", "request"),
	),
)

// setFieldTool defines the set_field MCP tool.
var setFieldTool = mcp.NewTool("set_field",
	mcp.WithDescription("Set one field by id, e.g. init-eq-1, restrictions-3, faks-2-1, equations-11-3 or time-value."),
	mcp.WithString("key",
		mcp.Required(),
		mcp.Description("Field id"),
	),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("New value"),
	),
)

// submitFormTool defines the submit_form MCP tool.
var submitFormTool = mcp.NewTool("submit_form",
	mcp.WithDescription("Validate the form and run the simulation. Fails when an initial value exceeds its restriction."),
)
