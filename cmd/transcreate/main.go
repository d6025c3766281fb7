package main

import (
	"fmt"
	"os"
)

// version is set by goreleaser at build time.
var version = "dev"

const usage = `usage: transcreate <command> [flags]

commands:
  reason     analyze a scene graph and write a Transcreation Plan
  realize    apply an Edit Plan to an image (mock realization)
  validate   check a plan document against its schema
  schema     print the JSON Schema of a plan kind
  serve      run the HTTP API
  serve-mcp  run the MCP server on stdio (or -http addr)
  diagram    render the knowledge graph as a Mermaid diagram
  history    export archived runs as JSON
  init       write a starter transcreate.yml, .env.example and .mcp.json
  version    print the version

Run 'transcreate <command> -h' for command flags.`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("missing command\n%s", usage)
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "reason":
		return runReason(rest)
	case "realize":
		return runRealize(rest)
	case "validate":
		return runValidate(rest)
	case "schema":
		return runSchema(rest)
	case "serve":
		return runServe(rest)
	case "serve-mcp":
		return runServeMCP(rest)
	case "diagram":
		return runDiagram(rest)
	case "history":
		return runHistory(rest)
	case "init":
		return runInit(rest)
	case "version", "-version", "--version":
		fmt.Println(version)
		return nil
	case "help", "-h", "-help", "--help":
		fmt.Println(usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}
