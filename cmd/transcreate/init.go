package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dusk-indust/transcreate/internal/starter"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// transcreateMCPEntry is the MCP server configuration for the transcreate binary.
var transcreateMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "transcreate",
  "args": ["serve-mcp"]
}`)

func runInit(args []string) error {
	var dir string
	var force bool

	flags := flag.NewFlagSet("init", flag.ContinueOnError)
	flags.StringVar(&dir, "dir", ".", "project directory to initialize")
	flags.BoolVar(&force, "force", false, "overwrite existing files")

	if err := flags.Parse(args); err != nil {
		return err
	}
	return initProject(dir, force)
}

// initProject writes the starter config files and registers the MCP server
// in dir/.mcp.json.
func initProject(projectRoot string, force bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return err
	}

	err = fs.WalkDir(starter.FS, starter.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(starter.Root, path)
		if err != nil {
			return err
		}
		if renamed, ok := starter.Rename[rel]; ok {
			rel = renamed
		}
		dest := filepath.Join(abs, rel)

		if !force {
			if _, err := os.Stat(dest); err == nil {
				fmt.Printf("  skipped %s (exists, use -force to overwrite)\n", dotRelative(abs, dest))
				return nil
			}
		}

		data, err := starter.FS.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", path, err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}

		fmt.Printf("  created %s\n", dotRelative(abs, dest))
		return nil
	})
	if err != nil {
		return fmt.Errorf("copying starter files: %w", err)
	}

	if err := mergeMCPConfig(filepath.Join(abs, ".mcp.json"), force); err != nil {
		return err
	}

	fmt.Println("\nSetup complete. Point graph.path at your knowledge graph and set LLM_API_KEY.")
	return nil
}

// mergeMCPConfig creates or merges the transcreate entry into .mcp.json.
func mergeMCPConfig(mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["transcreate"]; exists && !force {
		fmt.Printf("  skipped .mcp.json transcreate entry (exists, use -force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["transcreate"] = transcreateMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Printf("  %s .mcp.json with transcreate MCP server\n", action)
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
