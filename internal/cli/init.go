package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const defaultConfigName = "apigen.yaml"

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample opensearch-apigen configuration file",
		Long: "Scaffold a commented opensearch-apigen configuration file that documents available options. " +
			"A .toml target gets TOML, anything else YAML.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", defaultConfigName, "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	_ = ctx

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = defaultConfigName
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot create parent directory: %v", err))
	}

	sample := sampleConfigYAML
	if strings.EqualFold(filepath.Ext(absPath), ".toml") {
		sample = sampleConfigTOML
	}
	content := strings.TrimSpace(sample) + "\n"

	// Atomic write via temp + rename
	tmp := absPath + ".tmp"
	if err := os.WriteFile(tmp, []byte(content), 0o644); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write temp file: %v\nHint: choose a different --out or check directory permissions.", err))
	}
	if err := os.Rename(tmp, absPath); err != nil {
		_ = os.Remove(tmp)
		return newUsageError(fmt.Sprintf("init: cannot place file at %s: %v", absPath, err))
	}
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# opensearch-apigen configuration (YAML)
# All fields are optional. Environment variables (APIGEN_*) override config
# values and command-line flags override both.

# REST API spec directory or file, or an OpenAPI/Swagger document (path or http/https URL).
# input: ./rest-api-spec/api

# Output directory. Defaults to the package name.
# out: ./opensearch

# Name of the generated Go package.
# packageName: opensearch

# Import path of the urlpart helpers used by generated code.
# runtimeImport: github.com/opensearch-project/opensearch-apigen/pkg/urlpart

# Only generate endpoints whose dotted name matches these globs (comma-separated or list).
# include: ["cat.*", search]

# Skip endpoints whose dotted name matches these globs.
# exclude: ["*.deprecated"]

# Namespaces rendered in parallel. 0 means GOMAXPROCS.
# concurrency: 0

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite a non-empty output directory and remove stale generated files.
# force: false

# Enable verbose logging.
# verbose: false

# Log output format (text|json).
# logFormat: text
`

// sampleConfigTOML documents the same options in TOML.
const sampleConfigTOML = `# opensearch-apigen configuration (TOML)
# All fields are optional. Environment variables (APIGEN_*) override config
# values and command-line flags override both.

# REST API spec directory or file, or an OpenAPI/Swagger document (path or http/https URL).
# input = "./rest-api-spec/api"

# Output directory. Defaults to the package name.
# out = "./opensearch"

# Name of the generated Go package.
# package_name = "opensearch"

# Import path of the urlpart helpers used by generated code.
# runtime_import = "github.com/opensearch-project/opensearch-apigen/pkg/urlpart"

# Only generate endpoints whose dotted name matches these globs.
# include = ["cat.*", "search"]

# Skip endpoints whose dotted name matches these globs.
# exclude = ["*.deprecated"]

# Namespaces rendered in parallel. 0 means GOMAXPROCS.
# concurrency = 0

# dry_run = false
# force = false
# verbose = false
# log_format = "text"
`
