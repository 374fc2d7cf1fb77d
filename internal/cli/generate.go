package cli

import (
	"context"
	"errors"
	"fmt"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	goemitter "github.com/opensearch-project/opensearch-apigen/internal/emitter/goemitter"
	"github.com/opensearch-project/opensearch-apigen/internal/generator"
	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, environment variables and CLI
// overrides.
type GenerateConfig struct {
	Input         string   `env:"APIGEN_INPUT"`
	Out           string   `env:"APIGEN_OUT"`
	PackageName   string   `env:"APIGEN_PACKAGE"`
	RuntimeImport string   `env:"APIGEN_RUNTIME_IMPORT"`
	Include       []string `env:"APIGEN_INCLUDE" envSeparator:","`
	Exclude       []string `env:"APIGEN_EXCLUDE" envSeparator:","`
	Concurrency   int      `env:"APIGEN_CONCURRENCY"`
	DryRun        bool     `env:"APIGEN_DRY_RUN"`
	Force         bool     `env:"APIGEN_FORCE"`
	Verbose       bool     `env:"APIGEN_VERBOSE"`
	LogFormat     string   `env:"APIGEN_LOG_FORMAT"`
	ConfigPath    string
	LogOutput     io.Writer // defaults to os.Stderr
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		PackageName: generator.DefaultPackageName,
		LogFormat:   logFormatText,
	}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the client package from a REST API description",
		Long: "Generate the URL parts and request builders of every endpoint into a Go package. " +
			"Options can be provided via flags, environment variables, config files, or defaults.",
		Example: strings.TrimSpace(`  opensearch-apigen generate --input ./rest-api-spec --out ./opensearch
  opensearch-apigen generate --input openapi.yaml --include 'cat.*' --dry-run
  opensearch-apigen --config apigen.toml generate --force`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			cfg.LogOutput = cmd.ErrOrStderr()
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "REST API spec directory or file, or OpenAPI/Swagger document (path or URL)")
	flags.String("out", "", "Output directory (defaults to the package name)")
	flags.String("package-name", "", "Name of the generated Go package")
	flags.String("runtime-import", "", "Import path of the urlpart helpers used by generated code")
	flags.StringSlice("include", nil, "Only generate endpoints whose name matches these globs")
	flags.StringSlice("exclude", nil, "Skip endpoints whose name matches these globs")
	flags.Int("concurrency", 0, "Namespaces rendered in parallel (defaults to GOMAXPROCS)")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output and remove stale generated files")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyConfigFile(configPath, generateConfigSetters(&cfg)); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	if flags.Changed("input") {
		value, err := flags.GetString("input")
		if err != nil {
			return err
		}
		cfg.Input = strings.TrimSpace(value)
	}
	if flags.Changed("out") {
		value, err := flags.GetString("out")
		if err != nil {
			return err
		}
		cfg.Out = strings.TrimSpace(value)
	}
	if flags.Changed("package-name") {
		value, err := flags.GetString("package-name")
		if err != nil {
			return err
		}
		cfg.PackageName = strings.TrimSpace(value)
	}
	if flags.Changed("runtime-import") {
		value, err := flags.GetString("runtime-import")
		if err != nil {
			return err
		}
		cfg.RuntimeImport = strings.TrimSpace(value)
	}
	if flags.Changed("include") {
		value, err := flags.GetStringSlice("include")
		if err != nil {
			return err
		}
		cfg.Include = sanitizePatterns(value)
	}
	if flags.Changed("exclude") {
		value, err := flags.GetStringSlice("exclude")
		if err != nil {
			return err
		}
		cfg.Exclude = sanitizePatterns(value)
	}
	if flags.Changed("concurrency") {
		value, err := flags.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = value
	}
	if flags.Changed("dry-run") {
		value, err := flags.GetBool("dry-run")
		if err != nil {
			return err
		}
		cfg.DryRun = value
	}
	if flags.Changed("force") {
		value, err := flags.GetBool("force")
		if err != nil {
			return err
		}
		cfg.Force = value
	}
	return applyLoggingFlagOverrides(flags, &cfg.Verbose, &cfg.LogFormat)
}

// applyLoggingFlagOverrides reads the persistent logging flags shared by
// every subcommand.
func applyLoggingFlagOverrides(flags *pflag.FlagSet, verbose *bool, format *string) error {
	if flags.Changed("verbose") {
		value, err := flags.GetBool("verbose")
		if err != nil {
			return err
		}
		*verbose = value
	}
	if flags.Changed("log-format") {
		value, err := flags.GetString("log-format")
		if err != nil {
			return err
		}
		*format = strings.TrimSpace(value)
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.PackageName = strings.TrimSpace(c.PackageName)
	if c.PackageName == "" {
		c.PackageName = generator.DefaultPackageName
	}
	if c.Out == "" {
		c.Out = c.PackageName
	}
	c.RuntimeImport = strings.TrimSpace(c.RuntimeImport)
	c.Include = sanitizePatterns(c.Include)
	c.Exclude = sanitizePatterns(c.Exclude)
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag, APIGEN_INPUT or config file)")
	}
	if !token.IsIdentifier(c.PackageName) {
		return newUsageError(fmt.Sprintf("generate: --package-name %q is not a valid Go identifier", c.PackageName))
	}
	if c.Concurrency < 0 {
		return newUsageError(fmt.Sprintf("generate: --concurrency must not be negative, got %d", c.Concurrency))
	}
	switch c.LogFormat {
	case "", logFormatText, logFormatJSON:
	default:
		return newUsageError(fmt.Sprintf("generate: unsupported --log-format %q (allowed: text, json)", c.LogFormat))
	}

	overlap := intersect(c.Include, c.Exclude)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude patterns overlap: %s", strings.Join(overlap, ", ")))
	}

	return nil
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logOut := cfg.LogOutput
	if logOut == nil {
		logOut = os.Stderr
	}
	log, err := newLogger(logOut, cfg.Verbose, cfg.LogFormat)
	if err != nil {
		return err
	}

	api, err := spec.Load(ctx, cfg.Input, spec.WithInclude(cfg.Include), spec.WithExclude(cfg.Exclude))
	if err != nil {
		return specUsageError(err)
	}
	log.WithFields(logrus.Fields{
		"input":     cfg.Input,
		"endpoints": len(api.Endpoints),
	}).Debug("loaded API description")

	res, err := generator.Generate(ctx, api, generator.Options{
		PackageName:   cfg.PackageName,
		RuntimeImport: cfg.RuntimeImport,
		Concurrency:   cfg.Concurrency,
		Logger:        log,
	})
	if err != nil {
		if errors.Is(err, generator.ErrNothingGenerated) {
			return nothingGeneratedError(res)
		}
		return err
	}

	absOut := cfg.Out
	if ap, err := filepath.Abs(cfg.Out); err == nil {
		absOut = ap
	}

	written, err := goemitter.Emit(ctx, res.Files, goemitter.Options{
		OutDir: cfg.Out,
		Force:  cfg.Force,
		DryRun: cfg.DryRun,
	})
	if err != nil {
		return wrapOutputError(err, absOut)
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(written.Planned))
		for _, p := range written.Planned {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(paths), paths)
		return nil
	}

	for _, rel := range written.Removed {
		log.WithField("file", rel).Info("removed stale generated file")
	}
	log.WithFields(logrus.Fields{
		"out":       absOut,
		"files":     len(written.Planned),
		"endpoints": len(res.Generated),
		"skipped":   len(res.Failures),
	}).Info("generated client")
	return nil
}

// specUsageError maps structured loader errors into friendly messages.
func specUsageError(err error) error {
	var se *spec.SpecError
	if !errors.As(err, &se) {
		return err
	}
	msg := se.Message
	if !strings.HasPrefix(msg, "spec:") {
		msg = "spec: " + msg
	}
	if se.Location != "" {
		msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
	}
	if se.JSONPointer != "" {
		msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
	}
	return newUsageError(msg)
}

func nothingGeneratedError(res *generator.Result) error {
	var b strings.Builder
	b.WriteString("generate: ")
	b.WriteString(generator.ErrNothingGenerated.Error())
	if res != nil {
		for _, f := range res.Failures {
			fmt.Fprintf(&b, "\n- %s: %s", f.Endpoint, f.Message())
		}
	}
	b.WriteString("\nHint: check the --include/--exclude patterns and the input document.")
	return newUsageError(b.String())
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") || strings.Contains(lower, "output directory") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

func sanitizePatterns(patterns []string) []string {
	if len(patterns) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, p := range patterns {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}
