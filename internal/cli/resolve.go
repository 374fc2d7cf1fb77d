package cli

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
	"github.com/opensearch-project/opensearch-apigen/internal/urlgen"
)

// ResolveConfig captures the options for the resolve command.
type ResolveConfig struct {
	Input     string `env:"APIGEN_INPUT"`
	Endpoint  string
	Parts     map[string][]string
	PartOrder []string // names in the order they were first given
	Verbose   bool
	LogFormat string
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the URL path generated code builds for an endpoint",
		Long: "Resolve selects the path of an endpoint whose parameters are exactly the given parts " +
			"and prints the URL path the generated Parts type would produce for those values. " +
			"Repeat --part for every element of a list part.",
		Example: strings.TrimSpace(`  opensearch-apigen resolve --input ./rest-api-spec/api --endpoint search --part index=logs-1 --part index=logs-2
  opensearch-apigen resolve --input ./rest-api-spec/api --endpoint cat.health`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveResolveConfig(cmd)
			if err != nil {
				return err
			}
			return runResolve(cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "REST API spec directory or file, or OpenAPI/Swagger document (path or URL)")
	flags.String("endpoint", "", "Dotted endpoint name, e.g. cat.aliases")
	flags.StringArray("part", nil, "Path part as name=value; repeat for list values")

	return cmd
}

func resolveResolveConfig(cmd *cobra.Command) (*ResolveConfig, error) {
	cfg := &ResolveConfig{Parts: map[string][]string{}, LogFormat: logFormatText}
	flags := cmd.Flags()

	if err := env.Parse(cfg); err != nil {
		return nil, newUsageError(fmt.Sprintf("environment: %v", err))
	}
	input, err := flags.GetString("input")
	if err != nil {
		return nil, err
	}
	if input = strings.TrimSpace(input); input != "" {
		cfg.Input = input
	}
	cfg.Input = strings.TrimSpace(cfg.Input)
	if cfg.Input == "" {
		return nil, newUsageError("resolve: --input is required")
	}

	endpoint, err := flags.GetString("endpoint")
	if err != nil {
		return nil, err
	}
	cfg.Endpoint = strings.TrimSpace(endpoint)
	if cfg.Endpoint == "" {
		return nil, newUsageError("resolve: --endpoint is required")
	}

	parts, err := flags.GetStringArray("part")
	if err != nil {
		return nil, err
	}
	for _, p := range parts {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, newUsageError(fmt.Sprintf("resolve: --part %q must have the form name=value", p))
		}
		if _, seen := cfg.Parts[name]; !seen {
			cfg.PartOrder = append(cfg.PartOrder, name)
		}
		cfg.Parts[name] = append(cfg.Parts[name], value)
	}

	if err := applyLoggingFlagOverrides(flags, &cfg.Verbose, &cfg.LogFormat); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runResolve(cmd *cobra.Command, cfg *ResolveConfig) error {
	log, err := newLogger(cmd.ErrOrStderr(), cfg.Verbose, cfg.LogFormat)
	if err != nil {
		return err
	}

	api, err := spec.Load(cmd.Context(), cfg.Input)
	if err != nil {
		return specUsageError(err)
	}
	ep, ok := api.Endpoint(cfg.Endpoint)
	if !ok {
		return newUsageError(fmt.Sprintf("resolve: unknown endpoint %q", cfg.Endpoint))
	}

	g, err := urlgen.Group(ep.Name, ep.Paths)
	if err != nil {
		return err
	}
	v, ok := g.Match(cfg.PartOrder)
	if !ok {
		return newUsageError(noVariantMessage(g, cfg.PartOrder))
	}

	path, capacity, err := urlgen.NewURLBuild(v).Resolve(cfg.Parts)
	if err != nil {
		return newUsageError(fmt.Sprintf("resolve: %s: %v", ep.Name, err))
	}
	log.WithFields(logrus.Fields{
		"endpoint": ep.Name,
		"variant":  g.VariantTypeName(v),
		"template": v.Path.Path,
		"capacity": capacity,
	}).Debug("resolved path")

	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

func noVariantMessage(g *urlgen.Grouping, given []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "resolve: %s has no path taking exactly %s\nAccepted part combinations:", g.Endpoint, partSet(given))
	for _, v := range g.Variants {
		fmt.Fprintf(&b, "\n- %s  %s", partSet(v.Signature), v.Path.Path)
	}
	return b.String()
}

func partSet(names []string) string {
	if len(names) == 0 {
		return "(no parts)"
	}
	return "{" + strings.Join(names, ", ") + "}"
}
