package redirects

import (
	"context"
	"errors"
	"os"

	"github.com/openkcm/common-sdk/pkg/commoncfg"
	"github.com/openkcm/common-sdk/pkg/logger"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/faithinsite/core/internal/config"
	"github.com/faithinsite/core/internal/constants"
	"github.com/faithinsite/core/internal/db"
	"github.com/faithinsite/core/internal/manager"
	"github.com/faithinsite/core/internal/model"
	"github.com/faithinsite/core/internal/repo/sql"
	ficontext "github.com/faithinsite/core/utils/context"
)

var ErrNoRules = errors.New("import file contains no rules")

// ImportFile is the YAML document consumed by the import command.
type ImportFile struct {
	Rules []ImportRule `yaml:"rules"`
}

// ImportRule mirrors one redirect rule. An omitted isActive means active,
// matching the API default.
type ImportRule struct {
	SourcePath     string `yaml:"sourcePath"`
	DestinationURL string `yaml:"destinationUrl"`
	IsActive       *bool  `yaml:"isActive"`
}

// ImportResult tallies one import run.
type ImportResult struct {
	Created int
	Skipped int
}

// RunImport creates every rule from the YAML file under the tenant with the
// given slug. Rules whose source path already exists are skipped so the
// command can be re-run, any other failure aborts the import.
func RunImport(ctx context.Context, cfg *config.Config, slug string, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "reading import file %q", path)
	}

	var file ImportFile

	err = yaml.Unmarshal(data, &file)
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "parsing import file %q", path)
	}

	if len(file.Rules) == 0 {
		return nil, oops.In("main").Wrap(ErrNoRules)
	}

	dbCon, err := db.StartDBConnection(ctx, cfg.Database, cfg.DatabaseReplicas)
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "starting database connection")
	}

	r := sql.NewRepository(dbCon)

	tenant, err := manager.NewTenantManager(r).GetTenantBySlug(ctx, slug)
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "looking up tenant %q", slug)
	}

	ctx = ficontext.InjectSession(ctx, &ficontext.Session{
		TenantID: tenant.ID,
		Role:     constants.TenantOperatorRole,
	})

	rm := manager.NewRedirectManager(r)
	result := &ImportResult{}

	for _, rule := range file.Rules {
		err = rm.CreateRule(ctx, &model.RedirectRule{
			SourcePath:     rule.SourcePath,
			DestinationURL: rule.DestinationURL,
			IsActive:       rule.IsActive == nil || *rule.IsActive,
		})

		switch {
		case errors.Is(err, manager.ErrRedirectExists):
			result.Skipped++
		case err != nil:
			return result, oops.In("main").Wrapf(err, "importing rule %q", rule.SourcePath)
		default:
			result.Created++
		}
	}

	return result, nil
}

func loadConfig(buildInfo string) (*config.Config, error) {
	cfg := &config.Config{}

	loader := commoncfg.NewLoader(
		cfg,
		commoncfg.WithDefaults(map[string]any{}),
		commoncfg.WithPaths(
			constants.DefaultConfigPath1,
			constants.DefaultConfigPath2,
			".",
		),
		commoncfg.WithEnvOverride(constants.APIName),
	)

	err := loader.LoadConfig()
	if err != nil {
		return nil, oops.In("main").Wrapf(err, "failed to load config")
	}

	err = commoncfg.UpdateConfigVersion(&cfg.BaseConfig, buildInfo)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to update the version configuration")
	}

	err = logger.InitAsDefault(cfg.Logger, cfg.Application)
	if err != nil {
		return nil, oops.In("main").
			Wrapf(err, "Failed to initialise the logger")
	}

	return cfg, nil
}

func importCmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import redirect rules for a tenant. Usage: fi redirects import -t [tenant slug] -f [rules file]",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			slug, _ := cmd.Flags().GetString("tenant")
			path, _ := cmd.Flags().GetString("file")

			cfg, err := loadConfig(buildInfo)
			if err != nil {
				return err
			}

			result, err := RunImport(cmd.Context(), cfg, slug, path)
			if err != nil {
				cmd.PrintErrf("Failed to import redirect rules: %v\n", err)
				return err
			}

			cmd.Printf("Imported redirect rules for tenant %s: %d created, %d skipped\n",
				slug, result.Created, result.Skipped)

			return nil
		},
	}

	var slug, path string

	cmd.Flags().StringVarP(&slug, "tenant", "t", "", "Tenant slug")
	cmd.Flags().StringVarP(&path, "file", "f", "", "Path to the YAML rules file")

	err := cmd.MarkFlagRequired("tenant")
	if err != nil {
		cmd.PrintErrf("failed to mark flag 'tenant' as required: %v\n", err)
	}

	err = cmd.MarkFlagRequired("file")
	if err != nil {
		cmd.PrintErrf("failed to mark flag 'file' as required: %v\n", err)
	}

	return cmd
}

func Cmd(buildInfo string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redirects",
		Short: "FI Redirect Tools",
		Long:  "FI Redirect Tools - Bulk operations on tenant redirect rules.",
	}

	cmd.AddCommand(importCmd(buildInfo))

	return cmd
}
