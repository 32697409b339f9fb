package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/santiagomed/modkit/config"
	"github.com/santiagomed/modkit/core"
	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/generator"
	"github.com/santiagomed/modkit/generator/module"
	"github.com/santiagomed/modkit/generator/presentation"
	"github.com/santiagomed/modkit/generator/repository"
	"github.com/santiagomed/modkit/generator/usecase"
	"github.com/santiagomed/modkit/logger"
	"github.com/santiagomed/modkit/templates"
	"github.com/spf13/cobra"
)

// runtime is everything a generation command needs, built once per command
// from the config file, the environment and the flags.
type runtime struct {
	cfg       *config.Config
	env       generator.Env
	publisher *CliStepPublisher
	logger    logger.Logger
	plain     bool
}

// NewRootCmd builds the modkit command tree. A nil logger means the zerolog
// file logger is initialised from the loaded config.
func NewRootCmd(l logger.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modkit",
		Short: "modkit scaffolds Gradle feature modules for Android projects",
		Long: `modkit generates the domain, data and presentation modules of a feature,
keeps settings.gradle.kts, the version catalog and DI modules in sync, and can
be rerun safely: existing files and declarations are never rewritten.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to modkit.yaml or the directory holding it")
	rootCmd.PersistentFlags().StringP("base", "b", "", "Project directory")
	rootCmd.PersistentFlags().StringP("org", "o", "", "Organization, e.g. com.example")
	rootCmd.PersistentFlags().StringP("root", "r", "", "Parent module path of features, e.g. feature")
	rootCmd.PersistentFlags().String("di", "", "DI framework: hilt, metro, koin or koin-annotations")
	rootCmd.PersistentFlags().Bool("debug", false, "Log debug output to ~/.modkit/modkit.log")
	rootCmd.PersistentFlags().Bool("plain", false, "Print the summary without the interactive progress view")

	genCmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate feature code",
	}

	moduleCmd := &cobra.Command{
		Use:   "module <feature>",
		Short: "Scaffold the modules of a feature",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, l)
			if err != nil {
				return err
			}
			p, err := rt.cfg.ModuleParams(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("datasource") {
				v, _ := cmd.Flags().GetString("datasource")
				ds, err := module.ParseDatasource(v)
				if err != nil {
					return err
				}
				p = p.WithDatasource(ds)
			}
			if cmd.Flags().Changed("api") {
				v, _ := cmd.Flags().GetBool("api")
				p = p.WithAPI(v)
			}
			if cmd.Flags().Changed("presentation") {
				v, _ := cmd.Flags().GetBool("presentation")
				p = p.WithPresentation(v)
			}
			g := module.New(rt.env)
			return rt.run(cmd, fmt.Sprintf("Feature %s", p.FeatureName), func(ctx context.Context) (*core.GenerationResult, error) {
				return g.Generate(ctx, p)
			})
		},
	}
	moduleCmd.Flags().String("datasource", "", "Data source modules: none, combined, remote-only, local-only or remote-and-local")
	moduleCmd.Flags().Bool("api", false, "Add an api module")
	moduleCmd.Flags().Bool("presentation", true, "Add a presentation module")

	repositoryCmd := &cobra.Command{
		Use:   "repository <feature>",
		Short: "Generate a repository and bind it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, l)
			if err != nil {
				return err
			}
			d, err := repository.ParseDiStrategy(rt.cfg.DI)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			p := repository.NewParams(rt.cfg.BasePath, rt.cfg.Root, args[0], rt.cfg.Organization).
				WithName(name).
				WithDI(d)
			if cmd.Flags().Changed("datasources") {
				names, _ := cmd.Flags().GetStringSlice("datasources")
				p = p.WithDataSources(names...)
				if p.DataSources == nil {
					p.DataSources = []string{}
				}
			}
			g := repository.New(rt.env)
			return rt.run(cmd, fmt.Sprintf("Repository %s", p.ClassName()), func(ctx context.Context) (*core.GenerationResult, error) {
				return g.Generate(ctx, p)
			})
		},
	}
	repositoryCmd.Flags().StringP("name", "n", "", "Repository name, defaults to the feature name")
	repositoryCmd.Flags().StringSlice("datasources", nil, "Data sources to inject instead of the discovered ones")

	usecaseCmd := &cobra.Command{
		Use:   "usecase <feature> <name>",
		Short: "Generate a use case",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, l)
			if err != nil {
				return err
			}
			d, err := usecase.ParseDiStrategy(rt.cfg.DI)
			if err != nil {
				return err
			}
			p := usecase.NewParams(rt.cfg.BasePath, rt.cfg.Root, args[0], rt.cfg.Organization, args[1]).WithDI(d)
			if cmd.Flags().Changed("repositories") {
				names, _ := cmd.Flags().GetStringSlice("repositories")
				p = p.WithRepositories(names...)
			}
			g := usecase.New(rt.env)
			return rt.run(cmd, fmt.Sprintf("Use case %s", p.ClassName()), func(ctx context.Context) (*core.GenerationResult, error) {
				return g.Generate(ctx, p)
			})
		},
	}
	usecaseCmd.Flags().StringSlice("repositories", nil, "Repositories to inject instead of the discovered ones")

	presentationCmd := &cobra.Command{
		Use:   "presentation <feature>",
		Short: "Generate a view model, UI state and screen",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, l)
			if err != nil {
				return err
			}
			d, err := presentation.ParseDiStrategy(rt.cfg.DI)
			if err != nil {
				return err
			}
			screen, _ := cmd.Flags().GetString("screen")
			useCases, _ := cmd.Flags().GetStringSlice("use-cases")
			p := presentation.NewParams(rt.cfg.BasePath, rt.cfg.Root, args[0], rt.cfg.Organization).
				WithScreenName(screen).
				WithUseCases(useCases...).
				WithDI(d)
			g := presentation.New(rt.env)
			return rt.run(cmd, fmt.Sprintf("Screen %s", p.Stem()), func(ctx context.Context) (*core.GenerationResult, error) {
				return g.Generate(ctx, p)
			})
		},
	}
	presentationCmd.Flags().String("screen", "", "Screen name, defaults to the feature name")
	presentationCmd.Flags().StringSlice("use-cases", nil, "Use cases to inject into the view model")

	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "List the templates that can be overridden from templates_dir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd, l)
			if err != nil {
				return err
			}
			for _, name := range rt.env.Renderer.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	genCmd.AddCommand(moduleCmd, repositoryCmd, usecaseCmd, presentationCmd)
	rootCmd.AddCommand(genCmd, templatesCmd)
	return rootCmd
}

func newRuntime(cmd *cobra.Command, l logger.Logger) (*runtime, error) {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath, _ = cmd.Flags().GetString("base")
	}
	projectFS := fs.NewOsFileSystem("")
	cfg, err := config.LoadConfig(projectFS, configPath)
	if err != nil {
		return nil, err
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	if l == nil {
		if err := logger.InitLogger(cfg.Debug); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s\n", faintStyle.Render(fmt.Sprintf("logging disabled: %v", err)))
		}
		l = logger.GetLogger()
	}
	l.Debug("Initializing modkit CLI")

	env, err := generator.NewEnv(projectFS)
	if err != nil {
		return nil, err
	}
	if cfg.TemplatesDir != "" {
		env.Renderer, err = templates.NewRendererWithOverrides(projectFS, cfg.TemplatesDir)
		if err != nil {
			return nil, err
		}
	}
	publisher := NewCliStepPublisher(l)
	env.Logger = l
	env.Publisher = publisher

	plain, _ := cmd.Flags().GetBool("plain")
	return &runtime{cfg: cfg, env: env, publisher: publisher, logger: l, plain: plain}, nil
}

// applyFlags lets explicit flags win over the config file and environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"base": &cfg.BasePath,
		"org":  &cfg.Organization,
		"root": &cfg.Root,
		"di":   &cfg.DI,
	} {
		if flags.Changed(name) {
			v, err := flags.GetString(name)
			if err != nil {
				return err
			}
			*dst = v
		}
	}
	if flags.Changed("debug") {
		cfg.Debug, _ = flags.GetBool("debug")
	}
	return nil
}

func (rt *runtime) run(cmd *cobra.Command, title string, job Job) error {
	if rt.plain {
		res, err := job(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderSummary(title, res))
		return nil
	}
	_, err := runWithProgress(cmd.Context(), title, job, rt.publisher, rt.logger)
	return err
}

func Execute() {
	if err := NewRootCmd(nil).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
