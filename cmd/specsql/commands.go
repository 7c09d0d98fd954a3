package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/spf13/cobra"

	"github.com/biyonik/specquery/internal/config"
	"github.com/biyonik/specquery/pkg/cache"
	"github.com/biyonik/specquery/pkg/database"
	"github.com/biyonik/specquery/pkg/querybuilder"
	"github.com/biyonik/specquery/pkg/specification"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

type queryOptions struct {
	specPath   string
	fieldsPath string
	dialect    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "specsql",
		Short:         "Compile filter/sort/paging specifications into SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ./specsql.yaml)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log to stderr")

	root.AddCommand(
		newCompileCmd(opts),
		newRunCmd(opts),
		newFlushCmd(opts),
	)
	return root
}

func addQueryFlags(cmd *cobra.Command, q *queryOptions) {
	cmd.Flags().StringVar(&q.specPath, "spec", "", "specification file (.yaml or .json)")
	cmd.Flags().StringVar(&q.fieldsPath, "fields", "", "fields/schema file (.yaml)")
	cmd.Flags().StringVar(&q.dialect, "dialect", "", "mysql, postgres or sqlite (default database.driver)")
	_ = cmd.MarkFlagRequired("spec")
	_ = cmd.MarkFlagRequired("fields")
}

func newCompileCmd(opts *rootOptions) *cobra.Command {
	q := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Print the SQL and bound arguments for a specification",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			env, err := setup(q, cfg, newLogger(cmd, opts))
			if err != nil {
				return err
			}
			stmt, err := env.compiler.Compile(cmd.Context(), env.spec)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), stmt)
		},
	}
	addQueryFlags(cmd, q)
	return cmd
}

func newRunCmd(opts *rootOptions) *cobra.Command {
	q := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a specification against database.dsn and print rows as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			dialect := q.dialect
			if dialect == "" {
				dialect = cfg.Database.Driver
			}
			logger := newLogger(cmd, opts)
			db, err := database.Connect(ctx, dialect, cfg.Database.DSN, cfg.PoolConfig(), logger)
			if err != nil {
				return err
			}
			defer db.Close()

			env, err := setup(q, cfg, logger)
			if err != nil {
				return err
			}
			stmt, err := env.compiler.Compile(ctx, env.spec)
			if err != nil {
				return err
			}

			rows, err := db.QueryContext(ctx, stmt.SQL, stmt.Args...)
			if err != nil {
				return fmt.Errorf("query failed: %w", err)
			}
			defer rows.Close()

			result, err := database.ScanMaps(rows)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}
	addQueryFlags(cmd, q)
	return cmd
}

func newFlushCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-cache",
		Short: "Remove every compiled statement from the configured cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			c, err := cache.New(cfg.CacheConfig(), newLogger(cmd, opts))
			if err != nil {
				return err
			}
			return c.Flush(cmd.Context())
		},
	}
}

type queryEnv struct {
	spec     specification.Specification
	compiler *querybuilder.Compiler
}

// setup, specification'ı ve schema'yı okuyup cache'li bir Compiler kurar.
func setup(q *queryOptions, cfg *config.Config, logger *log.Logger) (*queryEnv, error) {
	spec, err := specification.LoadFile(q.specPath)
	if err != nil {
		return nil, err
	}
	schema, err := database.LoadSchemaFile(q.fieldsPath)
	if err != nil {
		return nil, err
	}

	dialect := q.dialect
	if dialect == "" {
		dialect = cfg.Database.Driver
	}
	grammar, err := database.GrammarFor(dialect)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.CacheConfig(), logger)
	if err != nil {
		return nil, err
	}

	builder := querybuilder.New(
		querybuilder.NewFieldConditionBuilder(),
		querybuilder.WithSeparator(cfg.Query.Separator),
		querybuilder.WithLogger(logger),
	)
	schemaFP, err := schema.Fingerprint()
	if err != nil {
		return nil, err
	}
	namespace := querybuilder.NamespaceFor(schema.Table, grammar.Name(), schemaFP, builder.Separator())
	prototype := schema.NewQuery(nil, grammar)

	return &queryEnv{
		spec:     spec,
		compiler: querybuilder.NewCompiler(builder, prototype, c, namespace, cfg.Cache.TTL, logger),
	}, nil
}

func newLogger(cmd *cobra.Command, opts *rootOptions) *log.Logger {
	if !opts.verbose {
		return nil
	}
	return log.New(cmd.ErrOrStderr(), "[specsql] ", log.LstdFlags)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
