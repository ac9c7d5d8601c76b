package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go-page-builder/internal/datasource"
	"go-page-builder/internal/model"

	"github.com/spf13/cobra"
)

func newDataSourcesCmd(env *cliEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "datasources",
		Aliases: []string{"ds"},
		Short:   "Manage the data sources placeholders resolve against",
	}
	cmd.AddCommand(
		newDataSourcesListCmd(env),
		newDataSourcesAddCmd(env),
		newDataSourcesRefreshCmd(env),
		newDataSourcesDeleteCmd(env),
	)
	return cmd
}

func newDataSourcesListCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List data sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			list := env.sources.List()
			if len(list) == 0 {
				fmt.Fprintln(out, "No data sources found.")
				return nil
			}
			for _, ds := range list {
				fmt.Fprintf(out, "- ID: %s\n  Name: %s\n  Type: %s\n", ds.ID, ds.Name, ds.Type)
				if ds.HTTPConfig != nil {
					fmt.Fprintf(out, "  URL: %s\n", ds.HTTPConfig.URL)
					if ds.LastFetched != nil {
						fmt.Fprintf(out, "  Last fetched: %s\n", ds.LastFetched.Format("2006-01-02 15:04:05"))
					} else {
						fmt.Fprintln(out, "  Last fetched: never")
					}
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

type addSourceOptions struct {
	name     string
	typ      string
	jsonData string
	jsonFile string
	pairs    map[string]string
	url      string
	method   string
	headers  map[string]string
	query    map[string]string
	body     string
	seed     string
}

func (o addSourceOptions) dataSource() (model.DataSource, error) {
	ds := model.DataSource{Name: o.name, Type: model.DataSourceType(o.typ)}
	switch ds.Type {
	case model.SourceStaticJSON:
		raw := o.jsonData
		if o.jsonFile != "" {
			data, err := os.ReadFile(o.jsonFile)
			if err != nil {
				return ds, err
			}
			raw = string(data)
		}
		if !json.Valid([]byte(raw)) {
			return ds, fmt.Errorf("static-json source %q needs valid JSON in --json or --json-file", o.name)
		}
		ds.JSONData = raw
	case model.SourceKeyValue:
		ds.KeyValueData = o.pairs
	case model.SourceHTTPAPI:
		ds.HTTPConfig = &model.HTTPConfig{
			URL:         o.url,
			Method:      strings.ToUpper(o.method),
			Headers:     o.headers,
			QueryParams: o.query,
			Body:        o.body,
		}
	}
	return ds, nil
}

func newDataSourcesAddCmd(env *cliEnv) *cobra.Command {
	var opts addSourceOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a data source, or import every new one from a seed file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if opts.seed != "" {
				seed, err := datasource.LoadSeedFile(opts.seed)
				if err != nil {
					return err
				}
				added, err := env.sources.Import(seed)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Imported %d of %d data source(s) from %s\n", added, len(seed), opts.seed)
				return nil
			}

			ds, err := opts.dataSource()
			if err != nil {
				return err
			}
			created, err := env.sources.Add(ds)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Added data source '%s' with ID '%s'\n", created.Name, created.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.name, "name", "", "Name used in {{name.path}} placeholders")
	f.StringVar(&opts.typ, "type", string(model.SourceKeyValue), "Type: static-json, key-value or http-api")
	f.StringVar(&opts.jsonData, "json", "", "JSON text of a static-json source")
	f.StringVar(&opts.jsonFile, "json-file", "", "File holding the JSON of a static-json source")
	f.StringToStringVar(&opts.pairs, "kv", nil, "Entries of a key-value source (key=value,...)")
	f.StringVar(&opts.url, "url", "", "URL of an http-api source")
	f.StringVar(&opts.method, "method", "GET", "HTTP method of an http-api source")
	f.StringToStringVar(&opts.headers, "header", nil, "Request headers of an http-api source (name=value,...)")
	f.StringToStringVar(&opts.query, "query", nil, "Query parameters of an http-api source (name=value,...)")
	f.StringVar(&opts.body, "body", "", "Request body of an http-api source")
	f.StringVar(&opts.seed, "seed", "", "YAML seed file to import instead of a single source")
	cmd.MarkFlagsMutuallyExclusive("seed", "name")
	cmd.MarkFlagsOneRequired("seed", "name")
	return cmd
}

func newDataSourcesRefreshCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [id]",
		Short: "Fetch http-api sources, one by id or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				ds, err := env.sources.Refresh(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Refreshed '%s'\n", ds.Name)
				return nil
			}
			if err := env.sources.RefreshAll(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, "Refreshed all http-api data sources")
			return nil
		},
	}
}

func newDataSourcesDeleteCmd(env *cliEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a data source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := env.sources.Get(args[0])
			if err != nil {
				return err
			}
			if err := env.sources.Delete(ds.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted data source '%s' (ID: %s)\n", ds.Name, ds.ID)
			return nil
		},
	}
}
