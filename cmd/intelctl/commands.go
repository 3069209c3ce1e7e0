package main

import (
	"bytes"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dgallion1/intelsheet/internal/cleanjson"
	"github.com/dgallion1/intelsheet/internal/export"
	"github.com/dgallion1/intelsheet/internal/flatten"
	"github.com/dgallion1/intelsheet/internal/intel"
	"github.com/dgallion1/intelsheet/internal/parser"
	"github.com/dgallion1/intelsheet/internal/schema"
	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"
)

func (c *cli) parserOptions() parser.Options {
	return parser.Options{PDFFallbackPdftotext: c.cfg.PDFFallbackPdftotext}
}

func (c *cli) schemaCmd() *cobra.Command {
	var src, out string
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Build schema.json from the checklist document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if src == "" {
				src = filepath.Join(c.cfg.DataDir, "template.pdf")
			}
			if out == "" {
				out = c.cfg.SchemaPath
			}
			s, err := schema.Build(src, out, c.parserOptions())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d fields to %s\n", len(s.Fields), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&src, "pdf", "", "checklist document (pdf, docx, md, html, csv, txt); default <data-dir>/template.pdf")
	cmd.Flags().StringVar(&out, "out", "", "schema path; default SCHEMA_PATH")
	return cmd
}

func (c *cli) fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <file>",
		Short: "Print the checklist fields found in a document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := parser.ParseFile(args[0], c.parserOptions())
			if err != nil {
				return err
			}
			for _, name := range schema.FromDocument(doc).Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func (c *cli) fetchCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "fetch <company>",
		Short: "Ask the model about a company and save output_<company>.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, err := intel.NormalizeCompany(args[0])
			if err != nil {
				return err
			}
			a, err := c.modelApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if raw {
				text, err := a.Intel.FetchRaw(cmd.Context(), company)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}

			doc, err := a.Intel.Fetch(cmd.Context(), company)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := export.WriteJSON(&buf, doc); err != nil {
				return err
			}
			path, err := export.SaveFile(c.cfg.DataDir, export.JSONName(company), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print the unprocessed model answer instead of saving")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <company>",
		Short: "Write the CSV and workbook for a fetched company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, rows, err := c.loadRows(args[0])
			if err != nil {
				return err
			}

			var csvBuf, xlsxBuf bytes.Buffer
			if err := export.WriteCSV(&csvBuf, rows); err != nil {
				return err
			}
			if err := export.WriteXLSX(&xlsxBuf, rows, false); err != nil {
				return err
			}
			files := []struct {
				name string
				data []byte
			}{
				{export.CSVName(company), csvBuf.Bytes()},
				{export.XLSXName(company), xlsxBuf.Bytes()},
			}
			for _, f := range files {
				path, err := export.SaveFile(c.cfg.DataDir, f.name, f.data)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			}
			return nil
		},
	}
}

func (c *cli) styleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "style <company>",
		Short: "Write the formatted workbook for a fetched company",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			company, rows, err := c.loadRows(args[0])
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := export.WriteXLSX(&buf, rows, true); err != nil {
				return err
			}
			path, err := export.SaveFile(c.cfg.DataDir, export.StyledXLSXName(company), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func (c *cli) compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <company1> <company2>",
		Short: "Fill the Word comparison for two fetched companies",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var sides [2]export.Side
			for i, name := range args {
				company, doc, err := c.loadDoc(name)
				if err != nil {
					return err
				}
				sides[i] = export.Side{Name: company, Checklist: cleanjson.Checklist(doc)}
			}

			var buf bytes.Buffer
			if err := export.WriteComparison(&buf, c.cfg.DocxTemplate, sides[0], sides[1]); err != nil {
				return err
			}
			path, err := export.SaveFile(c.cfg.DataDir, export.ComparisonName(sides[0].Name, sides[1].Name), buf.Bytes())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.modelApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.Serve(ctx)
		},
	}
}

// loadDoc reads the saved output_<company>.json.
func (c *cli) loadDoc(name string) (string, *orderedmap.OrderedMap, error) {
	company, err := intel.NormalizeCompany(name)
	if err != nil {
		return "", nil, err
	}
	doc, err := export.ReadJSON(filepath.Join(c.cfg.DataDir, export.JSONName(company)))
	if err != nil {
		return "", nil, fmt.Errorf("%w (run fetch first)", err)
	}
	return company, doc, nil
}

func (c *cli) loadRows(name string) (string, []flatten.Row, error) {
	company, doc, err := c.loadDoc(name)
	if err != nil {
		return "", nil, err
	}
	return company, flatten.Flatten(cleanjson.Checklist(doc), flatten.Separator), nil
}
