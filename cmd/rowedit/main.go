// Package main provides the rowedit command line client.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"roweditor/pkg/client"
	"roweditor/pkg/export"
	"roweditor/pkg/settings"
	"roweditor/pkg/sheets"
)

var (
	verbose      bool
	settingsPath string
	exportURL    string
	email        string

	asJSON   bool
	xlsxPath string

	rowIndex int
	sets     []string
	token    string
	proxyURL string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "rowedit",
		Short: "View and edit your rows of the shared sheet",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
			log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().StringVar(&settingsPath, "settings", "", "Settings file (default: user config dir)")
	rootCmd.PersistentFlags().StringVar(&exportURL, "export-url", defaultExportURL(), "CSV export URL of the sheet")
	rootCmd.PersistentFlags().StringVar(&email, "email", os.Getenv("ROWEDIT_EMAIL"), "Your email address")

	loadCmd := &cobra.Command{
		Use:   "load",
		Short: "Print the sheet, or only your rows when --email is set",
		Args:  cobra.NoArgs,
		RunE:  runLoad,
	}
	loadCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	loadCmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the rows to this .xlsx file")

	editCmd := &cobra.Command{
		Use:   "edit",
		Short: "Change cells of one of your rows",
		Args:  cobra.NoArgs,
		RunE:  runEdit,
	}
	editCmd.Flags().IntVar(&rowIndex, "row", 0, "Sheet row number to edit")
	editCmd.Flags().StringArrayVar(&sets, "set", nil, "Column=Value to change (repeatable)")
	editCmd.Flags().StringVar(&token, "token", os.Getenv("ROWEDIT_TOKEN"), "Access token for the proxy")
	editCmd.Flags().StringVar(&proxyURL, "proxy", os.Getenv("ROWEDIT_PROXY_URL"), "Base URL of the update proxy")
	_ = editCmd.MarkFlagRequired("row")

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved settings",
	}
	settingsCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the saved settings",
			Args:  cobra.NoArgs,
			RunE:  runSettingsShow,
		},
		&cobra.Command{
			Use:   "set-url URL",
			Short: "Save the downstream script URL",
			Args:  cobra.ExactArgs(1),
			RunE:  runSettingsSetURL,
		},
	)

	rootCmd.AddCommand(loadCmd, editCmd, settingsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func defaultExportURL() string {
	if u := os.Getenv("SHEET_EXPORT_URL"); u != "" {
		return u
	}
	if id := os.Getenv("SPREADSHEET_ID"); id != "" {
		gid := os.Getenv("SHEET_GID")
		if gid == "" {
			gid = "0"
		}
		return sheets.ExportURL(id, gid)
	}
	return ""
}

func openSettings() (*settings.Store, error) {
	path := settingsPath
	if path == "" {
		p, err := settings.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return settings.Open(path)
}

func newLoader() (*sheets.Loader, error) {
	if exportURL == "" {
		return nil, fmt.Errorf("no sheet configured: set --export-url or SPREADSHEET_ID")
	}
	return sheets.NewLoader(exportURL), nil
}

func runLoad(cmd *cobra.Command, args []string) error {
	loader, err := newLoader()
	if err != nil {
		return err
	}
	table, err := loader.Load(cmd.Context(), email)
	if err != nil {
		return fmt.Errorf("failed to load sheet: %w", err)
	}

	if xlsxPath != "" {
		f, err := os.Create(xlsxPath)
		if err != nil {
			return err
		}
		if err := export.WriteXLSX(table, f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Infof("wrote %d rows to %s", len(table.Rows), xlsxPath)
	}

	if asJSON {
		return printJSON(cmd, table)
	}
	return printTable(cmd, table)
}

func printJSON(cmd *cobra.Command, table *sheets.Table) error {
	type row struct {
		RowIndex int               `json:"rowIndex"`
		Fields   map[string]string `json:"fields"`
		Editable bool              `json:"editable"`
	}
	out := struct {
		Headers []string `json:"headers"`
		Rows    []row    `json:"rows"`
	}{Headers: table.Headers, Rows: []row{}}
	for _, r := range table.Rows {
		out.Rows = append(out.Rows, row{RowIndex: r.Index, Fields: r.Record(), Editable: sheets.IsOwner(r, email)})
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printTable(cmd *cobra.Command, table *sheets.Table) error {
	tw := tablewriter.NewWriter(cmd.OutOrStdout())
	tw.SetHeader(append([]string{"Row", ""}, table.Headers...))
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	for _, r := range table.Rows {
		mark := ""
		if email != "" && sheets.IsOwner(r, email) {
			mark = "*"
		}
		tw.Append(append([]string{strconv.Itoa(r.Index), mark}, r.Data...))
	}
	tw.Render()
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	if email == "" {
		return fmt.Errorf("--email is required to edit")
	}
	if proxyURL == "" {
		return fmt.Errorf("--proxy or ROWEDIT_PROXY_URL is required")
	}
	store, err := openSettings()
	if err != nil {
		return err
	}
	loader, err := newLoader()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	table, err := loader.Load(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to load sheet: %w", err)
	}
	row, ok := table.Row(rowIndex)
	if !ok {
		return fmt.Errorf("row %d is not one of your rows", rowIndex)
	}

	editor := &client.Editor{
		Updater:   &client.ProxyClient{BaseURL: proxyURL, Token: token},
		ScriptURL: store.ScriptURL(),
		Identity:  email,
		Reload: func(ctx context.Context) error {
			reloaded, err := loader.Load(ctx, email)
			if err != nil {
				return err
			}
			if r, ok := reloaded.Row(rowIndex); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "row %d: %s\n", r.Index, strings.Join(r.Data, ", "))
			}
			return nil
		},
	}
	if err := editor.Begin(row); err != nil {
		return err
	}
	for _, s := range sets {
		name, value, found := strings.Cut(s, "=")
		if !found {
			return fmt.Errorf("invalid --set %q, want Column=Value", s)
		}
		if err := editor.Set(name, value); err != nil {
			return err
		}
	}

	if err := editor.Save(ctx); err != nil {
		var reloadErr *client.ReloadError
		if !errors.As(err, &reloadErr) {
			return fmt.Errorf("save failed (%s): %w", sheets.KindOf(err), err)
		}
		log.Warn(reloadErr)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved row %d\n", rowIndex)
	return nil
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "settings file: %s\nscript url:    %s\n", store.Filename, store.ScriptURL())
	return nil
}

func runSettingsSetURL(cmd *cobra.Command, args []string) error {
	store, err := openSettings()
	if err != nil {
		return err
	}
	if err := store.SetScriptURL(args[0]); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "script url saved")
	return nil
}
