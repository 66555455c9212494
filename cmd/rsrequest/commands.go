package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jgivc/rsrequest/internal/entity"
	"github.com/spf13/cobra"
)

const (
	formatTable    = "table"
	formatHeader   = "header"
	formatNetscape = "netscape"
	formatJSON     = "json"

	noValue = "-"
)

func newCookiesCommand(ctx *commandContext) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "cookies FILE",
		Short: "Read a cookie file and render it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}

			cookies, err := a.Cookies(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			switch format {
			case formatHeader:
				h := cookies.Header()
				fmt.Fprintf(out, "%s: %s\n", h.Name, h.Value)
			case formatNetscape:
				fmt.Fprint(out, cookies.Netscape())
			case formatJSON:
				return writeJSON(cmd, cookies)
			case formatTable:
				rows := make([][]string, 0, len(cookies))
				for _, c := range cookies {
					rows = append(rows, []string{
						c.Domain,
						c.Path,
						c.Name,
						strconv.FormatBool(c.Secure),
						strconv.FormatBool(c.HTTPOnly),
						formatExpiration(c.Expiration),
					})
				}

				fmt.Fprintln(out, renderTable(
					[]string{"Domain", "Path", "Name", "Secure", "HttpOnly", "Expires"},
					rows,
					nil,
				))
			default:
				return fmt.Errorf("unknown format %q", format)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, header, netscape or json")

	return cmd
}

func newFilenameCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "filename NAME...",
		Short: "Show the metadata recognized in release filenames",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}

			if asJSON {
				type result struct {
					Filename string `json:"filename"`
					entity.FilenameMetadata
				}

				results := make([]result, 0, len(args))
				for _, name := range args {
					results = append(results, result{Filename: name, FilenameMetadata: a.Filename(name)})
				}

				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(args))
			for _, name := range args {
				m := a.Filename(name)
				rows = append(rows, []string{
					name,
					stringOrNone(m.Resolution),
					stringOrNone(m.VideoCodec),
					joinAudio(m.Audio),
					numberOrNone(m.Season),
					numberOrNone(m.Episode),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Filename", "Resolution", "Codec", "Audio", "Season", "Episode"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight},
			))

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Read a request from a sidecar document or a JSON file and show it prepared",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}

			r, err := a.Inspect(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, r)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, requestRows(r), nil))

			if len(r.Files) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"", "File", "Size", "Mime"},
					fileRows(r),
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "scan [DIR]",
		Short: "Read every sidecar document of a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp(cmd)
			if err != nil {
				return err
			}

			var dir string
			if len(args) > 0 {
				dir = args[0]
			}

			items, err := a.Scan(cmd.Context(), dir)
			if err != nil {
				return err
			}

			if asJSON {
				type result struct {
					Path    string          `json:"path"`
					Request *entity.Request `json:"request"`
				}

				results := make([]result, 0, len(items))
				for _, item := range items {
					results = append(results, result{Path: item.Path, Request: item.Request})
				}

				return writeJSON(cmd, results)
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.Path,
					item.Request.Status.String(),
					item.Request.URL,
					stringOrNone(item.Request.Filename),
					strconv.Itoa(len(item.Request.Files)),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Path", "Status", "URL", "Filename", "Files"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	return cmd
}

func requestRows(r *entity.Request) [][]string {
	rows := [][]string{
		{"URL", r.URL},
		{"Status", r.Status.String()},
		{"Next", r.Status.Actor().String()},
		{"Filename", stringOrNone(r.Filename)},
		{"Mime", stringOrNone(r.Mime)},
		{"Size", sizeOrNone(r.Size)},
		{"Referer", stringOrNone(r.Referer)},
		{"Resolution", stringOrNone(r.Resolution)},
		{"Codec", stringOrNone(r.VideoCodec)},
		{"Audio", joinAudio(r.Audio)},
		{"Season", numberOrNone(r.Season)},
		{"Episode", numberOrNone(r.Episode)},
		{"Language", stringOrNone(r.Language)},
	}

	for _, h := range r.Headers {
		rows = append(rows, []string{"Header", h.Name + ": " + h.Value})
	}

	if len(r.Tags) > 0 {
		rows = append(rows, []string{"Tags", strings.Join(r.Tags, ", ")})
	}

	return rows
}

func fileRows(r *entity.Request) [][]string {
	rows := make([][]string, 0, len(r.Files))
	for _, f := range r.Files {
		mark := ""
		if r.SelectedFile != nil && *r.SelectedFile == f.Name {
			mark = "*"
		}

		rows = append(rows, []string{mark, f.Name, humanize.IBytes(f.Size), stringOrNone(f.Mime)})
	}

	return rows
}

func stringOrNone[T ~string](v *T) string {
	if v == nil {
		return noValue
	}

	return string(*v)
}

func numberOrNone(v *uint32) string {
	if v == nil {
		return noValue
	}

	return strconv.FormatUint(uint64(*v), 10)
}

func sizeOrNone(v *uint64) string {
	if v == nil {
		return noValue
	}

	return humanize.IBytes(*v)
}

func joinAudio(tracks []entity.AudioTrack) string {
	if len(tracks) == 0 {
		return noValue
	}

	parts := make([]string, 0, len(tracks))
	for _, t := range tracks {
		parts = append(parts, string(t))
	}

	return strings.Join(parts, " ")
}

func formatExpiration(exp *float64) string {
	if exp == nil {
		return "session"
	}

	return time.Unix(int64(*exp), 0).UTC().Format(time.RFC3339)
}
