package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/the-pink-hacker/resource-pack-packer/pkg/pack"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/packer"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/ui/output/styles"
	"github.com/the-pink-hacker/resource-pack-packer/pkg/validate"
)

func writeResult(w io.Writer, r *packer.Result) {
	summary := fmt.Sprintf(MsgBuildSummary,
		r.Pack, r.Version, r.RunOption, r.Successful, r.Total, r.Duration.Round(time.Millisecond))
	style := "Success"
	if r.Failed > 0 {
		style = "Error"
	}
	fmt.Fprintln(w, styles.Render(style, summary))

	for _, c := range r.Configs {
		if !c.Success {
			fmt.Fprintf(w, "  %s %s: %v\n", styles.Render("Error", "✗"), styles.Render("Config", c.Config), c.Error)
			continue
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			styles.Render("Success", "✓"),
			styles.Render("Config", c.Config),
			styles.Render("FilePath", c.Archive),
			styles.Render("Muted", fmt.Sprintf("[%016x]", c.Fingerprint)))
		for _, perr := range c.PatchErrors {
			fmt.Fprintf(w, "      %s\n", styles.Render("Warning", fmt.Sprintf(MsgPatchFailed, perr)))
		}
		if c.Validation != nil {
			writeFindings(w, c.Validation.Findings, "      ")
		}
	}
}

func writeFindings(w io.Writer, findings []validate.Finding, indent string) {
	for _, f := range findings {
		fmt.Fprintf(w, "%s%s %s\n", indent, styles.Render("FilePath", f.File+":"), styles.Render("Warning", f.Message))
	}
}

func writeReport(w io.Writer, r validate.Report) {
	if r.OK() {
		fmt.Fprintln(w, styles.Render("Success", fmt.Sprintf(MsgValidationOK, r.Files)))
		return
	}
	writeFindings(w, r.Findings, "")
	fmt.Fprintln(w, styles.Render("Error", fmt.Sprintf(MsgValidationFailed, len(r.Findings), r.Files)))
}

// listEntry is one declaration file, loaded or not.
type listEntry struct {
	name string
	pack *pack.Pack
	err  error
}

func writePackList(w io.Writer, entries []listEntry) {
	fmt.Fprintln(w, styles.Render("Header", MsgAvailablePacks))
	for _, e := range entries {
		line := styles.Render("Label", e.name) + " "
		switch {
		case e.err != nil:
			line += styles.Render("Error", e.err.Error())
		default:
			line += styles.Render("FilePath", e.pack.Directory)
			if e.pack.Description != "" {
				line += " " + styles.Render("Muted", e.pack.Description)
			}
		}
		fmt.Fprintln(w, styles.Render("Indent", line))
	}
}

func writePack(w io.Writer, p *pack.Pack) {
	fmt.Fprintln(w, styles.Render("PackName", p.Name)+" "+styles.Render("FilePath", p.File))
	fmt.Fprintln(w)

	fmt.Fprintln(w, styles.Render("Header", MsgConfigs))
	for _, c := range p.Configs {
		format, _ := c.ResolvedPackFormat()
		details := fmt.Sprintf("%s  pack_format %d", strings.Join(c.MCVersions, ", "), format)
		if len(c.Patches) > 0 {
			details += "  patches: " + strings.Join(c.Patches, ", ")
		}
		fmt.Fprintln(w, styles.Render("Indent", styles.Render("Config", fmt.Sprintf("%-14s", c.Name))+" "+details))
	}
	for _, cerr := range p.InvalidConfigs {
		fmt.Fprintln(w, styles.Render("Indent", styles.Render("Error", "✗ "+cerr.Error())))
	}

	fmt.Fprintln(w, styles.Render("Header", MsgRunOptions))
	for _, ro := range p.RunOptions {
		fmt.Fprintln(w, styles.Render("Indent",
			styles.Render("RunOption", fmt.Sprintf("%-14s", ro.Name))+" "+styles.Render("Muted", describeRunOption(ro))))
	}
}

func describeRunOption(ro pack.RunOption) string {
	parts := []string{"configs " + ro.Configs.String()}
	flag := func(on bool, name string) {
		if on {
			parts = append(parts, name)
		}
	}
	flag(ro.MinifyJSON, "minify")
	flag(ro.DeleteEmptyFolders, "prune")
	flag(ro.ZipPack, "zip")
	flag(ro.Rerun, "rerun")
	flag(ro.Validate, "validate")
	if ro.OutDir != "" {
		parts = append(parts, "out "+ro.OutDir)
	}
	if ro.Version != "" {
		parts = append(parts, "version "+ro.Version)
	}
	return strings.Join(parts, ", ")
}
