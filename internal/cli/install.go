package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/opjh/loruntime/internal/app"
	"github.com/opjh/loruntime/internal/bundle"
	"github.com/opjh/loruntime/internal/installer"
)

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Copy the runtime bundle into the runtime directory unless already installed",
		Args:  cobra.NoArgs,
		RunE:  runInstallCmd,
	}

	cmd.Flags().String("source", "", "bundle to install from: embedded, a directory or a .zip (overrides config)")
	cmd.Flags().Bool("force", false, "remove install markers first so every tree is copied again")

	return cmd
}

func runInstallCmd(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	sourceName, _ := cmd.Flags().GetString("source")
	force, _ := cmd.Flags().GetBool("force")
	if sourceName == "" {
		sourceName = a.Config.Install.Source
	}

	source, err := bundle.Open(sourceName)
	if err != nil {
		return err
	}
	defer source.Close()

	runtime, err := a.runtime(source)
	if err != nil {
		return err
	}

	if force {
		removed, err := runtime.Reset()
		if err != nil {
			return err
		}
		a.Logger.Debug("markers removed", "count", removed)
	}

	out := cmd.OutOrStdout()
	summary, err := runtime.Install()
	printSummary(out, source.Name, summary)
	if err != nil {
		printInstallError(out, err)
		return err
	}

	return nil
}

func printSummary(w io.Writer, source string, summary app.Summary) {
	fmt.Fprintln(w, styleDim.Render("source: "+source))

	for _, tr := range summary.Trees {
		switch {
		case tr.Report.Skipped:
			fmt.Fprintf(w, "%s %s %s\n",
				styleDim.Render("already installed"), stylePath.Render(tr.Tree.Root), styleDim.Render(tr.Dest))
		default:
			fmt.Fprintf(w, "%s %s %s %s\n",
				styleSuccess.Render("installed"), stylePath.Render(tr.Tree.Root), styleDim.Render(tr.Dest),
				styleDim.Render(fmt.Sprintf("(%d files, %d dirs, %d bytes)", tr.Report.Files, tr.Report.Dirs, tr.Report.Bytes)))
		}
	}

	if summary.RCPath != "" {
		fmt.Fprintln(w, styleDim.Render("bootstrap rc: "+summary.RCPath))
	}
}

func printInstallError(w io.Writer, err error) {
	var installErr *installer.InstallError
	if errors.As(err, &installErr) {
		fmt.Fprintln(w, styledError("install failed during "+installErr.Op.String(),
			installErr.Path,
			"the next run copies everything again"))
		return
	}
	fmt.Fprintln(w, styledError("install failed", err.Error()))
}
