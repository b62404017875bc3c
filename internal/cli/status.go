package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/opjh/loruntime/internal/app"
)

var errNotReady = errors.New("runtime is not installed")

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show install markers and required runtime files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}

			runtime, err := a.runtime(nil)
			if err != nil {
				return err
			}

			status := runtime.Status()
			out := cmd.OutOrStdout()
			if isTerminal(out) {
				printStatusTable(out, status)
			} else {
				printStatusPlain(out, status)
			}

			if !status.Ready() {
				fmt.Fprintln(out, styledError(errNotReady.Error(), "run: loruntime install"))
				return errNotReady
			}
			return nil
		},
	}
}

func printStatusTable(w io.Writer, status app.Status) {
	fmt.Fprintln(w, styleDim.Render("runtime: "+status.Root))

	t := newTable("KIND", "NAME", "STATUS", "PATH")
	for _, tr := range status.Trees {
		t.Row("tree", tr.Tree.Root, yesNo(tr.Installed, "installed", "missing"), tr.Dest)
	}
	for _, f := range status.Files {
		t.Row("file", "", yesNo(f.Present, "present", "missing"), f.Path)
	}
	if status.RC != nil {
		t.Row("rc", "sofficerc", yesNo(status.RC.Present, "present", "missing"), status.RC.Path)
	}

	fmt.Fprintln(w, t.Render())
}

func printStatusPlain(w io.Writer, status app.Status) {
	fmt.Fprintf(w, "runtime %s\n", status.Root)
	for _, tr := range status.Trees {
		fmt.Fprintf(w, "tree %s installed=%t %s\n", tr.Tree.Root, tr.Installed, tr.Dest)
	}
	for _, f := range status.Files {
		fmt.Fprintf(w, "file present=%t %s\n", f.Present, f.Path)
	}
	if status.RC != nil {
		fmt.Fprintf(w, "rc present=%t %s\n", status.RC.Present, status.RC.Path)
	}
	fmt.Fprintf(w, "ready=%t\n", status.Ready())
}
