package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/learningequality/kolibri-server-ctl/internal/app"
	"github.com/learningequality/kolibri-server-ctl/internal/options"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the options this tool manages",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusKeys lists every option this tool reads or writes, in display order.
var statusKeys = []struct {
	section string
	key     string
}{
	{options.SectionServer, options.KeyCherrypyStart},
	{options.SectionDeployment, options.KeyHTTPPort},
	{options.SectionDeployment, options.KeyZipContentPort},
	{options.SectionDeployment, options.KeyURLPathPrefix},
	{options.SectionCache, options.KeyCacheBackend},
	{options.SectionCache, options.KeyRedisDB},
	{options.SectionCache, options.KeyRedisMaxMemory},
	{options.SectionCache, options.KeyRedisMaxMemoryPolicy},
}

func runStatus(cmd *cobra.Command, args []string) error {
	a := app.Default
	store := a.Options()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SECTION\tKEY\tVALUE")
	fmt.Fprintln(w, "-------\t---\t-----")

	for _, entry := range statusKeys {
		value := store.Get(entry.section, entry.key)
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.section, entry.key, value)
	}

	fmt.Fprintf(w, "\nnginx config\t\t%s\n", a.Paths.NginxConfPath)
	fmt.Fprintf(w, "options file\t\t%s\n", store.Path())

	return w.Flush()
}
