package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/learningequality/kolibri-server-ctl/internal/app"
	"github.com/learningequality/kolibri-server-ctl/internal/cache"
	"github.com/learningequality/kolibri-server-ctl/internal/debconf"
	"github.com/learningequality/kolibri-server-ctl/internal/logging"
	"github.com/learningequality/kolibri-server-ctl/internal/nginx"
	"github.com/learningequality/kolibri-server-ctl/internal/options"
)

var (
	verbose    bool
	jsonOutput bool

	debconfPort     string
	debconfZipPort  string
	restoreCherrypy bool
)

var rootCmd = &cobra.Command{
	Use:   "kolibri-server-ctl",
	Short: "Configure Kolibri for the kolibri-server nginx front end",
	Long: `kolibri-server-ctl integrates a Kolibri installation with the nginx
front end and redis cache shipped by the kolibri-server package.

It runs in one of three modes:

  --cherrypy          restore the embedded web server (kolibri-server is
                      not going to be run)
  --debconfport PORT  install time: disable the embedded server and record
                      the chosen ports, nothing else
  (no flags)          full reconfiguration: disable the embedded server,
                      select and size the cache backend, write the nginx
                      include, and push the ports back into debconf`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup(verbose, jsonOutput, os.Stderr)
	},
	RunE: runRoot,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output logs in JSON format")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVarP(&debconfPort, "debconfport", "d", "",
		"Initial port to be used when installing/reconfiguring the kolibri-server package")
	rootCmd.Flags().StringVarP(&debconfZipPort, "debconfzipport", "z", "",
		"Port serving zip content iframes, used when installing/reconfiguring the kolibri-server package")
	rootCmd.Flags().BoolVarP(&restoreCherrypy, "cherrypy", "c", false,
		"Restore the embedded web server because kolibri-server is not going to be run")
}

// runRoot dispatches to one of the three terminal modes. The flags are
// checked in precedence order; the first match wins and the rest are
// ignored without complaint.
func runRoot(cmd *cobra.Command, args []string) error {
	a := app.Default
	store := a.Options()

	switch {
	case restoreCherrypy:
		return restoreEmbeddedServer(store)
	case debconfPort != "":
		return assignInstallPorts(store)
	default:
		return fullReconfigure(cmd.Context(), a, store)
	}
}

// restoreEmbeddedServer re-enables the built-in cherrypy server and touches
// nothing else.
func restoreEmbeddedServer(store *options.Store) error {
	if err := store.Set(options.SectionServer, options.KeyCherrypyStart, true); err != nil {
		return err
	}
	logSuccess("Embedded web server restored")
	return nil
}

// assignInstallPorts runs at package install time: it disables the embedded
// server and records the chosen ports. Cache and proxy configuration are
// left for the post-install full reconfiguration.
func assignInstallPorts(store *options.Store) error {
	if err := store.Set(options.SectionServer, options.KeyCherrypyStart, false); err != nil {
		return err
	}
	if err := store.Set(options.SectionDeployment, options.KeyHTTPPort, debconfPort); err != nil {
		return err
	}
	if debconfZipPort != "" {
		if err := store.Set(options.SectionDeployment, options.KeyZipContentPort, debconfZipPort); err != nil {
			return err
		}
	}
	logSuccess("Ports recorded in %s", store.Path())
	return nil
}

// fullReconfigure is the post-install mode: embedded server off, cache
// backend selected and sized, nginx include rewritten, and the configured
// ports pushed back into debconf in case options.ini was edited by hand.
func fullReconfigure(ctx context.Context, a *app.App, store *options.Store) error {
	settings, err := store.Settings()
	if err != nil {
		return err
	}

	if err := store.Set(options.SectionServer, options.KeyCherrypyStart, false); err != nil {
		return err
	}

	ctrl := cache.NewController(a.Exec, store, a.Tool.RedisAddr)
	if ctrl.ProbeActive(ctx) {
		if err := ctrl.Activate(ctx, settings); err != nil {
			return err
		}
		logInfo("Using the redis cache backend")
	} else {
		if err := ctrl.Deactivate(); err != nil {
			return err
		}
		logWarning("redis service is not running, using the in-process cache backend")
	}

	writer := nginx.NewWriter(a.FS, a.Paths.NginxConfPath, settings.URLPathPrefix,
		nginx.WithSockets(a.Tool.UWSGISocket, a.Tool.HashiSocket))
	if err := writer.WritePrimary(settings.HTTPPort); err != nil {
		return err
	}
	if err := writer.AppendSecondary(settings.ZipContentPort); err != nil {
		return err
	}

	if err := debconf.SetPorts(ctx, a.Exec, settings.HTTPPort, settings.ZipContentPort); err != nil {
		return err
	}

	logSuccess("kolibri-server configured: port %d, zip content port %d", settings.HTTPPort, settings.ZipContentPort)
	return nil
}
