package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/brizzai/fitdash/internal/auth"
	"github.com/brizzai/fitdash/internal/auth/providers"
	"github.com/brizzai/fitdash/internal/auth/session"
	"github.com/brizzai/fitdash/internal/config"
	"github.com/brizzai/fitdash/internal/fitbit"
	"github.com/brizzai/fitdash/internal/logger"
	"github.com/brizzai/fitdash/internal/requester"
	"github.com/brizzai/fitdash/internal/server"
	"github.com/brizzai/fitdash/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	Execute()
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fitdash",
	Short: "A personal Fitbit dashboard",
	Long: `fitdash signs in to the Fitbit Web API with OAuth2 and shows today's activity,
heart rate and Active Zone Minutes, refreshed every couple of minutes.

Credentials are read from FITDASH_FITBIT_CLIENT_ID and FITDASH_FITBIT_CLIENT_SECRET
or from the fitbit section of config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard in the browser",
	RunE:  runServe,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Show the dashboard in the terminal",
	RunE:  runTUI,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, config.ErrMissingCredentials) {
			pterm.Error.Println("Missing Fitbit API credentials. Please set FITDASH_FITBIT_CLIENT_ID and FITDASH_FITBIT_CLIENT_SECRET or add them to config.yaml.")
		}
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
	rootCmd.AddCommand(serveCmd, tuiCmd)
}

// runServe starts the web dashboard and blocks until interrupted
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := logger.InitLogger(&cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	app := fx.New(
		fx.Supply(cfg),
		config.Module,
		requester.Module,
		fitbit.Module,
		auth.Module,
		server.Module,
		fx.WithLogger(logger.FxLogger),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		return err
	}
	pterm.Success.Printfln("Dashboard running at http://%s", cfg.Server.Addr())
	pterm.Info.Printfln("Fitbit redirects to %s", cfg.Fitbit.RedirectURI)

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(stopCtx)
}

// runTUI runs the terminal dashboard for a single session
func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pterm.Error.Printf("\nCaught panic: %v\n", r)
			pterm.Error.Printf("%s\n", debug.Stack())
			os.Exit(2)
		}
	}()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	// The terminal belongs to the TUI, log only when a file is configured
	if cfg.Logging.OutputPath != "" {
		cfg.Logging.DisableConsole = true
		if err := logger.InitLogger(&cfg.Logging); err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
	}

	client, err := fitbit.NewClient(requester.NewHTTPRequester(requester.HTTPRequesterParams{Config: &cfg.Fitbit}))
	if err != nil {
		return err
	}
	sess := session.New("tui", providers.NewFitbitProvider(&cfg.Fitbit))
	defer sess.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := tui.Run(ctx, sess, client, &cfg.Dashboard); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("Terminal UI failed", zap.Error(err))
		return err
	}
	return nil
}
