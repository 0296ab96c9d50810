package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/spotled/internal/auth"
	"github.com/genricoloni/spotled/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	run := func(cmd *cobra.Command, _ []string) error {
		return runDaemon(cmd.Context(), config.Path(cfgPath))
	}

	root := &cobra.Command{
		Use:          "spotled",
		Short:        "Show what is playing on an OLED display",
		SilenceUsage: true,
		RunE:         run,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "",
		"config file (default $HOME/.config/spotled/spotled.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "run",
			Short: "Run the display daemon (default)",
			Args:  cobra.NoArgs,
			RunE:  run,
		},
		&cobra.Command{
			Use:   "login",
			Short: "Authorize spotled with Spotify and cache the token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runLogin(cmd.Context(), cmd.OutOrStdout(), config.Path(cfgPath))
			},
		},
		&cobra.Command{
			Use:   "logout",
			Short: "Remove the cached Spotify token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runLogout(cmd.OutOrStdout(), config.Path(cfgPath))
			},
		},
	)
	return root
}

// runDaemon runs the fx application until a signal or a fatal error
func runDaemon(parent context.Context, path config.Path) error {
	app := fx.New(appOptions(path))
	if err := app.Err(); err != nil {
		return err
	}

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	startCtx, cancelStart := context.WithTimeout(ctx, app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("starting: %w", err)
	}

	// Wait for a signal or a shutdown request from the engine
	exitCode := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancelStop()
	err := app.Stop(stopCtx)
	if exitCode != 0 {
		err = errors.Join(fmt.Errorf("exited with code %d", exitCode), err)
	}
	return err
}

func newAuthenticator(path config.Path) (*auth.Authenticator, error) {
	cfg, err := config.NewAppConfig(path)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	return auth.New(logger.Named("auth"), cfg)
}

func runLogin(parent context.Context, out io.Writer, path config.Path) error {
	a, err := newAuthenticator(path)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return a.Login(ctx, out)
}

func runLogout(out io.Writer, path config.Path) error {
	a, err := newAuthenticator(path)
	if err != nil {
		return err
	}
	if err := a.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Removed", a.TokenPath())
	return nil
}
