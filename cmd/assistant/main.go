package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/BasedPanda/healthcare-voice-assistant/internal/observability"
	"github.com/BasedPanda/healthcare-voice-assistant/internal/profile"
	"github.com/BasedPanda/healthcare-voice-assistant/plugin/nlp/timeparse"
	"github.com/BasedPanda/healthcare-voice-assistant/server/dialogue"
	apiv1 "github.com/BasedPanda/healthcare-voice-assistant/server/router/api/v1"
	"github.com/BasedPanda/healthcare-voice-assistant/server/service/scheduling"
	"github.com/BasedPanda/healthcare-voice-assistant/server/speech"
	"github.com/BasedPanda/healthcare-voice-assistant/store"
	"github.com/BasedPanda/healthcare-voice-assistant/store/db"
)

const greetingBanner = `
 Healthcare Voice Assistant
 say "hey assistant" to start
`

var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Voice-driven appointment scheduling assistant",
	RunE: func(_ *cobra.Command, _ []string) error {
		instanceProfile := &profile.Profile{
			Mode:     viper.GetString("mode"),
			Addr:     viper.GetString("addr"),
			Port:     viper.GetInt("port"),
			Data:     viper.GetString("data"),
			Driver:   viper.GetString("driver"),
			DSN:      viper.GetString("dsn"),
			Timezone: viper.GetString("timezone"),
		}
		// Scheduling and speech settings come straight from the environment.
		// Wake words in particular need comma splitting, which the flag
		// binding above does not do for env values.
		instanceProfile.FromEnv()
		if err := instanceProfile.Validate(); err != nil {
			return fmt.Errorf("failed to validate profile: %w", err)
		}
		return run(instanceProfile)
	},
}

func run(instanceProfile *profile.Profile) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := observability.NewLogger(instanceProfile.Mode == "dev")
	slog.SetDefault(logger)

	dbDriver, err := db.NewDBDriver(instanceProfile)
	if err != nil {
		return fmt.Errorf("failed to create db driver: %w", err)
	}
	storeInstance := store.New(dbDriver, instanceProfile)
	defer storeInstance.Close()

	timeService := timeparse.NewService(instanceProfile.Timezone)
	scheduler := scheduling.NewService(storeInstance, scheduling.PolicyFromProfile(instanceProfile))

	controller := dialogue.NewController(
		instanceProfile,
		speech.NewConsoleRecognizer(os.Stdin),
		speech.NewConsoleSynthesizer(os.Stdout),
		timeService,
		scheduler,
		logger,
	)

	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	apiv1.NewAPIV1Service(instanceProfile, scheduler, timeService, logger).Register(echoServer)

	fmt.Print(greetingBanner, "\n")
	logger.Info("assistant started",
		slog.String("mode", instanceProfile.Mode),
		slog.String("driver", instanceProfile.Driver),
		slog.String("addr", fmt.Sprintf("%s:%d", instanceProfile.Addr, instanceProfile.Port)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := fmt.Sprintf("%s:%d", instanceProfile.Addr, instanceProfile.Port)
		if err := echoServer.Start(addr); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return controller.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return echoServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	logger.Info("assistant stopped")
	return nil
}

func init() {
	viper.SetDefault("mode", "demo")
	viper.SetDefault("addr", "")
	viper.SetDefault("port", 8230)
	viper.SetDefault("data", "")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("timezone", "UTC")

	rootCmd.PersistentFlags().String("mode", "demo", `mode of the assistant, can be "demo", "dev" or "prod"`)
	rootCmd.PersistentFlags().String("addr", "", "address of the API server")
	rootCmd.PersistentFlags().Int("port", 8230, "port of the API server")
	rootCmd.PersistentFlags().String("data", "", "data directory")
	rootCmd.PersistentFlags().String("driver", "sqlite", `database driver, can be "sqlite" or "postgres"`)
	rootCmd.PersistentFlags().String("dsn", "", "database source name")
	rootCmd.PersistentFlags().String("timezone", "UTC", "IANA timezone for interpreting spoken times")

	for _, flag := range []string{"mode", "addr", "port", "data", "driver", "dsn", "timezone"} {
		if err := viper.BindPFlag(flag, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix("assistant")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
