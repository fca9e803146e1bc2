package main

import (
	"errors"
	"os"
	"syscall"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/quesurifn/portal-deadline-sync/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	cfg        *config.Config
	logger     *zap.Logger
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "deadline-sync",
	Short: "Copy assignment deadlines from the university portal into Google Calendar",
	// Registration failures are reported per item; usage text adds nothing.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.Name() == "serve", cfg.Debug)
		cfg.Logger = logger
		return cfg.Load(&appConfig, configFile)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		err := logger.Sync()
		if err != nil && !errors.Is(err, syscall.ENOTTY) && !errors.Is(err, syscall.EINVAL) {
			os.Stderr.WriteString(err.Error() + "\n")
		}
	},
}

// newLogger gives operators readable lines on the console and the server
// structured JSON.
func newLogger(production, debug bool) *zap.Logger {
	zcfg := zap.NewDevelopmentConfig()
	if production {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zcfg.DisableStacktrace = true
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	if debug {
		zcfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	l, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func init() {
	cfg = config.New(&config.Settings{ENVPrefix: "DEADLINE_SYNC"})

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "Debug Mode")

	rootCmd.AddCommand(syncCmd, exportCmd, parseCmd, upcomingCmd, serveCmd)
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(-1)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(-1)
	}
}
