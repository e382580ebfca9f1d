package logging

import (
	"io"
	"os"
	"strings"

	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how the service logs.
type Options struct {
	// FilePath is the rotated log file, empty means stdout only.
	FilePath string
	ToStdout bool
	Level    logrus.Level
	JSON     bool
	Sentry   SentryOptions
}

type SentryOptions struct {
	Enabled     bool
	DSN         string
	Environment string
	ServerName  string
}

// sentryLevels are forwarded to sentry once it is initialized.
var sentryLevels = []logrus.Level{
	logrus.PanicLevel,
	logrus.FatalLevel,
	logrus.ErrorLevel,
}

var sentryInit = sentry.Init

// OptionsFromConfig takes the toml settings from cfg and the sentry DSN from
// the environment secrets.
func OptionsFromConfig(cfg *config.Config, secrets *config.Secrets, serverName string) Options {
	opts := Options{
		FilePath: cfg.LogsPath,
		ToStdout: cfg.LogToStdout,
		Level:    GetLevel(cfg.LogLevel),
		JSON:     cfg.LogFormatJSON,
		Sentry: SentryOptions{
			Enabled:     cfg.SentryEnabled,
			Environment: cfg.Environment,
			ServerName:  serverName,
		},
	}
	if secrets != nil {
		opts.Sentry.DSN = secrets.SentryDSN
	}
	return opts
}

// Setup configures the standard logrus logger.
func Setup(opts Options) {
	setup(logrus.StandardLogger(), opts)
}

func setup(logger *logrus.Logger, opts Options) {
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(opts.Level)

	out, desc := output(opts)
	logger.SetOutput(out)
	logger.Debugf("writing logs to %s", desc)

	setupSentry(logger, opts.Sentry)
}

// output returns the log writer and a short description of it.
func output(opts Options) (io.Writer, string) {
	if opts.FilePath == "" {
		return os.Stdout, "STDOUT"
	}

	path := opts.FilePath
	if !strings.HasSuffix(path, ".log") {
		path += ".log"
	}
	rotated := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		Compress:   true,
		MaxBackups: 30,
	}

	if opts.ToStdout {
		return pkg.NewCombinedWriter(os.Stdout, rotated), path + " and STDOUT"
	}
	return rotated, path
}

// setupSentry reports whether the sentry hook was added.
func setupSentry(logger *logrus.Logger, opts SentryOptions) bool {
	if !opts.Enabled {
		return false
	}
	if opts.DSN == "" {
		logger.Warnln("sentry enabled but SENTRY_DSN is not set, skipping")
		return false
	}

	if err := sentryInit(sentry.ClientOptions{
		Dsn:              opts.DSN,
		Environment:      opts.Environment,
		ServerName:       opts.ServerName,
		TracesSampleRate: 1.0,
	}); err != nil {
		logger.Errorf("sentry init: %s", err)
		return false
	}

	logger.AddHook(NewSentryHook(sentryLevels))
	logger.Infoln("sentry set up")
	return true
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
