package main

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	"XMPPAlertBot/internal/adapter/http/ctrl"
	"XMPPAlertBot/internal/app"
	"XMPPAlertBot/internal/config"
	"XMPPAlertBot/internal/metrics"
	"XMPPAlertBot/internal/repo"

	"github.com/gorilla/mux"
	cli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	cliApp := &cli.App{
		Name:   "xmpp-alertbot",
		Usage:  "Forwards Alertmanager webhook alerts over XMPP and relays amtool chat commands",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the YAML configuration file.",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Set the log level, options are [error, warn, info, debug]",
				Value: "info",
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		zap.S().Fatalw("exiting", "error", err)
	}
}

func initLogger(level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stdout),
		lvl,
	)
	zap.ReplaceGlobals(zap.New(core))
	return nil
}

func run(c *cli.Context) error {
	if err := initLogger(c.String("log-level")); err != nil {
		return err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	metrics.Register()

	formatter, err := app.NewFormatter(cfg.Format, cfg.TextTemplate)
	if err != nil {
		return err
	}

	// The hostname resource identifies this instance to the server.
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "xmpp-alertbot"
	}

	bot, err := repo.NewXMPPBot(cfg.JID, hostname, cfg.Password)
	if err != nil {
		return err
	}

	if cfg.MUCJID != "" {
		if err := bot.JoinMUC(cfg.MUCJID, cfg.MUCBotNick); err != nil {
			return err
		}
	}

	relay := repo.NewAmtoolRelay(cfg.AmtoolPath, cfg.AlertmanagerURL, cfg.AmtoolTimeout)
	chat := app.NewChatHandler(relay, cfg.AmtoolAllowed)
	session := app.NewSessionHandler(bot, chat)
	alerts := app.NewAlertUseCase(bot, formatter, cfg.Recipients)

	router := mux.NewRouter()
	ctrl.NewAlertController(alerts, bot.Online).Register(router)

	addr := net.JoinHostPort(cfg.ListenAddress, strconv.Itoa(cfg.ListenPort))
	errc := make(chan error, 2)

	go func() {
		zap.S().Infow("starting HTTP server", "address", addr)
		errc <- fmt.Errorf("HTTP server: %w", http.ListenAndServe(addr, router))
	}()
	go func() {
		// Returns only when the session is lost, which is fatal; an
		// external supervisor restarts the process.
		errc <- bot.Listen(session)
	}()

	return <-errc
}
