package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/portfolio-console/internal/agent"
	"github.com/csheth/portfolio-console/internal/audio"
	"github.com/csheth/portfolio-console/internal/config"
	"github.com/csheth/portfolio-console/internal/logging"
	"github.com/csheth/portfolio-console/internal/portfolio"
	"github.com/csheth/portfolio-console/internal/session"
	"github.com/csheth/portfolio-console/internal/speech"
	"github.com/csheth/portfolio-console/internal/tui"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Println("configuration error:", err)
		os.Exit(2)
	}

	logger, err := logging.New(cfg.LogFile, cfg.Debug)
	if err != nil {
		fmt.Println("logging disabled:", err)
		logger = zap.NewNop()
	}
	defer logging.Sync(logger)

	catalogue, err := portfolio.Load()
	if err != nil {
		fmt.Println("failed to load portfolio catalogue:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	client := agent.New(agent.Config{BaseURL: cfg.APIURL, Logger: logger})

	// The managers report back into the controller, which is built last.
	var ctrl *session.Controller
	addLog := func(line string) {
		if ctrl != nil {
			ctrl.AddLog(line)
		}
	}
	notify := func() {
		if ctrl != nil {
			ctrl.Notify()
		}
	}

	audioCfg := audio.Config{
		Synthesizer: client,
		Enabled:     cfg.Audio,
		Logger:      logger,
		OnLog:       addLog,
		OnChange:    notify,
	}
	if device := audio.DetectDevice(cfg.Player); device != nil {
		audioCfg.Device = device
		logger.Info("audio device ready", zap.String("player", device.Name()))
	} else {
		logger.Warn("no audio player found; spoken responses disabled")
	}
	player := audio.NewManager(audioCfg)

	speechCfg := speech.Config{
		SilenceTimeout: cfg.SilenceTimeout,
		Logger:         logger,
		OnStart: func() {
			if ctrl != nil {
				ctrl.HandleSpeechStart()
			}
		},
		OnResult: func(transcript string) {
			if ctrl != nil {
				ctrl.HandleTranscript(transcript)
			}
		},
		OnEnd: func() {
			if ctrl != nil {
				ctrl.HandleSpeechEnd()
			}
		},
		OnLog: addLog,
	}
	if cfg.Continuous {
		speechCfg.Mode = speech.ModeContinuous
	}
	if recognizer := speech.NewCommandRecognizer(cfg.SpeechCommand); recognizer != nil {
		speechCfg.Recognizer = recognizer
	}
	listener := speech.NewManager(speechCfg)

	ctrl = session.New(session.Config{
		Agent:     client,
		Speaker:   player,
		Listener:  listener,
		SessionID: cfg.SessionID,
		Logger:    logger,
		Context:   ctx,
	})
	logger.Info("console starting",
		zap.String("api_url", client.BaseURL()),
		zap.String("session_id", ctrl.SessionID()),
		zap.Bool("audio", cfg.Audio),
		zap.Bool("voice", listener.Available()),
	)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithMouseCellMotion()}
	if !cfg.NoAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Session:   ctrl,
			Catalogue: catalogue,
			APIURL:    client.BaseURL(),
			Logger:    logger,
			Context:   ctx,
		}),
		opts...,
	)

	_, runErr := program.Run()
	listener.Stop()
	player.Stop()
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		logger.Error("program error", zap.Error(runErr))
		fmt.Println("program error:", runErr)
		os.Exit(1)
	}
}
