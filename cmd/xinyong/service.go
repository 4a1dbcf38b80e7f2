package main

import (
	"fmt"
	"time"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/xinyong-bot/xinyong/pkg/app"
)

// program adapts the daemon loop to the service manager interface.
type program struct {
	params app.RunParams
	logger service.Logger
	done   chan struct{}
}

func (p *program) Start(_ service.Service) error {
	go func() {
		defer close(p.done)
		if err := app.Run(p.params); err != nil {
			_ = p.logger.Error(err)
		}
	}()
	return nil
}

func (p *program) Stop(_ service.Service) error {
	// The service manager delivers SIGTERM to the process, which the daemon
	// loop already handles; here we only wait for it to wind down.
	select {
	case <-p.done:
	case <-time.After(30 * time.Second):
		_ = p.logger.Warning("daemon did not stop within 30s")
	}
	return nil
}

func serviceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "service <install|uninstall|start|stop|restart|run>",
		Short:     "Manage the bot as a system service",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"install", "uninstall", "start", "stop", "restart", "run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")

			svcArgs := []string{"service", "run"}
			if cfgPath != "" {
				svcArgs = append(svcArgs, "--config", cfgPath)
			}

			prg := &program{
				params: app.RunParams{
					ConfigPath: cfgPath,
					Version:    version,
					Commit:     commit,
					Date:       date,
				},
				done: make(chan struct{}),
			}
			svc, err := service.New(prg, &service.Config{
				Name:        "xinyong",
				DisplayName: "xinyong sticker bot",
				Description: "Telegram bot rendering social credit stickers.",
				Arguments:   svcArgs,
			})
			if err != nil {
				return err
			}
			prg.logger, err = svc.Logger(nil)
			if err != nil {
				return err
			}

			action := args[0]
			if action == "run" {
				return svc.Run()
			}
			if err := service.Control(svc, action); err != nil {
				return fmt.Errorf("service %s: %w", action, err)
			}
			fmt.Printf("Service %s: done\n", action)
			return nil
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}
