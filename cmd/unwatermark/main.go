package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/wailsapp/wails/v2/pkg/logger"

	"pdf-unwatermark/internal/config"
	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/engine"
	"pdf-unwatermark/internal/jobs"
	"pdf-unwatermark/internal/outcome"
	"pdf-unwatermark/internal/selection"
	"pdf-unwatermark/internal/tui"
)

var Version = "dev"

type CLI struct {
	File    string           `arg:"" name:"file" help:"PDF file to clean" type:"existingfile"`
	Outputs string           `help:"Directory for processed files" type:"path"`
	Uploads string           `help:"Directory for uploaded files" type:"path"`
	Profile string           `help:"Detection profile (gamma, gamma-partial)"`
	Hosts   []string         `help:"Watermark link hosts, comma separated"`
	Ratio   float64          `help:"Share of pages a repeated image must appear on, in (0, 1]"`
	Config  string           `help:"Settings file" type:"path"`
	LogFile string           `name:"log-file" help:"Log file" type:"path"`
	Plain   bool             `help:"Print progress lines instead of the interactive view"`
	Version kong.VersionFlag `help:"Show version"`
}

func (cli *CLI) Run() error {
	sel, ok := selection.NewSource().Accept([]string{cli.File})
	if !ok {
		return fmt.Errorf("not a PDF file: %s", cli.File)
	}

	settings, err := cli.settings()
	if err != nil {
		return err
	}

	logPath := cli.LogFile
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "pdf-unwatermark.log")
	}
	log := logger.NewFileLogger(logPath)

	eng, err := engine.New(settings)
	if err != nil {
		return fmt.Errorf("prepare workspace: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ctrl := jobs.NewController(eng, eng, jobs.NewEventBus(1000), log, nil)
	go func() {
		if err := ctrl.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error(fmt.Sprintf("controller loop stopped: %v", err))
		}
	}()

	if cli.Plain {
		_, err := tui.Stream(ctx, ctrl, sel, os.Stdout)
		return err
	}

	program := tea.NewProgram(tui.New(ctrl, outcome.NewOpener(), sel), tea.WithContext(ctx))
	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// settings layers persisted settings, environment and flags.
func (cli *CLI) settings() (domain.Settings, error) {
	if err := config.LoadDotEnv(); err != nil {
		return domain.Settings{}, err
	}

	path := cli.Config
	if path == "" {
		path = config.DefaultPath()
	}
	settings, err := config.NewJSONStore(path).Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	if settings, err = config.ApplyEnv(settings); err != nil {
		return domain.Settings{}, err
	}

	if cli.Profile != "" {
		if settings, err = config.ApplyProfile(settings, cli.Profile); err != nil {
			return domain.Settings{}, err
		}
	}
	if cli.Outputs != "" {
		settings.OutputsDir = cli.Outputs
	}
	if cli.Uploads != "" {
		settings.UploadsDir = cli.Uploads
	}
	if len(cli.Hosts) > 0 {
		settings.WatermarkHosts = cli.Hosts
		settings.Profile = config.CustomProfileID
	}
	if cli.Ratio != 0 {
		if cli.Ratio < 0 || cli.Ratio > 1 {
			return domain.Settings{}, fmt.Errorf("--ratio must be in (0, 1], got %v", cli.Ratio)
		}
		settings.MinRepeatRatio = cli.Ratio
		settings.Profile = config.CustomProfileID
	}

	return config.Normalize(settings), nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("unwatermark"),
		kong.Description("Remove Gamma watermarks from a PDF."),
		kong.Vars{"version": Version},
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
