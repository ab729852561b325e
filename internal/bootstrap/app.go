package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/logger"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"pdf-unwatermark/internal/config"
	"pdf-unwatermark/internal/diagnostics"
	"pdf-unwatermark/internal/domain"
	"pdf-unwatermark/internal/engine"
	"pdf-unwatermark/internal/jobs"
	"pdf-unwatermark/internal/outcome"
	"pdf-unwatermark/internal/selection"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// PipelineEventName is the runtime event carrying controller events.
const PipelineEventName = "pipeline:event"

const controllerCallTimeout = 5 * time.Second

var pdfDialogFilter = []wailsruntime.FileFilter{
	{
		DisplayName: "PDF documents",
		Pattern:     "*.pdf;*.PDF",
	},
}

// ErrNoOutputFolder is returned when the current view offers no folder to open.
var ErrNoOutputFolder = errors.New("no output folder to open")

// fileAccepter validates dropped or picked file references.
type fileAccepter interface {
	Accept(refs []string) (domain.FileSelection, bool)
}

// folderOpener reveals a directory in the platform file manager.
type folderOpener interface {
	OpenDirectory(dir string) error
}

// settingsApplier rebuilds the run engine after settings change.
type settingsApplier interface {
	Apply(settings domain.Settings) error
}

// App wires configuration, the pipeline controller, and UI runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Controller  *jobs.Controller
	Engine      settingsApplier
	Source      fileAccepter
	Opener      folderOpener
	Diagnostics domain.DiagnosticReport
	Log         logger.Logger
	assets      fs.FS
	checker     *diagnostics.Checker

	mu         sync.Mutex
	runtimeCtx context.Context
	stopLoop   context.CancelFunc
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	log := logger.NewDefaultLogger()

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	store := config.NewJSONStore(config.DefaultPath())
	settings, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	settings, err = config.ApplyEnv(settings)
	if err != nil {
		return nil, err
	}

	eng, err := engine.New(settings)
	if err != nil {
		return nil, fmt.Errorf("prepare workspace: %w", err)
	}

	checker := diagnostics.NewChecker()
	app := &App{
		Settings:    settings,
		Store:       store,
		Engine:      eng,
		Source:      selection.NewSource(),
		Opener:      outcome.NewOpener(),
		Diagnostics: checker.Run(settings),
		Log:         log,
		assets:      assets,
		checker:     checker,
	}
	app.Controller = jobs.NewController(eng, eng, jobs.NewEventBus(1000), log, app.pushEvent)
	return app, nil
}

// Run starts the Wails desktop application and binds backend methods.
func (a *App) Run() error {
	assetOptions := &assetserver.Options{}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	} else {
		assetOptions.Handler = http.FileServer(http.Dir("./frontend"))
	}

	return wails.Run(&options.App{
		Title:       "PDF Watermark Remover",
		Width:       720,
		Height:      560,
		AssetServer: assetOptions,
		Logger:      a.Log,
		LogLevel:    logger.INFO,
		DragAndDrop: &options.DragAndDrop{
			EnableFileDrop:     true,
			DisableWebViewDrop: true,
		},
		OnStartup:  a.Startup,
		OnShutdown: a.Shutdown,
		Bind:       []interface{}{a},
	})
}

// Startup stores the Wails runtime context, starts the controller loop and
// subscribes to native file drops.
func (a *App) Startup(ctx context.Context) {
	loopCtx, stop := context.WithCancel(context.Background())

	a.mu.Lock()
	a.runtimeCtx = ctx
	a.stopLoop = stop
	a.mu.Unlock()

	go func() {
		if err := a.Controller.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.errorf("controller loop stopped: %v", err)
		}
	}()

	wailsruntime.OnFileDrop(ctx, func(_, _ int, paths []string) {
		if _, err := a.acceptRefs(paths); err != nil {
			a.errorf("file drop: %v", err)
		}
	})
}

// Shutdown stops the controller loop, cancelling any active run.
func (a *App) Shutdown(context.Context) {
	a.mu.Lock()
	stop := a.stopLoop
	a.runtimeCtx = nil
	a.stopLoop = nil
	a.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// PickInputFile opens a native file dialog and selects the chosen PDF.
// A cancelled dialog or a rejected file leaves the view unchanged.
func (a *App) PickInputFile() (domain.View, error) {
	ctx, err := a.runtimeContext()
	if err != nil {
		return domain.View{}, err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Select PDF file",
		Filters: pdfDialogFilter,
	})
	if err != nil {
		return domain.View{}, err
	}

	path = strings.TrimSpace(path)
	if path == "" {
		return a.CurrentView()
	}
	return a.acceptRefs([]string{path})
}

// SelectFile selects a PDF dropped onto the web view by path or file URI.
func (a *App) SelectFile(ref string) (domain.View, error) {
	return a.acceptRefs([]string{ref})
}

// StartRun starts processing the selected PDF in the background.
func (a *App) StartRun() (domain.View, error) {
	ctx, cancel := a.callContext()
	defer cancel()
	return a.Controller.Start(ctx)
}

// Reset clears the selection and any result, abandoning an active run.
func (a *App) Reset() (domain.View, error) {
	ctx, cancel := a.callContext()
	defer cancel()
	return a.Controller.Reset(ctx)
}

// CurrentView returns the controller snapshot.
func (a *App) CurrentView() (domain.View, error) {
	ctx, cancel := a.callContext()
	defer cancel()
	return a.Controller.View(ctx)
}

// PipelineEvents returns all events with sequence greater than sinceSeq.
func (a *App) PipelineEvents(sinceSeq int64) []jobs.Event {
	return a.Controller.Events().Since(sinceSeq)
}

// OpenOutputFolder reveals the folder of the last processed file.
func (a *App) OpenOutputFolder() error {
	view, err := a.CurrentView()
	if err != nil {
		return err
	}
	if !view.HasSecondaryAction || view.SecondaryActionPath == "" {
		return ErrNoOutputFolder
	}
	return a.Opener.OpenDirectory(view.SecondaryActionPath)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, rebuilds the engine, then
// refreshes diagnostics.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	if err := a.applySettings(normalized); err != nil {
		return normalized, err
	}
	return normalized, nil
}

// RefreshDiagnostics reloads settings and reruns startup checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.DiagnosticReport{}, fmt.Errorf("load settings: %w", err)
	}
	settings, err = config.ApplyEnv(settings)
	if err != nil {
		return domain.DiagnosticReport{}, err
	}
	return a.refreshDiagnosticsFromSettings(settings), nil
}

// acceptRefs runs refs through the selection source and selects the PDF.
// Rejected refs leave the view unchanged.
func (a *App) acceptRefs(refs []string) (domain.View, error) {
	sel, ok := a.Source.Accept(refs)
	if !ok {
		a.debugf("ignored file references %v", refs)
		return a.CurrentView()
	}

	ctx, cancel := a.callContext()
	defer cancel()
	return a.Controller.Select(ctx, sel)
}

// applySettings overlays UNWATERMARK_* variables on settings, rebuilds the
// engine and refreshes diagnostics.
func (a *App) applySettings(settings domain.Settings) error {
	effective, err := config.ApplyEnv(settings)
	if err != nil {
		a.refreshDiagnosticsFromSettings(settings)
		return err
	}
	if a.Engine != nil {
		if err := a.Engine.Apply(effective); err != nil {
			a.refreshDiagnosticsFromSettings(effective)
			return fmt.Errorf("prepare workspace: %w", err)
		}
	}
	a.refreshDiagnosticsFromSettings(effective)
	return nil
}

// pushEvent forwards controller events to the web view.
func (a *App) pushEvent(event jobs.Event) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, PipelineEventName, event)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}

// callContext bounds a wait on the controller loop.
func (a *App) callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), controllerCallTimeout)
}

func (a *App) debugf(format string, args ...any) {
	if a.Log != nil {
		a.Log.Debug(fmt.Sprintf(format, args...))
	}
}

func (a *App) errorf(format string, args ...any) {
	if a.Log != nil {
		a.Log.Error(fmt.Sprintf(format, args...))
	}
}
