package bootstrap

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"

	"subtitle-merger/internal/batch"
	"subtitle-merger/internal/config"
	"subtitle-merger/internal/diagnostics"
	"subtitle-merger/internal/domain"
	"subtitle-merger/internal/events"
	"subtitle-merger/internal/logger"
	"subtitle-merger/internal/settings"
	"subtitle-merger/internal/workflow"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// EventName is the runtime event carrying workflow changes to the frontend.
const EventName = "workflow:event"

var pickerTitles = map[domain.Role]string{
	domain.RoleInput:  "Select source directory",
	domain.RoleOutput: "Select output directory",
}

// App wires configuration, settings, the workflow controller, and UI runtime callbacks.
type App struct {
	Config      *config.Config
	Settings    *settings.Store
	Workflow    *workflow.Controller
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	log         *logrus.Logger
	events      *events.Bus
	state       *appState

	mu         sync.Mutex
	runtimeCtx context.Context
}

// New builds the application from environment configuration.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)
	client, err := batch.NewClient(cfg.BackendURL, batch.NewHTTPClient(cfg.RequestTimeout))
	if err != nil {
		return nil, fmt.Errorf("build batch client: %w", err)
	}

	app := newApp(cfg, settings.NewFileStore(cfg.DataDir), client, log)
	app.assets = assets
	app.Diagnostics = app.checker.Run(context.Background(), app.diagnosticsInput())
	for _, item := range app.Diagnostics.Items {
		if item.Status != domain.DiagnosticStatusPass {
			log.WithField("check", item.ID).WithField("status", item.Status).Warn(item.Message)
		}
	}

	log.WithField("backend", client.URL()).WithField("settings", cfg.SettingsPath()).Info("app initialized")
	return app, nil
}

// newApp assembles an App around an already-built store and processor.
func newApp(cfg *config.Config, store *settings.Store, processor workflow.Processor, log *logrus.Logger) *App {
	app := &App{
		Config:   cfg,
		Settings: store,
		checker:  diagnostics.NewChecker(),
		log:      log,
		events:   events.NewBus(500),
		state:    &appState{},
	}

	app.Workflow = workflow.NewController(workflow.Deps{
		Settings:  store,
		AppState:  app.state,
		Picker:    &dialogPicker{app: app},
		Processor: processor,
		Sink:      logger.NewSink(log),
		Publisher: &runtimePublisher{app: app},
		Log:       log,
	})
	return app
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
		Title:       "Subtitle Merger",
		Width:       720,
		Height:      520,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown: func(ctx context.Context) {
			a.mu.Lock()
			defer a.mu.Unlock()
			a.runtimeCtx = nil
		},
		Bind: []interface{}{a},
	})
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// GetView returns everything the main page renders.
func (a *App) GetView() (workflow.View, error) {
	return a.Workflow.View()
}

// SelectInput opens the native directory picker for the source directory.
func (a *App) SelectInput() (string, error) {
	return a.Workflow.SelectDirectory(context.Background(), domain.RoleInput)
}

// SelectOutput opens the native directory picker for the output directory.
func (a *App) SelectOutput() (string, error) {
	return a.Workflow.SelectDirectory(context.Background(), domain.RoleOutput)
}

// SetMode persists "merge" or "remove".
func (a *App) SetMode(mode string) error {
	parsed, err := domain.ParseMode(mode)
	if err != nil {
		return err
	}
	return a.Workflow.SetMode(parsed)
}

// ToggleSameAsSource flips the output-same-as-source option.
func (a *App) ToggleSameAsSource() (bool, error) {
	return a.Workflow.ToggleSameAsSource()
}

// SetOption persists a boolean processing option such as isRemoveAds.
func (a *App) SetOption(key string, value bool) error {
	return a.Workflow.SetOption(key, value)
}

// SetPreferredLanguage persists the language whose track plays by default.
func (a *App) SetPreferredLanguage(lang string) error {
	return a.Workflow.SetPreferredLanguage(strings.TrimSpace(lang))
}

// SupportedLanguages lists languages accepted by SetPreferredLanguage.
func (a *App) SupportedLanguages() []string {
	return append([]string(nil), domain.SupportedLanguages...)
}

// SubmitBatch starts processing and returns once loading is shown.
func (a *App) SubmitBatch() error {
	return a.Workflow.Start(context.Background())
}

// DismissDialog hides the result dialog.
func (a *App) DismissDialog() {
	a.Workflow.DismissDialog()
}

// Events returns workflow events with sequence greater than sinceSeq.
func (a *App) Events(sinceSeq int64) []events.Event {
	return a.events.Since(sinceSeq)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reruns all checks.
func (a *App) RefreshDiagnostics() domain.DiagnosticReport {
	report := a.checker.Run(context.Background(), a.diagnosticsInput())

	a.mu.Lock()
	a.Diagnostics = report
	a.mu.Unlock()
	return report
}

func (a *App) diagnosticsInput() diagnostics.Input {
	return diagnostics.Input{
		DataDir:    a.Config.DataDir,
		BackendURL: a.Config.BackendURL,
		Settings:   a.Settings,
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

// appState holds the directories chosen in this session.
type appState struct {
	mu    sync.Mutex
	state domain.AppState
}

func (s *appState) AppState() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *appState) UpdateAppState(fn func(*domain.AppState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// dialogPicker opens the native directory dialog. Cancel yields "".
type dialogPicker struct {
	app *App
}

func (p *dialogPicker) PickDirectory(_ context.Context, role domain.Role) (string, error) {
	ctx, err := p.app.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenDirectoryDialog(ctx, wailsruntime.OpenDialogOptions{
		Title: pickerTitles[role],
	})
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(path), nil
}

// runtimePublisher stores event history and emits runtime push notifications.
type runtimePublisher struct {
	app *App
}

func (p *runtimePublisher) Publish(event events.Event) events.Event {
	published := p.app.events.Publish(event)

	p.app.mu.Lock()
	ctx := p.app.runtimeCtx
	p.app.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, EventName, published)
	}
	return published
}
