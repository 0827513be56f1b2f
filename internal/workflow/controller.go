// Package workflow coordinates directory selection, mode toggles and the
// single in-flight batch submission.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"subtitle-merger/internal/domain"
	"subtitle-merger/internal/events"
)

var (
	// ErrInvalidRole is returned for a directory role other than input or output.
	ErrInvalidRole = errors.New("invalid directory role")

	// ErrUnknownOption is returned by SetOption for keys that are not boolean options.
	ErrUnknownOption = errors.New("unknown option")
)

// options lists the boolean settings forwarded to the backend as-is.
var options = map[string]bool{
	domain.SettingRemoveAds:               true,
	domain.SettingRemoveExistingSubtitles: true,
}

// Picker asks the user for a directory. An empty path means cancelled.
type Picker interface {
	PickDirectory(ctx context.Context, role domain.Role) (string, error)
}

// Processor performs the remote batch operation.
type Processor interface {
	ProcessBatch(ctx context.Context, req domain.BatchRequest) (domain.BatchResponse, error)
}

// AppStateAccessor reads and updates directories owned by the host container.
type AppStateAccessor interface {
	AppState() domain.AppState
	UpdateAppState(fn func(*domain.AppState))
}

// Settings is the persisted settings surface the controller needs.
type Settings interface {
	Mode() (domain.Mode, error)
	SetMode(mode domain.Mode) error
	SameAsSource() (bool, error)
	SetSameAsSource(same bool) error
	Bool(key string) (bool, error)
	Set(key string, value any) error
	PreferredLanguage() (string, error)
	SetPreferredLanguage(lang string) error
	Snapshot() (map[string]any, error)
}

// Sink receives errors that are recovered locally and never shown verbatim.
type Sink interface {
	Report(op string, err error)
}

// Publisher receives workflow change events.
type Publisher interface {
	Publish(event events.Event) events.Event
}

// Deps are the collaborators of a Controller. Publisher and Log are optional.
type Deps struct {
	Settings  Settings
	AppState  AppStateAccessor
	Picker    Picker
	Processor Processor
	Sink      Sink
	Publisher Publisher
	Log       logrus.FieldLogger
}

// Controller owns the transient workflow state.
type Controller struct {
	settings  Settings
	appState  AppStateAccessor
	picker    Picker
	processor Processor
	sink      Sink
	publisher Publisher
	log       logrus.FieldLogger

	run *runState

	// settingsMu orders this controller's read-modify-write toggles.
	settingsMu sync.Mutex
}

// NewController builds an idle controller.
func NewController(deps Deps) *Controller {
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Controller{
		settings:  deps.Settings,
		appState:  deps.AppState,
		picker:    deps.Picker,
		processor: deps.Processor,
		sink:      deps.Sink,
		publisher: deps.Publisher,
		log:       log,
		run:       newRunState(),
	}
}

// SelectDirectory asks the picker for a directory and stores it under role.
// It returns the chosen path, or "" when the picker was cancelled.
func (c *Controller) SelectDirectory(ctx context.Context, role domain.Role) (string, error) {
	if role != domain.RoleInput && role != domain.RoleOutput {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	path, err := c.picker.PickDirectory(ctx, role)
	if err != nil {
		c.report("select_directory", err)
		return "", fmt.Errorf("pick %s directory: %w", role, err)
	}
	if path == "" {
		return "", nil
	}

	c.appState.UpdateAppState(func(state *domain.AppState) {
		if role == domain.RoleInput {
			state.Input = path
		} else {
			state.Output = path
		}
	})
	c.log.WithField("role", role).WithField("path", path).Debug("directory selected")
	c.publish(events.Event{Type: events.TypeSelection, Role: role, Path: path})
	return path, nil
}

// SetMode persists the processing mode.
func (c *Controller) SetMode(mode domain.Mode) error {
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()

	if err := c.settings.SetMode(mode); err != nil {
		return fmt.Errorf("set mode: %w", err)
	}
	c.publish(events.Event{
		Type:  events.TypeSettings,
		Key:   domain.SettingRemoveSubtitles,
		Value: mode == domain.ModeRemove,
	})
	return nil
}

// ToggleSameAsSource flips isSameAsSource and returns the new value.
func (c *Controller) ToggleSameAsSource() (bool, error) {
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()

	same, err := c.settings.SameAsSource()
	if err != nil {
		return false, fmt.Errorf("read same-as-source: %w", err)
	}
	if err := c.settings.SetSameAsSource(!same); err != nil {
		return false, fmt.Errorf("set same-as-source: %w", err)
	}
	c.publish(events.Event{Type: events.TypeSettings, Key: domain.SettingSameAsSource, Value: !same})
	return !same, nil
}

// SetOption persists one of the boolean options forwarded to the backend.
func (c *Controller) SetOption(key string, value bool) error {
	if !options[key] {
		return fmt.Errorf("%w: %q", ErrUnknownOption, key)
	}

	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()

	if err := c.settings.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	c.publish(events.Event{Type: events.TypeSettings, Key: key, Value: value})
	return nil
}

// SetPreferredLanguage persists the preferred subtitle language, clearing it when empty.
func (c *Controller) SetPreferredLanguage(lang string) error {
	c.settingsMu.Lock()
	defer c.settingsMu.Unlock()

	if err := c.settings.SetPreferredLanguage(lang); err != nil {
		return fmt.Errorf("set preferred language: %w", err)
	}
	c.publish(events.Event{Type: events.TypeSettings, Key: domain.SettingPreferredLanguage, Value: lang})
	return nil
}

// pending is a submission whose request was built when it started.
type pending struct {
	req domain.BatchRequest
	err error
}

// Submit runs one batch and blocks until it completes. It returns
// ErrBatchInFlight, changing nothing, while another submission is loading.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	p, err := c.begin()
	if err != nil {
		return Outcome{}, err
	}
	return c.execute(ctx, p), nil
}

// Start begins one batch and returns once loading is set. The batch then
// completes in the background, even if ctx is cancelled.
func (c *Controller) Start(ctx context.Context) error {
	p, err := c.begin()
	if err != nil {
		return err
	}

	go c.execute(context.WithoutCancel(ctx), p)
	return nil
}

// DismissDialog hides the result dialog. The last title and message stay.
func (c *Controller) DismissDialog() {
	if c.run.dismiss() {
		c.publish(events.Event{Type: events.TypeDialog})
	}
}

// State returns the current run state.
func (c *Controller) State() domain.RunState {
	return c.run.snapshot()
}

// View derives the full display model from current state and settings.
func (c *Controller) View() (View, error) {
	state := c.appState.AppState()

	mode, err := c.settings.Mode()
	if err != nil {
		return View{}, fmt.Errorf("read mode: %w", err)
	}
	same, err := c.settings.SameAsSource()
	if err != nil {
		return View{}, fmt.Errorf("read same-as-source: %w", err)
	}
	removeAds, err := c.settings.Bool(domain.SettingRemoveAds)
	if err != nil {
		return View{}, fmt.Errorf("read %s: %w", domain.SettingRemoveAds, err)
	}
	removeExisting, err := c.settings.Bool(domain.SettingRemoveExistingSubtitles)
	if err != nil {
		return View{}, fmt.Errorf("read %s: %w", domain.SettingRemoveExistingSubtitles, err)
	}
	lang, err := c.settings.PreferredLanguage()
	if err != nil {
		return View{}, fmt.Errorf("read preferred language: %w", err)
	}

	return View{
		Input:                   state.Input,
		Output:                  state.Output,
		DisplayedOutput:         DisplayedOutput(state, same),
		SameAsSource:            same,
		Mode:                    mode,
		Labels:                  LabelsFor(mode),
		SubmitEnabled:           SubmitEnabled(state, same),
		RemoveAds:               removeAds,
		RemoveExistingSubtitles: removeExisting,
		PreferredLanguage:       lang,
		Run:                     c.run.snapshot(),
	}, nil
}

// begin claims the loading slot and snapshots the request.
func (c *Controller) begin() (pending, error) {
	if err := c.run.begin(); err != nil {
		return pending{}, err
	}
	c.publish(events.Event{Type: events.TypeStatus, Loading: true})

	state := c.appState.AppState()
	snapshot, err := c.settings.Snapshot()
	if err != nil {
		return pending{err: fmt.Errorf("snapshot settings: %w", err)}, nil
	}
	return pending{req: domain.BatchRequest{
		Input:    state.Input,
		Output:   state.Output,
		Settings: snapshot,
	}}, nil
}

// execute performs the remote call once and always leaves the loading phase.
func (c *Controller) execute(ctx context.Context, p pending) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Err: fmt.Errorf("batch processor panicked: %v", r)}
		}
		c.finish(outcome)
	}()

	if p.err != nil {
		return Outcome{Err: p.err}
	}

	c.log.WithField("input", p.req.Input).WithField("output", p.req.Output).Info("submitting batch")
	resp, err := c.processor.ProcessBatch(ctx, p.req)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Response: resp}
}

func (c *Controller) finish(outcome Outcome) {
	if outcome.Failed() {
		c.report("submit_batch", outcome.Err)
	} else {
		c.log.WithField("status", outcome.Response.Status).Info("batch completed")
	}

	dialog := DialogFor(outcome)
	if err := c.run.complete(dialog); err != nil {
		c.log.WithError(err).Error("complete batch")
	}
	c.publish(events.Event{Type: events.TypeStatus, Loading: false})
	c.publish(events.Event{Type: events.TypeResult, Title: dialog.Title, Message: dialog.Text})
}

func (c *Controller) report(op string, err error) {
	if c.sink != nil {
		c.sink.Report(op, err)
	}
}

func (c *Controller) publish(event events.Event) {
	if c.publisher != nil {
		c.publisher.Publish(event)
	}
}
