package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"subtitle-merger/internal/batch"
	"subtitle-merger/internal/diagnostics"
	"subtitle-merger/internal/domain"
	"subtitle-merger/internal/logger"
	"subtitle-merger/internal/workflow"
)

var (
	errBatchFailed   = errors.New("batch could not be processed")
	errIncomplete    = errors.New("an output directory is required unless --same-as-source is set")
	errChecksFailed  = errors.New("one or more checks failed")
	errSettingMissed = errors.New("setting is not set")
)

// SubmitCmd runs one batch through the workflow controller.
type SubmitCmd struct {
	Input          string `short:"i" required:"" type:"existingdir" help:"Source directory holding videos and subtitles"`
	Output         string `short:"o" type:"path" help:"Output directory"`
	Mode           string `short:"m" help:"Processing mode: merge or remove (saved for next runs)"`
	SameAsSource   bool   `xor:"output-mode" help:"Write output next to each source video (saved)"`
	SeparateOutput bool   `xor:"output-mode" help:"Write output to --output (saved)"`
	Language       string `help:"Preferred subtitle language made default (saved)"`
}

// Run applies requested settings, selects directories and submits once.
func (c *SubmitCmd) Run(e *env) error {
	client, err := batch.NewClient(e.cfg.BackendURL, batch.NewHTTPClient(e.cfg.RequestTimeout))
	if err != nil {
		return err
	}

	ctrl := workflow.NewController(workflow.Deps{
		Settings:  e.store,
		AppState:  &sessionState{},
		Picker:    flagPicker{domain.RoleInput: c.Input, domain.RoleOutput: c.Output},
		Processor: client,
		Sink:      logger.NewSink(e.log),
		Log:       e.log,
	})

	if err := c.applySettings(ctrl); err != nil {
		return err
	}

	ctx := context.Background()
	if _, err := ctrl.SelectDirectory(ctx, domain.RoleInput); err != nil {
		return err
	}
	if _, err := ctrl.SelectDirectory(ctx, domain.RoleOutput); err != nil {
		return err
	}

	view, err := ctrl.View()
	if err != nil {
		return err
	}
	if !view.SubmitEnabled {
		return errIncomplete
	}
	fmt.Fprintf(e.out, "%s: %s -> %s\n", view.Labels.ButtonTitle, view.Input, view.DisplayedOutput)

	outcome, err := ctrl.Submit(ctx)
	if err != nil {
		return err
	}

	dialog := workflow.DialogFor(outcome)
	fmt.Fprintf(e.out, "%s: %s\n", dialog.Title, dialog.Text)
	if outcome.Failed() {
		return errBatchFailed
	}
	return nil
}

func (c *SubmitCmd) applySettings(ctrl *workflow.Controller) error {
	if c.Mode != "" {
		mode, err := domain.ParseMode(c.Mode)
		if err != nil {
			return err
		}
		if err := ctrl.SetMode(mode); err != nil {
			return err
		}
	}

	if c.SameAsSource || c.SeparateOutput {
		view, err := ctrl.View()
		if err != nil {
			return err
		}
		if view.SameAsSource != c.SameAsSource {
			if _, err := ctrl.ToggleSameAsSource(); err != nil {
				return err
			}
		}
	}

	if c.Language != "" {
		if err := ctrl.SetPreferredLanguage(c.Language); err != nil {
			return err
		}
	}
	return nil
}

// SettingsCmd groups settings subcommands.
type SettingsCmd struct {
	List      SettingsListCmd      `cmd:"" default:"1" help:"Print all saved settings"`
	Get       SettingsGetCmd       `cmd:"" help:"Print one saved setting"`
	Set       SettingsSetCmd       `cmd:"" help:"Save a setting; VALUE is parsed as JSON, else kept as text"`
	Rm        SettingsRmCmd        `cmd:"" help:"Delete a saved setting"`
	Reset     SettingsResetCmd     `cmd:"" help:"Replace saved settings with an empty set"`
	Languages SettingsLanguagesCmd `cmd:"" help:"List accepted preferred languages"`
}

type SettingsListCmd struct{}

func (c *SettingsListCmd) Run(e *env) error {
	snapshot, err := e.store.Snapshot()
	if err != nil {
		return err
	}
	return printJSON(e, snapshot)
}

type SettingsGetCmd struct {
	Key string `arg:"" help:"Setting key"`
}

func (c *SettingsGetCmd) Run(e *env) error {
	value, ok, err := e.store.Get(c.Key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s", errSettingMissed, c.Key)
	}
	return printJSON(e, value)
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting key"`
	Value string `arg:"" help:"Setting value"`
}

func (c *SettingsSetCmd) Run(e *env) error {
	value := parseValue(c.Value)
	if c.Key == domain.SettingPreferredLanguage {
		lang, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s must be text", c.Key)
		}
		return e.store.SetPreferredLanguage(lang)
	}
	return e.store.Set(c.Key, value)
}

type SettingsRmCmd struct {
	Key string `arg:"" help:"Setting key"`
}

func (c *SettingsRmCmd) Run(e *env) error {
	return e.store.Remove(c.Key)
}

type SettingsResetCmd struct{}

func (c *SettingsResetCmd) Run(e *env) error {
	if err := e.store.Reset(); err != nil {
		return err
	}
	e.log.WithField("path", e.cfg.SettingsPath()).Info("settings reset")
	return nil
}

type SettingsLanguagesCmd struct{}

func (c *SettingsLanguagesCmd) Run(e *env) error {
	for _, lang := range domain.SupportedLanguages {
		fmt.Fprintln(e.out, lang)
	}
	return nil
}

// DoctorCmd prints the diagnostics report.
type DoctorCmd struct{}

func (c *DoctorCmd) Run(e *env) error {
	report := diagnostics.NewChecker().Run(context.Background(), diagnostics.Input{
		DataDir:    e.cfg.DataDir,
		BackendURL: e.cfg.BackendURL,
		Settings:   e.store,
	})

	for _, item := range report.Items {
		fmt.Fprintf(e.out, "[%s] %s: %s\n", item.Status, item.Name, item.Message)
		if item.Hint != "" {
			fmt.Fprintf(e.out, "       %s\n", item.Hint)
		}
	}
	if report.HasFailures {
		return errChecksFailed
	}
	return nil
}

// parseValue decodes raw as JSON, falling back to the raw text.
func parseValue(raw string) any {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return raw
	}
	return value
}

func printJSON(e *env, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(e.out, string(data))
	return err
}

// flagPicker answers directory requests from command-line flags.
type flagPicker map[domain.Role]string

func (p flagPicker) PickDirectory(_ context.Context, role domain.Role) (string, error) {
	path := p[role]
	if path == "" {
		return "", nil
	}
	return filepath.Abs(path)
}

// sessionState holds directories for a single command run.
type sessionState struct {
	mu    sync.Mutex
	state domain.AppState
}

func (s *sessionState) AppState() domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *sessionState) UpdateAppState(fn func(*domain.AppState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}
