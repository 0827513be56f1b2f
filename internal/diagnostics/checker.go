package diagnostics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"subtitle-merger/internal/domain"
	"subtitle-merger/internal/settings"
)

const probeTimeout = 3 * time.Second

// SettingsReader is the part of the settings store the checker reads.
type SettingsReader interface {
	Snapshot() (map[string]any, error)
}

// Input is what a diagnostics run inspects.
type Input struct {
	DataDir    string
	BackendURL string
	Settings   SettingsReader
}

// Checker validates local storage and backend reachability.
type Checker struct {
	mkdirAll   func(string, os.FileMode) error
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
	probe      func(ctx context.Context, url string) error
}

// NewChecker builds a checker using real OS and network dependencies.
func NewChecker() *Checker {
	return &Checker{
		mkdirAll:   os.MkdirAll,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
		probe:      httpProbe,
	}
}

// Run executes all checks and returns a combined report.
func (c *Checker) Run(ctx context.Context, in Input) domain.DiagnosticReport {
	items := []domain.DiagnosticItem{
		c.checkDataDir(in.DataDir),
		c.checkSettings(in.Settings),
		c.checkBackend(ctx, in.BackendURL),
	}

	hasFailures := false
	for _, item := range items {
		if item.Status == domain.DiagnosticStatusFail {
			hasFailures = true
			break
		}
	}

	return domain.DiagnosticReport{
		GeneratedAt: time.Now().UTC(),
		HasFailures: hasFailures,
		Items:       items,
	}
}

// checkDataDir validates the settings directory exists and is writable.
func (c *Checker) checkDataDir(dataDir string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "data_dir",
		Name: "Data directory",
	}

	if strings.TrimSpace(dataDir) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Data directory is empty."
		item.Hint = "Set SUBMERGE_DATA_DIR to a writable directory."
		return item
	}

	if err := c.mkdirAll(dataDir, 0o755); err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot create data directory: %s", dataDir)
		item.Hint = "Choose a writable location or adjust filesystem permissions."
		return item
	}

	tmpFile, err := c.createTemp(dataDir, ".write-check-*")
	if err != nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Data directory is not writable: %s", dataDir)
		item.Hint = "Settings cannot be saved until the directory is writable."
		return item
	}

	tmpPath := tmpFile.Name()
	_ = tmpFile.Close()
	_ = c.remove(tmpPath)

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Writable directory: %s", dataDir)
	return item
}

// checkSettings verifies the persisted mapping can be read.
func (c *Checker) checkSettings(reader SettingsReader) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "settings",
		Name: "Saved settings",
	}

	if reader == nil {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Settings store is not configured."
		return item
	}

	snapshot, err := reader.Snapshot()
	switch {
	case errors.Is(err, settings.ErrCorrupt):
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Saved settings are corrupted."
		item.Hint = "Run `subtitlectl settings reset` to start from empty settings."
	case err != nil:
		item.Status = domain.DiagnosticStatusFail
		item.Message = fmt.Sprintf("Cannot read saved settings: %v", err)
		item.Hint = "Check permissions for the data directory."
	default:
		item.Status = domain.DiagnosticStatusPass
		item.Message = fmt.Sprintf("%d saved setting(s)", len(snapshot))
	}
	return item
}

// checkBackend verifies the processing backend answers HTTP requests.
func (c *Checker) checkBackend(ctx context.Context, backendURL string) domain.DiagnosticItem {
	item := domain.DiagnosticItem{
		ID:   "backend",
		Name: "Processing backend",
	}

	if strings.TrimSpace(backendURL) == "" {
		item.Status = domain.DiagnosticStatusFail
		item.Message = "Backend URL is empty."
		item.Hint = "Set SUBMERGE_BACKEND_URL to the address of the processing backend."
		return item
	}

	if err := c.probe(ctx, backendURL); err != nil {
		item.Status = domain.DiagnosticStatusWarn
		item.Message = fmt.Sprintf("Backend not reachable at %s", backendURL)
		item.Hint = "Start the processing backend before submitting a batch."
		return item
	}

	item.Status = domain.DiagnosticStatusPass
	item.Message = fmt.Sprintf("Backend reachable at %s", backendURL)
	return item
}

// httpProbe treats any HTTP response as reachable.
func httpProbe(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// NewCheckerForTests creates a checker with injectable dependencies.
func NewCheckerForTests(
	mkdirAll func(string, os.FileMode) error,
	createTemp func(string, string) (*os.File, error),
	remove func(string) error,
	probe func(ctx context.Context, url string) error,
) *Checker {
	return &Checker{
		mkdirAll:   mkdirAll,
		createTemp: createTemp,
		remove:     remove,
		probe:      probe,
	}
}
