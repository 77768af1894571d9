package wizards

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"gopkg.in/yaml.v3"

	"github.com/vvka-141/vset/internal/config"
	"github.com/vvka-141/vset/pkg/vset"
)

// SettingsResult holds the result of the project settings wizard.
type SettingsResult struct {
	Cancelled    bool
	BaseURL      string
	Listen       string
	MetadataFile string
	Timeout      string
}

// Save merges the collected settings into vset.yaml in dir, preserving any
// connection block already written there.
func (r SettingsResult) Save(dir string) error {
	cfg, err := config.Load(dir)
	if err != nil {
		cfg = &config.ProjectConfig{}
	}

	cfg.BaseURL = r.BaseURL
	cfg.Listen = r.Listen
	cfg.MetadataFile = r.MetadataFile
	cfg.Timeout = r.Timeout

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, config.ConfigFileName), data, 0644)
}

// SettingsWizard collects the non-connection half of vset.yaml: the
// permanent-URL prefix, the lookup service bind address, the metadata
// side-file and the ingestion timeout.
type SettingsWizard struct {
	step settingsStep

	inputs []textinput.Model
	focus  int

	validationErr string

	result SettingsResult

	width  int
	height int

	styles wizardStyles
	keys   wizardKeys
}

type settingsStep int

const (
	settingsStepForm settingsStep = iota
	settingsStepReview
	settingsStepDone
)

// Input indices.
const (
	settingsInputBaseURL = iota
	settingsInputListen
	settingsInputMetadata
	settingsInputTimeout
)

// NewSettingsWizard creates a new project settings wizard.
func NewSettingsWizard() SettingsWizard {
	baseURL := textinput.New()
	baseURL.SetValue(vset.DefaultBaseURL)
	baseURL.CharLimit = 256
	baseURL.Width = 40

	listen := textinput.New()
	listen.SetValue(vset.DefaultListen)
	listen.CharLimit = 64
	listen.Width = 20

	metadata := textinput.New()
	metadata.SetValue(vset.DefaultMetadataFile)
	metadata.CharLimit = 256
	metadata.Width = 40

	timeout := textinput.New()
	timeout.SetValue("10m")
	timeout.CharLimit = 16
	timeout.Width = 10

	return SettingsWizard{
		step:   settingsStepForm,
		inputs: []textinput.Model{baseURL, listen, metadata, timeout},
		width:  80,
		height: 24,
		styles: defaultWizardStyles(),
		keys:   defaultWizardKeys(),
	}
}

// Init implements tea.Model.
func (w SettingsWizard) Init() tea.Cmd {
	return w.inputs[0].Focus()
}

// Update implements tea.Model.
func (w SettingsWizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.width = msg.Width
		w.height = msg.Height
		return w, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			w.result.Cancelled = true
			return w, tea.Quit
		}

		switch w.step {
		case settingsStepForm:
			return w.updateForm(msg)
		case settingsStepReview:
			return w.updateReview(msg)
		}
	}

	return w, nil
}

func (w SettingsWizard) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Tab), msg.String() == "down":
		if w.focus < len(w.inputs)-1 {
			w.inputs[w.focus].Blur()
			w.focus++
			return w, w.inputs[w.focus].Focus()
		}
	case msg.String() == "shift+tab", msg.String() == "up":
		if w.focus > 0 {
			w.inputs[w.focus].Blur()
			w.focus--
			return w, w.inputs[w.focus].Focus()
		}
	case key.Matches(msg, w.keys.Select):
		if err := w.validate(); err != nil {
			w.validationErr = err.Error()
			return w, nil
		}
		w.validationErr = ""
		w.buildResult()
		w.step = settingsStepReview
	case key.Matches(msg, w.keys.Back):
		w.result.Cancelled = true
		return w, tea.Quit
	default:
		var cmd tea.Cmd
		w.inputs[w.focus], cmd = w.inputs[w.focus].Update(msg)
		return w, cmd
	}
	return w, nil
}

func (w SettingsWizard) validate() error {
	if t := w.inputs[settingsInputTimeout].Value(); t != "" {
		if _, err := time.ParseDuration(t); err != nil {
			return fmt.Errorf("invalid timeout %q (use forms like 30s, 5m, 1h)", t)
		}
	}
	return nil
}

func (w *SettingsWizard) buildResult() {
	w.result.BaseURL = w.inputs[settingsInputBaseURL].Value()
	w.result.Listen = w.inputs[settingsInputListen].Value()
	w.result.MetadataFile = w.inputs[settingsInputMetadata].Value()
	w.result.Timeout = w.inputs[settingsInputTimeout].Value()
}

func (w SettingsWizard) updateReview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, w.keys.Select):
		w.step = settingsStepDone
		return w, tea.Quit
	case key.Matches(msg, w.keys.Back):
		w.step = settingsStepForm
		return w, w.inputs[w.focus].Focus()
	}
	return w, nil
}

// View implements tea.Model.
func (w SettingsWizard) View() string {
	var b strings.Builder

	b.WriteString(w.styles.Title.Render("vset - Project Settings"))
	b.WriteString("\n")

	switch w.step {
	case settingsStepForm:
		b.WriteString(w.viewForm())
	case settingsStepReview:
		b.WriteString(w.viewReview())
	}

	return b.String()
}

func (w SettingsWizard) viewForm() string {
	var b strings.Builder

	b.WriteString(w.styles.Subtitle.Render("Project Settings"))
	b.WriteString("\n\n")

	labels := []string{"Base URL:", "Listen:", "Metadata file:", "Timeout:"}
	hints := map[int]string{
		settingsInputBaseURL:  "prefix for permanent URLs: {base_url}/terms/{accession}",
		settingsInputListen:   "bind address of 'vset serve'",
		settingsInputMetadata: "YAML side-file with ValueSet definitions",
		settingsInputTimeout:  "global timeout for an ingestion run",
	}

	for i := range w.inputs {
		b.WriteString(w.styles.Label.Render(labels[i]))
		b.WriteString("\n")
		if i == w.focus {
			b.WriteString(w.styles.FocusedBox.Render(w.inputs[i].View()))
		} else {
			b.WriteString(w.inputs[i].View())
		}
		b.WriteString("\n")
		if hint, ok := hints[i]; ok && i == w.focus {
			b.WriteString(w.styles.Description.Render(hint))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if w.validationErr != "" {
		b.WriteString(w.styles.Error.Render("Error: " + w.validationErr))
		b.WriteString("\n\n")
	}

	b.WriteString(w.styles.Help.Render("tab/↓ next • shift+tab/↑ prev • enter continue • esc cancel"))

	return b.String()
}

func (w SettingsWizard) viewReview() string {
	var b strings.Builder

	b.WriteString(w.styles.Subtitle.Render("Review Settings"))
	b.WriteString("\n\n")

	cfg := config.ProjectConfig{
		BaseURL:      w.result.BaseURL,
		Listen:       w.result.Listen,
		MetadataFile: w.result.MetadataFile,
		Timeout:      w.result.Timeout,
	}

	yamlBytes, _ := yaml.Marshal(cfg)
	for _, line := range strings.Split(string(yamlBytes), "\n") {
		b.WriteString(w.styles.Description.Render("  " + line))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(w.styles.Help.Render("enter save to vset.yaml • esc go back"))

	return b.String()
}

// Result returns the wizard result.
func (w SettingsWizard) Result() SettingsResult {
	return w.result
}

// RunSettingsWizard executes the project settings wizard.
func RunSettingsWizard() (SettingsResult, error) {
	wizard := NewSettingsWizard()
	p := tea.NewProgram(wizard, tea.WithAltScreen())

	model, err := p.Run()
	if err != nil {
		return SettingsResult{Cancelled: true}, err
	}

	return model.(SettingsWizard).Result(), nil
}
