package domain

// Config mirrors ~/.qacraft/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Jira                JiraSettings      `yaml:"jira"`
	Storage             StorageSettings   `yaml:"storage"`
	Models              []ModelDefinition `yaml:"models"`
}

// Preferences captures user level toggles.
type Preferences struct {
	DefaultModel   string `yaml:"default_model"`
	TimeoutSeconds int    `yaml:"timeout"`
	FirstName      string `yaml:"first_name"`
	LastName       string `yaml:"last_name"`
}

// JiraSettings points at the issue tracker instance. Credentials live in the
// encrypted credential store, not here.
type JiraSettings struct {
	BaseURL string `yaml:"base_url"`
}

// StorageSettings locates the on-disk caches and the history database.
type StorageSettings struct {
	TestCaseDir  string `yaml:"test_case_dir"`
	CodeDir      string `yaml:"code_dir"`
	RecordingDir string `yaml:"recording_dir"`
	SessionDir   string `yaml:"session_dir"`
	HistoryDB    string `yaml:"history_db"`
}

// FindModel looks up a model definition by name.
func (c Config) FindModel(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}
