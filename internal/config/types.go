package config

// Config is the top-level repdoc configuration, corresponding to repdoc.yaml.
type Config struct {
	OutputDir            string        `yaml:"output_dir" koanf:"output_dir"`
	DBPath               string        `yaml:"db_path" koanf:"db_path"`
	Log                  LogConfig     `yaml:"log" koanf:"log"`
	Courses              CoursesConfig `yaml:"courses" koanf:"courses"`
	WarningCollaborators float64       `yaml:"warning_collaborators" koanf:"warning_collaborators"`
	Report               ReportConfig  `yaml:"report" koanf:"report"`
	Sync                 SyncConfig    `yaml:"sync" koanf:"sync"`
	Serve                ServeConfig   `yaml:"serve" koanf:"serve"`
	UI                   UIConfig      `yaml:"ui" koanf:"ui"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"`
}

// CoursesConfig lists academic years that are closed to changes.
type CoursesConfig struct {
	Blocked []string `yaml:"blocked" koanf:"blocked"`
}

type ReportConfig struct {
	Title string `yaml:"title" koanf:"title"`
	// NotesFile is an optional markdown file shown on the degree summary page.
	NotesFile string `yaml:"notes_file" koanf:"notes_file"`
	PDF       bool   `yaml:"pdf" koanf:"pdf"`
}

// SyncConfig controls the rsync upload of the generated files.
type SyncConfig struct {
	Enabled bool     `yaml:"enabled" koanf:"enabled"`
	Command string   `yaml:"command" koanf:"command"`
	Args    []string `yaml:"args" koanf:"args"`
	Target  string   `yaml:"target" koanf:"target"`
}

type ServeConfig struct {
	Addr string `yaml:"addr" koanf:"addr"`
}

type UIConfig struct {
	Theme string `yaml:"theme" koanf:"theme"`
}
