package config

// DefaultFile is looked up in the working directory when --config is not given.
const DefaultFile = "repdoc.yaml"

// DefaultBlockedCourses are the academic years whose assignment is closed.
var DefaultBlockedCourses = []string{
	"2019-2020",
	"2020-2021",
	"2021-2022",
	"2022-2023",
	"2023-2024",
	"2024-2025",
}

func DefaultConfig() *Config {
	return &Config{
		OutputDir: ".",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Courses: CoursesConfig{
			Blocked: append([]string(nil), DefaultBlockedCourses...),
		},
		Report: ReportConfig{
			Title: "Reparto Docente FTA",
			PDF:   true,
		},
		Sync: SyncConfig{
			Command: "rsync",
			Args:    []string{"-arv", "--delete"},
			Target:  "guaix.fis.ucm.es:public_html/repdoc",
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
		UI: UIConfig{
			Theme: "repdoc",
		},
	}
}
