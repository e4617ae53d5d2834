package config

// DefaultFileName is the config file looked up in the current directory.
const DefaultFileName = "pip_upgrade.toml"

// Runner backend names.
const (
	RunnerCompose = "compose"
	RunnerLocal   = "local"
)

// Config is the full tool configuration. It is built once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Main     MainConfig     `toml:"main"`
	Registry RegistryConfig `toml:"registry"`
	Compose  ComposeConfig  `toml:"compose"`
	Local    LocalConfig    `toml:"local"`
}

// MainConfig holds the settings every run uses.
type MainConfig struct {
	WorkingDirectory string   `toml:"working_directory" comment:"Directory relative paths are resolved against."`
	RequirementsFile string   `toml:"requirements_file" comment:"Requirements file to upgrade."`
	IgnoreLineStarts []string `toml:"ignore_line_starts" comment:"Lines starting with any of these are copied through untouched."`
	TestCommand      string   `toml:"test_command" comment:"Command that runs the test suite; exit code 0 means the upgrade works."`
	Runner           string   `toml:"runner" comment:"Where tests run: compose or local."`
	LogFile          string   `toml:"log_file" comment:"Log file written next to console output; empty disables it."`
	LogLevel         string   `toml:"log_level" comment:"debug, info, warn, or error."`
}

// RegistryConfig configures the package index client.
type RegistryConfig struct {
	URLPattern        string  `toml:"url_pattern" comment:"JSON API endpoint; {package} is replaced by the package name."`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	Retries           int     `toml:"retries" comment:"Retries on network errors and 5xx responses."`
	RequestsPerSecond float64 `toml:"requests_per_second" comment:"Request pacing; 0 disables it."`
	// PrefetchConcurrency bounds the lookups made before the first probe. Off
	// by default so a run looks packages up one at a time, in manifest order.
	PrefetchConcurrency int `toml:"prefetch_concurrency" comment:"Opt-in: parallel release lookups before the run starts (0, the default, looks each package up when its line is reached). Probes still run one at a time."`
}

// ComposeConfig configures the compose runner.
type ComposeConfig struct {
	Command            []string `toml:"command" comment:"Compose executable, e.g. [\"docker\", \"compose\"]."`
	ProjectDirectory   string   `toml:"project_directory" comment:"Compose project directory; empty means the working directory."`
	RequirementsFile   string   `toml:"requirements_file" comment:"Requirements path inside the container; empty means main.requirements_file."`
	Service            string   `toml:"service" comment:"Compose service the tests run in."`
	WorkDir            string   `toml:"work_dir" comment:"Working directory inside the container; empty keeps the image default."`
	UpTimeoutSeconds   int      `toml:"up_timeout_seconds"`
	ExecTimeoutSeconds int      `toml:"exec_timeout_seconds"`
}

// LocalConfig configures the local runner.
type LocalConfig struct {
	InstallCommand string `toml:"install_command" comment:"Install command; {requirements} is replaced by the quoted requirements path."`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Main: MainConfig{
			WorkingDirectory: "./",
			RequirementsFile: "requirements.txt",
			IgnoreLineStarts: []string{"#", "-r", "https://", "http://", "git+"},
			TestCommand:      "python manage.py test --failfast --keepdb --no-input",
			Runner:           RunnerCompose,
			LogFile:          "pip_upgrade.log",
			LogLevel:         "info",
		},
		Registry: RegistryConfig{
			URLPattern:          "https://pypi.org/pypi/{package}/json",
			TimeoutSeconds:      10,
			Retries:             1,
			RequestsPerSecond:   5,
			PrefetchConcurrency: 0,
		},
		Compose: ComposeConfig{
			Command:            []string{"docker-compose"},
			Service:            "django",
			UpTimeoutSeconds:   20,
			ExecTimeoutSeconds: 600,
		},
		Local: LocalConfig{
			InstallCommand: "pip install -r {requirements}",
			TimeoutSeconds: 600,
		},
	}
}

// Overrides carries command-line values; empty fields keep the configured value.
type Overrides struct {
	WorkingDirectory        string
	RequirementsFile        string
	Runner                  string
	TestCommand             string
	LogLevel                string
	ComposeProjectDirectory string
	ComposeRequirementsFile string
	ComposeService          string
	ComposeWorkDir          string
}

// Apply copies every non-empty override into c.
func (c *Config) Apply(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Main.WorkingDirectory, o.WorkingDirectory)
	set(&c.Main.RequirementsFile, o.RequirementsFile)
	set(&c.Main.Runner, o.Runner)
	set(&c.Main.TestCommand, o.TestCommand)
	set(&c.Main.LogLevel, o.LogLevel)
	set(&c.Compose.ProjectDirectory, o.ComposeProjectDirectory)
	set(&c.Compose.RequirementsFile, o.ComposeRequirementsFile)
	set(&c.Compose.Service, o.ComposeService)
	set(&c.Compose.WorkDir, o.ComposeWorkDir)
}
