// Package config resolves runtime settings from flags, the environment and an
// optional .env file, in that order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/csheth/portfolio-console/internal/agent"
	"github.com/csheth/portfolio-console/internal/speech"
)

// Environment keys.
const (
	EnvAPIURL        = "AGENT_API_URL"
	EnvSessionID     = "PORTFOLIO_SESSION_ID"
	EnvAudio         = "PORTFOLIO_AUDIO"
	EnvSpeechCommand = "PORTFOLIO_SPEECH_CMD"
	EnvPlayer        = "PORTFOLIO_PLAYER"
	EnvLogFile       = "PORTFOLIO_LOG_FILE"
)

// Config is the validated runtime configuration.
type Config struct {
	APIURL         string `validate:"required,agenturl"`
	SessionID      string `validate:"required,max=128"`
	Audio          bool
	SpeechCommand  string
	Continuous     bool
	SilenceTimeout time.Duration `validate:"gt=0"`
	Player         string
	LogFile        string
	Debug          bool
	NoAltScreen    bool
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid configuration: " + strings.Join(e.Problems, "; ")
}

// Load parses args (without the program name). The .env file named by
// --env-file is optional; a missing file is not an error.
func Load(args []string, output io.Writer) (Config, error) {
	fs := flag.NewFlagSet("portfolio", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}

	envFile := fs.String("env-file", ".env", "optional dotenv file with AGENT_API_URL and friends")
	apiURL := fs.String("api-url", "", "agent backend base URL (default $"+EnvAPIURL+" or "+agent.DefaultBaseURL+")")
	sessionID := fs.String("session", "", "conversation session id (default guest_<uuid>)")
	audio := fs.Bool("audio", false, "start with spoken responses enabled")
	speechCmd := fs.String("speech-cmd", "", "speech-to-text command printing one transcript per line")
	continuous := fs.Bool("continuous", false, "keep listening until a pause instead of stopping after one phrase")
	silence := fs.Duration("silence", speech.DefaultSilenceTimeout, "pause that ends continuous listening")
	player := fs.String("player", "", "audio player command (default: first of ffplay, afplay, paplay, aplay)")
	logFile := fs.String("log-file", "", "diagnostic log path (default in the user cache dir)")
	debug := fs.Bool("debug", false, "log at debug level")
	noAltScreen := fs.Bool("no-alt-screen", false, "disable the alternate screen buffer")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := loadDotenv(*envFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		APIURL:         firstNonEmpty(*apiURL, os.Getenv(EnvAPIURL), agent.DefaultBaseURL),
		SessionID:      firstNonEmpty(*sessionID, os.Getenv(EnvSessionID), NewSessionID()),
		Audio:          *audio || envBool(EnvAudio),
		SpeechCommand:  firstNonEmpty(*speechCmd, os.Getenv(EnvSpeechCommand)),
		Continuous:     *continuous,
		SilenceTimeout: *silence,
		Player:         firstNonEmpty(*player, os.Getenv(EnvPlayer)),
		LogFile:        firstNonEmpty(*logFile, os.Getenv(EnvLogFile), defaultLogFile()),
		Debug:          *debug,
		NoAltScreen:    *noAltScreen,
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.RegisterValidation("agenturl", validateAgentURL); err != nil {
		return err
	}
	err := v.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q (got %v)", fe.Field(), fe.Tag(), fe.Value()))
	}
	return &ValidationError{Problems: problems}
}

// NewSessionID returns a fresh guest session identifier.
func NewSessionID() string {
	return "guest_" + uuid.NewString()
}

func validateAgentURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envBool(key string) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func defaultLogFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "portfolio-console", "console.log")
}
