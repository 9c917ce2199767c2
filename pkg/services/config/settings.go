package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/de-tools/trade-atlas/pkg/services/trade"
)

const (
	KeyInput          = "input"
	KeyClassification = "classification"
	KeyOutput         = "output"
	KeyYear           = "year"
	KeyCategory       = "category"
	KeyCodeDigits     = "code_digits"
	KeyBlocFile       = "bloc_file"
	KeyWorkers        = "workers"
	KeyLogLevel       = "log_level"
	KeyHistoryDB      = "history_db"
	KeyServerAddr     = "server.addr"
	KeyReportTimeout  = "server.report_timeout"
	KeyCacheTTL       = "server.cache_ttl"
)

type ServerSettings struct {
	Addr          string        `mapstructure:"addr" validate:"required"`
	ReportTimeout time.Duration `mapstructure:"report_timeout" validate:"gt=0"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" validate:"gte=0"`
}

type Settings struct {
	Input          string         `mapstructure:"input" validate:"required"`
	Classification string         `mapstructure:"classification" validate:"required"`
	Output         string         `mapstructure:"output"`
	Year           string         `mapstructure:"year" validate:"required,len=4,numeric"`
	Category       string         `mapstructure:"category" validate:"required"`
	CodeDigits     int            `mapstructure:"code_digits" validate:"min=1,max=10"`
	BlocFile       string         `mapstructure:"bloc_file"`
	Workers        int            `mapstructure:"workers" validate:"min=1"`
	LogLevel       string         `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	HistoryDB      string         `mapstructure:"history_db"`
	Server         ServerSettings `mapstructure:"server"`
}

// Criteria returns the row filter rules for these settings.
func (s *Settings) Criteria() trade.Criteria {
	return trade.Criteria{
		YearPrefix: s.Year,
		Category:   s.Category,
		CodeDigits: s.CodeDigits,
	}
}

type binding struct {
	key   string
	flag  string
	env   string
	usage string
	def   any
}

var bindings = []binding{
	{KeyInput, "input", "TRADE_DATA_PATH", "trade ledger location (path, file://, s3://, gs://, azblob://)", "output_csv_full.csv"},
	{KeyClassification, "classification", "GOODS_CLASS_PATH", "classification lookup location", "goods_classification.csv"},
	{KeyOutput, "output", "TRADE_RESULTS_PATH", "result file (.csv or .xlsx), defaults to trade_report_<year>.csv", ""},
	{KeyYear, "year", "TRADE_YEAR", "reporting year, matched as a time_ref prefix", trade.DefaultYearPrefix},
	{KeyCategory, "category", "TRADE_CATEGORY", "product category to include", trade.DefaultCategory},
	{KeyCodeDigits, "code-digits", "TRADE_CODE_DIGITS", "digits in a classification code", trade.DefaultCodeDigits},
	{KeyBlocFile, "bloc-file", "TRADE_BLOC_FILE", "INI coverage profile replacing the built-in Norway and EU-27 setup", ""},
	{KeyWorkers, "workers", "TRADE_WORKERS", "aggregation workers", 1},
	{KeyLogLevel, "log-level", "TRADE_LOG_LEVEL", "log level (trace, debug, info, warn, error)", "info"},
	{KeyHistoryDB, "history-db", "TRADE_HISTORY_DB", "DuckDB file recording completed runs, disabled when empty", ""},
	{KeyServerAddr, "addr", "TRADE_SERVER_ADDR", "HTTP listen address", "127.0.0.1:8080"},
	{KeyReportTimeout, "report-timeout", "TRADE_REPORT_TIMEOUT", "upper bound for one report generation", 2 * time.Minute},
	{KeyCacheTTL, "cache-ttl", "TRADE_CACHE_TTL", "how long a generated report is served from cache", 10 * time.Minute},
}

// Loader resolves Settings with the precedence flag > environment > config
// file > default.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		_ = v.BindEnv(b.key, b.env)
	}
	return &Loader{v: v}
}

// BindFlags registers one flag per setting on fs. Only flags set explicitly on
// the command line take precedence over the environment.
func (l *Loader) BindFlags(fs *pflag.FlagSet, keys ...string) error {
	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[k] = true
	}
	for _, b := range bindings {
		if len(keys) > 0 && !wanted[b.key] {
			continue
		}
		if fs.Lookup(b.flag) == nil {
			switch def := b.def.(type) {
			case int:
				fs.Int(b.flag, def, b.usage)
			case time.Duration:
				fs.Duration(b.flag, def, b.usage)
			default:
				fs.String(b.flag, fmt.Sprint(def), b.usage)
			}
		}
		if err := l.v.BindPFlag(b.key, fs.Lookup(b.flag)); err != nil {
			return fmt.Errorf("bind flag %s: %w", b.flag, err)
		}
	}
	return nil
}

// Override pins key to value above every other source, e.g. a positional
// argument.
func (l *Loader) Override(key string, value any) {
	l.v.Set(key, value)
}

// Load reads the optional config file, unmarshals and validates the result.
func (l *Loader) Load(configFile string) (*Settings, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var s Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	s.Category = strings.TrimSpace(s.Category)
	s.LogLevel = strings.ToLower(strings.TrimSpace(s.LogLevel))
	if strings.TrimSpace(s.Output) == "" {
		s.Output = fmt.Sprintf("trade_report_%s.csv", s.Year)
	}

	if err := Validate(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports the first invalid field by its setting name.
func Validate(s *Settings) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate settings: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q (%v)", settingName(fe), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
}

func settingName(fe validator.FieldError) string {
	switch fe.StructNamespace() {
	case "Settings.Input":
		return KeyInput
	case "Settings.Classification":
		return KeyClassification
	case "Settings.Year":
		return KeyYear
	case "Settings.Category":
		return KeyCategory
	case "Settings.CodeDigits":
		return KeyCodeDigits
	case "Settings.Workers":
		return KeyWorkers
	case "Settings.LogLevel":
		return KeyLogLevel
	case "Settings.Server.Addr":
		return KeyServerAddr
	case "Settings.Server.ReportTimeout":
		return KeyReportTimeout
	case "Settings.Server.CacheTTL":
		return KeyCacheTTL
	}
	return fe.Field()
}

// LoadDotEnv loads a .env file when present. Variables already set in the
// environment are left untouched.
func LoadDotEnv(paths ...string) error {
	if err := godotenv.Load(paths...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}
