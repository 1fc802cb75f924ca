// Package config provides the service configuration, assembled from
// built-in defaults, an optional JSON file, command-line flags and
// environment variables, in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Options holds the configuration values of the service.
type Options struct {
	// ServerAddress is the HTTP listen address (ip:port).
	ServerAddress string `json:"server_address" yaml:"server_address"`

	// GRPCAddress is the gRPC listen address. Empty disables gRPC.
	GRPCAddress string `json:"grpc_address" yaml:"grpc_address"`

	// DatabaseDSN selects the Postgres registry when set.
	DatabaseDSN string `json:"database_dsn" yaml:"database_dsn"`

	// RedisAddr selects the Redis registry when set and no DSN is given.
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`

	// FilePath selects the journal file registry when no DSN or Redis address is given.
	FilePath string `json:"file_storage_path" yaml:"file_storage_path"`

	// SeedPath is a JSON lines file of links loaded into the registry on start.
	SeedPath string `json:"seed_path" yaml:"seed_path"`

	EnableHTTPS bool     `json:"enable_https" yaml:"enable_https"`
	TLSHosts    []string `json:"tls_hosts" yaml:"tls_hosts"`
	EnablePprof bool     `json:"enable_pprof" yaml:"enable_pprof"`

	// TrustedSubnet (CIDR) restricts the stats endpoints.
	TrustedSubnet string `json:"trusted_subnet" yaml:"trusted_subnet"`

	// AuthSecret signs operator tokens. Empty disables token checks.
	AuthSecret string `json:"auth_secret" yaml:"auth_secret"`

	LogLevel string `json:"log_level" yaml:"log_level"`

	// ClickWorkers is the number of asynchronous click writers.
	// Zero records clicks inline with the request.
	ClickWorkers   int           `json:"click_workers" yaml:"click_workers"`
	ClickQueueSize int           `json:"click_queue_size" yaml:"click_queue_size"`
	ClickTimeout   time.Duration `json:"-" yaml:"click_timeout"`

	// IssueToken, when set, prints an operator token for this subject and exits.
	IssueToken string `json:"-" yaml:"-"`

	// Config is the path of the configuration file, JSON or YAML by extension.
	Config string `json:"-" yaml:"-"`
}

// UnmarshalJSON accepts click_timeout as a Go duration string.
func (o *Options) UnmarshalJSON(b []byte) error {
	type plain Options
	aux := struct {
		*plain
		ClickTimeout string `json:"click_timeout"`
	}{plain: (*plain)(o)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.ClickTimeout != "" {
		d, err := time.ParseDuration(aux.ClickTimeout)
		if err != nil {
			return fmt.Errorf("click_timeout: %w", err)
		}
		o.ClickTimeout = d
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Options {
	return &Options{
		ServerAddress:  "localhost:8080",
		GRPCAddress:    "localhost:3200",
		LogLevel:       "info",
		ClickWorkers:   4,
		ClickQueueSize: 1024,
		ClickTimeout:   3 * time.Second,
	}
}

func bind(fs *flag.FlagSet, o *Options) {
	fs.StringVar(&o.ServerAddress, "a", o.ServerAddress, "HTTP listen address ip:port")
	fs.StringVar(&o.GRPCAddress, "g", o.GRPCAddress, "gRPC listen address, empty to disable")
	fs.StringVar(&o.DatabaseDSN, "d", o.DatabaseDSN, "postgres DSN")
	fs.StringVar(&o.RedisAddr, "r", o.RedisAddr, "redis address or redis:// URL")
	fs.StringVar(&o.FilePath, "f", o.FilePath, "path to the journal file")
	fs.StringVar(&o.SeedPath, "i", o.SeedPath, "JSON lines file of links to load on start")
	fs.BoolVar(&o.EnableHTTPS, "s", o.EnableHTTPS, "serve HTTPS with autocert")
	fs.Func("tls-hosts", "comma separated hosts allowed for autocert", func(v string) error {
		o.TLSHosts = splitList(v)
		return nil
	})
	fs.BoolVar(&o.EnablePprof, "p", o.EnablePprof, "enable pprof")
	fs.StringVar(&o.TrustedSubnet, "t", o.TrustedSubnet, "trusted subnet (CIDR) for stats")
	fs.StringVar(&o.AuthSecret, "k", o.AuthSecret, "operator token secret")
	fs.StringVar(&o.LogLevel, "l", o.LogLevel, "log level")
	fs.IntVar(&o.ClickWorkers, "w", o.ClickWorkers, "asynchronous click writers, 0 for inline accounting")
	fs.IntVar(&o.ClickQueueSize, "q", o.ClickQueueSize, "click queue size")
	fs.DurationVar(&o.ClickTimeout, "click-timeout", o.ClickTimeout, "timeout of one click increment")
	fs.StringVar(&o.IssueToken, "issue-token", o.IssueToken, "print an operator token for the subject and exit")
	fs.StringVar(&o.Config, "c", o.Config, "path to JSON or YAML config file")
}

func newFlagSet(o *Options) *flag.FlagSet {
	fs := flag.NewFlagSet("shortlinks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bind(fs, o)
	return fs
}

// Parse loads .env, then builds Options from os.Args and the environment.
func Parse(logger *zap.Logger) (*Options, error) {
	if err := LoadDotEnv(".env"); err != nil {
		logger.Warn("cannot load .env", zap.Error(err))
	}

	return ParseArgs(os.Args[1:], os.LookupEnv)
}

// LoadDotEnv exports the variables of the given files into the process
// environment without overriding existing ones. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ParseArgs builds Options from args and the lookup function.
func ParseArgs(args []string, lookup func(string) (string, bool)) (*Options, error) {
	// first pass finds the config file
	pre := Default()
	if err := newFlagSet(pre).Parse(args); err != nil {
		return nil, err
	}

	opts := Default()

	cfgPath := pre.Config
	if v, ok := lookup("CONFIG"); ok && v != "" {
		cfgPath = v
	}
	if cfgPath != "" {
		if err := loadFile(cfgPath, opts); err != nil {
			return nil, err
		}
	}

	// second pass applies only the flags given explicitly
	if err := newFlagSet(opts).Parse(args); err != nil {
		return nil, err
	}
	opts.Config = cfgPath

	if err := applyEnv(opts, lookup); err != nil {
		return nil, err
	}

	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func loadFile(path string, o *Options) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(content, o)
	default:
		err = json.Unmarshal(content, o)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(o *Options, lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"SERVER_ADDRESS":    &o.ServerAddress,
		"GRPC_ADDRESS":      &o.GRPCAddress,
		"DATABASE_DSN":      &o.DatabaseDSN,
		"REDIS_ADDR":        &o.RedisAddr,
		"FILE_STORAGE_PATH": &o.FilePath,
		"SEED_PATH":         &o.SeedPath,
		"TRUSTED_SUBNET":    &o.TrustedSubnet,
		"AUTH_SECRET":       &o.AuthSecret,
		"LOG_LEVEL":         &o.LogLevel,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	if v, ok := lookup("ENABLE_HTTPS"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("ENABLE_HTTPS: %w", err)
		}
		o.EnableHTTPS = b
	}
	if v, ok := lookup("TLS_HOSTS"); ok && v != "" {
		o.TLSHosts = splitList(v)
	}

	ints := map[string]*int{
		"CLICK_WORKERS":    &o.ClickWorkers,
		"CLICK_QUEUE_SIZE": &o.ClickQueueSize,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
	}

	if v, ok := lookup("CLICK_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CLICK_TIMEOUT: %w", err)
		}
		o.ClickTimeout = d
	}

	return nil
}

// Validate reports the first inconsistent option.
func (o *Options) Validate() error {
	if o.ServerAddress == "" {
		return errors.New("server address must not be empty")
	}
	if o.ClickWorkers < 0 {
		return fmt.Errorf("click workers must not be negative, got %d", o.ClickWorkers)
	}
	if o.ClickWorkers > 0 && o.ClickQueueSize < 1 {
		return fmt.Errorf("click queue size must be positive, got %d", o.ClickQueueSize)
	}
	if o.ClickTimeout <= 0 {
		return fmt.Errorf("click timeout must be positive, got %s", o.ClickTimeout)
	}
	if o.TrustedSubnet != "" {
		if _, _, err := net.ParseCIDR(o.TrustedSubnet); err != nil {
			return fmt.Errorf("trusted subnet: %w", err)
		}
	}
	if _, err := zap.ParseAtomicLevel(o.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
