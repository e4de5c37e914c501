package option

import (
	"certdesk/config"
	"certdesk/logger"

	"github.com/spf13/pflag"
)

type Option struct {
	ConfigPath      string `json:"config_path" yaml:"configPath"`
	CertificateURL  string `json:"certificate_url" yaml:"certificateUrl"`
	AppreciationURL string `json:"appreciation_url" yaml:"appreciationUrl"`
	TimeoutSeconds  int    `json:"timeout_seconds" yaml:"timeoutSeconds"`
	Verbose         bool   `json:"verbose" yaml:"verbose"`
}

func (opt *Option) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&opt.ConfigPath, "config", "c", "", "config file path")
	fs.StringVar(&opt.CertificateURL, "certificate-url", "", "certificate service base URL, overrides the config")
	fs.StringVar(&opt.AppreciationURL, "appreciation-url", "", "appreciation service base URL, overrides the config")
	fs.IntVar(&opt.TimeoutSeconds, "timeout", 0, "request timeout in seconds, 0 waits for the transport")
	fs.BoolVarP(&opt.Verbose, "verbose", "v", false, "log requests to stderr")
}

// GenerateConfig loads the config file and environment, then applies the flags that were set
func (opt *Option) GenerateConfig(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(opt.ConfigPath)
	if err != nil {
		return nil, err
	}

	if fs.Changed("certificate-url") {
		cfg.CertificateServiceURL = opt.CertificateURL
	}
	if fs.Changed("appreciation-url") {
		cfg.AppreciationServiceURL = opt.AppreciationURL
	}
	if fs.Changed("timeout") {
		cfg.RequestTimeoutSeconds = opt.TimeoutSeconds
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Logger is silent unless --verbose is set
func (opt *Option) Logger(cfg *config.Config) (*logger.Logger, error) {
	if !opt.Verbose {
		return logger.Nop(), nil
	}
	return logger.New(cfg.LogMode)
}
