package config

import (
	"flag"
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config carries all process configuration. Environment variables take
// precedence over flag defaults; flags exist for local runs.
type Config struct {
	Addr          string `env:"RUN_ADDRESS" env-default:":8080"`
	DataDir       string `env:"DATA_DIR" env-default:"."`
	BankName      string `env:"BANK_NAME" env-default:"DevCoelho Bank"`
	BankCode      string `env:"BANK_CODE" env-default:"123"`
	Agency        string `env:"AGENCY" env-default:"Mogi Guacu"`
	BaseRate      string `env:"BASE_RATE" env-default:"0.05"`
	ViaCEPAddress string `env:"VIACEP_ADDRESS" env-default:"https://viacep.com.br"`
	MonthlyFee    string `env:"MONTHLY_FEE" env-default:"2.00"`
}

// Load reads flags first, then lets the environment override them
func Load() (*Config, error) {
	cfg := &Config{}

	flag.StringVar(&cfg.Addr, "a", ":8080", "HTTP listen address")
	flag.StringVar(&cfg.DataDir, "d", ".", "directory holding the snapshot files")
	flag.StringVar(&cfg.Agency, "agency", "Mogi Guacu", "branch label for new accounts")
	flag.Parse()

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("couldn't read environment variables: %w", err)
	}

	return cfg, nil
}
