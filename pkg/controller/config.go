package controller

import (
	"io/ioutil"
	"os"
	"time"

	"github.com/Seann-Moser/cobot/pkg/io"
	"github.com/caarlos0/env/v6"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const DefaultConfigFile = "cobot.yaml"

type Configuration struct {
	IO          io.Config     `yaml:"io"`
	Legs        LegChannels   `yaml:"legs"`
	StatusLED   int           `yaml:"statusLed" env:"COBOT_STATUS_LED"`
	CycleButton int           `yaml:"cycleButton" env:"COBOT_CYCLE_BUTTON"`
	StepDelay   time.Duration `yaml:"stepDelay" env:"COBOT_STEP_DELAY"`
	Address     string        `yaml:"address" env:"COBOT_ADDRESS"`
	Serial      SerialConfig  `yaml:"serial"`
}

// LegChannels maps each leg to its PWM channel on the board.
type LegChannels struct {
	RightBack  int `yaml:"rightBack" env:"COBOT_LEG_RIGHT_BACK"`
	LeftBack   int `yaml:"leftBack" env:"COBOT_LEG_LEFT_BACK"`
	RightFront int `yaml:"rightFront" env:"COBOT_LEG_RIGHT_FRONT"`
	LeftFront  int `yaml:"leftFront" env:"COBOT_LEG_LEFT_FRONT"`
}

func (l LegChannels) legs() []Leg {
	return []Leg{
		{Name: RightBackLeg, Channel: l.RightBack},
		{Name: LeftBackLeg, Channel: l.LeftBack},
		{Name: RightFrontLeg, Channel: l.RightFront},
		{Name: LeftFrontLeg, Channel: l.LeftFront},
	}
}

type SerialConfig struct {
	Port string `yaml:"port" env:"COBOT_SERIAL_PORT"`
	Baud int    `yaml:"baud" env:"COBOT_SERIAL_BAUD"`
}

func DefaultConfiguration() Configuration {
	return Configuration{
		IO: io.Config{
			Board:      io.BoardMock,
			I2CBus:     "I2C1",
			I2CAddr:    0x40,
			Resolution: 1024,
		},
		Legs:        LegChannels{RightBack: 0, LeftBack: 1, RightFront: 2, LeftFront: 3},
		StatusLED:   -1,
		CycleButton: -1,
		StepDelay:   300 * time.Millisecond,
		Address:     "0.0.0.0:8080",
		Serial:      SerialConfig{Baud: 115200},
	}
}

// LoadConfiguration reads path on top of the defaults and then applies any
// COBOT_* environment overrides. A missing file is not an error.
func LoadConfiguration(path string) (Configuration, error) {
	cfg := DefaultConfiguration()
	data, err := ioutil.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parsing %s", path)
		}
	case os.IsNotExist(err):
		log.Debugf("no config at %s, using defaults", path)
	default:
		return cfg, errors.Wrapf(err, "reading %s", path)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Wrap(err, "parsing environment")
	}
	return cfg, cfg.Validate()
}

func (cfg Configuration) Save(path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	return errors.Wrapf(ioutil.WriteFile(path, data, 0644), "writing %s", path)
}

func (cfg Configuration) Validate() error {
	if err := cfg.IO.Validate(); err != nil {
		return err
	}
	seen := map[int]string{}
	for _, leg := range cfg.Legs.legs() {
		if leg.Channel < 0 {
			return errors.Errorf("leg %s: negative channel %d", leg.Name, leg.Channel)
		}
		if other, ok := seen[leg.Channel]; ok {
			return errors.Errorf("legs %s and %s share channel %d", other, leg.Name, leg.Channel)
		}
		seen[leg.Channel] = leg.Name
	}
	if cfg.StepDelay < 0 {
		return errors.Errorf("negative step delay %v", cfg.StepDelay)
	}
	return nil
}
