package kernel

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"

	sp "github.com/calmsacibis995/sprite2/spritep"
)

type Param struct {
	NumRpcServers   int           `yaml:"numrpcservers"`
	MaxCleanerProcs int           `yaml:"maxcleanerprocs"`
	MaxPageOutProcs int           `yaml:"maxpageoutprocs"`
	AltInit         string        `yaml:"altinit"`
	InitPath        string        `yaml:"initpath"`
	MetricsAddr     string        `yaml:"metricsaddr"`
	BootArgs        []string      `yaml:"bootargs"`
	ParkTimeout     time.Duration `yaml:"parktimeout"`
}

func NewParam() *Param {
	p := &Param{}
	p.FillDefaults()
	return p
}

// FillDefaults fills unset fields.  NumRpcServers is left alone: zero is
// a legal configuration meaning no fixed RPC servers are started.
func (p *Param) FillDefaults() {
	if p.MaxCleanerProcs == 0 {
		p.MaxCleanerProcs = sp.MaxCleanerProcs
	}
	if p.MaxPageOutProcs == 0 {
		p.MaxPageOutProcs = sp.MaxPageOutProcs
	}
	if p.InitPath == "" {
		p.InitPath = sp.InitPath
	}
	if p.ParkTimeout == 0 {
		p.ParkTimeout = sp.OneYear
	}
}

func ReadParam(pn string) (*Param, error) {
	param := &Param{}
	file, err := os.Open(pn)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	d := yaml.NewDecoder(file)
	if err := d.Decode(&param); err != nil {
		return nil, err
	}
	param.FillDefaults()
	return param, nil
}
