package hosted

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	db "github.com/calmsacibis995/sprite2/debug"
)

// Prof is the hosted profiling module, backed by prometheus.  Init
// registers the collectors; Start begins serving them when a metrics
// address is configured.
type Prof struct {
	addr     string
	reg      *prometheus.Registry
	bootTime prometheus.Gauge
	started  time.Time
}

func NewProf(addr string) *Prof {
	return &Prof{addr: addr, reg: prometheus.NewRegistry()}
}

func (pr *Prof) Init() error {
	pr.started = time.Now()
	pr.bootTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sprite2_boot_time_seconds",
		Help: "Unix time at which profiling started",
	})
	uptime := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sprite2_uptime_seconds",
		Help: "Seconds since profiling init",
	}, func() float64 {
		return time.Since(pr.started).Seconds()
	})
	if err := pr.reg.Register(pr.bootTime); err != nil {
		return err
	}
	if err := pr.reg.Register(uptime); err != nil {
		return err
	}
	db.DPrintf(db.PROF, "Init")
	return nil
}

func (pr *Prof) Start() error {
	pr.bootTime.Set(float64(time.Now().Unix()))
	if pr.addr == "" {
		db.DPrintf(db.PROF, "no metrics addr; not serving")
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pr.reg, promhttp.HandlerOpts{}))
	go func() {
		db.DPrintf(db.PROF, "serving metrics on %v", pr.addr)
		if err := http.ListenAndServe(pr.addr, mux); err != nil {
			db.DPrintf(db.PROF, "metrics server: %v", err)
		}
	}()
	return nil
}
