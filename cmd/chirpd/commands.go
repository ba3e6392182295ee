package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chirpcode-go/bus"
	chirpsvc "chirpcode-go/services/chirp"
	"chirpcode-go/services/config"
	"chirpcode-go/services/hostio"
	"chirpcode-go/services/labelstore"
	"chirpcode-go/services/mqttbridge"
	"chirpcode-go/x/conv"
	"chirpcode-go/x/logx"
)

// env is what every command opens: config, logger, bus and label store.
type env struct {
	cfg    *config.Host
	log    *zap.SugaredLogger
	i2c    *hostio.Bus
	labels *labelstore.Bolt
}

func openEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if busName != "" {
		cfg.Bus = busName
	}
	log, err := logx.NewZap(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	i2c, err := hostio.Open(cfg.Bus, log)
	if err != nil {
		return nil, err
	}
	i2c.Trace = cfg.LogLevel == "debug"

	labels, err := labelstore.OpenBolt(cfg.LabelDB)
	if err != nil {
		_ = i2c.Close()
		return nil, err
	}
	log.Debugf("Using I2C bus %s, labels in %s", i2c, cfg.LabelDB)
	return &env{cfg: cfg, log: log, i2c: i2c, labels: labels}, nil
}

func (e *env) Close() {
	_ = e.labels.Close()
	_ = e.i2c.Close()
	_ = e.log.Sync()
}

func (e *env) deps() chirpsvc.Deps {
	return chirpsvc.Deps{Bus: e.i2c, Labels: e.labels, Log: e.log}
}

// manager runs a full Setup so one-shot commands see every device.
func (e *env) manager() *chirpsvc.Manager {
	m := chirpsvc.NewManager(e.cfg.Chirp, e.deps())
	m.Setup()
	return m
}

func parseAddr(s string) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint8(v), nil
}

// ---------------- run ----------------

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the sensor service",
	Long: `Run the discovery service until interrupted.

Readings go to the in-process bus and, when mqtt.enabled is set, to the
broker under <prefix>/<kind>/<address>/state. Commands are accepted on
<prefix>/cmd/<verb>.`,
	Example: `  chirpd run --config /etc/chirpd.yaml`,
	Args:    cobra.NoArgs,
	RunE:    runDaemon,
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b := bus.NewBus(32)
	svc := chirpsvc.NewService(b.NewConnection("chirp"), e.deps(), e.cfg.Tick())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.Run(ctx)
	}()

	if e.cfg.MQTT.Enabled {
		mc := e.cfg.MQTT
		mq, err := mqttbridge.Dial(mqttbridge.Config{
			Broker:   mc.Broker,
			ClientID: mc.ClientID,
			Username: mc.Username,
			Password: mc.Password,
			Prefix:   mc.Prefix,
			TLS:      mc.TLS,
		}, e.log)
		if err != nil {
			stop()
			wg.Wait()
			return err
		}
		defer mq.Close()

		br := mqttbridge.New(b.NewConnection("mqtt"), mq, mc.Prefix, e.log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := br.Run(ctx); err != nil {
				e.log.Errorf("mqtt bridge: %v", err)
			}
		}()
	}

	config.PublishChirp(b.NewConnection("config"), e.cfg.Chirp)
	e.log.Infof("chirpd running; scan 0x%02X-0x%02X every %d ms",
		e.cfg.Chirp.ScanStart, e.cfg.Chirp.ScanEnd, e.cfg.Chirp.ScanIntervalMs)

	<-ctx.Done()
	wg.Wait()
	e.log.Infof("chirpd stopped")
	return nil
}

// ---------------- one-shot commands ----------------

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the bus and list Chirp sensors",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		devs := e.manager().Devices()
		fmt.Printf("Found %d device(s)\n", len(devs))
		for _, d := range devs {
			label := d.Label
			if label == "" {
				label = "(none)"
			}
			fmt.Printf("  %s  %s\n", conv.Addr(d.Address), label)
		}
		return nil
	},
}

var dumpJSON bool

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print configuration and tracked devices",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		d := e.manager().Dump()
		if !dumpJSON {
			return nil
		}
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var setAddressCmd = &cobra.Command{
	Use:   "set-address <old> <new>",
	Short: "Reprogram a sensor's I2C address",
	Long: `Write a new address to the sensor currently at <old>.

Addresses accept decimal or 0x-prefixed hex and must be in 0x01-0x7F.
The sensor's label follows it to the new address.`,
	Example: `  chirpd set-address 0x20 0x21`,
	Args:    cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		old, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		nw, err := parseAddr(args[1])
		if err != nil {
			return err
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.manager().SetAddress(old, nw); err != nil {
			return err
		}
		fmt.Printf("%s -> %s\n", conv.Addr(old), conv.Addr(nw))
		return nil
	},
}

var setLabelCmd = &cobra.Command{
	Use:   "set-label <address> [label]",
	Short: "Set or clear a sensor's label",
	Long: `Set the display label of the sensor at <address>. Omit the label to
clear it. Labels longer than 31 bytes are truncated.`,
	Example: `  chirpd set-label 0x20 Fern
  chirpd set-label 0x20`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(_ *cobra.Command, args []string) error {
		addr, err := parseAddr(args[0])
		if err != nil {
			return err
		}
		label := ""
		if len(args) == 2 {
			label = args[1]
		}
		e, err := openEnv()
		if err != nil {
			return err
		}
		defer e.Close()

		return e.manager().SetLabel(addr, label)
	},
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpJSON, "json", false, "Also print the dump as JSON")
}
