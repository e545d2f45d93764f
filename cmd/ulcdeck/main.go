// ULC Deck - Stream Deck bridge for ULC and LVC
//
// This is the plugin binary launched by the Stream Deck application. It
// relays between the Stream Deck and two in-game controllers:
//   - ULC (Ultimate Lighting Controller) stage and pattern buttons
//   - LVC (Luxart Vehicle Control) siren tones and lights
//
// The Stream Deck starts the binary with -port, -pluginUUID, -registerEvent
// and -info. An optional -config points at a YAML file; without one the
// plugin runs on defaults.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/ulc-deck/internal/api"
	"github.com/nerrad567/ulc-deck/internal/clock"
	"github.com/nerrad567/ulc-deck/internal/deck"
	"github.com/nerrad567/ulc-deck/internal/gesture"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/config"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/database"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/influxdb"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/logging"
	"github.com/nerrad567/ulc-deck/internal/infrastructure/mqtt"
	"github.com/nerrad567/ulc-deck/internal/journal"
	"github.com/nerrad567/ulc-deck/internal/loop"
	"github.com/nerrad567/ulc-deck/internal/profile"
	"github.com/nerrad567/ulc-deck/internal/protocol"
	"github.com/nerrad567/ulc-deck/internal/relay"
	"github.com/nerrad567/ulc-deck/internal/render"
	"github.com/nerrad567/ulc-deck/internal/streamdeck"
	"github.com/nerrad567/ulc-deck/internal/telemetry"
	"github.com/nerrad567/ulc-deck/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// connectTimeout bounds the initial dial to the Stream Deck application.
const connectTimeout = 10 * time.Second

// launchArgs are the command-line flags passed by the Stream Deck
// application, plus -config.
type launchArgs struct {
	Port          int
	PluginUUID    string
	RegisterEvent string
	Info          string
	ConfigPath    string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	args, err := parseArgs(os.Args[1:], io.Discard)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// parseArgs reads the launch flags. The Stream Deck passes them with a
// single dash, which is what the flag package accepts.
func parseArgs(argv []string, output io.Writer) (launchArgs, error) {
	var a launchArgs
	fset := flag.NewFlagSet("ulcdeck", flag.ContinueOnError)
	fset.SetOutput(output)
	fset.IntVar(&a.Port, "port", 0, "Stream Deck WebSocket port")
	fset.StringVar(&a.PluginUUID, "pluginUUID", "", "plugin registration UUID")
	fset.StringVar(&a.RegisterEvent, "registerEvent", "", "registration event name")
	fset.StringVar(&a.Info, "info", "", "Stream Deck application and device info (JSON)")
	fset.StringVar(&a.ConfigPath, "config", "", "path to YAML config (optional)")

	if err := fset.Parse(argv); err != nil {
		return launchArgs{}, fmt.Errorf("parsing flags: %w", err)
	}
	if a.Port <= 0 || a.Port > 65535 {
		return launchArgs{}, fmt.Errorf("-port is required and must be 1-65535")
	}
	if a.PluginUUID == "" || a.RegisterEvent == "" {
		return launchArgs{}, fmt.Errorf("-pluginUUID and -registerEvent are required")
	}
	if a.ConfigPath == "" {
		a.ConfigPath = os.Getenv("ULCDECK_CONFIG")
	}
	return a, nil
}

// run is the actual application logic, separated from main for testability.
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args launchArgs) error {
	info, err := streamdeck.ParseInfo(args.Info)
	if err != nil {
		return fmt.Errorf("reading -info: %w", err)
	}

	cfg, err := config.Load(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logging.New(cfg.Logging, version)
	log.Info("starting ULC Deck",
		"version", version,
		"commit", commit,
		"build_date", date,
		"streamdeck_version", info.Application.Version,
		"devices", len(info.Devices),
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	lp := loop.New(clock.Real{})
	lp.SetLogger(log)
	go lp.Run(runCtx)

	recorder, closeSinks, err := startTelemetry(runCtx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSinks()

	// Relay handlers are bound once the deck exists; frames cannot arrive
	// before the channels start listening.
	var ulcHandlers, lvcHandlers relay.Handlers
	ulc := relay.New(relay.Options{
		Name:       deck.ChannelULC,
		Config:     cfg.Relay.ULC,
		Decode:     protocol.DecodeULC,
		Dispatcher: lp,
		Logger:     log,
	}, forward(&ulcHandlers))
	lvc := relay.New(relay.Options{
		Name:       deck.ChannelLVC,
		Config:     cfg.Relay.LVC,
		Decode:     protocol.DecodeLVC,
		Dispatcher: lp,
		Logger:     log,
	}, forward(&lvcHandlers))

	var d *deck.Deck
	sd := streamdeck.New(streamdeck.Options{
		Port:           args.Port,
		PluginUUID:     args.PluginUUID,
		RegisterEvent:  args.RegisterEvent,
		SendBufferSize: cfg.StreamDeck.SendBufferSize,
		WriteTimeout:   time.Duration(cfg.StreamDeck.WriteTimeout) * time.Second,
		Dispatcher:     lp,
		Logger:         log,
	}, func(ev streamdeck.Event) { d.HandleEvent(ev) })
	defer func() {
		if closeErr := sd.Close(); closeErr != nil {
			log.Warn("error closing stream deck connection", "error", closeErr)
		}
	}()

	ulcProfile := profile.New(deck.ChannelULC, cfg.Profile.ULCProfile, sd)
	ulcProfile.SetLogger(log)
	var lvcProfile *profile.Machine
	if cfg.Profile.LVCProfile != "" {
		lvcProfile = profile.New(deck.ChannelLVC, cfg.Profile.LVCProfile, sd)
		lvcProfile.SetLogger(log)
	}

	d, err = deck.New(deck.Options{
		Clock:      lp,
		Renderer:   sd,
		Images:     render.NewImages(imagesFS(cfg.Images.Dir)),
		ULC:        ulc,
		LVC:        lvc,
		ULCProfile: ulcProfile,
		LVCProfile: lvcProfile,
		Gestures: gesture.Config{
			HoldThreshold:        cfg.HoldThreshold(),
			DoubleClickThreshold: cfg.DoubleClickThreshold(),
		},
		ColumnsPerRow: cfg.Grid.ColumnsPerRow,
		ActionPrefix:  cfg.StreamDeck.ActionPrefix,
		Recorder:      recorder,
		Context:       runCtx,
		Logger:        log,
	})
	if err != nil {
		return fmt.Errorf("creating deck: %w", err)
	}
	ulcHandlers = d.ULCHandlers()
	lvcHandlers = d.LVCHandlers()

	if device := info.FirstDevice(); device != "" {
		lp.Post(func() { d.DeviceConnected(device) })
	}

	dialCtx, dialCancel := context.WithTimeout(runCtx, connectTimeout)
	err = sd.Connect(dialCtx)
	dialCancel()
	if err != nil {
		return fmt.Errorf("connecting to stream deck: %w", err)
	}

	for _, ch := range []struct {
		channel *relay.Channel
		cfg     config.ChannelConfig
	}{{ulc, cfg.Relay.ULC}, {lvc, cfg.Relay.LVC}} {
		if !ch.cfg.Enabled {
			log.Info("relay channel disabled", "channel", ch.channel.Name())
			continue
		}
		// A bind failure leaves the other channel and the deck running.
		if startErr := ch.channel.Start(runCtx); startErr != nil {
			log.Error("relay channel not started", "channel", ch.channel.Name(), "error", startErr)
			continue
		}
		defer ch.channel.Close() //nolint:errcheck // Shutdown path; errors logged in Close
	}

	if cfg.API.Enabled {
		srv, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			Logger:    log,
			Loop:      lp,
			Deck:      d,
			Relays:    []api.RelaySource{ulc, lvc},
			Surface:   sd,
			Telemetry: recorder,
			Journal:   recorderJournal(recorder),
			Version:   version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := srv.Start(runCtx); startErr != nil {
			log.Error("status API not started", "error", startErr)
		} else {
			defer func() {
				if closeErr := srv.Close(); closeErr != nil {
					log.Warn("error closing API server", "error", closeErr)
				}
			}()
		}
	}

	log.Info("initialisation complete")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case <-sd.Done():
		log.Info("stream deck closed the connection")
	}

	cancel()
	log.Info("ULC Deck stopped")
	return nil
}

// forward returns relay handlers that call through h at invocation time.
func forward(h *relay.Handlers) relay.Handlers {
	return relay.Handlers{
		OnMessage: func(msg protocol.Message) {
			if h.OnMessage != nil {
				h.OnMessage(msg)
			}
		},
		OnConnectEdge: func() {
			if h.OnConnectEdge != nil {
				h.OnConnectEdge()
			}
		},
		OnDisconnectEdge: func() {
			if h.OnDisconnectEdge != nil {
				h.OnDisconnectEdge()
			}
		},
	}
}

// imagesFS returns the image directory, or nil when it does not exist so
// keys fall back to titles.
func imagesFS(dir string) fs.FS {
	if dir == "" {
		return nil
	}
	if st, err := os.Stat(dir); err != nil || !st.IsDir() {
		return nil
	}
	return os.DirFS(dir)
}

// telemetryHandle carries the optional journal alongside the recorder so
// the API can serve it.
type telemetryHandle struct {
	*telemetry.Recorder
	journal journal.Repository
}

func recorderJournal(r *telemetryHandle) journal.Repository {
	if r == nil {
		return nil
	}
	return r.journal
}

// startTelemetry connects the enabled sinks and starts the recorder. Sink
// connection failures are logged and the sink is skipped; the deck runs
// without it. The returned func closes everything that was opened.
func startTelemetry(ctx context.Context, cfg *config.Config, log *logging.Logger) (*telemetryHandle, func(), error) {
	var sinks []telemetry.Sink
	var closers []func()
	h := &telemetryHandle{}

	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Database.Enabled {
		db, err := database.Open(cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("opening database: %w", err)
		}
		closers = append(closers, func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		})
		if err := db.Migrate(ctx, migrations.FS); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		h.journal = journal.NewSQLiteRepository(db.DB)
		sinks = append(sinks, telemetry.NewJournalSink(h.journal))
		log.Info("event journal enabled", "path", db.Path())
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT)
		if err != nil {
			log.Warn("MQTT unavailable, continuing without it", "error", err)
		} else {
			client.SetLogger(log)
			closers = append(closers, func() {
				log.Info("disconnecting from MQTT")
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing MQTT", "error", closeErr)
				}
			})
			sinks = append(sinks, telemetry.NewMQTTSink(client, client.Topics()))
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(cfg.InfluxDB)
		if err != nil && !errors.Is(err, influxdb.ErrDisabled) {
			log.Warn("InfluxDB unavailable, continuing without it", "error", err)
		} else if err == nil {
			client.SetOnError(func(err error) {
				log.Error("InfluxDB write error", "error", err)
			})
			closers = append(closers, func() {
				log.Info("closing InfluxDB connection")
				if closeErr := client.Close(); closeErr != nil {
					log.Error("error closing InfluxDB", "error", closeErr)
				}
			})
			sinks = append(sinks, telemetry.NewInfluxSink(client))
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	h.Recorder = telemetry.NewRecorder(cfg.Telemetry.BufferSize, log, sinks...)
	h.Start(ctx)
	// Stop drains buffered events before the sinks close.
	closers = append(closers, h.Stop)

	return h, closeAll, nil
}
