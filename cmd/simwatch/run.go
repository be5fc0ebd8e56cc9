package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/san-kum/simwatch/internal/config"
	"github.com/san-kum/simwatch/internal/entity"
	"github.com/san-kum/simwatch/internal/export"
	"github.com/san-kum/simwatch/internal/geo"
	"github.com/san-kum/simwatch/internal/record"
	"github.com/san-kum/simwatch/internal/session"
	"github.com/san-kum/simwatch/internal/timeline"
	"github.com/san-kum/simwatch/internal/transport"
	"github.com/san-kum/simwatch/internal/viz"
	"github.com/san-kum/simwatch/internal/weather"
)

// monitor is the local state of one session: the scene and the components
// that draw into it.
type monitor struct {
	cfg      *config.Config
	log      *slog.Logger
	scene    *viz.Scene
	entities *entity.Manager
	events   *timeline.Log
	overlay  *weather.Overlay
}

func newMonitor(cfg *config.Config, log *slog.Logger) (*monitor, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	tr, err := cfg.Transform()
	if err != nil {
		return nil, err
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	var geography *geo.Geography
	if cfg.GeographyPath != "" {
		f, err := os.Open(cfg.GeographyPath)
		if err != nil {
			return nil, fmt.Errorf("open geography: %w", err)
		}
		g, errs := geo.LoadGeography(f, tr)
		f.Close()
		if g == nil {
			return nil, errors.Join(errs...)
		}
		for _, err := range errs {
			log.Warn("geography item skipped", "err", err)
		}
		geography = g
	}

	scene := viz.NewScene(cfg.Viewport, geography)
	return &monitor{
		cfg:      cfg,
		log:      log,
		scene:    scene,
		entities: entity.NewManager(catalog, tr, scene, log),
		events:   timeline.NewLog(cfg.Categories),
		overlay:  weather.NewOverlay(tr, scene, log),
	}, nil
}

func (m *monitor) controller(ch session.Channel, obs session.Observer) *session.Controller {
	return session.New(ch, session.Deps{
		Entities: m.entities,
		Events:   m.events,
		Overlay:  m.overlay,
		Observer: obs,
		Logger:   m.log,
	})
}

// run drives the controller and the TUI together until the user quits or
// the controller fails.
func (m *monitor) run(ctx context.Context, ch session.Channel, title string) error {
	relay := &viz.Relay{}
	ctrl := m.controller(ch, relay)
	model := viz.NewModel(viz.Options{
		Title:      title,
		Scene:      m.scene,
		Controller: ctrl,
		Events:     m.events,
		Categories: m.cfg.Categories,
		Theme:      m.cfg.Theme,
		ScrubStep:  scrubStep,
	})

	g, gctx := errgroup.WithContext(ctx)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
	relay.Attach(p)

	g.Go(func() error {
		err := ctrl.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		if err == nil {
			err = errQuit
		}
		return err
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		return err
	}
	m.entities.Reset()
	return nil
}

var errQuit = errors.New("quit")

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	mon, err := newMonitor(cfg, log)
	if err != nil {
		return err
	}

	conn := transport.NewReconnecting(cfg.URL, transport.Options{RetryDelay: cfg.RetryDelay}, log)
	if err := conn.Connect(ctx); err != nil {
		return fmt.Errorf("connect %s: %w", cfg.URL, err)
	}
	defer conn.Close()
	log.Info("connected", "url", cfg.URL)

	var ch session.Channel = conn
	if cfg.Record {
		st := record.New(cfg.RecordDir)
		if err := st.Init(); err != nil {
			return err
		}
		rec, err := st.Start(cfg.URL, conn)
		if err != nil {
			return fmt.Errorf("start recording: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.Error("close recording", "err", err)
			}
			fmt.Printf("recorded %s\n", rec.ID())
		}()
		ch = rec
	}

	return mon.run(ctx, ch, cfg.Preset)
}

// resolveRecording accepts a path or a recording id in the record dir.
func resolveRecording(cfg *config.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil {
		return arg
	}
	return record.New(cfg.RecordDir).Dir(arg)
}

func runPlayback(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	pb, err := record.Open(resolveRecording(cfg, args[0]), speed)
	if err != nil {
		return err
	}
	pb.HoldOpen()

	mon, err := newMonitor(cfg, log)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return mon.run(ctx, pb, "playback "+filepath.Base(args[0]))
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, closeLog, err := openLog(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	pb, err := record.Open(resolveRecording(cfg, args[0]), 0)
	if err != nil {
		return err
	}
	mon, err := newMonitor(cfg, log)
	if err != nil {
		return err
	}
	ctrl := mon.controller(pb, nil)
	if err := ctrl.Run(cmd.Context()); err != nil {
		return err
	}

	cursor := at
	if cursor < 0 {
		cursor = ctrl.State().Cursor
	}
	view := mon.events.ViewAt(cursor)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "time\t%s\n", timeline.FormatTime(cursor))
	fmt.Fprintf(w, "entities\t%d\n", mon.entities.Len())
	for _, c := range cfg.Categories {
		fmt.Fprintf(w, "%s\t%d\n", c, view.Counts[c])
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(cfg.TurnPeriods) > 1 {
		fmt.Println("\nper turn:")
		for i, counts := range mon.events.CountsByPeriod(cfg.TurnPeriods) {
			parts := make([]string, 0, len(cfg.Categories))
			for _, c := range cfg.Categories {
				parts = append(parts, fmt.Sprintf("%s=%d", c, counts[c]))
			}
			fmt.Printf("  %d (%s, %s]: %s\n", i+1,
				timeline.FormatTime(cfg.TurnPeriods[i]), timeline.FormatTime(cfg.TurnPeriods[i+1]), strings.Join(parts, " "))
		}
	}

	if cursor > 0 {
		series := mon.events.Series(cursor, 60)
		fmt.Println()
		fmt.Println(asciigraph.Plot(series, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("events over time")))
	}

	fmt.Println()
	lines := view.Lines
	if len(attackers) > 0 && len(targets) > 0 {
		lines = mon.events.Related(cursor, attackers, targets)
	}
	for _, l := range lines {
		fmt.Println(l)
	}

	if csvOut != "" {
		f, err := os.Create(csvOut)
		if err != nil {
			return err
		}
		if err := record.ExportEventsCSV(f, mon.events.Events(cursor)); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", csvOut)
	}
	if svgOut != "" {
		f, err := os.Create(svgOut)
		if err != nil {
			return err
		}
		if err := export.FrameToSVG(f, mon.scene.Frame()); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
	}
	return nil
}

func listRecordings(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	runs, err := record.New(cfg.RecordDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recordings found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tURL\tSTARTED\tIN\tOUT\tMAX TIME")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
			run.ID,
			run.URL,
			run.Started.Format("2006-01-02 15:04:05"),
			run.Inbound,
			run.Outbound,
			timeline.FormatTime(run.MaxTime),
		)
	}
	return w.Flush()
}
