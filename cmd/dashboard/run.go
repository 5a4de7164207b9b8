package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"route-dashboard/internal/adapters/optimizer"
	"route-dashboard/internal/adapters/progress"
	"route-dashboard/internal/chart"
	"route-dashboard/internal/config"
	"route-dashboard/internal/domain"
	"route-dashboard/internal/logbuffer"
	"route-dashboard/internal/ports"
	"route-dashboard/internal/presenter"
	"route-dashboard/internal/services"
)

var runOpts struct {
	deliveries int
	drivers    int
	min        float64
	max        float64
	chartPath  string
	seed       int64
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one optimization and print the result",
	Long: `Submits a single optimization request, streams progress notifications to the
terminal while it runs and prints the summary and driver routes.

Example:
  dashboard run --deliveries 30 --drivers 4 --chart routes.png`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	f := runCmd.Flags()
	f.IntVarP(&runOpts.deliveries, "deliveries", "n", 20, "number of deliveries")
	f.IntVarP(&runOpts.drivers, "drivers", "d", 3, "number of drivers")
	f.Float64Var(&runOpts.min, "min", domain.DefaultMinCoordinate, "minimum coordinate")
	f.Float64Var(&runOpts.max, "max", domain.DefaultMaxCoordinate, "maximum coordinate")
	f.StringVar(&runOpts.chartPath, "chart", "", "write the route chart as PNG to this path")
	f.Int64Var(&runOpts.seed, "seed", 1, "seed of the mock optimizer")
}

func runOnce(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	out := termenv.NewOutput(cmd.OutOrStdout())
	term := &terminalLog{out: out}

	var (
		session *services.Session
		opt     ports.Optimizer
	)
	if mock {
		m := optimizer.NewMock(runOpts.seed, func(n domain.ProgressNotification) {
			term.OnNotification(n)
			session.OnNotification(n)
		})
		m.Delay = 50 * time.Millisecond
		opt = m
	} else {
		if cfg.Optimizer.URL == "" {
			return fmt.Errorf("run: OPTIMIZER_URL: %w", config.ErrMissingEndpoint)
		}
		client, err := optimizer.NewHTTPClient(cfg.Optimizer.URL, cfg.Optimizer.Timeout, logger)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		opt = client
	}
	session = services.NewSession(opt, nil, logger)
	sink := fanout{term, session}

	stopFeed := func() {}
	if !mock && cfg.Progress.URL != "" {
		var err error
		stopFeed, err = followProgress(ctx, cfg.Progress, sink)
		if err != nil {
			return err
		}
	}

	err := session.Submit(ctx, domain.OptimizationRequest{
		NumberOfDeliveries: runOpts.deliveries,
		NumberOfDrivers:    runOpts.drivers,
		MinCoordinate:      runOpts.min,
		MaxCoordinate:      runOpts.max,
	})
	stopFeed()

	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return err
		}
		term.OnNotification(domain.ProgressNotification{
			Message: services.UserMessage(err),
			Style:   domain.StyleErrorLarge,
		})
		return fmt.Errorf("run: %s error: %w", services.Classify(err), err)
	}

	v := session.Snapshot()
	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintln(w, presenter.RenderSummary(v.Summary))
	if len(v.Methods) > 0 {
		fmt.Fprintln(w, presenter.RenderMethods(v.Methods))
	}
	for _, c := range v.Drivers {
		fmt.Fprintln(w, presenter.RenderDriverCard(c))
	}

	if runOpts.chartPath != "" {
		if err := writeChart(runOpts.chartPath, session.Result(), cfg.Chart); err != nil {
			return err
		}
		fmt.Fprintf(w, "chart written to %s\n", runOpts.chartPath)
	}
	return nil
}

// followProgress connects the progress channel and waits briefly for it to
// come up. The returned func tears the channel down.
func followProgress(ctx context.Context, pc config.ProgressConfig, sink ports.ProgressSink) (func(), error) {
	ch, err := progress.NewChannel(pc.URL, pc.Event, progress.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("run: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ch.Run(ctx, sink); err != nil {
			logger.Warn("progress channel stopped", zap.Error(err))
		}
	}()

	deadline := time.Now().Add(3 * time.Second)
	for ch.State() != domain.ConnConnected && time.Now().Before(deadline) {
		select {
		case <-done:
			deadline = time.Now()
		case <-time.After(20 * time.Millisecond):
		}
	}

	return func() {
		cancel()
		<-done
	}, nil
}

func writeChart(path string, res *domain.OptimizationResult, cc config.ChartConfig) (err error) {
	if res == nil {
		return errors.New("write chart: no result")
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("write chart: %w", cerr)
		}
	}()

	opts := chart.RenderOptions{Width: cc.Width, Height: cc.Height, Title: "Optimized routes"}
	if err := chart.RenderPNG(f, chart.Project(res.Deliveries, res.DriverRoutes), opts); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}

// terminalLog prints notifications as they arrive. A progress line that
// replaces the line printed just before it is rewritten in place.
type terminalLog struct {
	out *termenv.Output

	mu  sync.Mutex
	log []domain.ProgressNotification
}

func (t *terminalLog) OnNotification(n domain.ProgressNotification) {
	t.mu.Lock()
	defer t.mu.Unlock()

	prev := len(t.log)
	last := logbuffer.LastProgress(t.log)
	t.log = logbuffer.Append(t.log, n, time.Now())

	idx := len(t.log) - 1
	if len(t.log) == prev {
		idx = last
		if last != prev-1 {
			// Replaced an entry further up; print the update as a new line.
			t.println(t.log[idx])
			return
		}
		t.out.CursorPrevLine(1)
		t.out.ClearLine()
	}
	t.println(t.log[idx])
}

func (t *terminalLog) OnStateChange(s domain.ConnectionState) {
	logger.Debug("progress channel state", zap.String("state", string(s)))
}

func (t *terminalLog) println(n domain.ProgressNotification) {
	_, _ = io.WriteString(t.out, presenter.RenderLine(presenter.Line(n))+"\n")
}

// fanout forwards to several sinks in order.
type fanout []ports.ProgressSink

func (f fanout) OnNotification(n domain.ProgressNotification) {
	for _, s := range f {
		s.OnNotification(n)
	}
}

func (f fanout) OnStateChange(s domain.ConnectionState) {
	for _, sink := range f {
		sink.OnStateChange(s)
	}
}
