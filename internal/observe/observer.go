package observe

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/turtlefleet/turtle/internal/shell"
)

// ErrUnparsable marks inspection output a mandatory field could not be read
// from.
var ErrUnparsable = errors.New("unparsable inspection output")

// ObservationError means a snapshot could not be built. The failing field
// is one of "processes", "windows", "resources" or "network".
type ObservationError struct {
	Field string
	Err   error
}

func (e *ObservationError) Error() string {
	return fmt.Sprintf("observe %s: %v", e.Field, e.Err)
}

func (e *ObservationError) Unwrap() error {
	return e.Err
}

// Inspector lists processes and windows as newline-delimited tables.
type Inspector interface {
	ProcessTable(ctx context.Context) (string, error)
	WindowTable(ctx context.Context) (string, error)
}

// ShellInspector reads the process table from ps and windows from wmctrl.
type ShellInspector struct {
	exec shell.Executor
	// Windows disables window inspection when false, for hosts without a
	// window manager.
	Windows bool
}

// NewShellInspector returns an Inspector backed by exec.
func NewShellInspector(exec shell.Executor, windows bool) *ShellInspector {
	return &ShellInspector{exec: exec, Windows: windows}
}

func (s *ShellInspector) ProcessTable(ctx context.Context) (string, error) {
	res, err := s.exec.Run(ctx, "ps", "aux", "--no-headers")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func (s *ShellInspector) WindowTable(ctx context.Context) (string, error) {
	if !s.Windows {
		return "", nil
	}
	res, err := s.exec.Run(ctx, "wmctrl", "-l", "-G")
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

// Options tune what the Observer collects.
type Options struct {
	ProcessLimit int
	ProbeHost    string
	ProbeTimeout time.Duration
	DiskPath     string
}

// DefaultOptions returns the observer defaults.
func DefaultOptions() Options {
	return Options{
		ProcessLimit: 20,
		ProbeHost:    "8.8.8.8",
		ProbeTimeout: 2 * time.Second,
		DiskPath:     "/",
	}
}

// Observer builds Snapshots from an Inspector and a shell Executor.
type Observer struct {
	inspector Inspector
	exec      shell.Executor
	opts      Options
	now       func() time.Time
	logger    *zap.Logger
}

// Option configures an Observer.
type Option func(*Observer)

// WithLogger sets the observer's logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Observer) { o.logger = l }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(o *Observer) { o.now = now }
}

// NewObserver creates an Observer. Zero-valued options fall back to
// DefaultOptions.
func NewObserver(inspector Inspector, exec shell.Executor, opts Options, options ...Option) *Observer {
	def := DefaultOptions()
	if opts.ProcessLimit <= 0 {
		opts.ProcessLimit = def.ProcessLimit
	}
	if opts.ProbeHost == "" {
		opts.ProbeHost = def.ProbeHost
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = def.ProbeTimeout
	}
	if opts.DiskPath == "" {
		opts.DiskPath = def.DiskPath
	}
	o := &Observer{
		inspector: inspector,
		exec:      exec,
		opts:      opts,
		now:       time.Now,
		logger:    zap.NewNop(),
	}
	for _, fn := range options {
		fn(o)
	}
	return o
}

// Observe captures a snapshot. Each sub-observation parses its output
// line by line and skips what it cannot read, but any inspection call that
// fails outright fails the whole snapshot with an ObservationError.
func (o *Observer) Observe(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Timestamp: o.now().Unix()}

	if err := o.inspect(ctx, snap); err != nil {
		return nil, err
	}
	snap.Network = o.network(ctx)

	o.logger.Debug("snapshot captured",
		zap.Int("processes", len(snap.Processes)),
		zap.Int("windows", len(snap.Windows)),
		zap.Float64("cpu_estimate", snap.Resources.CPUPercent),
		zap.Bool("connected", snap.Network.Connected))
	return snap, nil
}

func (o *Observer) inspect(ctx context.Context, snap *Snapshot) error {
	procs, err := o.inspector.ProcessTable(ctx)
	if err != nil {
		return &ObservationError{Field: "processes", Err: err}
	}
	snap.Processes = ParseProcessTable(procs, o.opts.ProcessLimit)

	wins, err := o.inspector.WindowTable(ctx)
	if err != nil {
		return &ObservationError{Field: "windows", Err: err}
	}
	snap.Windows = ParseWindowTable(wins)

	res, err := o.resources(ctx)
	if err != nil {
		return &ObservationError{Field: "resources", Err: err}
	}
	snap.Resources = res
	return nil
}

// loadToCPU converts a one-minute load average into a rough CPU percentage.
const loadToCPU = 25.0

func (o *Observer) resources(ctx context.Context) (Resources, error) {
	load, err := o.exec.Run(ctx, "cat", "/proc/loadavg")
	if err != nil {
		return Resources{}, err
	}
	avg, ok := ParseLoadAverage(load.Stdout)
	if !ok {
		return Resources{}, fmt.Errorf("/proc/loadavg %q: %w", load.Stdout, ErrUnparsable)
	}

	mem, err := o.exec.Run(ctx, "cat", "/proc/meminfo")
	if err != nil {
		return Resources{}, err
	}
	disk, err := o.exec.Run(ctx, "df", "-P", o.opts.DiskPath)
	if err != nil {
		return Resources{}, err
	}

	return Resources{
		CPUPercent:    avg * loadToCPU,
		MemoryPercent: ParseMemoryPercent(mem.Stdout),
		DiskPercent:   ParseDiskPercent(disk.Stdout),
		LoadAverage:   avg,
	}, nil
}

// network probes reachability with a single ping bounded by ProbeTimeout.
// A probe that cannot run counts as disconnected.
func (o *Observer) network(ctx context.Context) Network {
	ctx, cancel := context.WithTimeout(ctx, o.opts.ProbeTimeout)
	defer cancel()

	wait := strconv.Itoa(max(int(o.opts.ProbeTimeout/time.Second), 1))
	res, err := o.exec.Run(ctx, "ping", "-c", "1", "-W", wait, o.opts.ProbeHost)
	if err != nil {
		o.logger.Debug("reachability probe failed", zap.String("host", o.opts.ProbeHost), zap.Error(err))
		return Network{}
	}
	n := Network{Connected: res.Success()}
	if n.Connected {
		if ms, ok := ParsePingLatency(res.Stdout); ok {
			n.LatencyMs = &ms
		}
	}
	return n
}
