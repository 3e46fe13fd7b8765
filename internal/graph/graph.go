package graph

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vk/phasegrid/internal/binding"
	"github.com/vk/phasegrid/internal/ctxlog"
	"github.com/vk/phasegrid/internal/lam"
	"github.com/vk/phasegrid/internal/quantity"
	"github.com/vk/phasegrid/internal/scheduler"
	"github.com/vk/phasegrid/internal/varstore"
)

// TimeRole tags the shared clock quantity in the global group.
const TimeRole quantity.Role = "time"

// DefaultTimeStep is how far the clock advances per tick.
const DefaultTimeStep = 0.02

// Options configures a Manager.
type Options struct {
	// TimeStep is added to the clock every tick. Zero uses DefaultTimeStep;
	// a negative value freezes the clock.
	TimeStep float64
	// Workers is passed to the scheduler.
	Workers int
}

// Report describes one completed tick.
type Report struct {
	Tick     uint64
	Result   scheduler.Result
	Inputs   int
	Duration time.Duration
}

// Manager composes the store, scheduler and binding layer.
type Manager struct {
	store    *varstore.Store
	sched    *scheduler.Scheduler
	layer    *binding.Layer
	timeStep float64

	inputMu sync.Mutex
	inputs  []Input

	tick uint64
}

var _ Graph = (*Manager)(nil)

// New creates a manager with an empty store.
func New(opts Options) *Manager {
	step := opts.TimeStep
	if step == 0 {
		step = DefaultTimeStep
	}
	if step < 0 {
		step = 0
	}
	return &Manager{
		store:    varstore.New(),
		sched:    scheduler.New(scheduler.Options{Workers: opts.Workers}),
		layer:    binding.NewLayer(),
		timeStep: step,
	}
}

// Store returns the underlying store for setup code.
func (m *Manager) Store() *varstore.Store {
	return m.store
}

// Bindings returns the binding layer.
func (m *Manager) Bindings() *binding.Layer {
	return m.layer
}

// Ticks returns the number of completed ticks.
func (m *Manager) Ticks() uint64 {
	return m.tick
}

// Independent creates an independent quantity tagged with roles.
func (m *Manager) Independent(group quantity.Group, name string, v float64, roles ...quantity.Role) quantity.ID {
	id := m.store.CreateIndependent(group, name, v)
	if len(roles) > 0 {
		// Cannot fail for a handle that was just issued.
		_ = m.store.Tag(id, roles...)
	}
	return id
}

// Dependent creates a dependent quantity tagged with roles.
func (m *Manager) Dependent(group quantity.Group, name string, expr lam.Expr, roles ...quantity.Role) quantity.ID {
	id := m.store.CreateDependent(group, name, expr)
	if len(roles) > 0 {
		_ = m.store.Tag(id, roles...)
	}
	return id
}

// Redefine swaps the expression of a dependent.
func (m *Manager) Redefine(id quantity.ID, expr lam.Expr) error {
	return m.store.Redefine(id, expr)
}

// Clock returns the shared time quantity, creating it on first use. An
// untagged independent global.time is adopted as the clock. A dependent
// global.time is returned as is and never advanced.
func (m *Manager) Clock() quantity.ID {
	if id, err := m.store.Find(quantity.Global, TimeRole); err == nil {
		return id
	}
	if id, err := m.store.Lookup(quantity.Global, "time"); err == nil {
		if kind, _ := m.store.Kind(id); kind == quantity.Independent {
			_ = m.store.Tag(id, TimeRole)
		}
		return id
	}
	return m.Independent(quantity.Global, "time", 0, TimeRole)
}

// Bind binds id in the manager's layer.
func (m *Manager) Bind(id quantity.ID) (*binding.Binding, error) {
	return m.layer.Bind(m.store, id)
}

// RemoveGroup deletes every quantity of group and releases the bindings
// that followed them.
func (m *Manager) RemoveGroup(ctx context.Context, group quantity.Group) []quantity.ID {
	removed := m.store.RemoveGroup(group)
	released := m.layer.ReleaseTarget(removed...)
	ctxlog.FromContext(ctx).Debug("Removed group.", "group", group, "quantities", len(removed), "bindings", released)
	return removed
}

// Tick runs one evaluation cycle.
func (m *Manager) Tick(ctx context.Context) (Report, error) {
	logger := ctxlog.FromContext(ctx)
	start := time.Now()
	report := Report{Tick: m.tick + 1}

	inputs := m.drainInputs()
	for _, in := range inputs {
		if err := m.apply(in); err != nil {
			logger.Warn("Dropping input.", "error", err)
			continue
		}
		report.Inputs++
	}

	if err := m.advanceClock(); err != nil {
		return report, err
	}

	res, err := m.sched.Run(ctx, m.store)
	report.Result = res
	var unresolved *scheduler.UnresolvedError
	switch {
	case errors.As(err, &unresolved):
		logger.Warn("Unresolved dependencies.", "tick", report.Tick, "ids", m.addresses(unresolved.IDs))
	case err != nil:
		return report, fmt.Errorf("tick %d: %w", report.Tick, err)
	}

	if err := m.layer.Refresh(m.store); err != nil {
		logger.Warn("Bindings went stale.", "tick", report.Tick, "error", err)
	}

	m.tick = report.Tick
	report.Duration = time.Since(start)
	logger.Debug("Tick complete.", "tick", report.Tick, "state", res.State, "waves", res.Waves, "evaluated", res.Evaluated)
	return report, nil
}

func (m *Manager) advanceClock() error {
	if m.timeStep == 0 {
		return nil
	}
	id, err := m.store.Find(quantity.Global, TimeRole)
	if errors.Is(err, varstore.ErrAmbiguousOrMissingRole) {
		var me *varstore.MatchError
		if errors.As(err, &me) && len(me.Matches) == 0 {
			return nil
		}
		return fmt.Errorf("advancing clock: %w", err)
	}
	if err != nil {
		return fmt.Errorf("advancing clock: %w", err)
	}
	now, err := m.store.Value(id)
	if err != nil {
		return fmt.Errorf("advancing clock: %w", err)
	}
	return m.store.SetValue(id, now+m.timeStep)
}

// Readings returns bound values keyed by "group.name". Bindings that share
// an address report the same value, so duplicates collapse.
func (m *Manager) Readings() map[string]float64 {
	out := make(map[string]float64)
	for _, r := range m.layer.Snapshot() {
		info, err := m.store.Info(r.Target)
		if err != nil {
			continue
		}
		out[info.Address().String()] = r.Value
	}
	return out
}

// Values returns the current value of every live quantity keyed by
// "group.name", bound or not.
func (m *Manager) Values() map[string]float64 {
	out := make(map[string]float64)
	for _, g := range m.store.Groups() {
		for _, id := range m.store.InGroup(g) {
			info, err := m.store.Info(id)
			if err != nil {
				continue
			}
			out[info.Address().String()] = info.Value
		}
	}
	return out
}

func (m *Manager) addresses(ids []quantity.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = m.name(id)
	}
	return out
}

// name renders id as "group.name", falling back to the raw handle.
func (m *Manager) name(id quantity.ID) string {
	info, err := m.store.Info(id)
	if err != nil || info.Name == "" {
		return id.String()
	}
	return info.Address().String()
}
