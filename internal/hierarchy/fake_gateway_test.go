package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"rental-manager/internal/models"

	"github.com/google/uuid"
)

var errUnreachable = errors.New("backend unreachable")

// fakeGateway is an in-memory remote backend that records every call
type fakeGateway struct {
	mu sync.Mutex

	calls   []string
	ids     map[string][]string      // entity -> queued ids to hand out
	fail    map[string]error         // "op entity" -> error
	gates   map[string]chan struct{} // "op entity" -> released when closed
	entered chan string

	properties map[string][]models.Property // by owner
	units      map[string][]models.Unit     // by property
	subUnits   map[string][]models.SubUnit  // by unit
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		ids:        make(map[string][]string),
		fail:       make(map[string]error),
		gates:      make(map[string]chan struct{}),
		entered:    make(chan string, 64),
		properties: make(map[string][]models.Property),
		units:      make(map[string][]models.Unit),
		subUnits:   make(map[string][]models.SubUnit),
	}
}

func (f *fakeGateway) queueIDs(entity string, ids ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids[entity] = append(f.ids[entity], ids...)
}

func (f *fakeGateway) failOn(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[key] = err
}

// hold makes calls to key block until the returned func is called
func (f *fakeGateway) hold(key string) func() {
	ch := make(chan struct{})
	f.mu.Lock()
	f.gates[key] = ch
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (f *fakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeGateway) countCalls(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

// enter records the call, then waits on its gate and returns the configured failure.
// A held call gives up when ctx is done.
func (f *fakeGateway) enter(ctx context.Context, key, detail string) error {
	f.mu.Lock()
	f.calls = append(f.calls, key+" "+detail)
	gate := f.gates[key]
	err := f.fail[key]
	f.mu.Unlock()

	select {
	case f.entered <- key:
	default:
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeGateway) nextID(entity string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if q := f.ids[entity]; len(q) > 0 {
		f.ids[entity] = q[1:]
		return q[0]
	}
	return uuid.NewString()
}

func (f *fakeGateway) CreateProperty(ctx context.Context, ownerID string, p models.Property) (models.Property, error) {
	if err := f.enter(ctx, "create property", "owner="+ownerID); err != nil {
		return models.Property{}, err
	}
	p = p.Clone()
	p.ID = f.nextID(entityProperty)
	p.Sync = models.SyncSynced
	p.Units = nil
	f.mu.Lock()
	f.properties[ownerID] = append(f.properties[ownerID], p)
	f.mu.Unlock()
	return p, nil
}

func (f *fakeGateway) UpdateProperty(ctx context.Context, id string, _ models.PropertyPatch) error {
	return f.enter(ctx, "update property", id)
}

func (f *fakeGateway) DeleteProperty(ctx context.Context, id string) error {
	return f.enter(ctx, "delete property", id)
}

func (f *fakeGateway) ListProperties(ctx context.Context, ownerID string) ([]models.Property, error) {
	if err := f.enter(ctx, "list property", ownerID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Property, 0, len(f.properties[ownerID]))
	for _, p := range f.properties[ownerID] {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (f *fakeGateway) CreateUnit(ctx context.Context, propertyID string, u models.Unit) (models.Unit, error) {
	if err := f.enter(ctx, "create unit", "property="+propertyID); err != nil {
		return models.Unit{}, err
	}
	u = u.Clone()
	u.ID = f.nextID(entityUnit)
	u.Sync = models.SyncSynced
	u.SubUnits = nil
	f.mu.Lock()
	f.units[propertyID] = append(f.units[propertyID], u)
	f.mu.Unlock()
	return u, nil
}

func (f *fakeGateway) UpdateUnit(ctx context.Context, id string, _ models.UnitPatch) error {
	return f.enter(ctx, "update unit", id)
}

func (f *fakeGateway) DeleteUnit(ctx context.Context, id string) error {
	return f.enter(ctx, "delete unit", id)
}

func (f *fakeGateway) ListUnits(ctx context.Context, propertyID string) ([]models.Unit, error) {
	if err := f.enter(ctx, "list unit", propertyID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Unit, 0, len(f.units[propertyID]))
	for _, u := range f.units[propertyID] {
		out = append(out, u.Clone())
	}
	return out, nil
}

func (f *fakeGateway) CreateSubUnit(ctx context.Context, unitID string, s models.SubUnit) (models.SubUnit, error) {
	if err := f.enter(ctx, "create sub_unit", "unit="+unitID); err != nil {
		return models.SubUnit{}, err
	}
	s = s.Clone()
	s.ID = f.nextID(entitySubUnit)
	s.Sync = models.SyncSynced
	f.mu.Lock()
	f.subUnits[unitID] = append(f.subUnits[unitID], s)
	f.mu.Unlock()
	return s, nil
}

func (f *fakeGateway) UpdateSubUnit(ctx context.Context, id string, _ models.SubUnitPatch) error {
	return f.enter(ctx, "update sub_unit", id)
}

func (f *fakeGateway) DeleteSubUnit(ctx context.Context, id string) error {
	return f.enter(ctx, "delete sub_unit", id)
}

func (f *fakeGateway) ListSubUnits(ctx context.Context, unitID string) ([]models.SubUnit, error) {
	if err := f.enter(ctx, "list sub_unit", unitID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.SubUnit, 0, len(f.subUnits[unitID]))
	for _, s := range f.subUnits[unitID] {
		out = append(out, s.Clone())
	}
	return out, nil
}

// seed installs a remote tree for owner
func (f *fakeGateway) seed(ownerID string, props ...models.Property) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range props {
		p = p.Clone()
		for _, u := range p.Units {
			for _, s := range u.SubUnits {
				f.subUnits[u.ID] = append(f.subUnits[u.ID], s)
			}
			u.SubUnits = nil
			f.units[p.ID] = append(f.units[p.ID], u)
		}
		p.Units = nil
		f.properties[ownerID] = append(f.properties[ownerID], p)
	}
}

func (f *fakeGateway) String() string {
	return fmt.Sprintf("fakeGateway%v", f.Calls())
}
