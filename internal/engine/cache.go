package engine

import (
	"strings"

	"github.com/google/uuid"

	"github.com/warekit/shuttle/pkg/api"
)

type (
	// Cache is the read-mostly lookup store of one application's loaded
	// definitions. It is populated during a load phase and treated as
	// immutable afterward; a reload builds a new Cache and publishes it
	// atomically on the Engine.
	Cache struct {
		modules       map[uuid.UUID]*api.Module
		processes     map[uuid.UUID]*api.ProcessModule
		compares      map[uuid.UUID]*api.CompareAction
		calculates    map[uuid.UUID]*api.CalculateAction
		databases     map[uuid.UUID]*api.DatabaseAction
		dialogs       map[uuid.UUID]*api.DialogAction
		screenFormats map[uuid.UUID]*api.ScreenFormat
		fields        map[uuid.UUID]*api.FieldModule
		fieldsByName  map[string]*api.FieldModule
	}

	// CacheCounts summarizes loaded definition counts for health reporting
	CacheCounts struct {
		Modules         int
		Processes       int
		DatabaseActions int
		Fields          int
	}
)

// NewCache creates an empty definition cache
func NewCache() *Cache {
	return &Cache{
		modules:       map[uuid.UUID]*api.Module{},
		processes:     map[uuid.UUID]*api.ProcessModule{},
		compares:      map[uuid.UUID]*api.CompareAction{},
		calculates:    map[uuid.UUID]*api.CalculateAction{},
		databases:     map[uuid.UUID]*api.DatabaseAction{},
		dialogs:       map[uuid.UUID]*api.DialogAction{},
		screenFormats: map[uuid.UUID]*api.ScreenFormat{},
		fields:        map[uuid.UUID]*api.FieldModule{},
		fieldsByName:  map[string]*api.FieldModule{},
	}
}

func (c *Cache) AddModule(m *api.Module) {
	c.modules[m.ID] = m
}

func (c *Cache) AddProcess(p *api.ProcessModule) {
	c.processes[p.ID] = p
}

func (c *Cache) AddCompare(a *api.CompareAction) {
	c.compares[a.ID] = a
}

func (c *Cache) AddCalculate(a *api.CalculateAction) {
	c.calculates[a.ID] = a
}

func (c *Cache) AddDatabase(a *api.DatabaseAction) {
	c.databases[a.ID] = a
}

func (c *Cache) AddDialog(a *api.DialogAction) {
	c.dialogs[a.ID] = a
}

func (c *Cache) AddScreenFormat(s *api.ScreenFormat) {
	c.screenFormats[s.ID] = s
}

// AddField registers a field module and indexes it by the owning module's
// name (case-insensitive) for parameter binding
func (c *Cache) AddField(f *api.FieldModule) {
	c.fields[f.ID] = f
	if m, ok := c.modules[f.ID]; ok && m.Name != "" {
		c.fieldsByName[strings.ToLower(m.Name)] = f
	}
}

func (c *Cache) Module(id uuid.UUID) *api.Module {
	return c.modules[id]
}

func (c *Cache) Process(id uuid.UUID) *api.ProcessModule {
	return c.processes[id]
}

func (c *Cache) Compare(id uuid.UUID) *api.CompareAction {
	return c.compares[id]
}

func (c *Cache) Calculate(id uuid.UUID) *api.CalculateAction {
	return c.calculates[id]
}

func (c *Cache) Database(id uuid.UUID) *api.DatabaseAction {
	return c.databases[id]
}

func (c *Cache) Dialog(id uuid.UUID) *api.DialogAction {
	return c.dialogs[id]
}

func (c *Cache) ScreenFormat(id uuid.UUID) *api.ScreenFormat {
	return c.screenFormats[id]
}

func (c *Cache) Field(id uuid.UUID) *api.FieldModule {
	return c.fields[id]
}

// FieldByName resolves a field by its owning module's name, ignoring case
func (c *Cache) FieldByName(name string) *api.FieldModule {
	return c.fieldsByName[strings.ToLower(name)]
}

// Counts reports loaded definition counts
func (c *Cache) Counts() CacheCounts {
	return CacheCounts{
		Modules:         len(c.modules),
		Processes:       len(c.processes),
		DatabaseActions: len(c.databases),
		Fields:          len(c.fields),
	}
}
