// Package editor implements the interaction model of the infrastructure map
// editor: placing icons by drag and drop, wiring cables between them, and
// saving and loading named diagrams through a MapStore.
//
// A Session is owned by a single operator and is not safe for concurrent use.
package editor

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/agonsep/21stCentury/pkg/geocode"
	"github.com/agonsep/21stCentury/pkg/models"
)

// State is the placement/connection interaction state
type State int

const (
	Idle State = iota
	DraggingToPlace
	CableSelectFirst
	CableSelectSecond
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case DraggingToPlace:
		return "dragging-to-place"
	case CableSelectFirst:
		return "cable-select-first"
	case CableSelectSecond:
		return "cable-select-second"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrUnsavedChanges is returned by Load when the scene has edits that
	// were not saved and discarding them was not requested
	ErrUnsavedChanges = errors.New("scene has unsaved changes")

	// ErrConfirmationRequired is returned by Delete without confirmation
	ErrConfirmationRequired = errors.New("deleting a map requires confirmation")

	ErrInvalidState      = errors.New("operation not allowed in current state")
	ErrUnknownIcon       = errors.New("unknown icon")
	ErrUnknownConnection = errors.New("unknown connection")
	ErrUnknownIconType   = errors.New("unknown icon type")
	ErrNotPlaceable      = errors.New("icon type cannot be placed")
	ErrNameRequired      = errors.New("map name is required")
	ErrNoIcons           = errors.New("map has no icons")
	ErrTooFewIcons       = errors.New("cable mode needs at least two icons")
	ErrNoGeocoder        = errors.New("no geocoder configured")
)

// MapStore persists diagrams. *client.Client satisfies it.
type MapStore interface {
	ListMaps(ctx context.Context) ([]*models.MapSummary, error)
	GetMap(ctx context.Context, id int64) (*models.Map, error)
	CreateMap(ctx context.Context, m *models.Map) (*models.Map, error)
	DeleteMap(ctx context.Context, id int64) error
}

// Geocoder resolves search text to a coordinate
type Geocoder interface {
	Search(ctx context.Context, query string) (*geocode.Result, error)
}

// link is a cable stored by endpoint ids only. Position and name snapshots
// are resolved from the icon list whenever connections are read.
type link struct {
	id   string
	from string
	to   string
}

// Option configures a Session
type Option func(*Session)

// WithGeocoder enables Search
func WithGeocoder(g Geocoder) Option {
	return func(s *Session) {
		s.geocoder = g
	}
}

// WithIDGenerator replaces the UUID generator used for icon and connection ids
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		s.newID = fn
	}
}

// Session is one operator's editing session
type Session struct {
	store    MapStore
	geocoder Geocoder
	newID    func() string

	name   string
	center models.LatLng
	layer  models.Layer
	icons  []models.Icon
	links  []link

	state       State
	dragType    string
	pendingFrom string
	dirty       bool
	loadedID    int64
	savedMaps   []*models.MapSummary
}

// NewSession starts an empty scene centered on the contiguous United States
func NewSession(store MapStore, opts ...Option) *Session {
	s := &Session{
		store:  store,
		newID:  uuid.NewString,
		center: models.DefaultCenter,
		layer:  models.DefaultLayer,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State          { return s.state }
func (s *Session) Name() string          { return s.name }
func (s *Session) Center() models.LatLng { return s.center }
func (s *Session) Layer() models.Layer   { return s.layer }
func (s *Session) Dirty() bool           { return s.dirty }

// DragType is the icon type being dragged, if any
func (s *Session) DragType() string { return s.dragType }

// PendingSource is the first endpoint chosen in cable mode, if any
func (s *Session) PendingSource() string { return s.pendingFrom }

// LoadedID is the id of the map last loaded or saved, or 0
func (s *Session) LoadedID() int64 { return s.loadedID }

// SavedMaps is the listing fetched by the last List, Save or Delete
func (s *Session) SavedMaps() []*models.MapSummary { return s.savedMaps }

// Icons returns a copy of the placed icons in placement order
func (s *Session) Icons() []models.Icon {
	return slices.Clone(s.icons)
}

// Connections returns the cables with endpoint positions and names taken
// from the current icons
func (s *Session) Connections() []models.Connection {
	conns := make([]models.Connection, len(s.links))
	for i, l := range s.links {
		conns[i] = models.Connection{ID: l.id, From: l.from, To: l.to}
	}
	return models.ResolveConnections(s.icons, conns)
}

// Snapshot returns the scene in its persisted form
func (s *Session) Snapshot() *models.Map {
	return &models.Map{
		ID:          s.loadedID,
		Name:        s.name,
		Center:      s.center,
		Layer:       s.layer,
		Icons:       s.Icons(),
		Connections: s.Connections(),
	}
}

func (s *Session) icon(id string) (int, bool) {
	i := slices.IndexFunc(s.icons, func(ic models.Icon) bool { return ic.ID == id })
	return i, i >= 0
}

func (s *Session) reset() {
	s.state = Idle
	s.dragType = ""
	s.pendingFrom = ""
}

// BeginDrag starts dragging an icon type from the palette
func (s *Session) BeginDrag(typeID string) error {
	if s.state != Idle {
		return fmt.Errorf("begin drag in %s: %w", s.state, ErrInvalidState)
	}
	t, ok := models.LookupIconType(typeID)
	if !ok {
		return fmt.Errorf("%q: %w", typeID, ErrUnknownIconType)
	}
	if t.IsConnector {
		return fmt.Errorf("%q: %w", typeID, ErrNotPlaceable)
	}

	s.state = DraggingToPlace
	s.dragType = typeID
	return nil
}

// AbortDrag cancels a drag without placing anything
func (s *Session) AbortDrag() {
	if s.state == DraggingToPlace {
		s.reset()
	}
}

// Drop places the dragged icon at the coordinate under screen point p
func (s *Session) Drop(p Point, proj Projector) (models.Icon, error) {
	if s.state != DraggingToPlace {
		return models.Icon{}, fmt.Errorf("drop in %s: %w", s.state, ErrInvalidState)
	}
	typeID := s.dragType
	s.reset()
	return s.PlaceAt(typeID, proj.ToLatLng(p))
}

// PlaceAt appends an icon of typeID at pos. Its display name is the type
// name followed by the count of icons of that type.
func (s *Session) PlaceAt(typeID string, pos models.LatLng) (models.Icon, error) {
	if s.state == CableSelectFirst || s.state == CableSelectSecond {
		return models.Icon{}, fmt.Errorf("place in %s: %w", s.state, ErrInvalidState)
	}
	t, ok := models.LookupIconType(typeID)
	if !ok {
		return models.Icon{}, fmt.Errorf("%q: %w", typeID, ErrUnknownIconType)
	}
	if t.IsConnector {
		return models.Icon{}, fmt.Errorf("%q: %w", typeID, ErrNotPlaceable)
	}
	if err := pos.Validate(); err != nil {
		return models.Icon{}, err
	}

	sameType := 0
	for _, ic := range s.icons {
		if ic.Type == typeID {
			sameType++
		}
	}

	ic := models.Icon{
		ID:       s.newID(),
		Type:     typeID,
		Position: pos,
		Name:     fmt.Sprintf("%s %d", t.Name, sameType+1),
	}
	s.icons = append(s.icons, ic)
	s.reset()
	s.dirty = true
	return ic, nil
}

// StartCableMode waits for the operator to pick the first endpoint
func (s *Session) StartCableMode() error {
	if len(s.icons) < 2 {
		return ErrTooFewIcons
	}
	s.reset()
	s.state = CableSelectFirst
	return nil
}

// ConnectFrom is the "Connect" action on a placed icon. Like the palette
// cable it enters cable-select-first; the next clicked icon is the source.
func (s *Session) ConnectFrom(iconID string) error {
	if _, ok := s.icon(iconID); !ok {
		return fmt.Errorf("%q: %w", iconID, ErrUnknownIcon)
	}
	return s.StartCableMode()
}

// ClickIcon handles a click on a placed icon. In cable mode the first click
// picks the source and a click on a different icon creates the connection,
// which is returned. Clicking the source again changes nothing.
func (s *Session) ClickIcon(iconID string) (*models.Connection, error) {
	if _, ok := s.icon(iconID); !ok {
		return nil, fmt.Errorf("%q: %w", iconID, ErrUnknownIcon)
	}

	switch s.state {
	case CableSelectFirst:
		s.state = CableSelectSecond
		s.pendingFrom = iconID
		return nil, nil
	case CableSelectSecond:
		if iconID == s.pendingFrom {
			return nil, nil
		}
		l := link{id: s.newID(), from: s.pendingFrom, to: iconID}
		s.links = append(s.links, l)
		s.reset()
		s.dirty = true

		conn := models.ResolveConnections(s.icons, []models.Connection{{ID: l.id, From: l.from, To: l.to}})[0]
		return &conn, nil
	default:
		return nil, nil
	}
}

// Cancel leaves cable mode or drag mode, discarding the partial selection
func (s *Session) Cancel() {
	s.reset()
}

// MoveIcon repositions an icon. Connections follow automatically.
func (s *Session) MoveIcon(iconID string, pos models.LatLng) error {
	i, ok := s.icon(iconID)
	if !ok {
		return fmt.Errorf("%q: %w", iconID, ErrUnknownIcon)
	}
	if err := pos.Validate(); err != nil {
		return err
	}
	s.icons[i].Position = pos
	s.dirty = true
	return nil
}

// RenameIcon sets an icon's display name
func (s *Session) RenameIcon(iconID, name string) error {
	i, ok := s.icon(iconID)
	if !ok {
		return fmt.Errorf("%q: %w", iconID, ErrUnknownIcon)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("icon name must not be empty")
	}
	s.icons[i].Name = name
	s.dirty = true
	return nil
}

// RemoveIcon deletes an icon together with every connection attached to it
// and returns how many connections were removed
func (s *Session) RemoveIcon(iconID string) (int, error) {
	i, ok := s.icon(iconID)
	if !ok {
		return 0, fmt.Errorf("%q: %w", iconID, ErrUnknownIcon)
	}
	s.icons = slices.Delete(s.icons, i, i+1)

	before := len(s.links)
	s.links = slices.DeleteFunc(s.links, func(l link) bool {
		return l.from == iconID || l.to == iconID
	})

	if s.pendingFrom == iconID {
		s.reset()
	}
	if s.state == CableSelectFirst && len(s.icons) < 2 {
		s.reset()
	}
	s.dirty = true
	return before - len(s.links), nil
}

// RemoveConnection deletes one cable
func (s *Session) RemoveConnection(connID string) error {
	i := slices.IndexFunc(s.links, func(l link) bool { return l.id == connID })
	if i < 0 {
		return fmt.Errorf("%q: %w", connID, ErrUnknownConnection)
	}
	s.links = slices.Delete(s.links, i, i+1)
	s.dirty = true
	return nil
}

// ClearIcons removes every icon. Connections go with them.
func (s *Session) ClearIcons() {
	s.icons = nil
	s.links = nil
	s.reset()
	s.dirty = true
}

// ClearConnections removes every cable and keeps the icons
func (s *Session) ClearConnections() {
	s.links = nil
	s.reset()
	s.dirty = true
}

// ClearAll empties the scene and leaves cable mode
func (s *Session) ClearAll() {
	s.ClearIcons()
}

// SetName sets the name the scene is saved under
func (s *Session) SetName(name string) {
	if s.name != name {
		s.name = name
		s.dirty = true
	}
}

func (s *Session) SetCenter(pos models.LatLng) error {
	if err := pos.Validate(); err != nil {
		return err
	}
	if s.center != pos {
		s.center = pos
		s.dirty = true
	}
	return nil
}

func (s *Session) SetLayer(layer models.Layer) error {
	parsed, err := models.ParseLayer(string(layer))
	if err != nil {
		return err
	}
	if s.layer != parsed {
		s.layer = parsed
		s.dirty = true
	}
	return nil
}

// Search recenters the map on the best match for query. On failure the
// center is left unchanged.
func (s *Session) Search(ctx context.Context, query string) (*geocode.Result, error) {
	if s.geocoder == nil {
		return nil, ErrNoGeocoder
	}
	res, err := s.geocoder.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if err := s.SetCenter(res.Position); err != nil {
		return nil, err
	}
	return res, nil
}

// Save stores the scene as a new map and refreshes the listing
func (s *Session) Save(ctx context.Context) (*models.Map, error) {
	name := strings.TrimSpace(s.name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if len(s.icons) == 0 {
		return nil, ErrNoIcons
	}

	m := s.Snapshot()
	m.ID = 0
	m.Name = name

	saved, err := s.store.CreateMap(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("failed to save map: %w", err)
	}
	s.name = saved.Name
	s.loadedID = saved.ID
	s.dirty = false
	log.Debug().Int64("map_id", saved.ID).Str("name", saved.Name).Msg("Saved map")

	if _, err := s.List(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh saved maps after save")
	}
	return saved, nil
}

// Load replaces the whole scene with a stored map. When the scene has
// unsaved edits it returns ErrUnsavedChanges unless discard is set.
func (s *Session) Load(ctx context.Context, id int64, discard bool) error {
	if s.dirty && !discard {
		return ErrUnsavedChanges
	}

	m, err := s.store.GetMap(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load map %d: %w", id, err)
	}

	layer, err := models.ParseLayer(string(m.Layer))
	if err != nil {
		layer = models.DefaultLayer
	}

	s.name = m.Name
	s.center = m.Center
	s.layer = layer
	s.icons = slices.Clone(m.Icons)
	s.links = make([]link, 0, len(m.Connections))
	for _, c := range m.Connections {
		s.links = append(s.links, link{id: c.ID, from: c.From, to: c.To})
	}
	s.loadedID = m.ID
	s.dirty = false
	s.reset()
	log.Debug().Int64("map_id", m.ID).Int("icons", len(m.Icons)).Msg("Loaded map")
	return nil
}

// Delete removes a stored map and refreshes the listing. The operator must
// confirm.
func (s *Session) Delete(ctx context.Context, id int64, confirm bool) error {
	if !confirm {
		return ErrConfirmationRequired
	}
	if err := s.store.DeleteMap(ctx, id); err != nil {
		return fmt.Errorf("failed to delete map %d: %w", id, err)
	}
	if s.loadedID == id {
		s.loadedID = 0
	}

	if _, err := s.List(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to refresh saved maps after delete")
	}
	return nil
}

// List fetches the saved-map summaries
func (s *Session) List(ctx context.Context) ([]*models.MapSummary, error) {
	maps, err := s.store.ListMaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	s.savedMaps = maps
	return maps, nil
}
