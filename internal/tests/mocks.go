package tests

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"bikeride/internal/domain"
	"bikeride/internal/ephemeral"
	"bikeride/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK RIDE JOURNEY REPOSITORY
// ──────────────────────────────────────────────

// MockRideJourneyRepository is a mock implementation of RideJourneyRepository.
type MockRideJourneyRepository struct {
	mu       sync.RWMutex
	journeys map[string]*domain.RideJourney

	// Counters for verification
	CreateCallCount       int32
	UpdateStatusCallCount int32

	// Error injection
	CreateError       error
	GetError          error
	UpdateStatusError error
}

// NewMockRideJourneyRepository creates a new mock ride journey repository.
func NewMockRideJourneyRepository() *MockRideJourneyRepository {
	return &MockRideJourneyRepository{
		journeys: make(map[string]*domain.RideJourney),
	}
}

// AddJourney adds a journey to the mock repository.
func (m *MockRideJourneyRepository) AddJourney(journey *domain.RideJourney) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *journey
	m.journeys[journey.ID] = &copy
}

func (m *MockRideJourneyRepository) Create(ctx context.Context, journey *domain.RideJourney) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, j := range m.journeys {
		if j.BookingID == journey.BookingID && j.Status.Open() {
			return repository.ErrConflict
		}
	}
	copy := *journey
	m.journeys[journey.ID] = &copy
	return nil
}

func (m *MockRideJourneyRepository) GetByID(ctx context.Context, id string) (*domain.RideJourney, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	journey, ok := m.journeys[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *journey
	return &copy, nil
}

func (m *MockRideJourneyRepository) GetOpenByBookingID(ctx context.Context, bookingID string) (*domain.RideJourney, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, j := range m.journeys {
		if j.BookingID == bookingID && j.Status.Open() {
			copy := *j
			return &copy, nil
		}
	}
	return nil, nil
}

func (m *MockRideJourneyRepository) List(ctx context.Context, status domain.JourneyStatus) ([]*domain.RideJourney, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]*domain.RideJourney, 0, len(m.journeys))
	for _, j := range m.journeys {
		if status != "" && j.Status != status {
			continue
		}
		copy := *j
		result = append(result, &copy)
	}
	sort.Slice(result, func(i, k int) bool {
		return result[i].CreatedAt.After(result[k].CreatedAt)
	})
	return result, nil
}

func (m *MockRideJourneyRepository) UpdateStatus(ctx context.Context, journey *domain.RideJourney, from ...domain.JourneyStatus) (bool, error) {
	atomic.AddInt32(&m.UpdateStatusCallCount, 1)
	if m.UpdateStatusError != nil {
		return false, m.UpdateStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.journeys[journey.ID]
	if !ok {
		return false, repository.ErrNotFound
	}
	for _, s := range from {
		if stored.Status == s {
			copy := *journey
			m.journeys[journey.ID] = &copy
			return true, nil
		}
	}
	return false, nil
}

// GetJourney returns a copy of a journey for test assertions.
func (m *MockRideJourneyRepository) GetJourney(id string) *domain.RideJourney {
	m.mu.RLock()
	defer m.mu.RUnlock()
	journey, ok := m.journeys[id]
	if !ok {
		return nil
	}
	copy := *journey
	return &copy
}

// SetStatus overwrites a journey's status, bypassing the state machine.
func (m *MockRideJourneyRepository) SetStatus(id string, status domain.JourneyStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.journeys[id]; ok {
		j.Status = status
	}
}

func (m *MockRideJourneyRepository) snapshot() map[string]domain.RideJourney {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.RideJourney, len(m.journeys))
	for id, j := range m.journeys {
		out[id] = *j
	}
	return out
}

func (m *MockRideJourneyRepository) restore(state map[string]domain.RideJourney) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journeys = make(map[string]*domain.RideJourney, len(state))
	for id, j := range state {
		j := j
		m.journeys[id] = &j
	}
}

// ──────────────────────────────────────────────
// MOCK TRACKING REPOSITORY
// ──────────────────────────────────────────────

type pointKey struct {
	timestamp int64
	lat, lng  float64
}

// MockTrackingRepository is a mock implementation of TrackingRepository.
// Points are unique on their natural key, like the database table.
type MockTrackingRepository struct {
	mu     sync.RWMutex
	points map[string]map[pointKey]domain.LocationSample
	paths  map[string]*domain.TrackingPath

	// Counters for verification
	InsertCallCount     int32
	CreatePathCallCount int32

	// Error injection
	InsertError     error
	CreatePathError error
	RecentError     error
}

// NewMockTrackingRepository creates a new mock tracking repository.
func NewMockTrackingRepository() *MockTrackingRepository {
	return &MockTrackingRepository{
		points: make(map[string]map[pointKey]domain.LocationSample),
		paths:  make(map[string]*domain.TrackingPath),
	}
}

func (m *MockTrackingRepository) InsertPoints(ctx context.Context, journeyID string, samples []domain.LocationSample) (int64, error) {
	atomic.AddInt32(&m.InsertCallCount, 1)
	if m.InsertError != nil {
		return 0, m.InsertError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, ok := m.points[journeyID]
	if !ok {
		set = make(map[pointKey]domain.LocationSample)
		m.points[journeyID] = set
	}
	var inserted int64
	for _, s := range samples {
		key := pointKey{timestamp: s.Timestamp, lat: s.Lat, lng: s.Lng}
		if _, exists := set[key]; exists {
			continue
		}
		set[key] = s
		inserted++
	}
	return inserted, nil
}

func (m *MockTrackingRepository) CreatePath(ctx context.Context, path *domain.TrackingPath) (bool, error) {
	atomic.AddInt32(&m.CreatePathCallCount, 1)
	if m.CreatePathError != nil {
		return false, m.CreatePathError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.paths[path.RideJourneyID]; exists {
		return false, nil
	}
	copy := *path
	copy.Points = append([]domain.LocationSample(nil), path.Points...)
	m.paths[path.RideJourneyID] = &copy
	return true, nil
}

func (m *MockTrackingRepository) GetPath(ctx context.Context, journeyID string) (*domain.TrackingPath, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	path, ok := m.paths[journeyID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *path
	return &copy, nil
}

func (m *MockTrackingRepository) RecentPoints(ctx context.Context, journeyID string, limit int) ([]domain.LocationSample, error) {
	if m.RecentError != nil {
		return nil, m.RecentError
	}
	points := m.Points(journeyID)
	if len(points) > limit {
		points = points[len(points)-limit:]
	}
	return points, nil
}

func (m *MockTrackingRepository) CountPoints(ctx context.Context, journeyID string) (int64, error) {
	return int64(m.PointCount(journeyID)), nil
}

// Points returns the stored points of a journey ordered by timestamp.
func (m *MockTrackingRepository) Points(journeyID string) []domain.LocationSample {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result := make([]domain.LocationSample, 0, len(m.points[journeyID]))
	for _, s := range m.points[journeyID] {
		result = append(result, s)
	}
	return domain.NormalizeSamples(result)
}

// PointCount returns the number of stored points for a journey.
func (m *MockTrackingRepository) PointCount(journeyID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points[journeyID])
}

// PathCount returns the number of stored path snapshots.
func (m *MockTrackingRepository) PathCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.paths)
}

// ──────────────────────────────────────────────
// MOCK BOOKING REPOSITORY
// ──────────────────────────────────────────────

// MockBookingRepository is a mock implementation of BookingRepository.
type MockBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking

	// Error injection
	SetStatusError error
}

// NewMockBookingRepository creates a new mock booking repository.
func NewMockBookingRepository() *MockBookingRepository {
	return &MockBookingRepository{
		bookings: make(map[string]*domain.Booking),
	}
}

// AddBooking adds a booking to the mock repository.
func (m *MockBookingRepository) AddBooking(booking *domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *booking
	m.bookings[booking.ID] = &copy
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *booking
	return &copy, nil
}

func (m *MockBookingRepository) SetStatus(ctx context.Context, id string, status domain.BookingStatus) error {
	if m.SetStatusError != nil {
		return m.SetStatusError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	booking.Status = status
	return nil
}

// GetBooking returns a copy of a booking for test assertions.
func (m *MockBookingRepository) GetBooking(id string) *domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil
	}
	copy := *booking
	return &copy
}

func (m *MockBookingRepository) snapshot() map[string]domain.Booking {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.Booking, len(m.bookings))
	for id, b := range m.bookings {
		out[id] = *b
	}
	return out
}

func (m *MockBookingRepository) restore(state map[string]domain.Booking) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings = make(map[string]*domain.Booking, len(state))
	for id, b := range state {
		b := b
		m.bookings[id] = &b
	}
}

// ──────────────────────────────────────────────
// MOCK BIKE REPOSITORY
// ──────────────────────────────────────────────

// MockBikeRepository is a mock implementation of BikeRepository.
type MockBikeRepository struct {
	mu    sync.RWMutex
	bikes map[string]*domain.Bike

	// Error injection
	SetAvailabilityError error
}

// NewMockBikeRepository creates a new mock bike repository.
func NewMockBikeRepository() *MockBikeRepository {
	return &MockBikeRepository{
		bikes: make(map[string]*domain.Bike),
	}
}

// AddBike adds a bike to the mock repository.
func (m *MockBikeRepository) AddBike(bike *domain.Bike) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *bike
	m.bikes[bike.ID] = &copy
}

func (m *MockBikeRepository) GetByID(ctx context.Context, id string) (*domain.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bike, ok := m.bikes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *bike
	return &copy, nil
}

func (m *MockBikeRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	if m.SetAvailabilityError != nil {
		return m.SetAvailabilityError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	bike, ok := m.bikes[id]
	if !ok {
		return repository.ErrNotFound
	}
	bike.Available = available
	return nil
}

// GetBike returns a copy of a bike for test assertions.
func (m *MockBikeRepository) GetBike(id string) *domain.Bike {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bike, ok := m.bikes[id]
	if !ok {
		return nil
	}
	copy := *bike
	return &copy
}

func (m *MockBikeRepository) snapshot() map[string]domain.Bike {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]domain.Bike, len(m.bikes))
	for id, b := range m.bikes {
		out[id] = *b
	}
	return out
}

func (m *MockBikeRepository) restore(state map[string]domain.Bike) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bikes = make(map[string]*domain.Bike, len(state))
	for id, b := range state {
		b := b
		m.bikes[id] = &b
	}
}

// ──────────────────────────────────────────────
// MOCK USER REPOSITORY
// ──────────────────────────────────────────────

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mu    sync.RWMutex
	users map[string]*domain.User

	// Error injection
	ListAdminsError error
}

// NewMockUserRepository creates a new mock user repository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users: make(map[string]*domain.User),
	}
}

// AddUser adds a user to the mock repository.
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copy := *user
	m.users[user.ID] = &copy
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *user
	return &copy, nil
}

func (m *MockUserRepository) ListAdmins(ctx context.Context) ([]*domain.User, error) {
	if m.ListAdminsError != nil {
		return nil, m.ListAdminsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.User
	for _, u := range m.users {
		if u.Role == domain.UserRoleAdmin {
			copy := *u
			result = append(result, &copy)
		}
	}
	return result, nil
}

// ──────────────────────────────────────────────
// MOCK TRANSACTOR
// ──────────────────────────────────────────────

// MockTransactor runs transactions one at a time over the mock repositories
// and restores their state when fn fails.
type MockTransactor struct {
	mu       sync.Mutex
	journeys *MockRideJourneyRepository
	bookings *MockBookingRepository
	bikes    *MockBikeRepository

	// Counters for verification
	CallCount int32

	// Error injection, returned before fn runs
	BeginError error
}

// NewMockTransactor creates a new mock transactor.
func NewMockTransactor(journeys *MockRideJourneyRepository, bookings *MockBookingRepository, bikes *MockBikeRepository) *MockTransactor {
	return &MockTransactor{
		journeys: journeys,
		bookings: bookings,
		bikes:    bikes,
	}
}

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(repository.TxRepositories) error) error {
	atomic.AddInt32(&m.CallCount, 1)
	if m.BeginError != nil {
		return m.BeginError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	journeys := m.journeys.snapshot()
	bookings := m.bookings.snapshot()
	bikes := m.bikes.snapshot()

	err := fn(repository.TxRepositories{
		Journeys: m.journeys,
		Bookings: m.bookings,
		Bikes:    m.bikes,
	})
	if err != nil {
		m.journeys.restore(journeys)
		m.bookings.restore(bookings)
		m.bikes.restore(bikes)
		return err
	}
	return nil
}

// ──────────────────────────────────────────────
// MOCK EPHEMERAL STORE
// ──────────────────────────────────────────────

// MockEphemeralStore is a mock implementation of ephemeral.Store. Samples
// are keyed like the real backends, so re-appending is idempotent and
// ReadAll returns them in no particular order.
type MockEphemeralStore struct {
	mu      sync.Mutex
	samples map[string]map[string]domain.LocationSample

	// Counters for verification
	AppendCallCount int32
	ReadCallCount   int32
	DeleteCallCount int32

	// Error injection: the next N calls fail with the given error.
	appendFailures, readFailures, deleteFailures int
	appendErr, readErr, deleteErr                error
}

// NewMockEphemeralStore creates a new mock ephemeral store.
func NewMockEphemeralStore() *MockEphemeralStore {
	return &MockEphemeralStore{
		samples: make(map[string]map[string]domain.LocationSample),
	}
}

// FailNextAppends makes the next n AppendSample calls return err.
func (m *MockEphemeralStore) FailNextAppends(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendFailures, m.appendErr = n, err
}

// FailNextReads makes the next n ReadAll calls return err.
func (m *MockEphemeralStore) FailNextReads(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readFailures, m.readErr = n, err
}

// FailNextDeletes makes the next n DeleteAll calls return err.
func (m *MockEphemeralStore) FailNextDeletes(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteFailures, m.deleteErr = n, err
}

func (m *MockEphemeralStore) AppendSample(ctx context.Context, journeyID string, sample domain.LocationSample) error {
	atomic.AddInt32(&m.AppendCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendFailures > 0 {
		m.appendFailures--
		return m.appendErr
	}
	set, ok := m.samples[journeyID]
	if !ok {
		set = make(map[string]domain.LocationSample)
		m.samples[journeyID] = set
	}
	set[ephemeral.SampleKey(sample)] = sample
	return nil
}

func (m *MockEphemeralStore) ReadAll(ctx context.Context, journeyID string) ([]domain.LocationSample, error) {
	atomic.AddInt32(&m.ReadCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readFailures > 0 {
		m.readFailures--
		return nil, m.readErr
	}
	result := make([]domain.LocationSample, 0, len(m.samples[journeyID]))
	for _, s := range m.samples[journeyID] {
		result = append(result, s)
	}
	return result, nil
}

func (m *MockEphemeralStore) DeleteAll(ctx context.Context, journeyID string) error {
	atomic.AddInt32(&m.DeleteCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteFailures > 0 {
		m.deleteFailures--
		return m.deleteErr
	}
	delete(m.samples, journeyID)
	return nil
}

// Count returns the number of live samples held for a journey.
func (m *MockEphemeralStore) Count(journeyID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.samples[journeyID])
}

// ──────────────────────────────────────────────
// MOCK PATTERN CACHE
// ──────────────────────────────────────────────

// MockPatternCache is a mock implementation of redis.PatternCacheInterface.
type MockPatternCache struct {
	mu       sync.Mutex
	patterns map[string]domain.MovementPattern

	// Counters for verification
	GetCallCount int32
	SetCallCount int32
}

// NewMockPatternCache creates a new mock pattern cache.
func NewMockPatternCache() *MockPatternCache {
	return &MockPatternCache{
		patterns: make(map[string]domain.MovementPattern),
	}
}

func (m *MockPatternCache) GetPattern(ctx context.Context, journeyID string) (*domain.MovementPattern, error) {
	atomic.AddInt32(&m.GetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.patterns[journeyID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockPatternCache) SetPattern(ctx context.Context, journeyID string, pattern domain.MovementPattern) error {
	atomic.AddInt32(&m.SetCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns[journeyID] = pattern
	return nil
}

func (m *MockPatternCache) InvalidatePattern(ctx context.Context, journeyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.patterns, journeyID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK NOTIFICATION GATEWAY
// ──────────────────────────────────────────────

// NotificationCall records one gateway send.
type NotificationCall struct {
	RecipientID string
	EventType   string
	Payload     map[string]any
}

// MockGateway is a mock implementation of notify.Gateway.
type MockGateway struct {
	mu       sync.Mutex
	calls    []NotificationCall
	failures map[string]error
	panics   map[string]bool
}

// NewMockGateway creates a new mock gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{
		failures: make(map[string]error),
		panics:   make(map[string]bool),
	}
}

// FailFor makes every send to recipientID return err.
func (m *MockGateway) FailFor(recipientID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[recipientID] = err
}

// PanicFor makes every send to recipientID panic.
func (m *MockGateway) PanicFor(recipientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panics[recipientID] = true
}

func (m *MockGateway) Notify(ctx context.Context, recipientID, eventType string, payload map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panics[recipientID] {
		panic("gateway exploded")
	}
	if err := m.failures[recipientID]; err != nil {
		return err
	}
	m.calls = append(m.calls, NotificationCall{RecipientID: recipientID, EventType: eventType, Payload: payload})
	return nil
}

// Calls returns the successful sends.
func (m *MockGateway) Calls() []NotificationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]NotificationCall(nil), m.calls...)
}

// CallsFor returns the successful sends to one recipient.
func (m *MockGateway) CallsFor(recipientID string) []NotificationCall {
	var result []NotificationCall
	for _, c := range m.Calls() {
		if c.RecipientID == recipientID {
			result = append(result, c)
		}
	}
	return result
}

// Count returns the number of successful sends.
func (m *MockGateway) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
