package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/swahilipot/room-booking/internal/core/domain"
	"github.com/swahilipot/room-booking/internal/core/ports"
)

var discardLogger = zerolog.Nop()

// ---------------------------------------------------------------------------
// In-memory store shared by the room, user and booking stubs
// ---------------------------------------------------------------------------

type memStore struct {
	mu       sync.Mutex
	roomLock map[int64]*sync.Mutex
	rooms    map[int64]domain.Room
	users    map[int64]*domain.User
	bookings []domain.Booking
	nextID   int64

	insertErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{
		roomLock: make(map[int64]*sync.Mutex),
		rooms:    make(map[int64]domain.Room),
		users:    make(map[int64]*domain.User),
	}
}

func (m *memStore) addRoom(id int64, name string) {
	m.rooms[id] = domain.Room{ID: id, Name: name, Space: "Floor 1", Capacity: 10, Amenities: []string{}, Status: "available"}
	m.roomLock[id] = &sync.Mutex{}
}

func (m *memStore) addUser(id int64, email, role string) *domain.User {
	u := &domain.User{ID: id, Email: email, FullName: "User " + email, Role: role}
	m.users[id] = u
	return u
}

func (m *memStore) seedBooking(b domain.Booking) domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	b.ID = m.nextID
	m.bookings = append(m.bookings, b)
	return b
}

func (m *memStore) admitted(roomID int64, date domain.Date) []domain.Booking {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Booking
	for _, b := range m.bookings {
		if b.RoomID == roomID && b.Date.Equal(date) && b.Status.IsActive() {
			out = append(out, b)
		}
	}
	return out
}

// --- ports.BookingRepository ---

type memBookingRepo struct{ *memStore }

type memTx struct {
	store   *memStore
	room    domain.Room
	pending []domain.Booking
}

func (r memBookingRepo) WithRoomLock(ctx context.Context, roomID int64, fn func(tx ports.BookingTx) error) error {
	lock, ok := r.roomLock[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	lock.Lock()
	defer lock.Unlock()

	tx := &memTx{store: r.memStore, room: r.rooms[roomID]}
	if err := fn(tx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = append(r.bookings, tx.pending...)
	return nil
}

func (tx *memTx) Room() *domain.Room { return &tx.room }

func (tx *memTx) ListActive(_ context.Context, date domain.Date) ([]domain.Booking, error) {
	out := tx.store.admitted(tx.room.ID, date)
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime != out[j].StartTime {
			return out[i].StartTime < out[j].StartTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (tx *memTx) FindUser(_ context.Context, id int64) (*domain.User, error) {
	u, ok := tx.store.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (tx *memTx) Insert(_ context.Context, b *domain.Booking) error {
	if tx.store.insertErr != nil {
		return tx.store.insertErr
	}
	tx.store.mu.Lock()
	tx.store.nextID++
	b.ID = tx.store.nextID
	tx.store.mu.Unlock()
	b.CreatedAt = time.Now().UTC()
	tx.pending = append(tx.pending, *b)
	return nil
}

func (r memBookingRepo) FindByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == id {
			clone := b
			return &clone, nil
		}
	}
	return nil, domain.ErrBookingNotFound
}

func (r memBookingRepo) ListByUser(_ context.Context, userID int64) ([]domain.BookingView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BookingView
	for _, b := range r.bookings {
		if b.UserID == userID {
			room := r.rooms[b.RoomID]
			out = append(out, domain.BookingView{Booking: b, RoomName: room.Name, Space: room.Space, Capacity: room.Capacity})
		}
	}
	return out, nil
}

func (r memBookingRepo) UpdateStatus(_ context.Context, id int64, from, to domain.BookingStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.bookings {
		if r.bookings[i].ID == id {
			if r.bookings[i].Status != from {
				return domain.ErrInvalidTransition
			}
			r.bookings[i].Status = to
			return nil
		}
	}
	return domain.ErrBookingNotFound
}

// --- ports.RoomRepository ---

type memRoomRepo struct {
	*memStore
	listErr error
}

func (r memRoomRepo) sorted(keep func(domain.Room) bool) []domain.Room {
	out := []domain.Room{}
	for _, room := range r.rooms {
		if keep(room) {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r memRoomRepo) List(_ context.Context) ([]domain.Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sorted(func(domain.Room) bool { return true }), nil
}

func (r memRoomRepo) ListAvailable(_ context.Context, date domain.Date) ([]domain.Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.sorted(func(room domain.Room) bool {
		return len(r.admitted(room.ID, date)) == 0
	}), nil
}

func (r memRoomRepo) FindByID(_ context.Context, id int64) (*domain.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}
	return &room, nil
}

// --- ports.UserRepository ---

type stubUserRepo struct {
	mu       sync.Mutex
	users    map[int64]*domain.User
	nextID   int64
	findErr  error
	upserted []*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[int64]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	created := cloneUser(user)
	created.ID = r.nextID
	r.users[created.ID] = cloneUser(created)
	return created, nil
}

func (r *stubUserRepo) UpsertAdmin(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserted = append(r.upserted, cloneUser(user))
	return nil
}

// memUsers adapts memStore users to ports.UserRepository for BookingService.
type memUsers struct{ *memStore }

func (r memUsers) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r memUsers) FindByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r memUsers) Create(context.Context, *domain.User) (*domain.User, error) {
	return nil, errors.New("not supported")
}

func (r memUsers) UpsertAdmin(context.Context, *domain.User) error { return nil }

// ---------------------------------------------------------------------------
// Side-effect stubs
// ---------------------------------------------------------------------------

type stubEventRepo struct {
	mu        sync.Mutex
	appendErr error
	events    []domain.BookingEvent
}

func (r *stubEventRepo) Append(_ context.Context, e *domain.BookingEvent) error {
	if r.appendErr != nil {
		return r.appendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, *e)
	return nil
}

func (r *stubEventRepo) ListByBooking(_ context.Context, id int64) ([]domain.BookingEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.BookingEvent
	for _, e := range r.events {
		if e.BookingID == id {
			out = append(out, e)
		}
	}
	return out, nil
}

type idemKey struct {
	user int64
	key  string
}

type stubIdempotency struct {
	mu         sync.Mutex
	records    map[idemKey]ports.IdempotencyRecord
	reserveErr error
	released   int
}

func newStubIdempotency() *stubIdempotency {
	return &stubIdempotency{records: make(map[idemKey]ports.IdempotencyRecord)}
}

func (s *stubIdempotency) Reserve(_ context.Context, userID int64, key, fingerprint string) (ports.IdempotencyRecord, bool, error) {
	if s.reserveErr != nil {
		return ports.IdempotencyRecord{}, false, s.reserveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	k := idemKey{userID, key}
	if rec, ok := s.records[k]; ok {
		return rec, false, nil
	}
	rec := ports.IdempotencyRecord{Fingerprint: fingerprint}
	s.records[k] = rec
	return rec, true, nil
}

func (s *stubIdempotency) Complete(_ context.Context, userID int64, key string, rec ports.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[idemKey{userID, key}] = rec
	return nil
}

func (s *stubIdempotency) Release(_ context.Context, userID int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, idemKey{userID, key})
	s.released++
	return nil
}

func (s *stubIdempotency) record(userID int64, key string) (ports.IdempotencyRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[idemKey{userID, key}]
	return rec, ok
}

type recordingQueue struct {
	mu   sync.Mutex
	msgs []ports.Message
}

func (q *recordingQueue) Enqueue(msg ports.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.msgs = append(q.msgs, msg)
}

func (q *recordingQueue) sent() []ports.Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]ports.Message(nil), q.msgs...)
}
