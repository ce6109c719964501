// Package memrepo is an in-memory implementation of the repository interfaces
// used by service and handler tests.
package memrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"exam-registration/internal/data/entity"
	"exam-registration/internal/data/repository"
)

// Store holds all tables. WithinTx runs one transaction at a time and restores
// the previous state when fn fails.
type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex

	users    map[int64]*entity.User
	otps     map[int64]*entity.OTP
	regs     map[int64]*entity.Registration // keyed by user id
	nextUser int64
	nextOTP  int64
	nextReg  int64
}

func New() *Store {
	return &Store{
		users: make(map[int64]*entity.User),
		otps:  make(map[int64]*entity.OTP),
		regs:  make(map[int64]*entity.Registration),
	}
}

// Repository exposes the store through the repository interfaces.
func (s *Store) Repository() *repository.Repository {
	return &repository.Repository{
		User:         (*userRepo)(s),
		OTP:          (*otpRepo)(s),
		Registration: (*registrationRepo)(s),
		Tx:           (*transactor)(s),
	}
}

// OTPs returns copies of the stored codes for email, newest first.
func (s *Store) OTPs(email string) []entity.OTP {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.OTP
	for _, o := range s.sortedOTPs(email) {
		out = append(out, *o)
	}
	return out
}

// PutOTP inserts a code row verbatim and returns its id.
func (s *Store) PutOTP(o entity.OTP) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextOTP++
	o.ID = s.nextOTP
	s.otps[o.ID] = &o
	return o.ID
}

func (s *Store) sortedOTPs(email string) []*entity.OTP {
	var list []*entity.OTP
	for _, o := range s.otps {
		if o.Email == email {
			list = append(list, o)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	return list
}

type snapshot struct {
	users    map[int64]entity.User
	otps     map[int64]entity.OTP
	regs     map[int64]entity.Registration
	nextUser int64
	nextOTP  int64
	nextReg  int64
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := snapshot{
		users:    make(map[int64]entity.User, len(s.users)),
		otps:     make(map[int64]entity.OTP, len(s.otps)),
		regs:     make(map[int64]entity.Registration, len(s.regs)),
		nextUser: s.nextUser,
		nextOTP:  s.nextOTP,
		nextReg:  s.nextReg,
	}
	for k, v := range s.users {
		snap.users[k] = *v
	}
	for k, v := range s.otps {
		snap.otps[k] = *v
	}
	for k, v := range s.regs {
		snap.regs[k] = *v
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[int64]*entity.User, len(snap.users))
	for k, v := range snap.users {
		s.users[k] = &v
	}
	s.otps = make(map[int64]*entity.OTP, len(snap.otps))
	for k, v := range snap.otps {
		s.otps[k] = &v
	}
	s.regs = make(map[int64]*entity.Registration, len(snap.regs))
	for k, v := range snap.regs {
		s.regs[k] = &v
	}
	s.nextUser, s.nextOTP, s.nextReg = snap.nextUser, snap.nextOTP, snap.nextReg
}

// ==================== TRANSACTOR ====================

type txKey struct{}

type transactor Store

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	s := (*Store)(t)
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ==================== USERS ====================

type userRepo Store

func (r *userRepo) GetOrCreate(_ context.Context, email string, now time.Time) (*entity.User, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, false, nil
		}
	}

	r.nextUser++
	u := &entity.User{
		Base:  entity.Base{ID: r.nextUser, CreatedAt: now, UpdatedAt: now},
		Email: email,
	}
	r.users[u.ID] = u
	cp := *u
	return &cp, true, nil
}

func (r *userRepo) FindByID(_ context.Context, id int64) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *userRepo) FindAllWithRegistration(_ context.Context) ([]*entity.UserWithRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*entity.UserWithRegistration, 0, len(r.users))
	for _, u := range r.users {
		row := &entity.UserWithRegistration{User: *u}
		if reg, ok := r.regs[u.ID]; ok {
			cp := *reg
			row.Registration = &cp
		}
		out = append(out, row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *userRepo) MarkVerified(_ context.Context, id int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	u.IsVerified = true
	u.UpdatedAt = now
	return nil
}

func (r *userRepo) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	delete(r.regs, id)
	for oid, o := range r.otps {
		if o.UserID != nil && *o.UserID == id {
			delete(r.otps, oid)
		}
	}
	return true, nil
}

// ==================== OTP CODES ====================

type otpRepo Store

func (r *otpRepo) LockEmail(ctx context.Context, _ string) error {
	if ctx.Value(txKey{}) == nil {
		return fmt.Errorf("lock email outside transaction")
	}
	return nil
}

func (r *otpRepo) Create(_ context.Context, otp *entity.OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextOTP++
	otp.ID = r.nextOTP
	cp := *otp
	r.otps[cp.ID] = &cp
	return nil
}

func (r *otpRepo) FindLatestByEmail(_ context.Context, email string) (*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := (*Store)(r).sortedOTPs(email)
	if len(list) == 0 {
		return nil, nil
	}
	cp := *list[0]
	return &cp, nil
}

func (r *otpRepo) FindByEmail(_ context.Context, email string) ([]*entity.OTP, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*entity.OTP
	for _, o := range (*Store)(r).sortedOTPs(email) {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (r *otpRepo) IncrementFailedAttempts(_ context.Context, id int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.otps[id]
	if !ok {
		return 0, fmt.Errorf("OTP %d not found", id)
	}
	o.FailedAttempts++
	return o.FailedAttempts, nil
}

func (r *otpRepo) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.otps, id)
	return nil
}

func (r *otpRepo) DeleteExpiredByEmail(_ context.Context, email string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, o := range r.otps {
		if o.Email == email && o.ExpiresAt.Before(now) {
			delete(r.otps, id)
			n++
		}
	}
	return n, nil
}

// ==================== REGISTRATIONS ====================

type registrationRepo Store

func (r *registrationRepo) Upsert(_ context.Context, reg *entity.Registration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[reg.UserID]; !ok {
		return false, fmt.Errorf("user %d not found", reg.UserID)
	}

	if existing, ok := r.regs[reg.UserID]; ok {
		existing.Name = reg.Name
		existing.FatherName = reg.FatherName
		existing.Medium = reg.Medium
		existing.Course = reg.Course
		existing.ExamCentre = reg.ExamCentre
		existing.ExamDate = reg.ExamDate
		existing.ExamTime = reg.ExamTime
		existing.UpdatedAt = reg.UpdatedAt
		*reg = *existing
		return false, nil
	}

	for _, other := range r.regs {
		if strings.EqualFold(other.RollNo, reg.RollNo) {
			return false, repository.ErrConflict
		}
	}

	r.nextReg++
	reg.ID = r.nextReg
	reg.CreatedAt = reg.UpdatedAt
	reg.AdmitCardSent = false
	cp := *reg
	r.regs[reg.UserID] = &cp
	return true, nil
}

func (r *registrationRepo) FindByUserID(_ context.Context, userID int64) (*entity.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[userID]
	if !ok {
		return nil, nil
	}
	cp := *reg
	return &cp, nil
}

func (r *registrationRepo) MarkAdmitCardSent(_ context.Context, userID int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.regs[userID]
	if !ok {
		return fmt.Errorf("registration for user %d not found", userID)
	}
	reg.AdmitCardSent = true
	reg.UpdatedAt = now
	return nil
}
