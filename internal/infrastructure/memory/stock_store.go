// Package memory implementa el libro de stock en proceso: un bloqueo por registro
// con espera acotada y escrituras aplicadas al confirmar la unidad atómica.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	appledger "github.com/jhoicas/equipment-ledger/internal/application/ledger"
	"github.com/jhoicas/equipment-ledger/internal/domain"
	"github.com/jhoicas/equipment-ledger/internal/domain/entity"
	"github.com/jhoicas/equipment-ledger/internal/domain/repository"
)

var (
	_ repository.StockRecordRepository = (*Store)(nil)
	_ repository.StockRecordRepository = (*storeTx)(nil)
	_ appledger.TxRunner               = (*Store)(nil)
)

// DefaultLockTimeout espera máxima por el bloqueo de un registro.
const DefaultLockTimeout = 2 * time.Second

// Store guarda los registros confirmados. Las lecturas fuera de Run devuelven copias
// del último estado confirmado; las mutaciones dentro de Run se serializan por ID.
type Store struct {
	mu          sync.RWMutex
	records     map[string]entity.StockRecord
	byEquipment map[string]string

	locksMu     sync.Mutex
	locks       map[string]chan struct{}
	lockTimeout time.Duration
}

// NewStore construye el store. lockTimeout <= 0 usa DefaultLockTimeout.
func NewStore(lockTimeout time.Duration) *Store {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &Store{
		records:     make(map[string]entity.StockRecord),
		byEquipment: make(map[string]string),
		locks:       make(map[string]chan struct{}),
		lockTimeout: lockTimeout,
	}
}

// Run ejecuta fn con un repositorio transaccional. Si fn devuelve error nada se aplica.
func (s *Store) Run(ctx context.Context, fn func(repo repository.StockRecordRepository) error) error {
	tx := &storeTx{s: s, held: make(map[string]struct{})}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) GetByID(_ context.Context, id string) (*entity.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// GetForUpdate fuera de Run no bloquea; equivale a GetByID.
func (s *Store) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) GetByEquipment(_ context.Context, equipmentRef string) (*entity.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEquipment[equipmentRef]
	if !ok {
		return nil, nil
	}
	rec := s.records[id]
	return &rec, nil
}

func (s *Store) Create(_ context.Context, rec *entity.StockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(op{kind: opCreate, rec: *rec})
}

func (s *Store) Update(_ context.Context, rec *entity.StockRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(op{kind: opUpdate, rec: *rec})
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(op{kind: opDelete, rec: entity.StockRecord{ID: id}})
}

// List ordena por fecha de actualización descendente y luego por ID.
func (s *Store) List(_ context.Context, filter repository.StockFilter) ([]*entity.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var refs map[string]struct{}
	if filter.EquipmentRefs != nil {
		refs = make(map[string]struct{}, len(filter.EquipmentRefs))
		for _, r := range filter.EquipmentRefs {
			refs[r] = struct{}{}
		}
	}

	list := make([]*entity.StockRecord, 0)
	for _, rec := range s.records {
		if !matches(&rec, filter, refs) {
			continue
		}
		r := rec
		list = append(list, &r)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].LastUpdated.Equal(list[j].LastUpdated) {
			return list[i].LastUpdated.After(list[j].LastUpdated)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (s *Store) Sum(_ context.Context, field repository.SumField) (int64, error) {
	if !field.Valid() {
		return 0, domain.ErrInvalidInput
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sum int64
	for _, rec := range s.records {
		switch field {
		case repository.SumTotal:
			sum += int64(rec.Total)
		case repository.SumAvailable:
			sum += int64(rec.Available)
		case repository.SumLeased:
			sum += int64(rec.Leased)
		}
	}
	return sum, nil
}

func matches(rec *entity.StockRecord, f repository.StockFilter, refs map[string]struct{}) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}
	if f.Location != "" && !strings.EqualFold(rec.Location, f.Location) {
		return false
	}
	if f.MinAvailable != nil && rec.Available < *f.MinAvailable {
		return false
	}
	if refs != nil {
		if _, ok := refs[rec.EquipmentRef]; !ok {
			return false
		}
	}
	if f.BelowMinimum && rec.Available > rec.Minimum {
		return false
	}
	return true
}

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

type op struct {
	kind opKind
	rec  entity.StockRecord
}

// applyLocked requiere s.mu tomado en escritura.
func (s *Store) applyLocked(o op) error {
	switch o.kind {
	case opCreate:
		if _, ok := s.records[o.rec.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := s.byEquipment[o.rec.EquipmentRef]; ok {
			return domain.ErrDuplicate
		}
		s.records[o.rec.ID] = o.rec
		s.byEquipment[o.rec.EquipmentRef] = o.rec.ID
	case opUpdate:
		cur, ok := s.records[o.rec.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if cur.EquipmentRef != o.rec.EquipmentRef {
			delete(s.byEquipment, cur.EquipmentRef)
			s.byEquipment[o.rec.EquipmentRef] = o.rec.ID
		}
		s.records[o.rec.ID] = o.rec
	case opDelete:
		cur, ok := s.records[o.rec.ID]
		if !ok {
			return domain.ErrNotFound
		}
		delete(s.byEquipment, cur.EquipmentRef)
		delete(s.records, o.rec.ID)
	}
	return nil
}

// validateLocked revisa que las operaciones se puedan aplicar todas sin dejar estado parcial.
func (s *Store) validateLocked(ops []op) error {
	created := make(map[string]struct{})
	createdEquip := make(map[string]struct{})
	deleted := make(map[string]struct{})
	for _, o := range ops {
		_, committed := s.records[o.rec.ID]
		_, justCreated := created[o.rec.ID]
		_, justDeleted := deleted[o.rec.ID]
		exists := (committed || justCreated) && !justDeleted
		switch o.kind {
		case opCreate:
			_, equipTaken := s.byEquipment[o.rec.EquipmentRef]
			_, equipJustTaken := createdEquip[o.rec.EquipmentRef]
			if exists || equipTaken || equipJustTaken {
				return domain.ErrDuplicate
			}
			created[o.rec.ID] = struct{}{}
			createdEquip[o.rec.EquipmentRef] = struct{}{}
			delete(deleted, o.rec.ID)
		case opUpdate:
			if !exists {
				return domain.ErrNotFound
			}
		case opDelete:
			if !exists {
				return domain.ErrNotFound
			}
			deleted[o.rec.ID] = struct{}{}
		}
	}
	return nil
}

func (s *Store) lockFor(id string) chan struct{} {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	ch, ok := s.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[id] = ch
	}
	return ch
}

func (s *Store) acquire(ctx context.Context, id string) error {
	ch := s.lockFor(id)
	select {
	case ch <- struct{}{}:
		return nil
	default:
	}

	timer := time.NewTimer(s.lockTimeout)
	defer timer.Stop()
	select {
	case ch <- struct{}{}:
		return nil
	case <-timer.C:
		return domain.ErrContention
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", domain.ErrContention, ctx.Err())
	}
}

func (s *Store) unlock(id string) {
	<-s.lockFor(id)
}

// storeTx repositorio atado a una ejecución de Run.
type storeTx struct {
	s    *Store
	held map[string]struct{}
	ops  []op
}

func (tx *storeTx) release() {
	for id := range tx.held {
		tx.s.unlock(id)
	}
	tx.held = nil
}

func (tx *storeTx) commit() error {
	if len(tx.ops) == 0 {
		return nil
	}
	tx.s.mu.Lock()
	defer tx.s.mu.Unlock()
	if err := tx.s.validateLocked(tx.ops); err != nil {
		return err
	}
	for _, o := range tx.ops {
		if err := tx.s.applyLocked(o); err != nil {
			return err
		}
	}
	return nil
}

// pending devuelve la última escritura de la tx para id, si la hay.
func (tx *storeTx) pending(id string) (*entity.StockRecord, bool) {
	for i := len(tx.ops) - 1; i >= 0; i-- {
		o := tx.ops[i]
		if o.rec.ID != id {
			continue
		}
		if o.kind == opDelete {
			return nil, true
		}
		rec := o.rec
		return &rec, true
	}
	return nil, false
}

func (tx *storeTx) GetByID(ctx context.Context, id string) (*entity.StockRecord, error) {
	if rec, ok := tx.pending(id); ok {
		return rec, nil
	}
	return tx.s.GetByID(ctx, id)
}

func (tx *storeTx) GetForUpdate(ctx context.Context, id string) (*entity.StockRecord, error) {
	if _, ok := tx.held[id]; !ok {
		if err := tx.s.acquire(ctx, id); err != nil {
			return nil, err
		}
		tx.held[id] = struct{}{}
	}
	return tx.GetByID(ctx, id)
}

func (tx *storeTx) GetByEquipment(ctx context.Context, equipmentRef string) (*entity.StockRecord, error) {
	for i := len(tx.ops) - 1; i >= 0; i-- {
		if o := tx.ops[i]; o.kind != opDelete && o.rec.EquipmentRef == equipmentRef {
			rec := o.rec
			return &rec, nil
		}
	}
	rec, err := tx.s.GetByEquipment(ctx, equipmentRef)
	if err != nil || rec == nil {
		return rec, err
	}
	return tx.GetByID(ctx, rec.ID)
}

func (tx *storeTx) Create(_ context.Context, rec *entity.StockRecord) error {
	tx.ops = append(tx.ops, op{kind: opCreate, rec: *rec})
	return nil
}

func (tx *storeTx) Update(_ context.Context, rec *entity.StockRecord) error {
	tx.ops = append(tx.ops, op{kind: opUpdate, rec: *rec})
	return nil
}

func (tx *storeTx) Delete(_ context.Context, id string) error {
	tx.ops = append(tx.ops, op{kind: opDelete, rec: entity.StockRecord{ID: id}})
	return nil
}

// List y Sum dentro de la tx leen el estado confirmado.
func (tx *storeTx) List(ctx context.Context, filter repository.StockFilter) ([]*entity.StockRecord, error) {
	return tx.s.List(ctx, filter)
}

func (tx *storeTx) Sum(ctx context.Context, field repository.SumField) (int64, error) {
	return tx.s.Sum(ctx, field)
}
