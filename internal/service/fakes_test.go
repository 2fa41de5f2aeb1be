package service_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"estimatehub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errBoom = errors.New("gateway down")

// fakeStore is an in-memory stand-in for the persistence gateway. The four
// repo adapters below share it so edits mirrored through one repository are
// visible when another reloads. Reads hand out deep copies, which lets a test
// tell optimistic session state apart from what was actually persisted.
type fakeStore struct {
	mu        sync.Mutex
	estimates map[uuid.UUID]*model.Estimate
	companies map[uuid.UUID]*model.Company
	fieldDefs map[uuid.UUID]*model.FieldDefinition

	failAssignment bool
	failItemWrites bool
	failApprove    map[uuid.UUID]bool

	companyCreates  int
	assignmentCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		estimates:   map[uuid.UUID]*model.Estimate{},
		companies:   map[uuid.UUID]*model.Company{},
		fieldDefs:   map[uuid.UUID]*model.FieldDefinition{},
		failApprove: map[uuid.UUID]bool{},
	}
}

func (s *fakeStore) addEstimate(e *model.Estimate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates[e.ID] = cloneEstimate(e)
}

func (s *fakeStore) addCompany(c *model.Company) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cc := *c
	s.companies[c.ID] = &cc
}

func (s *fakeStore) addFieldDef(d *model.FieldDefinition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dd := *d
	s.fieldDefs[d.ID] = &dd
}

func (s *fakeStore) storedEstimate(id uuid.UUID) *model.Estimate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.estimates[id]; ok {
		return cloneEstimate(e)
	}
	return nil
}

func (s *fakeStore) findItem(id uuid.UUID) *model.EstimateItem {
	for _, e := range s.estimates {
		for i := range e.Items {
			if e.Items[i].ID == id {
				return &e.Items[i]
			}
		}
	}
	return nil
}

func cloneEstimate(e *model.Estimate) *model.Estimate {
	c := *e
	c.Items = make([]model.EstimateItem, len(e.Items))
	for i, item := range e.Items {
		ci := item
		ci.Fields = append([]model.ItemField(nil), item.Fields...)
		c.Items[i] = ci
	}
	return &c
}

// --- EstimateRepository ---

type fakeEstimateRepo struct{ store *fakeStore }

func (r *fakeEstimateRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Estimate, error) {
	e := r.store.storedEstimate(id)
	if e == nil {
		return nil, gorm.ErrRecordNotFound
	}
	e.Items = nil
	return e, nil
}

func (r *fakeEstimateRepo) FindByIDWithItems(_ context.Context, id uuid.UUID) (*model.Estimate, error) {
	e := r.store.storedEstimate(id)
	if e == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (r *fakeEstimateRepo) List(_ context.Context, status, _ string, _, _ int) ([]model.Estimate, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Estimate
	for _, e := range r.store.estimates {
		if status == "" || e.ExtractionStatus == status {
			out = append(out, *cloneEstimate(e))
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeEstimateRepo) UpdateAssignment(_ context.Context, id uuid.UUID, companyID *uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.assignmentCalls++
	if r.store.failAssignment {
		return errBoom
	}
	e, ok := r.store.estimates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.CompanyID = companyID
	return nil
}

func (r *fakeEstimateRepo) UpdateStatus(_ context.Context, id uuid.UUID, status, errMsg string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.estimates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.ExtractionStatus = status
	e.ExtractionErrMsg = errMsg
	return nil
}

func (r *fakeEstimateRepo) UpdateTotalPrice(_ context.Context, id uuid.UUID, total *decimal.Decimal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	e, ok := r.store.estimates[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	e.TotalPrice = total
	return nil
}

func (r *fakeEstimateRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.estimates, id)
	return nil
}

// --- ItemRepository ---

type fakeItemRepo struct{ store *fakeStore }

func (r *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*model.EstimateItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	item := r.store.findItem(id)
	if item == nil {
		return nil, gorm.ErrRecordNotFound
	}
	ci := *item
	ci.Fields = append([]model.ItemField(nil), item.Fields...)
	return &ci, nil
}

func (r *fakeItemRepo) Update(_ context.Context, item *model.EstimateItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failItemWrites {
		return errBoom
	}
	stored := r.store.findItem(item.ID)
	if stored == nil {
		return gorm.ErrRecordNotFound
	}
	stored.Label = item.Label
	stored.Code = item.Code
	stored.Quantity = item.Quantity
	stored.SortOrder = item.SortOrder
	return nil
}

func (r *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failItemWrites {
		return errBoom
	}
	for _, e := range r.store.estimates {
		for i := range e.Items {
			if e.Items[i].ID == id {
				e.Items = append(e.Items[:i], e.Items[i+1:]...)
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) CreateField(_ context.Context, field *model.ItemField) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failItemWrites {
		return errBoom
	}
	item := r.store.findItem(field.ItemID)
	if item == nil {
		return gorm.ErrRecordNotFound
	}
	item.Fields = append(item.Fields, *field)
	return nil
}

func (r *fakeItemRepo) UpdateField(_ context.Context, field *model.ItemField) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failItemWrites {
		return errBoom
	}
	for _, e := range r.store.estimates {
		for i := range e.Items {
			for j := range e.Items[i].Fields {
				if e.Items[i].Fields[j].ID == field.ID {
					e.Items[i].Fields[j] = *field
					return nil
				}
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeItemRepo) DeleteField(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failItemWrites {
		return errBoom
	}
	for _, e := range r.store.estimates {
		for i := range e.Items {
			fields := e.Items[i].Fields
			for j := range fields {
				if fields[j].ID == id {
					e.Items[i].Fields = append(fields[:j], fields[j+1:]...)
					return nil
				}
			}
		}
	}
	return gorm.ErrRecordNotFound
}

// --- CompanyRepository ---

type fakeCompanyRepo struct{ store *fakeStore }

func (r *fakeCompanyRepo) Create(_ context.Context, company *model.Company) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if company.ID == uuid.Nil {
		company.ID = uuid.New()
	}
	c := *company
	r.store.companies[company.ID] = &c
	r.store.companyCreates++
	return nil
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Company, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c, ok := r.store.companies[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCompanyRepo) FindByName(_ context.Context, name string) (*model.Company, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, c := range r.store.companies {
		if strings.EqualFold(c.Name, name) {
			cc := *c
			return &cc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCompanyRepo) List(_ context.Context, _ string, _, _ int) ([]model.Company, int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.Company
	for _, c := range r.store.companies {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

// --- FieldDefinitionRepository ---

type fakeFieldDefRepo struct{ store *fakeStore }

func (r *fakeFieldDefRepo) List(ctx context.Context, status string, _, _ int) ([]model.FieldDefinition, int64, error) {
	defs, err := r.ListAll(ctx, status)
	return defs, int64(len(defs)), err
}

func (r *fakeFieldDefRepo) ListAll(_ context.Context, status string) ([]model.FieldDefinition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []model.FieldDefinition
	for _, d := range r.store.fieldDefs {
		if status == "" || d.Status == status {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (r *fakeFieldDefRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FieldDefinition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	d, ok := r.store.fieldDefs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	dd := *d
	return &dd, nil
}

func (r *fakeFieldDefRepo) FindByKey(_ context.Context, key string) (*model.FieldDefinition, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, d := range r.store.fieldDefs {
		if d.FieldKey == key {
			dd := *d
			return &dd, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeFieldDefRepo) Create(_ context.Context, def *model.FieldDefinition) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if def.ID == uuid.Nil {
		def.ID = uuid.New()
	}
	d := *def
	r.store.fieldDefs[def.ID] = &d
	return nil
}

func (r *fakeFieldDefRepo) Update(_ context.Context, def *model.FieldDefinition) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.fieldDefs[def.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	d := *def
	r.store.fieldDefs[def.ID] = &d
	return nil
}

func (r *fakeFieldDefRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.failApprove[id] {
		return errBoom
	}
	d, ok := r.store.fieldDefs[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.Status = status
	return nil
}

func (r *fakeFieldDefRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.fieldDefs, id)
	return nil
}

// --- TransactionManager ---

// fakeTxManager runs the callback directly; the in-memory store has no
// transactions to scope.
type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- fixtures ---

func strPtr(s string) *string { return &s }

func newDoneEstimate(guessName string) *model.Estimate {
	est := &model.Estimate{
		ID:               uuid.New(),
		FileRef:          "uploads/" + uuid.NewString(),
		FileName:         "estimate.pdf",
		FileKind:         model.FileKindDocument,
		ExtractionStatus: model.ExtractionDone,
		CreatedAt:        time.Now(),
	}
	if guessName != "" {
		est.OCRCustomerName = strPtr(guessName)
	}
	item := model.EstimateItem{
		ID:         uuid.New(),
		EstimateID: est.ID,
		Label:      "Frame 3070",
		Code:       "F-3070",
		Quantity:   2,
		SortOrder:  0,
	}
	conf := 0.95
	item.Fields = []model.ItemField{{
		ID:         uuid.New(),
		ItemID:     item.ID,
		FieldKey:   "gauge",
		Label:      "Gauge",
		FieldValue: "18 GA",
		ValueType:  model.ValueTypeString,
		Confidence: &conf,
	}}
	est.Items = []model.EstimateItem{item}
	return est
}
