package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"estimatehub/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Editor DTOs ---

type UpdateItemRequest struct {
	Label    *string `json:"label"`
	Code     *string `json:"code"`
	Quantity *string `json:"quantity"` // free-form input, coerced server-side
}

type UpdateFieldRequest struct {
	Value     *string `json:"value"`
	Label     *string `json:"label"`
	ValueType *string `json:"value_type"`
}

type AddFieldRequest struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	ValueType string `json:"value_type"`
}

var validValueTypes = map[string]bool{
	model.ValueTypeString: true,
	model.ValueTypeNumber: true,
	model.ValueTypeBool:   true,
	model.ValueTypeDate:   true,
	model.ValueTypeCode:   true,
}

// coerceQuantity normalizes free-form quantity input to a positive integer.
// Anything non-numeric or below 1 becomes 1.
func coerceQuantity(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// deriveFieldKey turns a display label into a machine key: lowercase with
// whitespace runs collapsed to underscores ("Hinge Prep" -> "hinge_prep").
func deriveFieldKey(label string) string {
	return strings.Join(strings.Fields(strings.ToLower(label)), "_")
}

// The editor operations below apply optimistically: the session tree is
// mutated first, then the change is mirrored to the repository. A gateway
// failure is returned to the caller but the local state is kept — the editing
// session stays usable and the save can be retried.

func (s *reviewService) UpdateItem(ctx context.Context, sessionID, itemID string, req UpdateItemRequest) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return SessionView{}, fmt.Errorf("invalid item ID")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	doc, item := findItemInSession(sess, id)
	if item == nil {
		return SessionView{}, fmt.Errorf("item not found in session")
	}

	if req.Label != nil {
		if strings.TrimSpace(*req.Label) == "" {
			return SessionView{}, fmt.Errorf("label cannot be empty")
		}
		item.Label = strings.TrimSpace(*req.Label)
	}
	if req.Code != nil {
		item.Code = *req.Code
	}
	if req.Quantity != nil {
		item.Quantity = coerceQuantity(*req.Quantity)
	}

	doc.refreshTotal()

	err = s.mirror(ctx, doc, func(txCtx context.Context) error {
		return s.itemRepo.Update(txCtx, item)
	})
	if err != nil {
		return toSessionView(sess), fmt.Errorf("%w: update item: %v", ErrGateway, err)
	}
	return toSessionView(sess), nil
}

func (s *reviewService) DeleteItem(ctx context.Context, sessionID, itemID string) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return SessionView{}, fmt.Errorf("invalid item ID")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	doc, item := findItemInSession(sess, id)
	if item == nil {
		return SessionView{}, fmt.Errorf("item not found in session")
	}
	doc.removeItem(id)
	doc.refreshTotal()

	err = s.mirror(ctx, doc, func(txCtx context.Context) error {
		return s.itemRepo.Delete(txCtx, id)
	})
	if err != nil {
		return toSessionView(sess), fmt.Errorf("%w: delete item: %v", ErrGateway, err)
	}
	return toSessionView(sess), nil
}

func (s *reviewService) UpdateField(ctx context.Context, sessionID, fieldID string, req UpdateFieldRequest) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	id, err := uuid.Parse(fieldID)
	if err != nil {
		return SessionView{}, fmt.Errorf("invalid field ID")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	doc, field := findFieldInSession(sess, id)
	if field == nil {
		return SessionView{}, fmt.Errorf("field not found in session")
	}

	if req.ValueType != nil && !validValueTypes[*req.ValueType] {
		return SessionView{}, fmt.Errorf("value_type must be one of: string, number, bool, date, code")
	}

	if req.Value != nil {
		field.FieldValue = *req.Value
	}
	if req.Label != nil {
		if strings.TrimSpace(*req.Label) == "" {
			return SessionView{}, fmt.Errorf("label cannot be empty")
		}
		field.Label = strings.TrimSpace(*req.Label)
	}
	if req.ValueType != nil {
		field.ValueType = *req.ValueType
	}

	doc.refreshTotal()

	err = s.mirror(ctx, doc, func(txCtx context.Context) error {
		return s.itemRepo.UpdateField(txCtx, field)
	})
	if err != nil {
		return toSessionView(sess), fmt.Errorf("%w: update field: %v", ErrGateway, err)
	}
	return toSessionView(sess), nil
}

func (s *reviewService) AddField(ctx context.Context, sessionID, itemID string, req AddFieldRequest) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	id, err := uuid.Parse(itemID)
	if err != nil {
		return SessionView{}, fmt.Errorf("invalid item ID")
	}

	label := strings.TrimSpace(req.Label)
	key := strings.TrimSpace(req.Key)
	if key == "" {
		key = deriveFieldKey(label)
	}
	if key == "" || label == "" {
		return SessionView{}, fmt.Errorf("field key and label are required")
	}
	valueType := req.ValueType
	if valueType == "" {
		valueType = model.ValueTypeString
	}
	if !validValueTypes[valueType] {
		return SessionView{}, fmt.Errorf("value_type must be one of: string, number, bool, date, code")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	doc, item := findItemInSession(sess, id)
	if item == nil {
		return SessionView{}, fmt.Errorf("item not found in session")
	}

	field := model.ItemField{
		ID:         uuid.New(),
		ItemID:     item.ID,
		FieldKey:   key,
		Label:      label,
		FieldValue: req.Value,
		ValueType:  valueType,
		// Confidence stays nil: this value was entered by hand.
	}
	// Best-effort link to the registry entry for this key.
	if def, err := s.fieldDefRepo.FindByKey(ctx, key); err == nil {
		field.FieldDefinitionID = &def.ID
	}

	item.Fields = append(item.Fields, field)
	doc.refreshTotal()

	err = s.mirror(ctx, doc, func(txCtx context.Context) error {
		return s.itemRepo.CreateField(txCtx, &field)
	})
	if err != nil {
		return toSessionView(sess), fmt.Errorf("%w: add field: %v", ErrGateway, err)
	}
	return toSessionView(sess), nil
}

func (s *reviewService) DeleteField(ctx context.Context, sessionID, fieldID string) (SessionView, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	id, err := uuid.Parse(fieldID)
	if err != nil {
		return SessionView{}, fmt.Errorf("invalid field ID")
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.touch()

	doc, field := findFieldInSession(sess, id)
	if field == nil {
		return SessionView{}, fmt.Errorf("field not found in session")
	}
	doc.removeField(id)
	doc.refreshTotal()

	err = s.mirror(ctx, doc, func(txCtx context.Context) error {
		return s.itemRepo.DeleteField(txCtx, id)
	})
	if err != nil {
		return toSessionView(sess), fmt.Errorf("%w: delete field: %v", ErrGateway, err)
	}
	return toSessionView(sess), nil
}

// --- Helpers ---

func findItemInSession(sess *reviewSession, itemID uuid.UUID) (*sessionDocument, *model.EstimateItem) {
	for _, doc := range sess.docs {
		if item := doc.findItem(itemID); item != nil {
			return doc, item
		}
	}
	return nil, nil
}

func findFieldInSession(sess *reviewSession, fieldID uuid.UUID) (*sessionDocument, *model.ItemField) {
	for _, doc := range sess.docs {
		if item, field := doc.findField(fieldID); item != nil {
			return doc, field
		}
	}
	return nil, nil
}

// mirror persists one editor change together with the recomputed document
// total in a single transaction, so the stored total can never drift from the
// stored items.
func (s *reviewService) mirror(ctx context.Context, doc *sessionDocument, write func(txCtx context.Context) error) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := write(txCtx); err != nil {
			return err
		}
		return s.estimateRepo.UpdateTotalPrice(txCtx, doc.estimate.ID, doc.estimate.TotalPrice)
	})
}

// refreshTotal recomputes the working-tree total (sum of quantity x unit_price
// field values). Persistence happens in mirror.
func (d *sessionDocument) refreshTotal() {
	d.estimate.TotalPrice = computeTotal(d.estimate)
}

func computeTotal(est *model.Estimate) *decimal.Decimal {
	sum := decimal.Zero
	found := false
	for _, item := range est.Items {
		for _, f := range item.Fields {
			if f.FieldKey != "unit_price" {
				continue
			}
			price, err := decimal.NewFromString(strings.TrimSpace(f.FieldValue))
			if err != nil {
				continue
			}
			sum = sum.Add(price.Mul(decimal.NewFromInt(int64(item.Quantity))))
			found = true
		}
	}
	if !found {
		return nil
	}
	return &sum
}
