package service_test

import (
	"context"
	"testing"

	"estimatehub/internal/model"
	"estimatehub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFieldDefServiceForTest(store *fakeStore) service.FieldDefinitionService {
	return service.NewFieldDefinitionService(&fakeFieldDefRepo{store})
}

func pendingDef(key string) *model.FieldDefinition {
	return &model.FieldDefinition{
		ID:       uuid.New(),
		FieldKey: key,
		Label:    key,
		Status:   model.FieldDefPendingReview,
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := newFieldDefServiceForTest(newFakeStore())
	_, _, err := svc.List(context.Background(), "archived", 1, 25)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status must be one of")
}

func TestApproveAndRejectToggleStatus(t *testing.T) {
	store := newFakeStore()
	def := pendingDef("gauge")
	store.addFieldDef(def)
	svc := newFieldDefServiceForTest(store)
	ctx := context.Background()

	res, err := svc.Approve(ctx, def.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.FieldDefApproved, res.Status)

	// Reject is a demotion back to pending_review, not a delete.
	res, err = svc.Reject(ctx, def.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.FieldDefPendingReview, res.Status)

	defs, err := (&fakeFieldDefRepo{store}).ListAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, defs, 1)
}

func TestApproveUnknownDefinition(t *testing.T) {
	svc := newFieldDefServiceForTest(newFakeStore())
	_, err := svc.Approve(context.Background(), uuid.NewString())
	require.Error(t, err)

	_, err = svc.Approve(context.Background(), "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid field definition ID")
}

func TestUpdateDefinitionMetadata(t *testing.T) {
	store := newFakeStore()
	def := pendingDef("fire_rating")
	store.addFieldDef(def)
	svc := newFieldDefServiceForTest(store)
	ctx := context.Background()

	res, err := svc.Update(ctx, def.ID.String(), service.UpdateFieldDefinitionRequest{
		Label:       strPtr("Fire Rating"),
		Description: strPtr("UL listing duration"),
		ValueType:   strPtr(model.ValueTypeNumber),
	})
	require.NoError(t, err)
	assert.Equal(t, "Fire Rating", res.Label)
	assert.Equal(t, "UL listing duration", res.Description)
	assert.Equal(t, model.ValueTypeNumber, res.ValueType)

	_, err = svc.Update(ctx, def.ID.String(), service.UpdateFieldDefinitionRequest{
		ValueType: strPtr("decimal"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "value_type must be one of")
}

func TestApproveAllTolerantOfPartialFailure(t *testing.T) {
	store := newFakeStore()
	defs := make([]*model.FieldDefinition, 5)
	for i, key := range []string{"gauge", "finish", "core", "fire_rating", "hinge_prep"} {
		defs[i] = pendingDef(key)
		store.addFieldDef(defs[i])
	}
	store.failApprove[defs[2].ID] = true
	svc := newFieldDefServiceForTest(store)

	result, err := svc.ApproveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Definitions, 5)

	// The returned list is re-fetched, so the failed one still shows pending.
	byKey := map[string]string{}
	for _, d := range result.Definitions {
		byKey[d.FieldKey] = d.Status
	}
	assert.Equal(t, model.FieldDefPendingReview, byKey["core"])
	for _, key := range []string{"gauge", "finish", "fire_rating", "hinge_prep"} {
		assert.Equal(t, model.FieldDefApproved, byKey[key])
	}
}

func TestApproveAllWithNothingPending(t *testing.T) {
	store := newFakeStore()
	def := pendingDef("gauge")
	def.Status = model.FieldDefApproved
	store.addFieldDef(def)
	svc := newFieldDefServiceForTest(store)

	result, err := svc.ApproveAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Len(t, result.Definitions, 1)
}

func TestDeleteDefinitionLeavesItemFieldsIntact(t *testing.T) {
	store := newFakeStore()
	def := pendingDef("gauge")
	store.addFieldDef(def)

	est := newDoneEstimate("")
	est.Items[0].Fields[0].FieldDefinitionID = &def.ID
	store.addEstimate(est)

	svc := newFieldDefServiceForTest(store)
	require.NoError(t, svc.Delete(context.Background(), def.ID.String()))

	_, _, err := svc.List(context.Background(), "", 1, 25)
	require.NoError(t, err)
	defs, err := (&fakeFieldDefRepo{store}).ListAll(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, defs)

	// The item field keeps its key, label, value, and the now-dangling link.
	stored := store.storedEstimate(est.ID)
	field := stored.Items[0].Fields[0]
	assert.Equal(t, "gauge", field.FieldKey)
	assert.Equal(t, "18 GA", field.FieldValue)
	require.NotNil(t, field.FieldDefinitionID)
	assert.Equal(t, def.ID, *field.FieldDefinitionID)
}

func TestDeleteUnknownDefinition(t *testing.T) {
	svc := newFieldDefServiceForTest(newFakeStore())
	err := svc.Delete(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
