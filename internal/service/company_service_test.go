package service_test

import (
	"context"
	"testing"

	"estimatehub/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCompanyValidation(t *testing.T) {
	store := newFakeStore()
	svc := service.NewCompanyService(&fakeCompanyRepo{store})
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, service.CreateCompanyRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name is required")

	_, err = svc.CreateCompany(ctx, service.CreateCompanyRequest{
		Name:  "Summit Glass Co",
		Email: "not-an-email",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email format")

	res, err := svc.CreateCompany(ctx, service.CreateCompanyRequest{
		Name:          "Summit Glass Co",
		ContactPerson: "R. Alvarez",
		Email:         "office@summitglass.example",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, 1, store.companyCreates)
}

func TestGetCompany(t *testing.T) {
	store := newFakeStore()
	svc := service.NewCompanyService(&fakeCompanyRepo{store})
	ctx := context.Background()

	created, err := svc.CreateCompany(ctx, service.CreateCompanyRequest{Name: "Apex Hardware"})
	require.NoError(t, err)

	got, err := svc.GetCompany(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Apex Hardware", got.Name)

	_, err = svc.GetCompany(ctx, uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
