package sync_test

import (
	"context"
	"errors"
	"testing"

	"vendsync/core/snapshot"
	"vendsync/feature/shopify"
	"vendsync/feature/shopify/mocks"
	"vendsync/feature/sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func entryFor(ref string, price string, stock int) snapshot.MatchEntry {
	return snapshot.MatchEntry{
		Page:     1,
		Position: 1,
		Product: snapshot.ProductData{
			Reference: ref,
			Title:     "Item " + ref,
			Price:     decimal.RequireFromString(price),
			Stock:     stock,
			Status:    "on",
		},
	}
}

func TestApplyCreateSetsInventoryAndPublishes(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	created := &shopify.Product{
		ID:      100,
		Variant: shopify.Variant{ID: 1000, InventoryItemID: 5000},
	}
	client.On("CreateProduct", mock.Anything, mock.MatchedBy(func(input shopify.ProductInput) bool {
		return input.SKU == "P001" &&
			input.Price == "19.90" &&
			input.Status == "active" &&
			len(input.Tags) == 1 && input.Tags[0] == "ref-P001"
	})).Return(created, nil)
	client.On("SetInventory", mock.Anything, int64(5000), 5).Return(nil)
	client.On("Publish", mock.Anything, int64(100)).Return(nil)

	plan := &sync.Plan{
		ToCreate: []sync.PlanItem{{Reference: "P001", Entry: entryFor("P001", "19.9", 5)}},
	}
	report := runner.Apply(context.Background(), plan)

	assert.Equal(t, []string{"P001"}, report.Created)
	assert.Empty(t, report.Errors)
	client.AssertExpectations(t)
}

func TestApplyCreateFailureDoesNotAbortBatch(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	client.On("CreateProduct", mock.Anything, mock.MatchedBy(func(input shopify.ProductInput) bool {
		return input.SKU == "BAD"
	})).Return(nil, &shopify.RequestError{
		StatusCode: 422,
		UserErrors: []shopify.UserError{{Field: "title", Message: "can't be blank"}},
	})

	good := &shopify.Product{ID: 101, Variant: shopify.Variant{InventoryItemID: 5001}}
	client.On("CreateProduct", mock.Anything, mock.MatchedBy(func(input shopify.ProductInput) bool {
		return input.SKU == "GOOD"
	})).Return(good, nil)
	client.On("SetInventory", mock.Anything, int64(5001), 2).Return(nil)
	client.On("Publish", mock.Anything, int64(101)).Return(nil)

	plan := &sync.Plan{
		ToCreate: []sync.PlanItem{
			{Reference: "BAD", Entry: entryFor("BAD", "1.00", 1)},
			{Reference: "GOOD", Entry: entryFor("GOOD", "2.00", 2)},
		},
	}
	report := runner.Apply(context.Background(), plan)

	assert.Equal(t, []string{"GOOD"}, report.Created)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "BAD", report.Errors[0].Reference)
	assert.Equal(t, "create", report.Errors[0].Action)
	require.Len(t, report.Errors[0].UserErrors, 1)
	assert.Equal(t, "title", report.Errors[0].UserErrors[0].Field)
}

func TestApplyUpdateAdjustsInventoryByDelta(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	existing := shopify.Product{
		ID:   200,
		Tags: []string{"ref-P002"},
		Variant: shopify.Variant{
			InventoryItemID:   6000,
			InventoryQuantity: 3,
			Tracked:           true,
		},
	}
	client.On("UpdateProduct", mock.Anything, int64(200), mock.Anything).
		Return(&existing, nil)
	// Snapshot stock 8, shop quantity 3: adjust by +5 rather than setting
	// the absolute value.
	client.On("AdjustInventory", mock.Anything, int64(6000), 5).Return(nil)

	plan := &sync.Plan{
		ToUpdate: []sync.UpdateItem{{Reference: "P002", Entry: entryFor("P002", "10.00", 8), Existing: existing}},
	}
	report := runner.Apply(context.Background(), plan)

	assert.Equal(t, []string{"P002"}, report.Updated)
	assert.Empty(t, report.Errors)
	client.AssertExpectations(t)
}

func TestApplyUpdateSkipsZeroDelta(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	existing := shopify.Product{
		ID:      201,
		Variant: shopify.Variant{InventoryItemID: 6001, InventoryQuantity: 4, Tracked: true},
	}
	client.On("UpdateProduct", mock.Anything, int64(201), mock.Anything).
		Return(&existing, nil)

	plan := &sync.Plan{
		ToUpdate: []sync.UpdateItem{{Reference: "P003", Entry: entryFor("P003", "10.00", 4), Existing: existing}},
	}
	report := runner.Apply(context.Background(), plan)

	assert.Equal(t, []string{"P003"}, report.Updated)
	client.AssertNotCalled(t, "AdjustInventory", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyUpdateEnablesTrackingFirst(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	existing := shopify.Product{
		ID:      202,
		Variant: shopify.Variant{InventoryItemID: 6002, InventoryQuantity: 0, Tracked: false},
	}
	client.On("UpdateProduct", mock.Anything, int64(202), mock.Anything).
		Return(&existing, nil)
	client.On("EnableTracking", mock.Anything, int64(6002)).Return(nil)
	client.On("AdjustInventory", mock.Anything, int64(6002), 6).Return(nil)

	plan := &sync.Plan{
		ToUpdate: []sync.UpdateItem{{Reference: "P004", Entry: entryFor("P004", "10.00", 6), Existing: existing}},
	}
	report := runner.Apply(context.Background(), plan)

	assert.Empty(t, report.Errors)
	client.AssertExpectations(t)
}

func TestApplyUpdateTrackingFailureSkipsAdjust(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	existing := shopify.Product{
		ID:      203,
		Variant: shopify.Variant{InventoryItemID: 6003, InventoryQuantity: 0, Tracked: false},
	}
	client.On("UpdateProduct", mock.Anything, int64(203), mock.Anything).
		Return(&existing, nil)
	client.On("EnableTracking", mock.Anything, int64(6003)).Return(errors.New("boom"))

	plan := &sync.Plan{
		ToUpdate: []sync.UpdateItem{{Reference: "P005", Entry: entryFor("P005", "10.00", 6), Existing: existing}},
	}
	report := runner.Apply(context.Background(), plan)

	// The field update still counts; only the inventory step failed.
	assert.Equal(t, []string{"P005"}, report.Updated)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "enable_tracking", report.Errors[0].Action)
	client.AssertNotCalled(t, "AdjustInventory", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyDeleteReportsReference(t *testing.T) {
	client := new(mocks.Client)
	runner := sync.NewRunner(client, "ref-", zap.NewNop())

	client.On("DeleteProduct", mock.Anything, int64(300)).Return(nil)
	client.On("DeleteProduct", mock.Anything, int64(301)).Return(errors.New("gone already"))

	plan := &sync.Plan{
		ToDelete: []shopify.Product{
			{ID: 300, Tags: []string{"ref-OLD1"}},
			{ID: 301, Tags: []string{"ref-OLD2"}},
		},
	}
	report := runner.Apply(context.Background(), plan)

	assert.Equal(t, []string{"OLD1"}, report.Deleted)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, "OLD2", report.Errors[0].Reference)
	assert.Equal(t, "delete", report.Errors[0].Action)
	assert.Equal(t, "created 0, updated 0, deleted 1, 1 errors", report.Message)
}
