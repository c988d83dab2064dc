package mocks

import (
	"context"

	"vendsync/feature/shopify"

	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of shopify.Client
type Client struct {
	mock.Mock
}

func (m *Client) SearchByTag(ctx context.Context, tag string) ([]shopify.Product, error) {
	args := m.Called(ctx, tag)
	if p, ok := args.Get(0).([]shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) SearchByTagPrefix(ctx context.Context, prefix string) ([]shopify.Product, error) {
	args := m.Called(ctx, prefix)
	if p, ok := args.Get(0).([]shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateProduct(ctx context.Context, input shopify.ProductInput) (*shopify.Product, error) {
	args := m.Called(ctx, input)
	if p, ok := args.Get(0).(*shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateProduct(ctx context.Context, productID int64, input shopify.ProductInput) (*shopify.Product, error) {
	args := m.Called(ctx, productID, input)
	if p, ok := args.Get(0).(*shopify.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteProduct(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}

func (m *Client) SetInventory(ctx context.Context, inventoryItemID int64, quantity int) error {
	args := m.Called(ctx, inventoryItemID, quantity)
	return args.Error(0)
}

func (m *Client) AdjustInventory(ctx context.Context, inventoryItemID int64, delta int) error {
	args := m.Called(ctx, inventoryItemID, delta)
	return args.Error(0)
}

func (m *Client) EnableTracking(ctx context.Context, inventoryItemID int64) error {
	args := m.Called(ctx, inventoryItemID)
	return args.Error(0)
}

func (m *Client) Publish(ctx context.Context, productID int64) error {
	args := m.Called(ctx, productID)
	return args.Error(0)
}
