package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vendsync/core/snapshot"
	"vendsync/feature/shopify"
)

// ItemError records one failed mutation without aborting the batch.
type ItemError struct {
	Reference  string              `json:"reference"`
	Action     string              `json:"action"`
	Message    string              `json:"error"`
	UserErrors []shopify.UserError `json:"userErrors,omitempty"`
}

// Report summarises an apply pass over a plan.
type Report struct {
	Created []string    `json:"created"`
	Updated []string    `json:"updated"`
	Deleted []string    `json:"deleted"`
	Errors  []ItemError `json:"errors"`
	Message string      `json:"message"`
}

// Runner applies a plan against the destination catalog.
//
// Every external call is wrapped individually, so a failed inventory adjustment
// does not undo a succeeded title update and a failed create does not stop the
// remaining items. Errors are collected per item with the reference and the
// action that failed.
type Runner struct {
	client    shopify.Client
	tagPrefix string
	logger    *zap.Logger
}

func NewRunner(client shopify.Client, tagPrefix string, logger *zap.Logger) *Runner {
	return &Runner{client: client, tagPrefix: tagPrefix, logger: logger}
}

// Apply executes the plan item by item: creates first, then updates, then
// deletes. The returned report is complete even when every item failed.
func (r *Runner) Apply(ctx context.Context, plan *Plan) *Report {
	report := &Report{
		Created: []string{},
		Updated: []string{},
		Deleted: []string{},
		Errors:  []ItemError{},
	}

	for _, item := range plan.ToCreate {
		r.applyCreate(ctx, item, report)
	}
	for _, item := range plan.ToUpdate {
		r.applyUpdate(ctx, item, report)
	}
	for _, existing := range plan.ToDelete {
		r.applyDelete(ctx, existing, report)
	}

	report.Message = fmt.Sprintf("created %d, updated %d, deleted %d, %d errors",
		len(report.Created), len(report.Updated), len(report.Deleted), len(report.Errors))
	return report
}

func (r *Runner) applyCreate(ctx context.Context, item PlanItem, report *Report) {
	input := r.buildInput(item.Reference, item.Entry.Product)

	created, err := r.client.CreateProduct(ctx, input)
	if err != nil {
		report.Errors = append(report.Errors, itemError(item.Reference, "create", err))
		return
	}
	report.Created = append(report.Created, item.Reference)
	r.logger.Info("Created product",
		zap.String("reference", item.Reference),
		zap.Int64("productId", created.ID),
	)

	if created.Variant.InventoryItemID != 0 {
		if err := r.client.SetInventory(ctx, created.Variant.InventoryItemID, item.Entry.Product.Stock); err != nil {
			report.Errors = append(report.Errors, itemError(item.Reference, "set_inventory", err))
		}
	}

	// New products default to unpublished; publishing is a separate call so
	// an inventory failure above does not leave the product hidden.
	if err := r.client.Publish(ctx, created.ID); err != nil {
		report.Errors = append(report.Errors, itemError(item.Reference, "publish", err))
	}
}

func (r *Runner) applyUpdate(ctx context.Context, item UpdateItem, report *Report) {
	input := r.buildInput(item.Reference, item.Entry.Product)

	if _, err := r.client.UpdateProduct(ctx, item.Existing.ID, input); err != nil {
		report.Errors = append(report.Errors, itemError(item.Reference, "update", err))
	} else {
		report.Updated = append(report.Updated, item.Reference)
	}

	// Inventory is adjusted by delta rather than set absolutely, so manual
	// stock corrections made in the shop between runs survive.
	delta := item.Entry.Product.Stock - item.Existing.Variant.InventoryQuantity
	if delta == 0 || item.Existing.Variant.InventoryItemID == 0 {
		return
	}

	if !item.Existing.Variant.Tracked {
		if err := r.client.EnableTracking(ctx, item.Existing.Variant.InventoryItemID); err != nil {
			report.Errors = append(report.Errors, itemError(item.Reference, "enable_tracking", err))
			return
		}
	}
	if err := r.client.AdjustInventory(ctx, item.Existing.Variant.InventoryItemID, delta); err != nil {
		report.Errors = append(report.Errors, itemError(item.Reference, "adjust_inventory", err))
	}
}

func (r *Runner) applyDelete(ctx context.Context, existing shopify.Product, report *Report) {
	ref := strings.TrimPrefix(existing.TagWithPrefix(r.tagPrefix), r.tagPrefix)
	if err := r.client.DeleteProduct(ctx, existing.ID); err != nil {
		report.Errors = append(report.Errors, itemError(ref, "delete", err))
		return
	}
	report.Deleted = append(report.Deleted, ref)
	r.logger.Info("Deleted stale product",
		zap.String("reference", ref),
		zap.Int64("productId", existing.ID),
	)
}

// buildInput maps a snapshot entry to a destination product payload.
func (r *Runner) buildInput(ref string, src snapshot.ProductData) shopify.ProductInput {
	return shopify.ProductInput{
		Title:    src.Title,
		BodyHTML: buildDescription(src),
		Status:   mapStatus(src.Status),
		Price:    src.Price.StringFixed(2),
		SKU:      ref,
		Tags:     []string{r.tagPrefix + ref},
	}
}

// mapStatus translates source product states to the destination's vocabulary.
// The source reports "on"/"off"; anything not recognisably active is kept as a
// draft rather than guessing.
func mapStatus(src string) string {
	switch strings.ToLower(strings.TrimSpace(src)) {
	case "", "on", "active":
		return "active"
	default:
		return "draft"
	}
}

func buildDescription(src snapshot.ProductData) string {
	var parts []string
	if len(src.Colors) > 0 {
		parts = append(parts, "Cores: "+strings.Join(src.Colors, ", "))
	}
	if len(src.Sizes) > 0 {
		parts = append(parts, "Tamanhos: "+strings.Join(src.Sizes, ", "))
	}
	if len(parts) == 0 {
		return ""
	}
	return "<p>" + strings.Join(parts, "<br>") + "</p>"
}

func itemError(ref, action string, err error) ItemError {
	item := ItemError{Reference: ref, Action: action, Message: err.Error()}
	var reqErr *shopify.RequestError
	if errors.As(err, &reqErr) {
		item.UserErrors = reqErr.UserErrors
	}
	return item
}
