// Package receipts keeps the scanned receipts of a user and extracts
// their fields from recognized text.
package receipts

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
	"github.com/Tiliavir/field-day-tracker/internal/timecalc"
)

// Field names accepted by Update.
const (
	FieldMerchant = "merchant"
	FieldDate     = "date"
	FieldVAT      = "vat"
	FieldTotal    = "total"
	FieldNotes    = "notes"
)

// Book is the receipt list of one user, newest first.
type Book struct {
	store     storage.Store
	ns        storage.Namespace
	extractor Extractor
	now       func() time.Time
	log       *slog.Logger

	list   []model.Receipt
	unsubs []bus.Unsubscribe
}

// NewBook loads the receipts of ns. A nil extractor uses the heuristics.
func NewBook(s storage.Store, ns storage.Namespace, ex Extractor, now func() time.Time, log *slog.Logger) *Book {
	if ex == nil {
		ex = HeuristicExtractor{}
	}
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	b := &Book{store: s, ns: ns, extractor: ex, now: now, log: log}
	b.Reload()
	return b
}

// Key returns the storage key of the book.
func (b *Book) Key() string { return b.ns.Key(storage.Receipts) }

// Reload re-reads the list from the store.
func (b *Book) Reload() {
	b.list = storage.Load(b.store, b.Key(), []model.Receipt{}, b.log)
}

// Attach follows user switches announced on the bus.
func (b *Book) Attach(bs *bus.Bus) {
	b.Detach()
	b.unsubs = []bus.Unsubscribe{
		bs.OnUserChanged(func(id string) {
			b.ns = storage.Namespace{Prefix: b.ns.Prefix, UserID: id}
			b.Reload()
		}),
	}
}

// Detach removes the subscriptions made by Attach.
func (b *Book) Detach() {
	for _, u := range b.unsubs {
		u()
	}
	b.unsubs = nil
}

func (b *Book) persist() {
	if err := storage.Save(b.store, b.Key(), b.list); err != nil {
		b.log.Error("saving receipts failed", slog.String("error", err.Error()))
	}
}

// List returns the receipts, newest first.
func (b *Book) List() []model.Receipt {
	return append([]model.Receipt{}, b.list...)
}

// Add extracts the fields of rawText and stores a new receipt.
func (b *Book) Add(rawText string) (model.Receipt, bool) {
	if strings.TrimSpace(rawText) == "" {
		b.log.Debug("receipt rejected", slog.String("reason", "empty text"))
		return model.Receipt{}, false
	}
	r := model.Receipt{
		ID:        uuid.NewString(),
		Fields:    b.extractor.Extract(rawText),
		RawText:   rawText,
		CreatedAt: b.now(),
	}
	b.list = append([]model.Receipt{r}, b.list...)
	b.persist()
	return r, true
}

// Update corrects one extracted field by hand.
func (b *Book) Update(id, field, value string) (model.Receipt, bool) {
	for i := range b.list {
		if b.list[i].ID != id {
			continue
		}
		f := &b.list[i].Fields
		switch field {
		case FieldMerchant:
			f.Merchant = value
		case FieldDate:
			f.Date = value
		case FieldVAT:
			f.VATPercent = value
		case FieldTotal:
			f.Total = value
		case FieldNotes:
			f.Notes = value
		default:
			b.log.Debug("receipt update rejected", slog.String("field", field))
			return model.Receipt{}, false
		}
		b.persist()
		return b.list[i], true
	}
	return model.Receipt{}, false
}

// Remove deletes the receipt with id.
func (b *Book) Remove(id string) bool {
	for i, r := range b.list {
		if r.ID == id {
			b.list = append(b.list[:i], b.list[i+1:]...)
			b.persist()
			return true
		}
	}
	return false
}

// Total sums every parsable total.
func (b *Book) Total() float64 {
	var sum float64
	for _, r := range b.list {
		if v, ok := ParseAmount(r.Fields.Total); ok {
			sum += v
		}
	}
	return sum
}

// CreatedOn returns references to the receipts created on the day of t,
// oldest first.
func (b *Book) CreatedOn(t time.Time) []model.ReceiptRef {
	day := timecalc.DateKey(t)
	refs := []model.ReceiptRef{}
	for i := len(b.list) - 1; i >= 0; i-- {
		r := b.list[i]
		if timecalc.DateKey(r.CreatedAt.In(t.Location())) != day {
			continue
		}
		refs = append(refs, model.ReceiptRef{ID: r.ID, Merchant: r.Fields.Merchant, Total: r.Fields.Total})
	}
	return refs
}
