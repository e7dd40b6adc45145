package receipts_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Tiliavir/field-day-tracker/internal/bus"
	"github.com/Tiliavir/field-day-tracker/internal/model"
	"github.com/Tiliavir/field-day-tracker/internal/receipts"
	"github.com/Tiliavir/field-day-tracker/internal/storage"
)

func TestHeuristicExtractor(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.ReceiptFields
	}{
		{
			name: "dutch hardware store",
			text: "KASSABON\nGamma Rotterdam-Noord\nSchroeven 4,99\nBoor 12,50\nTOTAAL € 17,49\nBTW 21%\n14-03-2025 10:12",
			want: model.ReceiptFields{Merchant: "Gamma Rotterdam Noord", Date: "14-03-2025", VATPercent: "21", Total: "17.49"},
		},
		{
			name: "english with subtotal",
			text: "Shell Station\n2025/03/14\nSUBTOTAL 40.00\nVAT 9 %\nTOTAL: 43.60",
			want: model.ReceiptFields{Merchant: "Shell Station", Date: "2025/03/14", VATPercent: "9", Total: "43.60"},
		},
		{
			name: "largest amount fallback",
			text: "Bakkerij de Vries\nbrood 3,20\nkoffie 2,80\n6,00",
			want: model.ReceiptFields{Merchant: "Bakkerij de Vries", Total: "6.00"},
		},
		{
			name: "thousands separator",
			text: "Machinehandel\nAMOUNT 1.234,50",
			want: model.ReceiptFields{Merchant: "Machinehandel", Total: "1234.50"},
		},
		{
			name: "nothing recognizable",
			text: "1234\n----",
			want: model.ReceiptFields{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := receipts.HeuristicExtractor{}.Extract(tt.text)
			if got != tt.want {
				t.Errorf("Extract =\n %+v\nwant\n %+v", got, tt.want)
			}
		})
	}
}

func TestBook(t *testing.T) {
	s, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	b := receipts.NewBook(s, storage.For("u-daan"), nil, clock, log)

	if _, ok := b.Add("   "); ok {
		t.Error("empty text accepted")
	}
	old, _ := b.Add("Gamma\nTOTAAL 10,00")
	now = now.Add(24 * time.Hour)
	first, _ := b.Add("Shell\nTOTAL 20.50")
	second, _ := b.Add("Albert Heijn\nTOTAAL 3,25")

	if got := b.List(); len(got) != 3 || got[0].ID != second.ID {
		t.Fatalf("List not newest first: %+v", got)
	}
	if got := b.Total(); got != 33.75 {
		t.Errorf("Total = %v, want 33.75", got)
	}

	refs := b.CreatedOn(now)
	if len(refs) != 2 || refs[0].ID != first.ID || refs[1].Merchant != "Albert Heijn" {
		t.Errorf("CreatedOn = %+v", refs)
	}

	if _, ok := b.Update(first.ID, receipts.FieldTotal, "21,00"); !ok {
		t.Error("Update rejected")
	}
	if _, ok := b.Update(first.ID, "colour", "red"); ok {
		t.Error("unknown field accepted")
	}
	if !b.Remove(old.ID) || b.Remove(old.ID) {
		t.Error("Remove should succeed exactly once")
	}

	reloaded := receipts.NewBook(s, storage.For("u-daan"), nil, clock, log)
	if got := reloaded.Total(); got != 24.25 {
		t.Errorf("reloaded Total = %v, want 24.25", got)
	}

	bs := bus.New(log)
	reloaded.Attach(bs)
	bs.UserChanged("u-rosa")
	if n := len(reloaded.List()); n != 0 {
		t.Errorf("u-rosa receipts = %d, want 0", n)
	}
}
