package fsm

import (
	"testing"

	"outswap/internal/models"
)

func TestCanTransition(t *testing.T) {
	allowed := [][2]models.RentalStatus{
		{models.RentalPending, models.RentalConfirmed},
		{models.RentalPending, models.RentalCancelled},
		{models.RentalConfirmed, models.RentalActive},
		{models.RentalConfirmed, models.RentalCancelled},
		{models.RentalConfirmed, models.RentalDisputed},
		{models.RentalActive, models.RentalReturned},
		{models.RentalActive, models.RentalCancelled},
		{models.RentalActive, models.RentalDisputed},
		{models.RentalReturned, models.RentalDisputed},
		{models.RentalDisputed, models.RentalCancelled},
	}
	for _, tr := range allowed {
		if !CanTransition(tr[0], tr[1]) {
			t.Fatalf("expected %s -> %s to be allowed", tr[0], tr[1])
		}
	}

	denied := [][2]models.RentalStatus{
		{models.RentalPending, models.RentalActive},
		{models.RentalPending, models.RentalReturned},
		{models.RentalConfirmed, models.RentalConfirmed},
		{models.RentalReturned, models.RentalActive},
		{models.RentalReturned, models.RentalCancelled},
		{models.RentalCancelled, models.RentalPending},
		{"lost", models.RentalCancelled},
	}
	for _, tr := range denied {
		if CanTransition(tr[0], tr[1]) {
			t.Fatalf("unexpected transition %s -> %s allowed", tr[0], tr[1])
		}
	}
}

func TestSources(t *testing.T) {
	tests := []struct {
		to   models.RentalStatus
		want []models.RentalStatus
	}{
		{models.RentalConfirmed, []models.RentalStatus{models.RentalPending}},
		{models.RentalActive, []models.RentalStatus{models.RentalConfirmed}},
		{models.RentalReturned, []models.RentalStatus{models.RentalActive}},
		{models.RentalCancelled, []models.RentalStatus{
			models.RentalActive, models.RentalConfirmed, models.RentalDisputed, models.RentalPending,
		}},
		{models.RentalDisputed, []models.RentalStatus{
			models.RentalActive, models.RentalConfirmed, models.RentalReturned,
		}},
		{models.RentalPending, nil},
	}
	for _, tt := range tests {
		t.Run(string(tt.to), func(t *testing.T) {
			got := Sources(tt.to)
			if len(got) != len(tt.want) {
				t.Fatalf("Sources(%s) = %v, want %v", tt.to, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("Sources(%s) = %v, want %v", tt.to, got, tt.want)
				}
			}
		})
	}
}

func TestTerminal(t *testing.T) {
	if !Terminal(models.RentalCancelled) {
		t.Fatal("cancelled should be terminal")
	}
	if Terminal(models.RentalReturned) || Terminal("unknown") {
		t.Fatal("returned and unknown statuses are not terminal")
	}
	if !Known(models.RentalDisputed) || Known("lost") {
		t.Fatal("unexpected Known result")
	}
}
