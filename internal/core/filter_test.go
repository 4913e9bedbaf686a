package core

import (
	"testing"
	"time"
)

func testLedger() []Lesson {
	return []Lesson{
		{Date: NewDate(2025, time.May, 5), StudentName: "Ann", HourlyRate: 1000, Hours: 2, Status: StatusCompleted, PaidStatus: PaidStatusPaid},
		{Date: NewDate(2025, time.May, 12), StudentName: "Ann", HourlyRate: 1000, Hours: 1, Status: StatusPlanned, PaidStatus: PaidStatusUnpaid},
		{Date: NewDate(2025, time.May, 12), StudentName: "Boris", HourlyRate: 800, Hours: 1.5, Status: StatusCompleted, PaidStatus: PaidStatusUnpaid},
		{Date: NewDate(2025, time.June, 2), StudentName: "Boris", HourlyRate: 800, Hours: 2, Status: StatusCompleted, PaidStatus: PaidStatusPaid},
	}
}

func TestFilterEmptyCriteriaMatchesAll(t *testing.T) {
	ledger := testLedger()
	got := Filter(ledger, Criteria{})
	if len(got) != len(ledger) {
		t.Fatalf("got %d lessons, want %d", len(got), len(ledger))
	}
}

func TestFilterSingleCriteria(t *testing.T) {
	ledger := testLedger()
	onDate := NewDate(2025, time.May, 12)
	completed := StatusCompleted
	unpaid := PaidStatusUnpaid

	if got := Filter(ledger, Criteria{OnDate: &onDate}); len(got) != 2 {
		t.Fatalf("date filter: got %d, want 2", len(got))
	}
	if got := Filter(ledger, Criteria{Status: &completed}); len(got) != 3 {
		t.Fatalf("status filter: got %d, want 3", len(got))
	}
	if got := Filter(ledger, Criteria{PaidStatus: &unpaid}); len(got) != 2 {
		t.Fatalf("paid filter: got %d, want 2", len(got))
	}
	if got := Filter(ledger, Criteria{StudentName: "Boris"}); len(got) != 2 {
		t.Fatalf("student filter: got %d, want 2", len(got))
	}
}

// Filtering in two passes must equal filtering once with the combined
// criteria.
func TestFilterComposition(t *testing.T) {
	ledger := testLedger()
	completed := StatusCompleted

	sequential := Filter(Filter(ledger, Criteria{StudentName: "Ann"}), Criteria{Status: &completed})
	combined := Filter(ledger, Criteria{StudentName: "Ann", Status: &completed})

	if len(sequential) != len(combined) {
		t.Fatalf("sequential %d != combined %d", len(sequential), len(combined))
	}
	for i := range sequential {
		if sequential[i] != combined[i] {
			t.Fatalf("row %d differs: %+v vs %+v", i, sequential[i], combined[i])
		}
	}
	if len(combined) != 1 || combined[0].StudentName != "Ann" || combined[0].Status != StatusCompleted {
		t.Fatalf("unexpected result %+v", combined)
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	ledger := testLedger()
	got := Filter(ledger, Criteria{StudentName: "Boris"})
	if len(got) != 2 || !got[0].Date.Equal(NewDate(2025, time.May, 12)) || !got[1].Date.Equal(NewDate(2025, time.June, 2)) {
		t.Fatalf("source order not preserved: %+v", got)
	}
}
