package xmlfile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lessons/internal/core"
)

func TestLoadMissingFileIsEmptyLedger(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "lessons.xml"))
	lessons, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lessons) != 0 {
		t.Fatalf("expected empty ledger, got %d lessons", len(lessons))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	repo := NewRepository(filepath.Join(t.TempDir(), "data", "lessons.xml"))
	ctx := context.Background()

	want := []core.Lesson{
		{Date: core.NewDate(2025, time.May, 5), StudentName: "Ann", HourlyRate: 1000, Hours: 2, Status: core.StatusCompleted, PaidStatus: core.PaidStatusPaid},
		{Date: core.NewDate(2025, time.May, 12), StudentName: "Boris", HourlyRate: 800.5, Hours: 1.5, Status: core.StatusPlanned, PaidStatus: core.PaidStatusUnpaid},
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d lessons, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lesson %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSaveWritesLegacyFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.xml")
	repo := NewRepository(path)

	lesson := core.Lesson{
		Date:        core.NewDate(2025, time.May, 5),
		StudentName: "Ann",
		HourlyRate:  1000,
		Hours:       2,
		Status:      core.StatusCompleted,
		PaidStatus:  core.PaidStatusPaid,
	}
	if err := repo.Save(context.Background(), []core.Lesson{lesson}); err != nil {
		t.Fatalf("save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	for _, want := range []string{"<lessons>", "<lesson>", "<date>05.05.2025</date>", "<studentName>Ann</studentName>", "<paidStatus>PAID</paidStatus>"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestLoadDefaultsMissingPaidStatusToUnpaid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lessons.xml")
	legacy := `<?xml version="1.0" encoding="UTF-8"?>
<lessons>
    <lesson>
        <date>05.05.2025</date>
        <studentName>Ann</studentName>
        <hourlyRate>1000</hourlyRate>
        <hours>2</hours>
        <status>COMPLETED</status>
    </lesson>
</lessons>
`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	lessons, err := NewRepository(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lessons) != 1 || lessons[0].PaidStatus != core.PaidStatusUnpaid {
		t.Fatalf("expected UNPAID default, got %+v", lessons)
	}
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"missing date", `<lesson><studentName>Ann</studentName><hourlyRate>1000</hourlyRate><hours>2</hours><status>COMPLETED</status></lesson>`},
		{"missing student", `<lesson><date>05.05.2025</date><hourlyRate>1000</hourlyRate><hours>2</hours><status>COMPLETED</status></lesson>`},
		{"bad date", `<lesson><date>2025-05-05</date><studentName>Ann</studentName><hourlyRate>1000</hourlyRate><hours>2</hours><status>COMPLETED</status></lesson>`},
		{"bad rate", `<lesson><date>05.05.2025</date><studentName>Ann</studentName><hourlyRate>abc</hourlyRate><hours>2</hours><status>COMPLETED</status></lesson>`},
		{"bad status", `<lesson><date>05.05.2025</date><studentName>Ann</studentName><hourlyRate>1000</hourlyRate><hours>2</hours><status>DONE</status></lesson>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "lessons.xml")
			content := `<?xml version="1.0" encoding="UTF-8"?><lessons>` + tc.body + `</lessons>`
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				t.Fatalf("write fixture: %v", err)
			}
			if _, err := NewRepository(path).Load(context.Background()); err == nil {
				t.Fatal("expected load error")
			}
		})
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lessons.xml")
	repo := NewRepository(path)
	ctx := context.Background()

	lesson := core.Lesson{Date: core.NewDate(2025, time.May, 5), StudentName: "Ann", HourlyRate: 1000, Hours: 2, Status: core.StatusCompleted, PaidStatus: core.PaidStatusPaid}
	if err := repo.Save(ctx, []core.Lesson{lesson}); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if err := repo.Save(ctx, nil); err != nil {
		t.Fatalf("second save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
	lessons, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lessons) != 0 {
		t.Fatalf("expected empty ledger after overwrite, got %d", len(lessons))
	}
}
