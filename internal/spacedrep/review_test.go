package spacedrep

import (
	"slices"
	"testing"
	"time"
)

func TestStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusOverdue, true},
		{StatusPending, StatusDone, true},
		{StatusPending, StatusArchived, true},
		{StatusOverdue, StatusDone, true},
		{StatusOverdue, StatusArchived, true},
		{StatusOverdue, StatusPending, false},
		{StatusDone, StatusPending, true},
		{StatusDone, StatusArchived, true},
		{StatusDone, StatusOverdue, false},
		{StatusArchived, StatusPending, false},
		{StatusArchived, StatusDone, false},
		{StatusArchived, StatusArchived, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusOverdue, StatusDone, StatusArchived} {
		if !s.Valid() {
			t.Errorf("%q should be valid", s)
		}
	}
	if Status("snoozed").Valid() {
		t.Error("unknown status reported valid")
	}
}

func TestSourcesOf(t *testing.T) {
	if got := sourcesOf(StatusArchived); !slices.Equal(got, []string{"pending", "overdue", "done"}) {
		t.Errorf("sourcesOf(archived) = %v", got)
	}
	if got := sourcesOf(StatusOverdue); !slices.Equal(got, []string{"pending"}) {
		t.Errorf("sourcesOf(overdue) = %v", got)
	}
	if got := reviewableFrom(); !slices.Equal(got, []string{"pending", "overdue", "done"}) {
		t.Errorf("reviewableFrom() = %v", got)
	}
}

func TestItem_IsDue(t *testing.T) {
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		status Status
		due    time.Time
		want   bool
	}{
		{"pending today", StatusPending, day, true},
		{"pending tomorrow", StatusPending, day.AddDate(0, 0, 1), false},
		{"overdue", StatusOverdue, day.AddDate(0, 0, -3), true},
		{"done in past", StatusDone, day.AddDate(0, 0, -3), false},
		{"archived", StatusArchived, day, false},
	}
	for _, tt := range tests {
		it := &Item{Status: tt.status, DueDate: tt.due}
		if got := it.IsDue(day); got != tt.want {
			t.Errorf("%s: IsDue = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestItemRowRoundTrip(t *testing.T) {
	origin := "sess-1"
	it := &Item{
		ID:              "r1",
		OwnerID:         "alice",
		TopicRef:        TopicRef{TopicID: 4, SubtopicID: 9, Topic: "Pediatria", Subtopic: "Neonatologia"},
		Status:          StatusOverdue,
		DueDate:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		Interval:        6,
		Ease:            2.36,
		Repetitions:     2,
		Priority:        5,
		OriginSessionID: &origin,
	}
	back := itemFromRow(it.Row())
	if back.TopicRef != it.TopicRef || back.Status != it.Status || back.Interval != 6 ||
		back.Ease != 2.36 || *back.OriginSessionID != origin {
		t.Fatalf("round trip lost data: %+v", back)
	}
}

func TestTopicRef_Path(t *testing.T) {
	if got := (TopicRef{Topic: "Cardiologia"}).Path(); got != "Cardiologia" {
		t.Errorf("Path() = %q", got)
	}
	if got := (TopicRef{Topic: "Cardiologia", Subtopic: "Arritmias"}).Path(); got != "Cardiologia > Arritmias" {
		t.Errorf("Path() = %q", got)
	}
}
