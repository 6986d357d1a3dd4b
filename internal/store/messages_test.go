package store

import (
	"testing"
	"time"
)

func stamped(text string, offset time.Duration) Message {
	base := time.Date(2025, 1, 31, 12, 0, 0, 0, time.UTC)
	return Message{Role: RoleUser, Text: text, CreatedAt: base.Add(offset)}
}

func TestOldestFirstRestoresReplayOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		newestFirst []Message
		want        []string
	}{
		{
			name: "three messages",
			newestFirst: []Message{
				stamped("C", 2 * time.Minute),
				stamped("B", time.Minute),
				stamped("A", 0),
			},
			want: []string{"A", "B", "C"},
		},
		{
			// A DESC LIMIT 2 over A,B,C,D returns D,C; replay must
			// keep those newest two, oldest first.
			name: "limit keeps the newest",
			newestFirst: []Message{
				stamped("D", 3 * time.Minute),
				stamped("C", 2 * time.Minute),
			},
			want: []string{"C", "D"},
		},
		{
			name:        "single message",
			newestFirst: []Message{stamped("A", 0)},
			want:        []string{"A"},
		},
		{
			name: "empty",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := oldestFirst(tt.newestFirst)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d messages, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.Text != tt.want[i] {
					t.Errorf("message %d = %q, want %q", i, m.Text, tt.want[i])
				}
				if i > 0 && got[i].CreatedAt.Before(got[i-1].CreatedAt) {
					t.Errorf("message %d predates message %d", i, i-1)
				}
			}
		})
	}
}
