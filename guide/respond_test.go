package guide

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/neilotoole/slogt"
)

func newTestResponder(t *testing.T) *Responder {
	t.Helper()
	return &Responder{Logger: slogt.New(t)}
}

func TestResponder_Reply_Booking(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		walletConnected bool
		want            string
	}{
		{
			name:  "NotConnected",
			input: "I want to book a trip",
			want:  walletRequiredReply,
		},
		{
			name:  "NotConnectedReserve",
			input: "Can I RESERVE a tour?",
			want:  walletRequiredReply,
		},
		{
			name: "NotConnectedBookingBeatsLocation",
			// Booking intent dominates even when a location keyword is
			// present.
			input: "book a tour to Borobudur",
			want:  walletRequiredReply,
		},
		{
			name: "NotConnectedSubstring",
			// Matching is substring-based, not tokenized.
			input: "this place is unbookable",
			want:  walletRequiredReply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResponder(t)
			got, err := r.Reply(context.Background(), tt.input, tt.walletConnected)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Got reply %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponder_Reply_BookingConnected(t *testing.T) {
	r := newTestResponder(t)

	got, err := r.Reply(context.Background(), "I want to book a trip", true)
	if err != nil {
		t.Fatal(err)
	}

	pattern := regexp.MustCompile(`^Great! I've created a blockchain-based booking for you to visit (.+) in 30 days\.`)
	m := pattern.FindStringSubmatch(got)
	if m == nil {
		t.Fatalf("Reply %q does not match the booking confirmation template", got)
	}

	valid := false
	for _, loc := range popularLocations {
		if m[1] == loc {
			valid = true
			break
		}
	}
	if !valid {
		t.Errorf("Got destination %q, want one of %v", m[1], popularLocations)
	}
}

func TestResponder_Reply_BookingCancelled(t *testing.T) {
	r := newTestResponder(t)
	r.BookingDelay = delayForever

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Reply(ctx, "book a tour", true); err == nil {
		t.Error("Got nil error, want context cancellation")
	}
}

func TestResponder_Reply_Locations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Borobudur",
			input: "What can you tell me about BOROBUDUR?",
			want:  locationReplies[0].reply,
		},
		{
			name:  "Prambanan",
			input: "is prambanan worth visiting",
			want:  locationReplies[1].reply,
		},
		{
			name:  "Bali",
			input: "Tell me about Bali",
			want:  locationReplies[2].reply,
		},
		{
			name: "FirstMatchWins",
			// Two location keywords: only the first branch-order match is
			// used, no blending.
			input: "borobudur or bali?",
			want:  locationReplies[0].reply,
		},
		{
			name:  "Food",
			input: "Where should I eat?",
			want:  topicReplies[0].reply,
		},
		{
			name:  "Cuisine",
			input: "local cuisine recommendations",
			want:  topicReplies[0].reply,
		},
		{
			name:  "Transport",
			input: "How is getting around?",
			want:  topicReplies[1].reply,
		},
		{
			name:  "LocationBeatsTopic",
			input: "what food is there in bali",
			want:  locationReplies[2].reply,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResponder(t)
			got, err := r.Reply(context.Background(), tt.input, false)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Got reply %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponder_Reply_Fallback(t *testing.T) {
	r := newTestResponder(t)

	// Ambiguous input is never an error; every reply must be a member of
	// the fixed fallback set. Different calls may legitimately pick
	// different members.
	for i := 0; i < 50; i++ {
		got, err := r.Reply(context.Background(), "hello there", false)
		if err != nil {
			t.Fatal(err)
		}
		member := false
		for _, reply := range fallbackReplies {
			if got == reply {
				member = true
				break
			}
		}
		if !member {
			t.Fatalf("Reply %q is not one of the fallback paragraphs", got)
		}
	}
}

func TestFilterDestinations(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		tags    []string
		wantIDs []string
	}{
		{
			name:    "All",
			wantIDs: []string{"borobudur", "raja-ampat", "komodo", "bali", "prambanan", "tana-toraja"},
		},
		{
			name:    "QueryName",
			query:   "temple",
			wantIDs: []string{"borobudur", "prambanan"},
		},
		{
			name:    "QueryLocation",
			query:   "yogyakarta",
			wantIDs: []string{"prambanan"},
		},
		{
			name:    "Tag",
			tags:    []string{"Beach"},
			wantIDs: []string{"raja-ampat", "bali"},
		},
		{
			name:    "QueryAndTag",
			query:   "island",
			tags:    []string{"Diving"},
			wantIDs: []string{"raja-ampat"},
		},
		{
			name:    "NoMatch",
			query:   "jakarta",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterDestinations(tt.query, tt.tags)
			gotIDs := make([]string, len(got))
			for i, d := range got {
				gotIDs[i] = d.ID
			}
			if strings.Join(gotIDs, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("Got IDs %v, want %v", gotIDs, tt.wantIDs)
			}
		})
	}
}
